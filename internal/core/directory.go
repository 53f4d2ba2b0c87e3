package core

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrNotFound is returned by directories for unknown elements, tables,
// parameters and properties.
var ErrNotFound = errors.New("not found")

// Element is a monitored element as listed by the directory.
type Element struct {
	AgentID   int    `yaml:"agent" json:"agentId"`
	ElementID int    `yaml:"id" json:"elementId"`
	Name      string `yaml:"name" json:"name"`
}

// Key returns the composite "<agent>/<element>" id used by the IDP tables.
func (e Element) Key() string {
	return FormatKey(e.AgentID, e.ElementID)
}

// FormatKey builds a composite element key.
func FormatKey(agentID, elementID int) string {
	return strconv.Itoa(agentID) + "/" + strconv.Itoa(elementID)
}

// ParseKey splits a composite "<agent>/<element>" key.
func ParseKey(key string) (agentID, elementID int, err error) {
	agent, elem, ok := strings.Cut(key, "/")
	if !ok {
		return 0, 0, fmt.Errorf("invalid element key %q", key)
	}
	if agentID, err = strconv.Atoi(agent); err != nil {
		return 0, 0, fmt.Errorf("invalid agent id in %q: %w", key, err)
	}
	if elementID, err = strconv.Atoi(elem); err != nil {
		return 0, 0, fmt.Errorf("invalid element id in %q: %w", key, err)
	}
	return agentID, elementID, nil
}

// TableRef points at a name column of a table on a named element.
type TableRef struct {
	Element string
	Table   int
	Column  int
}

func (t TableRef) String() string {
	return fmt.Sprintf("%s table %d column %d", t.Element, t.Table, t.Column)
}

// ParameterRef points at a writable standalone parameter on a named element.
type ParameterRef struct {
	Element   string
	Parameter int
}

func (p ParameterRef) String() string {
	return fmt.Sprintf("%s parameter %d", p.Element, p.Parameter)
}

// Directory is the element directory of the monitoring platform.
// Every call may block on the network, so all of them take a context.
type Directory interface {
	// ListElements returns all elements, or only those in view (including
	// sub-views, paused and stopped elements) when view is not empty.
	ListElements(ctx context.Context, view string) ([]Element, error)
	GetProperty(ctx context.Context, key, name string) (string, error)
	SetProperty(ctx context.Context, key, name, value string) error
	// ReadTable returns primary key -> column value for every row.
	ReadTable(ctx context.Context, ref TableRef) (map[string]string, error)
	Trigger(ctx context.Context, ref ParameterRef, value string) error
}
