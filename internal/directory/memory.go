package directory

import (
	"context"
	"fmt"
	"sync"

	"github.com/SkylineCommunications/idpcheck/internal/core"
)

// PropertyWrite is a recorded SetProperty call.
type PropertyWrite struct {
	Key   string `yaml:"key"`
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

// TriggerCall is a recorded Trigger call.
type TriggerCall struct {
	Element   string `yaml:"element"`
	Parameter int    `yaml:"parameter"`
	Value     string `yaml:"value"`
}

type tableKey struct {
	element string
	table   int
	column  int
}

// Memory is an in-memory element directory. It is the fake used by tests and
// the backing store of the file directory.
type Memory struct {
	mu sync.Mutex

	elements   []core.Element
	properties map[string]map[string]string // key -> property name -> value
	views      map[string]map[string]bool   // view -> element keys
	tables     map[tableKey]map[string]string
	parameters map[string]map[int]bool // element -> writable parameters

	Writes   []PropertyWrite
	Triggers []TriggerCall
}

// NewMemory creates an empty directory.
func NewMemory() *Memory {
	return &Memory{
		properties: make(map[string]map[string]string),
		views:      make(map[string]map[string]bool),
		tables:     make(map[tableKey]map[string]string),
		parameters: make(map[string]map[int]bool),
	}
}

// AddElement registers an element with its properties. A property that is
// not in props does not exist on the element.
func (m *Memory) AddElement(e core.Element, props map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.elements = append(m.elements, e)
	p := make(map[string]string, len(props))
	for k, v := range props {
		p[k] = v
	}
	m.properties[e.Key()] = p
}

// AddToView places the element keys in view.
func (m *Memory) AddToView(view string, keys ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.views[view] == nil {
		m.views[view] = make(map[string]bool)
	}
	for _, k := range keys {
		m.views[view][k] = true
	}
}

// SetTable replaces the rows of a table column.
func (m *Memory) SetTable(ref core.TableRef, rows map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := make(map[string]string, len(rows))
	for k, v := range rows {
		t[k] = v
	}
	m.tables[tableKey{ref.Element, ref.Table, ref.Column}] = t
}

// AddParameter makes a standalone parameter writable.
func (m *Memory) AddParameter(ref core.ParameterRef) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.parameters[ref.Element] == nil {
		m.parameters[ref.Element] = make(map[int]bool)
	}
	m.parameters[ref.Element][ref.Parameter] = true
}

// Property returns the current property value, for assertions.
func (m *Memory) Property(key, name string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.properties[key][name]
	return v, ok
}

func (m *Memory) ListElements(ctx context.Context, view string) ([]core.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if view == "" {
		return append([]core.Element(nil), m.elements...), nil
	}
	members, ok := m.views[view]
	if !ok {
		return nil, fmt.Errorf("view %q: %w", view, core.ErrNotFound)
	}
	var out []core.Element
	for _, e := range m.elements {
		if members[e.Key()] {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *Memory) GetProperty(ctx context.Context, key, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	props, ok := m.properties[key]
	if !ok {
		return "", fmt.Errorf("element %s: %w", key, core.ErrNotFound)
	}
	v, ok := props[name]
	if !ok {
		return "", fmt.Errorf("property %q on element %s: %w", name, key, core.ErrNotFound)
	}
	return v, nil
}

func (m *Memory) SetProperty(ctx context.Context, key, name, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	props, ok := m.properties[key]
	if !ok {
		return fmt.Errorf("element %s: %w", key, core.ErrNotFound)
	}
	if _, ok := props[name]; !ok {
		return fmt.Errorf("property %q on element %s: %w", name, key, core.ErrNotFound)
	}
	props[name] = value
	m.Writes = append(m.Writes, PropertyWrite{Key: key, Name: name, Value: value})
	return nil
}

func (m *Memory) ReadTable(ctx context.Context, ref core.TableRef) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	rows, ok := m.tables[tableKey{ref.Element, ref.Table, ref.Column}]
	if !ok {
		return nil, fmt.Errorf("%s: %w", ref, core.ErrNotFound)
	}
	out := make(map[string]string, len(rows))
	for k, v := range rows {
		out[k] = v
	}
	return out, nil
}

func (m *Memory) Trigger(ctx context.Context, ref core.ParameterRef, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.parameters[ref.Element][ref.Parameter] {
		return fmt.Errorf("%s: %w", ref, core.ErrNotFound)
	}
	m.Triggers = append(m.Triggers, TriggerCall{Element: ref.Element, Parameter: ref.Parameter, Value: value})
	return nil
}

var _ core.Directory = (*Memory)(nil)
