package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/codeGROOVE-dev/retry"

	"github.com/SkylineCommunications/idpcheck/internal/core"
)

const (
	maxResponseBytes = 32 << 20
	maxBackoff       = 30 * time.Second
)

// HTTP talks to a JSON gateway in front of the monitoring platform.
// Transport errors and 5xx responses are retried; 4xx responses are not.
type HTTP struct {
	BaseURL string
	Token   string
	Retries int
	Backoff time.Duration
	Logger  core.Logger

	client *http.Client
}

// NewHTTP creates a client for baseURL.
func NewHTTP(baseURL, token string, timeout time.Duration, retries int, logger core.Logger) *HTTP {
	return &HTTP{
		BaseURL: baseURL,
		Token:   token,
		Retries: retries,
		Backoff: time.Second,
		Logger:  logger,
		client:  &http.Client{Timeout: timeout},
	}
}

type elementDTO struct {
	AgentID   int    `json:"agentId"`
	ElementID int    `json:"elementId"`
	Name      string `json:"name"`
}

type valueDTO struct {
	Value string `json:"value"`
}

type tableDTO struct {
	Rows map[string]string `json:"rows"`
}

type response struct {
	status int
	body   []byte
}

// StatusError is returned for unexpected non 2xx responses.
type StatusError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: server returned status %d: %s", e.Method, e.Path, e.Status, e.Body)
}

func (h *HTTP) ListElements(ctx context.Context, view string) ([]core.Element, error) {
	path := "/api/v1/elements"
	if view != "" {
		path += "?view=" + url.QueryEscape(view)
	}
	var dtos []elementDTO
	if err := h.do(ctx, http.MethodGet, path, nil, &dtos); err != nil {
		return nil, fmt.Errorf("list elements: %w", err)
	}
	out := make([]core.Element, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, core.Element{AgentID: d.AgentID, ElementID: d.ElementID, Name: d.Name})
	}
	return out, nil
}

func (h *HTTP) GetProperty(ctx context.Context, key, name string) (string, error) {
	path, err := propertyPath(key, name)
	if err != nil {
		return "", err
	}
	var v valueDTO
	if err := h.do(ctx, http.MethodGet, path, nil, &v); err != nil {
		return "", fmt.Errorf("property %q on element %s: %w", name, key, err)
	}
	return v.Value, nil
}

func (h *HTTP) SetProperty(ctx context.Context, key, name, value string) error {
	path, err := propertyPath(key, name)
	if err != nil {
		return err
	}
	if err := h.do(ctx, http.MethodPut, path, valueDTO{Value: value}, nil); err != nil {
		return fmt.Errorf("set property %q on element %s: %w", name, key, err)
	}
	return nil
}

func (h *HTTP) ReadTable(ctx context.Context, ref core.TableRef) (map[string]string, error) {
	path := fmt.Sprintf("/api/v1/elements/by-name/%s/tables/%d?column=%d",
		url.PathEscape(ref.Element), ref.Table, ref.Column)
	var t tableDTO
	if err := h.do(ctx, http.MethodGet, path, nil, &t); err != nil {
		return nil, fmt.Errorf("%s: %w", ref, err)
	}
	if t.Rows == nil {
		t.Rows = make(map[string]string)
	}
	return t.Rows, nil
}

func (h *HTTP) Trigger(ctx context.Context, ref core.ParameterRef, value string) error {
	path := fmt.Sprintf("/api/v1/elements/by-name/%s/parameters/%d", url.PathEscape(ref.Element), ref.Parameter)
	if err := h.do(ctx, http.MethodPost, path, valueDTO{Value: value}, nil); err != nil {
		return fmt.Errorf("%s: %w", ref, err)
	}
	return nil
}

func propertyPath(key, name string) (string, error) {
	agent, elem, err := core.ParseKey(key)
	if err != nil {
		return "", err
	}
	return "/api/v1/elements/" + strconv.Itoa(agent) + "/" + strconv.Itoa(elem) +
		"/properties/" + url.PathEscape(name), nil
}

func (h *HTTP) do(ctx context.Context, method, path string, in, out any) error {
	var payload []byte
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		payload = data
	}

	attempts := h.Retries
	if attempts < 1 {
		attempts = 1
	}

	resp, err := retry.DoWithData(func() (response, error) {
		return h.send(ctx, method, path, payload)
	}, retry.Attempts(uint(attempts)), retry.Delay(h.Backoff), retry.MaxDelay(maxBackoff))
	if err != nil {
		return err
	}

	switch {
	case resp.status == http.StatusNotFound:
		return core.ErrNotFound
	case resp.status < 200 || resp.status > 299:
		return &StatusError{Method: method, Path: path, Status: resp.status, Body: string(bytes.TrimSpace(resp.body))}
	}

	if out == nil || len(resp.body) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (h *HTTP) send(ctx context.Context, method, path string, payload []byte) (response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, h.BaseURL+path, body)
	if err != nil {
		return response{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if h.Token != "" {
		req.Header.Set("Authorization", "Bearer "+h.Token)
	}

	res, err := h.client.Do(req)
	if err != nil {
		h.Logger.Debug("request failed", "method", method, "path", path, "error", err)
		return response{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			h.Logger.Warn("error closing response body", "error", err)
		}
	}()

	data, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return response{}, fmt.Errorf("failed to read response: %w", err)
	}
	if res.StatusCode >= 500 {
		h.Logger.Debug("server error", "method", method, "path", path, "status", res.StatusCode)
		return response{}, &StatusError{Method: method, Path: path, Status: res.StatusCode, Body: string(bytes.TrimSpace(data))}
	}
	return response{status: res.StatusCode, body: data}, nil
}

var _ core.Directory = (*HTTP)(nil)
