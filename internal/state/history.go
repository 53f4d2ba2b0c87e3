package state

import (
	"fmt"
	"strings"
)

// AddRun appends a run to the history and saves state.
func (m *Manager) AddRun(run Run) error {
	m.mu.Lock()
	m.Current.Runs = append(m.Current.Runs, run)
	m.mu.Unlock()

	return m.Save()
}

// GetRuns returns a copy of the history, oldest first.
func (m *Manager) GetRuns() []Run {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// Return a copy to avoid race conditions
	history := make([]Run, len(m.Current.Runs))
	copy(history, m.Current.Runs)
	return history
}

// GetRun finds a run by id or by an unambiguous id prefix.
func (m *Manager) GetRun(id string) (Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matches []Run
	for _, run := range m.Current.Runs {
		if run.ID == id {
			return run, nil
		}
		if id != "" && strings.HasPrefix(run.ID, id) {
			matches = append(matches, run)
		}
	}
	switch len(matches) {
	case 0:
		return Run{}, fmt.Errorf("run not found: %s", id)
	case 1:
		return matches[0], nil
	default:
		return Run{}, fmt.Errorf("run id %s is ambiguous (%d matches)", id, len(matches))
	}
}

// Last returns up to n most recent successful runs, newest first.
func (m *Manager) Last(n int) []Run {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Run
	for i := len(m.Current.Runs) - 1; i >= 0 && len(out) < n; i-- {
		if m.Current.Runs[i].Status == StatusSuccess {
			out = append(out, m.Current.Runs[i])
		}
	}
	return out
}
