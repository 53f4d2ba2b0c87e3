package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"
	"time"

	"github.com/SkylineCommunications/idpcheck/internal/core"
)

// Manager manages reading/writing the state file.
// It uses a Mutex for thread-safety.
type Manager struct {
	FilePath string
	Current  *State
	FS       core.FileSystem
	mu       sync.RWMutex
}

// NewManager creates a new state manager and loads the existing file.
// A missing file starts an empty history; a corrupt one is an error.
func NewManager(path string, fsys core.FileSystem) (*Manager, error) {
	mgr := &Manager{
		FilePath: path,
		Current:  NewState(),
		FS:       fsys,
	}

	if err := mgr.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("could not load state file %s: %w", path, err)
	}

	return mgr, nil
}

// Load reads state file from abstract FS.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := m.FS.ReadFile(m.FilePath)
	if err != nil {
		return err
	}

	loaded := NewState()
	if err := json.Unmarshal(data, loaded); err != nil {
		return err
	}
	m.Current = loaded
	return nil
}

// Save writes current state to abstract FS.
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Current.LastRun = time.Now().UTC()

	data, err := json.MarshalIndent(m.Current, "", "  ")
	if err != nil {
		return err
	}

	// Ensure directory exists
	if err := m.FS.MkdirAll(filepath.Dir(m.FilePath), 0755); err != nil {
		return err
	}

	return m.FS.WriteFile(m.FilePath, data, 0644)
}
