package core

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// FileSystem is an interface for the filesystem operations audit output and
// run history need.
type FileSystem interface {
	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm os.FileMode) error
	MkdirAll(path string, perm os.FileMode) error
}

// RealFS is a real filesystem implementation using os package
type RealFS struct{}

func (f *RealFS) Stat(name string) (fs.FileInfo, error) { return os.Stat(name) }
func (f *RealFS) ReadFile(name string) ([]byte, error)  { return os.ReadFile(name) }
func (f *RealFS) WriteFile(name string, data []byte, perm os.FileMode) error {
	return os.WriteFile(name, data, perm)
}
func (f *RealFS) MkdirAll(path string, perm os.FileMode) error { return os.MkdirAll(path, perm) }

// MemFS keeps files in memory. Directories exist once created with MkdirAll;
// WriteFile into a missing directory fails like the real filesystem does.
type MemFS struct {
	mu    sync.Mutex
	Files map[string][]byte
	Dirs  map[string]bool
	// FailWrite makes every WriteFile return this error when set.
	FailWrite error
}

func NewMemFS() *MemFS {
	return &MemFS{
		Files: make(map[string][]byte),
		Dirs:  map[string]bool{".": true, "/": true},
	}
}

func (m *MemFS) Stat(name string) (fs.FileInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	name = filepath.Clean(name)
	if data, ok := m.Files[name]; ok {
		return &memFileInfo{name: filepath.Base(name), size: int64(len(data))}, nil
	}
	if m.Dirs[name] {
		return &memFileInfo{name: filepath.Base(name), dir: true}, nil
	}
	return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrNotExist}
}

func (m *MemFS) ReadFile(name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if data, ok := m.Files[filepath.Clean(name)]; ok {
		return append([]byte(nil), data...), nil
	}
	return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
}

func (m *MemFS) WriteFile(name string, data []byte, perm os.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrite != nil {
		return m.FailWrite
	}
	name = filepath.Clean(name)
	if !m.Dirs[filepath.Dir(name)] {
		return &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	m.Files[name] = append([]byte(nil), data...)
	return nil
}

func (m *MemFS) MkdirAll(path string, perm os.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for p := filepath.Clean(path); ; p = filepath.Dir(p) {
		m.Dirs[p] = true
		if p == filepath.Dir(p) {
			return nil
		}
	}
}

// Names returns the stored file names in sorted order.
func (m *MemFS) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.Files))
	for name := range m.Files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type memFileInfo struct {
	name string
	size int64
	dir  bool
}

func (m *memFileInfo) Name() string { return m.name }
func (m *memFileInfo) Size() int64  { return m.size }
func (m *memFileInfo) Mode() fs.FileMode {
	if m.dir {
		return fs.ModeDir | 0755
	}
	return 0644
}
func (m *memFileInfo) ModTime() time.Time { return time.Time{} }
func (m *memFileInfo) IsDir() bool        { return m.dir }
func (m *memFileInfo) Sys() interface{}   { return nil }
