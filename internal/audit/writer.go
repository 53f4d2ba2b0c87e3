package audit

import (
	"fmt"
	"path/filepath"

	"github.com/SkylineCommunications/idpcheck/internal/consts"
	"github.com/SkylineCommunications/idpcheck/internal/core"
)

// Writer stores the audit files of a run under Dir.
type Writer struct {
	FS  core.FileSystem
	Dir string
}

func NewWriter(fs core.FileSystem, dir string) *Writer {
	return &Writer{FS: fs, Dir: dir}
}

// LogFileName returns "<stamp>.txt".
func LogFileName(stamp string) string {
	return stamp + consts.LogFileSuffix
}

// FixListFileName returns "<stamp>ListToFix.csv".
func FixListFileName(stamp string) string {
	return stamp + consts.FixListFileSuffix
}

// WriteLog writes the discrepancy log. It is written on every run, even empty.
func (w *Writer) WriteLog(stamp string, data []byte) (string, error) {
	return w.write(LogFileName(stamp), data)
}

// WriteFixList writes the list of elements to fix.
func (w *Writer) WriteFixList(stamp string, data []byte) (string, error) {
	return w.write(FixListFileName(stamp), data)
}

func (w *Writer) write(name string, data []byte) (string, error) {
	if err := w.FS.MkdirAll(w.Dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}
	path := filepath.Join(w.Dir, name)
	if err := w.FS.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
