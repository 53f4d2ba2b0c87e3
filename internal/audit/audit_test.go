package audit

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SkylineCommunications/idpcheck/internal/core"
)

func TestWriter_CreatesDirAndFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "IDP Investigation")
	w := NewWriter(&core.RealFS{}, dir)

	logPath, err := w.WriteLog("2024-03-08T10_15_30", nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "2024-03-08T10_15_30.txt"), logPath)

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Empty(t, data, "log is written even when empty")

	listPath, err := w.WriteFixList("2024-03-08T10_15_30", []byte("1/2,B\n"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "2024-03-08T10_15_30ListToFix.csv"), listPath)

	data, err = os.ReadFile(listPath)
	require.NoError(t, err)
	assert.Equal(t, "1/2,B\n", string(data))
}

func TestWriter_Failures(t *testing.T) {
	fs := core.NewMemFS()
	fs.FailWrite = errors.New("disk full")
	w := NewWriter(fs, "out")

	_, err := w.WriteLog("stamp", []byte("x"))
	assert.ErrorContains(t, err, "disk full")

	// Output dir cannot be created below a regular file
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0644))
	w = NewWriter(&core.RealFS{}, filepath.Join(file, "sub"))
	_, err = w.WriteLog("stamp", nil)
	assert.ErrorContains(t, err, "failed to create output dir")
}

func TestDiffFiles(t *testing.T) {
	fs := core.NewMemFS()
	require.NoError(t, fs.MkdirAll("out", 0755))
	require.NoError(t, fs.WriteFile("out/a.csv", []byte("1/1,A\n1/2,B\n"), 0644))
	require.NoError(t, fs.WriteFile("out/b.csv", []byte("1/2,B\n"), 0644))

	cmp, err := DiffFiles(fs, "out/a.csv", "out/b.csv")
	require.NoError(t, err)
	assert.True(t, cmp.Changed())
	assert.Equal(t, core.DiffStats{Removed: 1}, cmp.Stats)
	assert.Contains(t, cmp.Diff, "- 1/1,A")

	// A run without a fix list compares as empty
	cmp, err = DiffFiles(fs, "", "out/b.csv")
	require.NoError(t, err)
	assert.Equal(t, core.DiffStats{Added: 1}, cmp.Stats)

	cmp, err = DiffFiles(fs, "out/missing.csv", "out/missing.csv")
	require.NoError(t, err)
	assert.False(t, cmp.Changed())
}
