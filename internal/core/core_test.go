package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestElementKey(t *testing.T) {
	e := Element{AgentID: 346, ElementID: 12, Name: "Encoder"}
	assert.Equal(t, "346/12", e.Key())

	agent, elem, err := ParseKey("346/12")
	require.NoError(t, err)
	assert.Equal(t, 346, agent)
	assert.Equal(t, 12, elem)

	for _, bad := range []string{"", "346", "a/1", "1/b"} {
		_, _, err := ParseKey(bad)
		assert.Error(t, err, bad)
	}
}

func TestFilter(t *testing.T) {
	f, err := CompileFilter(`Name startsWith "ENC" && AgentID == 1`)
	require.NoError(t, err)

	ok, err := f.Match(FilterEnv{Name: "ENC-01", AgentID: 1})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.Match(FilterEnv{Name: "DEC-01", AgentID: 1})
	require.NoError(t, err)
	assert.False(t, ok)

	// Empty filter accepts everything
	none, err := CompileFilter("")
	require.NoError(t, err)
	ok, err = none.Match(FilterEnv{})
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = CompileFilter(`Name +`)
	assert.Error(t, err)

	// Non boolean expressions are rejected at compile time
	_, err = CompileFilter(`Name`)
	assert.Error(t, err)
}

func TestLineTemplate(t *testing.T) {
	tmpl, err := ParseLineTemplate("{{.ID}},{{.Name | upper}}")
	require.NoError(t, err)

	out, err := tmpl.Render(struct{ ID, Name string }{"1/2", "enc"})
	require.NoError(t, err)
	assert.Equal(t, "1/2,ENC", out)

	_, err = ParseLineTemplate("{{.ID")
	assert.Error(t, err)
}

func TestGenerateDiff(t *testing.T) {
	out, stats := GenerateDiff("1/1,A\n1/2,B\n", "1/2,B\n1/3,C\n")
	assert.Contains(t, out, "- 1/1,A")
	assert.Contains(t, out, "  1/2,B")
	assert.Contains(t, out, "+ 1/3,C")
	assert.Equal(t, DiffStats{Added: 1, Removed: 1}, stats)

	same, stats := GenerateDiff("x\n", "x\n")
	assert.Equal(t, "  x\n", same)
	assert.Equal(t, DiffStats{}, stats)
}

func TestMemFS(t *testing.T) {
	fs := NewMemFS()

	err := fs.WriteFile("out/a.txt", []byte("a"), 0644)
	assert.Error(t, err, "parent directory must exist")

	require.NoError(t, fs.MkdirAll("out", 0755))
	require.NoError(t, fs.WriteFile("out/a.txt", []byte("a"), 0644))

	data, err := fs.ReadFile("out/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "a", string(data))

	info, err := fs.Stat("out")
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	fs.FailWrite = errors.New("disk full")
	assert.Error(t, fs.WriteFile("out/b.txt", nil, 0644))
}

func TestSystemContextSleep(t *testing.T) {
	sys := NewSystemContext(context.Background(), false)
	assert.NoError(t, sys.Sleep(0))
	assert.NoError(t, sys.Sleep(time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sys = NewSystemContext(ctx, false)
	assert.ErrorIs(t, sys.Sleep(time.Hour), context.Canceled)
}

func TestRecordingLogger(t *testing.T) {
	log := NewRecordingLogger()
	log.Info("one")
	log.With("k", "v").Warn("two")

	assert.Equal(t, []string{"one"}, log.Messages(LevelInfo))
	assert.Equal(t, []string{"two"}, log.Messages(LevelWarn))
	assert.Equal(t, []any{"k", "v"}, (*log.Entries)[1].Args)
}
