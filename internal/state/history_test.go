package state

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SkylineCommunications/idpcheck/internal/core"
	"github.com/SkylineCommunications/idpcheck/internal/reconcile"
)

func TestHistoryManager(t *testing.T) {
	stateFile := filepath.Join(t.TempDir(), "out", "state.json")
	fs := &core.RealFS{}

	mgr, err := NewManager(stateFile, fs)
	require.NoError(t, err)
	assert.Empty(t, mgr.GetRuns(), "missing file starts empty")

	report := &reconcile.Report{
		StartedAt: time.Date(2024, 3, 8, 10, 15, 30, 0, time.UTC),
		Results: []reconcile.Result{
			{Outcome: reconcile.OutcomeConsistent},
			{Outcome: reconcile.OutcomeAmbiguous, Logged: true, Listed: true, Repaired: true},
		},
		Queued:      []string{"1/2"},
		LogFile:     "out/2024-03-08T10_15_30.txt",
		FixListFile: "out/2024-03-08T10_15_30ListToFix.csv",
	}
	run := NewRun(report, "Encoders")
	require.NoError(t, mgr.AddRun(run))
	require.NoError(t, mgr.AddRun(NewFailedRun(time.Now(), "", false, errors.New("boom"))))

	// New manager instance reads from disk
	mgr2, err := NewManager(stateFile, fs)
	require.NoError(t, err)

	runs := mgr2.GetRuns()
	require.Len(t, runs, 2)
	got := runs[0]
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, StatusSuccess, got.Status)
	assert.Equal(t, "Encoders", got.View)
	assert.Equal(t, 2, got.Scanned)
	assert.Equal(t, 1, got.Logged)
	assert.Equal(t, 1, got.Listed)
	assert.Equal(t, []string{"1/2"}, got.Queued)
	assert.Equal(t, map[string]int{
		"consistent":        1,
		"falsely-managed":   0,
		"falsely-unmanaged": 0,
		"ambiguous":         1,
	}, got.Outcomes)
	assert.Equal(t, "out/2024-03-08T10_15_30ListToFix.csv", got.FixListFile)
	assert.False(t, mgr2.Current.LastRun.IsZero())

	assert.Equal(t, StatusFailed, runs[1].Status)
	assert.Equal(t, "boom", runs[1].Error)
}

func TestGetRunAndLast(t *testing.T) {
	mgr, err := NewManager("state.json", core.NewMemFS())
	require.NoError(t, err)

	for _, r := range []Run{
		{ID: "aaaa-1", Status: StatusSuccess},
		{ID: "aaab-2", Status: StatusSuccess},
		{ID: "bbbb-3", Status: StatusFailed},
		{ID: "cccc-4", Status: StatusSuccess},
	} {
		require.NoError(t, mgr.AddRun(r))
	}

	run, err := mgr.GetRun("cccc-4")
	require.NoError(t, err)
	assert.Equal(t, "cccc-4", run.ID)

	run, err = mgr.GetRun("aaab")
	require.NoError(t, err)
	assert.Equal(t, "aaab-2", run.ID)

	_, err = mgr.GetRun("aaa")
	assert.ErrorContains(t, err, "ambiguous")

	_, err = mgr.GetRun("zzz")
	assert.ErrorContains(t, err, "run not found")

	last := mgr.Last(2)
	require.Len(t, last, 2)
	assert.Equal(t, "cccc-4", last[0].ID)
	assert.Equal(t, "aaab-2", last[1].ID, "failed runs are skipped")
}

func TestNewManager_CorruptFile(t *testing.T) {
	fs := core.NewMemFS()
	require.NoError(t, fs.WriteFile("state.json", []byte("{not json"), 0644))

	_, err := NewManager("state.json", fs)
	assert.Error(t, err)
}
