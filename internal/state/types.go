package state

import (
	"time"

	"github.com/google/uuid"

	"github.com/SkylineCommunications/idpcheck/internal/reconcile"
)

// Run statuses
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Run is one reconciliation pass as kept in the history.
type Run struct {
	ID          string         `json:"id"`
	Timestamp   time.Time      `json:"timestamp"`
	Status      string         `json:"status"` // success, failed
	Error       string         `json:"error,omitempty"`
	DryRun      bool           `json:"dry_run"`
	View        string         `json:"view,omitempty"`
	Scanned     int            `json:"scanned"`
	Skipped     int            `json:"skipped"`
	Outcomes    map[string]int `json:"outcomes"`
	Logged      int            `json:"logged"`
	Listed      int            `json:"listed"`
	Queued      []string       `json:"queued,omitempty"`
	LogFile     string         `json:"log_file,omitempty"`
	FixListFile string         `json:"fix_list_file,omitempty"`
}

// NewRun records a finished run.
func NewRun(report *reconcile.Report, view string) Run {
	outcomes := make(map[string]int)
	for o, n := range report.Counts() {
		outcomes[string(o)] = n
	}
	return Run{
		ID:          uuid.New().String(),
		Timestamp:   report.StartedAt.UTC(),
		Status:      StatusSuccess,
		DryRun:      report.DryRun,
		View:        view,
		Scanned:     len(report.Results),
		Skipped:     report.Skipped,
		Outcomes:    outcomes,
		Logged:      report.Logged(),
		Listed:      report.Listed(),
		Queued:      append([]string(nil), report.Queued...),
		LogFile:     report.LogFile,
		FixListFile: report.FixListFile,
	}
}

// NewFailedRun records a run that aborted with err.
func NewFailedRun(at time.Time, view string, dryRun bool, err error) Run {
	return Run{
		ID:        uuid.New().String(),
		Timestamp: at.UTC(),
		Status:    StatusFailed,
		Error:     err.Error(),
		DryRun:    dryRun,
		View:      view,
	}
}

// State is the run history file.
type State struct {
	Version string    `json:"version"`
	LastRun time.Time `json:"last_run"`
	Runs    []Run     `json:"runs"`
}

func NewState() *State {
	return &State{
		Version: "1.0",
		Runs:    []Run{},
	}
}
