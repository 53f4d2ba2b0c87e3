package reconcile

import (
	"time"

	"github.com/SkylineCommunications/idpcheck/internal/core"
)

// Record is one line of the audit log.
type Record struct {
	ID              string `json:"Id"`
	Name            string `json:"Name"`
	NameInIDP       string `json:"NameInIDP"`
	NameInUnmanaged string `json:"NameInUnmanaged"`
	IDPProperty     string `json:"IDPProperty"`
}

// FixListLine is the data a fix list template is rendered with.
type FixListLine struct {
	ID        string
	Name      string
	AgentID   int
	ElementID int
}

// Result is what happened to a single element.
type Result struct {
	Element    core.Element
	Property   string
	Membership Membership
	Outcome    Outcome

	Logged   bool
	Listed   bool // added to the fix list
	Repaired bool // property cleared and queued for re-management
}

// Report summarizes a run.
type Report struct {
	StartedAt time.Time
	Stamp     string
	DryRun    bool

	Managed   int // rows in the managed list
	Unmanaged int // rows in the unmanaged list
	Skipped   int // elements rejected by the filter

	Results []Result
	Queued  []string

	LogFile     string
	FixListFile string

	Refreshed bool
	Remanaged bool
}

// Counts returns the number of results per outcome.
func (r *Report) Counts() map[Outcome]int {
	counts := make(map[Outcome]int, len(Outcomes))
	for _, o := range Outcomes {
		counts[o] = 0
	}
	for _, res := range r.Results {
		counts[res.Outcome]++
	}
	return counts
}

// Logged returns how many records went to the audit log.
func (r *Report) Logged() int {
	n := 0
	for _, res := range r.Results {
		if res.Logged {
			n++
		}
	}
	return n
}

// Listed returns how many elements matched the repair condition and were
// written to the fix list.
func (r *Report) Listed() int {
	n := 0
	for _, res := range r.Results {
		if res.Listed {
			n++
		}
	}
	return n
}
