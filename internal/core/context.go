package core

import (
	"context"
	"io"
	"os"
	"time"
)

// SystemContext carries everything a run needs besides its configuration.
// It wraps the standard context so it can be handed to blocking calls directly.
type SystemContext struct {
	context.Context

	Logger Logger
	UI     UI
	FS     FileSystem

	// DryRun disables property writes and triggers; audit files are still written.
	DryRun bool

	// Now is the run clock. Audit file names are derived from it.
	Now func() time.Time

	Stdout io.Writer
	Stderr io.Writer
}

// NewSystemContext creates a context backed by the real filesystem.
func NewSystemContext(ctx context.Context, dryRun bool) *SystemContext {
	if ctx == nil {
		ctx = context.Background()
	}
	return &SystemContext{
		Context: ctx,
		Logger:  NewDefaultLogger(os.Stderr, LevelInfo),
		UI:      &NoOpUI{},
		FS:      &RealFS{},
		DryRun:  dryRun,
		Now:     time.Now,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}
}

// Sleep pauses for d or until the context is cancelled.
func (c *SystemContext) Sleep(d time.Duration) error {
	if d <= 0 {
		return c.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-c.Done():
		return c.Err()
	case <-t.C:
		return nil
	}
}
