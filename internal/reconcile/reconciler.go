package reconcile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/SkylineCommunications/idpcheck/internal/config"
	"github.com/SkylineCommunications/idpcheck/internal/consts"
	"github.com/SkylineCommunications/idpcheck/internal/core"
)

// Sink persists the audit buffers of a run and returns the written path.
type Sink interface {
	WriteLog(stamp string, data []byte) (string, error)
	WriteFixList(stamp string, data []byte) (string, error)
}

// Options configures a Reconciler.
type Options struct {
	Policy

	ListToFix bool
	Fix       bool
	Remanage  bool

	View     string
	Filter   *core.Filter
	Property string

	ManagedTable   core.TableRef
	UnmanagedTable core.TableRef
	RefreshButton  core.ParameterRef
	ManageButton   core.ParameterRef

	RemanageDelay time.Duration
	FixListFormat *core.LineTemplate
}

// OptionsFromConfig compiles the filter and fix list template of cfg.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	filter, err := core.CompileFilter(cfg.Filter)
	if err != nil {
		return Options{}, err
	}
	tmpl, err := core.ParseLineTemplate(cfg.FixListFormat)
	if err != nil {
		return Options{}, err
	}

	return Options{
		Policy: Policy{
			LogAll:                          cfg.LogAll,
			IgnorePropertyFalseAndUnmanaged: cfg.IgnorePropertyFalseAndUnmanaged,
		},
		ListToFix:      cfg.ListToFix,
		Fix:            cfg.Fix,
		Remanage:       cfg.Remanage,
		View:           cfg.View,
		Filter:         filter,
		Property:       cfg.Property,
		ManagedTable:   cfg.ManagedTable(),
		UnmanagedTable: cfg.UnmanagedTable(),
		RefreshButton:  cfg.RefreshButton(),
		ManageButton:   cfg.ManageButton(),
		RemanageDelay:  cfg.RemanageDelay,
		FixListFormat:  tmpl,
	}, nil
}

// Reconciler compares element property flags with the IDP lists and repairs
// elements that claim to be managed while IDP knows nothing about them.
type Reconciler struct {
	Directory core.Directory
	Sink      Sink
	Options   Options
}

func NewReconciler(dir core.Directory, sink Sink, opts Options) *Reconciler {
	return &Reconciler{Directory: dir, Sink: sink, Options: opts}
}

// Stamp formats t the way audit file names expect.
func Stamp(t time.Time) string {
	return t.UTC().Format(consts.FileStampLayout)
}

// Run executes one reconciliation pass. Any directory or output error aborts
// the run; there is no partial recovery.
func (r *Reconciler) Run(ctx *core.SystemContext) (*Report, error) {
	opts := r.Options
	log := ctx.Logger
	now := ctx.Now()

	report := &Report{
		StartedAt: now,
		Stamp:     Stamp(now),
		DryRun:    ctx.DryRun,
	}

	managed, err := r.Directory.ReadTable(ctx, opts.ManagedTable)
	if err != nil {
		return nil, fmt.Errorf("reading managed list: %w", err)
	}
	unmanaged, err := r.Directory.ReadTable(ctx, opts.UnmanagedTable)
	if err != nil {
		return nil, fmt.Errorf("reading unmanaged list: %w", err)
	}
	report.Managed = len(managed)
	report.Unmanaged = len(unmanaged)
	log.Debug("loaded IDP lists", "managed", len(managed), "unmanaged", len(unmanaged))

	elements, err := r.Directory.ListElements(ctx, opts.View)
	if err != nil {
		return nil, fmt.Errorf("listing elements: %w", err)
	}
	log.Debug("scanning elements", "count", len(elements), "view", opts.View)

	var logBuf, fixBuf bytes.Buffer
	enc := json.NewEncoder(&logBuf)
	enc.SetEscapeHTML(false)
	queued := make(map[string]bool)

	for _, element := range elements {
		key := element.Key()

		value, err := r.Directory.GetProperty(ctx, key, opts.Property)
		if err != nil {
			return nil, fmt.Errorf("reading %s property of %s: %w", opts.Property, element.Name, err)
		}

		ok, err := opts.Filter.Match(core.FilterEnv{
			Key:       key,
			AgentID:   element.AgentID,
			ElementID: element.ElementID,
			Name:      element.Name,
			Property:  value,
		})
		if err != nil {
			return nil, err
		}
		if !ok {
			report.Skipped++
			log.Trace("skipped by filter", "element", key)
			continue
		}

		nameInIDP, isManaged := managed[key]
		if !isManaged {
			nameInIDP = consts.NotManagedSentinel
		}
		nameInUnmanaged, isUnmanaged := unmanaged[key]
		if !isUnmanaged {
			nameInUnmanaged = consts.NotUnmanagedSentinel
		}

		claims := PropertyClaimsManaged(value)
		m := Membership{Managed: isManaged, Unmanaged: isUnmanaged}
		res := Result{
			Element:    element,
			Property:   value,
			Membership: m,
			Outcome:    Classify(claims, m),
		}

		if opts.ShouldLog(claims, m) {
			rec := Record{
				ID:              key,
				Name:            element.Name,
				NameInIDP:       nameInIDP,
				NameInUnmanaged: nameInUnmanaged,
				IDPProperty:     value,
			}
			if err := enc.Encode(rec); err != nil {
				return nil, fmt.Errorf("encoding record of %s: %w", key, err)
			}
			res.Logged = true
		}

		if NeedsRepair(claims, m) {
			if opts.Fix {
				if err := r.repair(ctx, element); err != nil {
					return nil, err
				}
				if !ctx.DryRun && !queued[key] {
					queued[key] = true
					report.Queued = append(report.Queued, key)
					res.Repaired = true
				}
			}

			if opts.ListToFix {
				line, err := opts.FixListFormat.Render(FixListLine{
					ID:        key,
					Name:      element.Name,
					AgentID:   element.AgentID,
					ElementID: element.ElementID,
				})
				if err != nil {
					return nil, fmt.Errorf("rendering fix list line of %s: %w", key, err)
				}
				fixBuf.WriteString(line)
				fixBuf.WriteByte('\n')
				res.Listed = true
			}
		}

		report.Results = append(report.Results, res)
	}

	if ctx.DryRun {
		log.Info("Dry run: skipping IDP refresh")
	} else {
		if err := r.Directory.Trigger(ctx, opts.RefreshButton, consts.RefreshValue); err != nil {
			return nil, fmt.Errorf("refreshing IDP: %w", err)
		}
		report.Refreshed = true
	}

	if report.LogFile, err = r.Sink.WriteLog(report.Stamp, logBuf.Bytes()); err != nil {
		return nil, fmt.Errorf("writing audit log: %w", err)
	}
	if fixBuf.Len() > 0 {
		if report.FixListFile, err = r.Sink.WriteFixList(report.Stamp, fixBuf.Bytes()); err != nil {
			return nil, fmt.Errorf("writing fix list: %w", err)
		}
	}

	if opts.Remanage && len(report.Queued) > 0 {
		if err := ctx.Sleep(opts.RemanageDelay); err != nil {
			return nil, err
		}
		ids := strings.Join(report.Queued, consts.RemanageSeparator)
		log.Info(fmt.Sprintf("Setting %s", ids), "count", len(report.Queued))
		if err := r.Directory.Trigger(ctx, opts.ManageButton, ids); err != nil {
			return nil, fmt.Errorf("re-managing elements: %w", err)
		}
		report.Remanaged = true
	}

	return report, nil
}

func (r *Reconciler) repair(ctx *core.SystemContext, element core.Element) error {
	if ctx.DryRun {
		ctx.Logger.Info(fmt.Sprintf("Would clean up %s", element.Name), "element", element.Key())
		return nil
	}
	if err := r.Directory.SetProperty(ctx, element.Key(), r.Options.Property, ""); err != nil {
		return fmt.Errorf("cleaning up %s: %w", element.Name, err)
	}
	ctx.Logger.Info(fmt.Sprintf("Cleaning up %s", element.Name), "element", element.Key())
	return nil
}
