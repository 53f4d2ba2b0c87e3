package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/SkylineCommunications/idpcheck/internal/adapters/ui"
	"github.com/SkylineCommunications/idpcheck/internal/audit"
	"github.com/SkylineCommunications/idpcheck/internal/config"
	"github.com/SkylineCommunications/idpcheck/internal/consts"
	"github.com/SkylineCommunications/idpcheck/internal/core"
	"github.com/SkylineCommunications/idpcheck/internal/directory"
	"github.com/SkylineCommunications/idpcheck/internal/reconcile"
	"github.com/SkylineCommunications/idpcheck/internal/state"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Compare element IDP properties with the IDP lists and repair them",
	Long: `Reads the managed and unmanaged lists of the IDP element, compares every
element's IDP property with them, writes <stamp>.txt with the discrepancies and
<stamp>ListToFix.csv with the elements that claim to be managed while IDP does
not know them. Unless disabled, those elements get their property cleared and
are handed to IDP again.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := applyCheckFlags(cmd, cfg); err != nil {
			return err
		}
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		// Catch Ctrl+C so the re-manage pause can be interrupted
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()

		sys := core.NewSystemContext(ctx, dryRun)
		sys.Logger = core.NewDefaultLogger(os.Stderr, core.LevelFromVerbosity(verboseCount))
		sys.UI = ui.NewPtermUI()

		report, err := runCheck(sys, cfg)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				sys.UI.Warning("Run cancelled by user.")
				os.Exit(130)
			}
			return err
		}

		return printReport(sys.UI, report)
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().Bool("dry-run", false, "Only report; do not write properties or trigger IDP")
	checkCmd.Flags().String("view", "", "Only check elements in this view")
	checkCmd.Flags().String("filter", "", `Expression selecting elements, e.g. 'Name startsWith "ENC"'`)
	checkCmd.Flags().Bool("log-all", false, "Log every element, not only discrepancies")
	checkCmd.Flags().Bool("no-fix", false, "Do not clear properties or re-manage elements")
	checkCmd.Flags().String("output", "", "Folder for the audit files")
}

func applyCheckFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("view") {
		cfg.View, _ = flags.GetString("view")
	}
	if flags.Changed("filter") {
		cfg.Filter, _ = flags.GetString("filter")
	}
	if flags.Changed("log-all") {
		cfg.LogAll, _ = flags.GetBool("log-all")
	}
	if noFix, _ := flags.GetBool("no-fix"); noFix {
		cfg.Fix = false
		cfg.Remanage = false
	}
	if flags.Changed("output") {
		cfg.OutputDir, _ = flags.GetString("output")
	}
	return cfg.Validate()
}

// runCheck executes one reconciliation and records it in the run history.
func runCheck(sys *core.SystemContext, cfg *config.Config) (*reconcile.Report, error) {
	opts, err := reconcile.OptionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	dir, err := directory.New(cfg.Directory, sys.FS, sys.Logger)
	if err != nil {
		return nil, err
	}

	history, err := state.NewManager(consts.GetStateFilePath(cfg.OutputDir), sys.FS)
	if err != nil {
		sys.Logger.Warn(fmt.Sprintf("Run history unavailable: %v", err))
		history = nil
	}

	rec := reconcile.NewReconciler(dir, audit.NewWriter(sys.FS, cfg.OutputDir), opts)
	report, runErr := rec.Run(sys)

	if history != nil {
		var run state.Run
		if runErr != nil {
			run = state.NewFailedRun(sys.Now(), cfg.View, sys.DryRun, runErr)
		} else {
			run = state.NewRun(report, cfg.View)
		}
		if err := history.AddRun(run); err != nil {
			sys.Logger.Warn(fmt.Sprintf("Could not save run history: %v", err))
		}
	}

	return report, runErr
}

func printReport(out core.UI, report *reconcile.Report) error {
	out.Section("IDP check " + report.Stamp)

	counts := report.Counts()
	rows := [][]string{{"OUTCOME", "ELEMENTS"}}
	for _, o := range reconcile.Outcomes {
		rows = append(rows, []string{string(o), strconv.Itoa(counts[o])})
	}
	if err := out.Table(rows); err != nil {
		return err
	}

	if report.Skipped > 0 {
		out.Info(fmt.Sprintf("%d elements skipped by filter", report.Skipped))
	}
	out.Info(fmt.Sprintf("Log: %s (%d records)", report.LogFile, report.Logged()))
	if report.FixListFile != "" {
		out.Warning(fmt.Sprintf("Fix list: %s (%d elements)", report.FixListFile, report.Listed()))
	}

	switch {
	case report.DryRun && report.Listed() > 0:
		out.Warning(fmt.Sprintf("Dry run: %d elements would be cleaned up.", report.Listed()))
	case report.Remanaged:
		out.Success(fmt.Sprintf("%d elements cleaned up and handed to IDP.", len(report.Queued)))
	case len(report.Queued) > 0:
		out.Success(fmt.Sprintf("%d elements cleaned up.", len(report.Queued)))
	case report.Logged() > 0:
		out.Info("No elements cleaned up.")
	default:
		out.Success("All element properties agree with IDP.")
	}
	return nil
}
