package cmd

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/SkylineCommunications/idpcheck/internal/audit"
	"github.com/SkylineCommunications/idpcheck/internal/consts"
	"github.com/SkylineCommunications/idpcheck/internal/core"
	"github.com/SkylineCommunications/idpcheck/internal/state"
)

var diffCmd = &cobra.Command{
	Use:   "diff [from-run] [to-run]",
	Short: "Show how the fix list changed between two runs",
	Long: `Compares the ListToFix.csv files (or the discrepancy logs with --log) of two
recorded runs. Run ids may be abbreviated. Without arguments the two most
recent successful runs are compared.`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if output, _ := cmd.Flags().GetString("output"); output != "" {
			cfg.OutputDir = output
		}
		useLog, _ := cmd.Flags().GetBool("log")

		fs := &core.RealFS{}
		mgr, err := state.NewManager(consts.GetStateFilePath(cfg.OutputDir), fs)
		if err != nil {
			return err
		}

		from, to, err := selectRuns(mgr, args)
		if err != nil {
			return err
		}

		cmp, err := compareRuns(fs, from, to, useLog)
		if err != nil {
			return err
		}

		pterm.DefaultSection.Printf("%s → %s", shortID(from.ID), shortID(to.ID))
		if !cmp.Changed() {
			pterm.Success.Println("No changes.")
			return nil
		}
		for _, line := range splitLines(cmp.Diff) {
			switch {
			case len(line) > 0 && line[0] == '+':
				pterm.FgGreen.Println(line)
			case len(line) > 0 && line[0] == '-':
				pterm.FgRed.Println(line)
			default:
				pterm.Println(line)
			}
		}
		pterm.Info.Printf("%d added, %d removed\n", cmp.Stats.Added, cmp.Stats.Removed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(diffCmd)
	diffCmd.Flags().Bool("log", false, "Compare the discrepancy logs instead of the fix lists")
	diffCmd.Flags().String("output", "", "Folder holding the audit files and run history")
}

// selectRuns resolves the runs to compare; older run first.
func selectRuns(mgr *state.Manager, args []string) (state.Run, state.Run, error) {
	switch len(args) {
	case 2:
		from, err := mgr.GetRun(args[0])
		if err != nil {
			return state.Run{}, state.Run{}, err
		}
		to, err := mgr.GetRun(args[1])
		if err != nil {
			return state.Run{}, state.Run{}, err
		}
		return from, to, nil
	case 1:
		from, err := mgr.GetRun(args[0])
		if err != nil {
			return state.Run{}, state.Run{}, err
		}
		last := mgr.Last(1)
		if len(last) == 0 {
			return state.Run{}, state.Run{}, fmt.Errorf("no successful runs recorded")
		}
		return from, last[0], nil
	default:
		last := mgr.Last(2)
		if len(last) < 2 {
			return state.Run{}, state.Run{}, fmt.Errorf("need two successful runs to compare, found %d", len(last))
		}
		return last[1], last[0], nil
	}
}

func compareRuns(fs core.FileSystem, from, to state.Run, useLog bool) (audit.Comparison, error) {
	if useLog {
		return audit.DiffFiles(fs, from.LogFile, to.LogFile)
	}
	return audit.DiffFiles(fs, from.FixListFile, to.FixListFile)
}

func splitLines(s string) []string {
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}
