package cmd

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/SkylineCommunications/idpcheck/internal/consts"
	"github.com/SkylineCommunications/idpcheck/internal/core"
	"github.com/SkylineCommunications/idpcheck/internal/reconcile"
	"github.com/SkylineCommunications/idpcheck/internal/state"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "View the history of IDP check runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if output, _ := cmd.Flags().GetString("output"); output != "" {
			cfg.OutputDir = output
		}

		mgr, err := state.NewManager(consts.GetStateFilePath(cfg.OutputDir), &core.RealFS{})
		if err != nil {
			return err
		}

		history := mgr.GetRuns()
		if len(history) == 0 {
			pterm.Info.Println("No runs recorded yet.")
			return nil
		}

		pterm.DefaultHeader.Println("Run Log")
		return pterm.DefaultTable.WithHasHeader().WithData(historyTable(history)).Render()
	},
}

// historyTable renders runs latest first.
func historyTable(history []state.Run) [][]string {
	tableData := [][]string{{"ID", "Date (UTC)", "Status", "Scanned", "Discrepancies", "To Fix", "Queued"}}

	for i := len(history) - 1; i >= 0; i-- {
		run := history[i]

		statusStyle := pterm.NewStyle(pterm.FgGreen)
		status := run.Status
		if run.Status == state.StatusFailed {
			statusStyle = pterm.NewStyle(pterm.FgRed)
		} else if run.DryRun {
			statusStyle = pterm.NewStyle(pterm.FgYellow)
			status += " (dry run)"
		}

		tableData = append(tableData, []string{
			shortID(run.ID),
			run.Timestamp.Format("2006-01-02 15:04:05"),
			statusStyle.Sprint(status),
			fmt.Sprintf("%d", run.Scanned),
			fmt.Sprintf("%d", run.Logged),
			fmt.Sprintf("%d", run.Outcomes[string(reconcile.OutcomeAmbiguous)]),
			strings.Join(run.Queued, consts.RemanageSeparator),
		})
	}
	return tableData
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func init() {
	rootCmd.AddCommand(logCmd)
	logCmd.Flags().String("output", "", "Folder holding the audit files and run history")
}
