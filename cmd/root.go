package cmd

import (
	"log/slog"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/SkylineCommunications/idpcheck/internal/config"
	"github.com/SkylineCommunications/idpcheck/internal/consts"
	"github.com/SkylineCommunications/idpcheck/internal/core"
)

var rootCmd = &cobra.Command{
	Use:   consts.AppName,
	Short: "Reconcile the IDP element property with the IDP managed lists",
	Long: `idpcheck compares the IDP property of every element with the managed and
unmanaged lists of the DataMiner IDP element, logs the discrepancies and
repairs elements that claim to be managed while IDP does not know them.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := core.LevelFromVerbosity(verboseCount)
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: level.SlogLevel(),
		})))
		if level <= core.LevelDebug {
			pterm.EnableDebugMessages()
		}
		return config.LoadEnvFiles()
	},
}

var verboseCount int

// Execute runs the CLI and reports a failure through pterm.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		pterm.Error.Println(err)
	}
	return err
}

func init() {
	// PTerm output to Stderr (to keep Stdout clean for piping)
	pterm.SetDefaultOutput(os.Stderr)
	pterm.Success.Writer = os.Stderr
	pterm.Info.Writer = os.Stderr
	pterm.Error.Writer = os.Stderr
	pterm.Warning.Writer = os.Stderr
	pterm.DefaultHeader.Writer = os.Stderr

	rootCmd.PersistentFlags().StringP("config", "c", consts.DefaultConfigFile, "config file path")
	rootCmd.PersistentFlags().CountVarP(&verboseCount, "verbose", "v", "Increase verbosity level (-v, -vv)")
}

// loadConfig reads the --config file; it only has to exist when the flag was set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.LoadConfig(path, cmd.Flags().Changed("config"))
}
