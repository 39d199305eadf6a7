package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/willibrandon/projsys/cmd/projsys/output"
)

var rootCmd = &cobra.Command{
	Use:   "projsys",
	Short: "Inspect MSBuild build logs, project trees, imports and dependencies",
	Long: `projsys reads the data a managed project system works with: binary build
logs, project tree fixtures, the import graph of a project file and the
dependency graph recorded in project.assets.json.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

// Console is the global console for CLI commands
var Console *output.Console

// Globals holds the persistent flag values shared by every command
var Globals = &Options{}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with ctx available to every command
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	Console = output.DefaultConsole()

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&Globals.ConfigFile, "config", "", "Configuration file to use (default: projsys.yaml in the working directory or ~/.projsys)")
	flags.StringVar(&Globals.LogLevel, "log-level", "", "Log level (debug, info, warn, error); overrides the configuration file")
	flags.StringVar(&Globals.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while the command runs")
	flags.StringVar(&Globals.Verbosity, "verbosity", "normal", "Display verbosity (quiet, normal, detailed, diagnostic)")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		v, err := output.ParseVerbosity(Globals.Verbosity)
		if err != nil {
			return err
		}
		Console.SetVerbosity(v)
		return nil
	}
}

// SetupVersion configures version information after variables are set
func SetupVersion() {
	rootCmd.SetVersionTemplate(GetFullVersion() + "\n")
	rootCmd.Version = GetVersion()
}

// AddCommand adds a command to the root command
func AddCommand(cmd *cobra.Command) {
	rootCmd.AddCommand(cmd)
}
