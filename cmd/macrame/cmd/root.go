package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bianoble/macrame/internal/buildsys"
	"github.com/bianoble/macrame/internal/logger"
	"github.com/bianoble/macrame/internal/settings"
)

// Build-time variables set via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Global flags.
var (
	projectDir string
	logLevel   string
	logJSON    bool
	verbose    bool
	quiet      bool
	noColor    bool
)

// cfg holds the settings of the current invocation, loaded before any
// subcommand runs.
var cfg *settings.Settings

var rootCmd = &cobra.Command{
	Use:   "macrame",
	Short: "Configure and build C/C++ projects with make",
	Long: `macrame layers a built-in default configuration, the project's macrame.toml
and the selected port's config.toml into one build environment. It checks the
required tools, exports the environment, writes a generated Makefile with the
declared rules and runs make against it.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := settings.Load()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("log-level") {
			s.LogLevel = logLevel
		}
		if cmd.Flags().Changed("log-json") {
			s.LogJSON = logJSON
		}
		if verbose && !cmd.Flags().Changed("log-level") {
			s.LogLevel = string(logger.DebugLevel)
		}
		if err := s.Validate(); err != nil {
			return err
		}
		cfg = s

		logger.SetupLogger(s.LogLevel, s.LogJSON, false)
		cmd.SetContext(logger.ContextWithLogger(cmd.Context(), logger.GetDefault()))
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(stdout, "macrame %s\n", version)
		fmt.Fprintf(stdout, "  commit:  %s\n", commit)
		fmt.Fprintf(stdout, "  built:   %s\n", date)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&projectDir, "directory", "C", ".", "project directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "emit logs as JSON")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "detailed output")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "minimal output (errors only)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command. A failing make run is returned as
// *buildsys.ExitError so the caller can relay its status.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return nil
	}
	var exit *buildsys.ExitError
	if errors.As(err, &exit) && quiet {
		return err
	}
	errorf("%v", err)
	return err
}
