package cmd

import (
	"github.com/spf13/cobra"
)

var buildOpts buildFlags

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Configure the project and run make",
	Long: `Clears the managed build variables, loads the default, root and port
configuration layers, checks the declared tools, exports the environment,
writes the generated Makefile and runs make.

The project's own Makefile is used when present; --force-remote selects the
built-in one instead. make's exit status is returned unchanged.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newManager(cmd.Context(), buildOpts, false)
		if err != nil {
			return err
		}

		plan, err := m.Build(cmd.Context())
		if plan != nil {
			reportPlan(plan)
		}
		if err != nil {
			return err
		}
		info("Build complete: %s", describe(plan))
		return nil
	},
}

var runOpts buildFlags

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Build the project and run the program",
	Long: `Prepares the project like 'build' and runs make's run goal. RUN_CMD, when
set by the configuration, wraps the program (for example an emulator).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newManager(cmd.Context(), runOpts, false)
		if err != nil {
			return err
		}
		plan, err := m.Run(cmd.Context())
		if plan != nil {
			reportPlan(plan)
		}
		return err
	},
}

func init() {
	buildOpts.register(buildCmd.Flags(), true)
	runOpts.register(runCmd.Flags(), true)
	rootCmd.AddCommand(buildCmd, runCmd)
}
