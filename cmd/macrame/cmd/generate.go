package cmd

import (
	"github.com/spf13/cobra"
)

var (
	generateOpts   buildFlags
	generateDryRun bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Check tools and write the generated Makefile without building",
	Long: `Performs every step of 'build' except running make. The generated Makefile
is only rewritten when its content changes, so its modification time is
preserved across identical runs.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newManager(cmd.Context(), generateOpts, generateDryRun)
		if err != nil {
			return err
		}
		plan, err := m.Prepare(cmd.Context())
		if err != nil {
			return err
		}

		if generateDryRun {
			info("Dry run: no files written.")
		}
		reportPlan(plan)
		info("")
		info("Generate complete: %d tools, %d variables, %d rules.",
			len(plan.Synthesis.Tools), len(plan.Synthesis.Variables), plan.Synthesis.Rules)
		return nil
	},
}

func init() {
	generateOpts.register(generateCmd.Flags(), false)
	generateCmd.Flags().BoolVar(&generateDryRun, "dry-run", false, "show what would change without writing files")
	rootCmd.AddCommand(generateCmd)
}
