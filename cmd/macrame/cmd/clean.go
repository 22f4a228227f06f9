package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cleanOpts buildFlags
	cleanAll  bool
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove build outputs",
	Long: `Runs make's clean goal for the selected port. With --all every generated
file under gen/ is removed as well, including the generated Makefiles of all
ports and target tags.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newManager(cmd.Context(), cleanOpts, false)
		if err != nil {
			return err
		}
		plan, err := m.Clean(cmd.Context(), cleanAll)
		if err != nil {
			return err
		}
		if cleanAll {
			info("Cleaned %s and removed generated files.", describe(plan))
		} else {
			info("Cleaned %s.", describe(plan))
		}
		return nil
	},
}

func init() {
	cleanOpts.register(cleanCmd.Flags(), true)
	cleanCmd.Flags().BoolVar(&cleanAll, "all", false, "also remove everything under gen/")
	rootCmd.AddCommand(cleanCmd)
}
