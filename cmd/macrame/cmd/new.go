package cmd

import (
	"github.com/spf13/cobra"

	"github.com/bianoble/macrame/internal/scaffold"
)

var newTemplate string

var newCmd = &cobra.Command{
	Use:   "new [directory]",
	Short: "Create a new project",
	Long: `Creates a project in the given directory (default: the -C directory). The
directory may be missing or contain only dotfiles. The built-in starter has a
src/main.c, a macrame.toml and a .gitignore; --template copies an existing
project instead, leaving out its gen/ and .git/ directories.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dst := projectDir
		if len(args) == 1 {
			dst = args[0]
		}

		res, err := scaffold.New(dst, newTemplate)
		if err != nil {
			return err
		}

		info("Created %s", res.Dir)
		for _, f := range res.Files {
			detail("%s", f)
		}
		info("")
		info("Next steps:")
		info("  1. Add sources under src/ and ports under port/<name>/")
		info("  2. Run 'macrame build' to configure and build")
		return nil
	},
}

func init() {
	newCmd.Flags().StringVar(&newTemplate, "template", "", "project directory to copy instead of the built-in starter")
	rootCmd.AddCommand(newCmd)
}
