package cmd

import (
	"github.com/spf13/cobra"

	"github.com/bianoble/macrame/internal/project"
)

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List the project's ports",
	Long: `Lists the directories under port/. The first one, marked with '*', is built
when no --port is given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := projectRoot()
		if err != nil {
			return err
		}
		if err := project.Check(root); err != nil {
			return err
		}
		ports, err := project.ListPorts(root)
		if err != nil {
			return err
		}
		if len(ports) == 0 {
			info("No ports. Sources under src/ are built on their own.")
			return nil
		}
		for i, p := range ports {
			mark := " "
			if i == 0 {
				mark = "*"
			}
			info("%s %s", mark, p)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(portsCmd)
}
