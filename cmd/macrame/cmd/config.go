package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/bianoble/macrame/internal/config"
	"github.com/bianoble/macrame/internal/entry"
	"github.com/bianoble/macrame/internal/project"
)

var (
	configPort   string
	configFormat string
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the layered configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the merged configuration",
	Long: `Loads the default, root and port layers and prints the merged entries in
application order. No tool is checked and nothing is written.

Formats: text (default), yaml, toml.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, _, err := resolveConfig(configPort)
		if err != nil {
			return err
		}

		switch configFormat {
		case "text":
			printResolved(r)
			return nil
		case "yaml":
			out, err := yaml.Marshal(resolvedDocument(r))
			if err != nil {
				return fmt.Errorf("encoding yaml: %w", err)
			}
			_, err = stdout.Write(out)
			return err
		case "toml":
			out, err := toml.Marshal(resolvedDocument(r))
			if err != nil {
				return fmt.Errorf("encoding toml: %w", err)
			}
			_, err = stdout.Write(out)
			return err
		default:
			return fmt.Errorf("unknown format %q (use text, yaml or toml)", configFormat)
		}
	},
}

var configLayersCmd = &cobra.Command{
	Use:   "layers",
	Short: "List the configuration layers and their status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, loaded, err := resolveConfig(configPort)
		if loaded == nil {
			return err
		}

		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers("LEVEL", "PATH", "STATUS")
		if useColor(stdout) {
			t = t.StyleFunc(func(row, col int) lipgloss.Style {
				if row == table.HeaderRow {
					return headerStyle
				}
				return lipgloss.NewStyle()
			})
		}
		for _, l := range loaded.Layers {
			status := "not loaded"
			switch {
			case l.Err != nil:
				status = "error: " + l.Err.Error()
			case l.Loaded:
				status = "loaded"
			}
			t.Row(string(l.Level), l.Path, status)
		}
		fmt.Fprintln(stdout, t.Render())
		return err
	},
}

// resolveConfig merges the layers of the project directory for port.
func resolveConfig(port string) (*config.Resolved, *config.HierarchicalResult, error) {
	root, err := projectRoot()
	if err != nil {
		return nil, nil, err
	}
	if err := project.Check(root); err != nil {
		return nil, nil, err
	}
	port, err = project.ResolvePort(root, port)
	if err != nil {
		return nil, nil, err
	}
	return config.Resolve(config.HierarchicalOptions{
		DiscoverOptions: config.DiscoverOptions{
			ProjectRoot: root,
			PortName:    port,
			DefaultPath: currentSettings().DefaultConfig,
		},
	})
}

// resolvedDocument converts r back into the document shape it was read from.
func resolvedDocument(r *config.Resolved) map[string][]map[string]any {
	doc := map[string][]map[string]any{}
	for _, c := range entry.Categories {
		for _, e := range r.Entries(c) {
			doc[string(c)] = append(doc[string(c)], entryFields(e))
		}
	}
	return doc
}

func printResolved(r *config.Resolved) {
	for _, c := range entry.Categories {
		entries := r.Entries(c)
		if len(entries) == 0 {
			continue
		}
		fmt.Fprintln(stdout, styled(stdout, headerStyle, string(c)))
		for _, e := range entries {
			fmt.Fprintf(stdout, "  %s\n", summarize(e))
		}
	}
	for _, name := range r.Skipped {
		fmt.Fprintln(stdout, styled(stdout, mutedStyle, "ignored category: "+name))
	}
}

func init() {
	configCmd.PersistentFlags().StringVarP(&configPort, "port", "p", "", "port whose layer is included (default: first port)")
	configShowCmd.Flags().StringVar(&configFormat, "format", "text", "output format (text, yaml, toml)")
	configCmd.AddCommand(configShowCmd, configLayersCmd)
	rootCmd.AddCommand(configCmd)
}
