package cmd

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bianoble/macrame/internal/buildsys"
	"github.com/bianoble/macrame/internal/logger"
	"github.com/bianoble/macrame/internal/watch"
)

var watchOpts buildFlags

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Regenerate whenever a configuration layer changes",
	Long: `Runs 'generate' once, then again every time macrame.toml, the port's
config.toml, the dotenv file or a custom default layer is saved. Stops on
Ctrl+C.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		m, err := newManager(ctx, watchOpts, false)
		if err != nil {
			return err
		}

		regenerate := func() {
			plan, err := m.Prepare(ctx)
			if err != nil {
				errorf("%v", err)
				return
			}
			reportPlan(plan)
		}
		regenerate()

		w, err := watch.New(logger.FromContext(ctx), 0)
		if err != nil {
			return err
		}
		defer w.Close()

		s := currentSettings()
		envFile := s.EnvFile
		if watchOpts.envFile != "" {
			envFile = watchOpts.envFile
		}
		if err := w.AddProject(m.Root(), m.Port(), envFile); err != nil {
			return err
		}
		if s.DefaultConfig != "" {
			if err := w.Add(filepath.Dir(s.DefaultConfig), filepath.Base(s.DefaultConfig)); err != nil {
				return err
			}
		}
		w.OnChange(func(path string) {
			rel, err := filepath.Rel(m.Root(), path)
			if err != nil {
				rel = path
			}
			info("Changed: %s", rel)
			regenerate()
		})

		info("Watching %s for configuration changes. Press Ctrl+C to stop.", describePort(m))
		return w.Run(ctx)
	},
}

func describePort(m *buildsys.Manager) string {
	if m.Port() == "" {
		return m.Root()
	}
	return m.Root() + " (port " + m.Port() + ")"
}

func init() {
	watchOpts.register(watchCmd.Flags(), true)
	rootCmd.AddCommand(watchCmd)
}
