package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"

	"github.com/bianoble/macrame/internal/buildsys"
	"github.com/bianoble/macrame/internal/logger"
	"github.com/bianoble/macrame/internal/settings"
)

// Output streams, replaced in tests.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// buildFlags are shared by the commands that prepare a project.
type buildFlags struct {
	port        string
	forceRemote bool
	envFile     string
}

func (f *buildFlags) register(fs *pflag.FlagSet, remote bool) {
	fs.StringVarP(&f.port, "port", "p", "", "port to build (default: first port)")
	if remote {
		fs.BoolVarP(&f.forceRemote, "force-remote", "r", false, "ignore the project Makefile and use the built-in one")
	}
	fs.StringVar(&f.envFile, "env-file", "", "dotenv file read before configuration (default: .env)")
}

// projectRoot returns the absolute project directory.
func projectRoot() (string, error) {
	abs, err := filepath.Abs(projectDir)
	if err != nil {
		return "", fmt.Errorf("resolving project directory: %w", err)
	}
	return abs, nil
}

// currentSettings returns the settings of this invocation, falling back to
// the defaults when the root pre-run did not execute.
func currentSettings() settings.Settings {
	if cfg == nil {
		return settings.Default()
	}
	return *cfg
}

// newManager creates a build manager for the project directory.
func newManager(ctx context.Context, f buildFlags, dryRun bool) (*buildsys.Manager, error) {
	root, err := projectRoot()
	if err != nil {
		return nil, err
	}
	s := currentSettings()
	if f.envFile != "" {
		s.EnvFile = f.envFile
	}
	return buildsys.New(buildsys.Options{
		ProjectRoot: root,
		PortName:    f.port,
		ForceRemote: f.forceRemote,
		DryRun:      dryRun,
		Settings:    &s,
		Logger:      logger.FromContext(ctx),
		Stdout:      stdout,
		Stderr:      stderr,
	})
}

// info prints a line unless quiet mode is active.
func info(format string, args ...any) {
	if !quiet {
		fmt.Fprintf(stdout, format+"\n", args...)
	}
}

// detail prints a line only in verbose mode.
func detail(format string, args ...any) {
	if verbose {
		fmt.Fprintf(stdout, "  "+format+"\n", args...)
	}
}

// errorf prints an error message to stderr.
func errorf(format string, args ...any) {
	fmt.Fprintf(stderr, "%s "+format+"\n", append([]any{styled(stderr, errorStyle, "error:")}, args...)...)
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	errorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B"))
)

// useColor reports whether styled output should be written to w.
func useColor(w io.Writer) bool {
	if noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func styled(w io.Writer, style lipgloss.Style, s string) string {
	if !useColor(w) {
		return s
	}
	return style.Render(s)
}
