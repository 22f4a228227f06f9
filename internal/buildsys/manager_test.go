package buildsys

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bianoble/macrame/internal/environ"
	"github.com/bianoble/macrame/internal/logger"
	"github.com/bianoble/macrame/internal/project"
	"github.com/bianoble/macrame/internal/settings"
)

type fakeProber struct{}

func (fakeProber) LookPath(name string) (string, error) {
	return "/usr/bin/" + name, nil
}

func (fakeProber) Output(context.Context, string, []string, []string) (string, error) {
	return "GNU Make 4.3", nil
}

type fakeRunner struct {
	calls []Invocation
	err   error
}

func (r *fakeRunner) Run(_ context.Context, inv Invocation) error {
	r.calls = append(r.calls, inv)
	return r.err
}

func write(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
}

func newProject(t *testing.T) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "blinky")
	write(t, root, "src/main.c", "int main(void) { return 0; }\n")
	write(t, root, "port/avr/board.c", "")
	write(t, root, "port/avr/config.toml", `
[[Environment]]
name = "CFLAGS"
value = "-mmcu=${MCU}"
method = "append"
`)
	write(t, root, "port/stm32/board.c", "")
	write(t, root, "macrame.toml", `
[[MakefileRule]]
targets = "flash"
prerequisites = "all"
command = "\tavrdude -p ${MCU}"
phony = true
`)
	write(t, root, ".env", "MCU=atmega328p\n")
	return root
}

func newManager(t *testing.T, opts Options) (*Manager, *fakeRunner) {
	t.Helper()
	runner := &fakeRunner{}
	if opts.Runner == nil {
		opts.Runner = runner
	}
	if opts.Base == nil {
		opts.Base = environ.NewMap(map[string]string{
			"PATH":   "/usr/bin:/bin",
			"CFLAGS": "-O3 from the shell",
			"TARGET": "stale",
		})
	}
	opts.Prober = fakeProber{}
	opts.Logger = logger.NewLogger(logger.TestConfig())
	m, err := New(opts)
	require.NoError(t, err)
	return m, runner
}

func envMap(inv Invocation) map[string]string {
	out := make(map[string]string, len(inv.Env))
	for _, kv := range inv.Env {
		k, v, _ := strings.Cut(kv, "=")
		out[k] = v
	}
	return out
}

func TestBuild(t *testing.T) {
	root := newProject(t)
	m, runner := newManager(t, Options{ProjectRoot: root})
	assert.Equal(t, "avr", m.Port(), "the first port is selected by default")

	plan, err := m.Build(t.Context())
	require.NoError(t, err)
	require.Len(t, runner.calls, 1)

	remote := filepath.Join(m.Root(), "gen", ".macrame", "Makefile")
	inv := runner.calls[0]
	assert.Equal(t, "make", inv.Program)
	assert.Equal(t, []string{"-f", remote}, inv.Args)
	assert.Equal(t, m.Root(), inv.Dir)
	assert.False(t, plan.Local)

	env := envMap(inv)
	assert.Equal(t, "blinky", env["PROJ_NAME"])
	assert.Equal(t, "dbg", env["TARGET"])
	assert.Equal(t, "avr", env["PORT_NAME"])
	assert.Equal(t, filepath.Dir(remote), env["BUILDSYSTEM_DIRPATH"])
	assert.Equal(t, filepath.Join(m.Root(), "gen", "avr", "dbg"), env["GEN_DIRPATH"])
	assert.Equal(t, "-Wall -Wextra -mmcu=atmega328p", env["CFLAGS"])
	assert.Equal(t, "-g -O0", env["CPPFLAGS"])
	assert.Equal(t, "gcc", env["LD"])
	assert.Equal(t, "port/avr/board.c src/main.c", env["C_SRCs"])
	assert.Equal(t, "", env["AS_SRCs"])
	assert.Equal(t, "/usr/bin:/bin", env["PATH"])

	base, err := os.ReadFile(remote)
	require.NoError(t, err)
	assert.Equal(t, BaseMakefile(), base)

	generated, err := os.ReadFile(filepath.Join(m.Root(), "gen", "avr", "dbg", "Makefile"))
	require.NoError(t, err)
	assert.Equal(t, "PHONY: flash\nflash: all\n\tavrdude -p ${MCU}\n\n", string(generated))
	assert.Equal(t, 1, plan.Synthesis.Rules)
}

func TestBuildSelectsMakefile(t *testing.T) {
	t.Run("Should prefer the project Makefile", func(t *testing.T) {
		root := newProject(t)
		write(t, root, "Makefile", "all:\n")
		m, runner := newManager(t, Options{ProjectRoot: root})

		plan, err := m.Build(t.Context())
		require.NoError(t, err)
		assert.True(t, plan.Local)
		assert.Equal(t, []string{"-f", filepath.Join(m.Root(), "Makefile")}, runner.calls[0].Args)
		assert.NoFileExists(t, filepath.Join(m.Root(), "gen", ".macrame", "Makefile"))
	})

	t.Run("Should use the base Makefile when forced", func(t *testing.T) {
		root := newProject(t)
		write(t, root, "Makefile", "all:\n")
		m, _ := newManager(t, Options{ProjectRoot: root, ForceRemote: true})

		plan, err := m.Build(t.Context())
		require.NoError(t, err)
		assert.False(t, plan.Local)
		assert.FileExists(t, plan.Makefile)
	})
}

func TestBuildWithSettings(t *testing.T) {
	root := newProject(t)
	s := settings.Default()
	s.TargetTag = "rel"
	s.MakeProgram = "make -j4"
	m, runner := newManager(t, Options{ProjectRoot: root, PortName: "stm32", Settings: &s})

	_, err := m.Build(t.Context())
	require.NoError(t, err)

	inv := runner.calls[0]
	assert.Equal(t, "-j4", inv.Args[0])
	env := envMap(inv)
	assert.Equal(t, "rel", env["TARGET"])
	assert.Equal(t, "stm32", env["PORT_NAME"])
	assert.Equal(t, "-Wall -Wextra", env["CFLAGS"], "the avr port layer is not applied")
	_, hasCPP := env["CPPFLAGS"]
	assert.False(t, hasCPP, "debug flags are conditional on the dbg target")
	assert.FileExists(t, filepath.Join(m.Root(), "gen", "stm32", "rel", "Makefile"))
}

func TestRunAndExitStatus(t *testing.T) {
	root := newProject(t)
	runner := &fakeRunner{err: &ExitError{Program: "make", Code: 2}}
	m, _ := newManager(t, Options{ProjectRoot: root, Runner: runner})

	_, err := m.Run(t.Context())
	var exit *ExitError
	require.ErrorAs(t, err, &exit)
	assert.Equal(t, 2, exit.Code)
	assert.Equal(t, "make exited with status 2", err.Error())
	assert.Equal(t, "run", runner.calls[0].Args[len(runner.calls[0].Args)-1])
}

func TestClean(t *testing.T) {
	root := newProject(t)
	m, runner := newManager(t, Options{ProjectRoot: root})
	_, err := m.Build(t.Context())
	require.NoError(t, err)

	_, err = m.Clean(t.Context(), false)
	require.NoError(t, err)
	assert.Equal(t, "clean", runner.calls[1].Args[len(runner.calls[1].Args)-1])
	assert.DirExists(t, filepath.Join(m.Root(), "gen", "avr"))

	_, err = m.Clean(t.Context(), true)
	require.NoError(t, err)
	assert.NoDirExists(t, filepath.Join(m.Root(), "gen", "avr"))
	assert.NoDirExists(t, filepath.Join(m.Root(), "gen", ".macrame"))
	assert.FileExists(t, filepath.Join(m.Root(), "gen", project.LockFile))
}

func TestPrepareDryRun(t *testing.T) {
	root := newProject(t)
	m, runner := newManager(t, Options{ProjectRoot: root, DryRun: true})

	plan, err := m.Prepare(t.Context())
	require.NoError(t, err)
	assert.Empty(t, runner.calls)
	assert.NoDirExists(t, filepath.Join(m.Root(), "gen"))
	assert.Equal(t, "gen/avr/dbg/Makefile", filepath.ToSlash(plan.Synthesis.Artifact.Path))
	assert.Equal(t, "-Wall -Wextra -mmcu=atmega328p", plan.Env.Get("CFLAGS"))
}

func TestNewRejectsBadProjects(t *testing.T) {
	t.Run("Should reject a directory without sources", func(t *testing.T) {
		_, err := New(Options{ProjectRoot: t.TempDir()})
		assert.True(t, errors.Is(err, project.ErrNotAProject))
	})

	t.Run("Should reject an unknown port", func(t *testing.T) {
		_, err := New(Options{ProjectRoot: newProject(t), PortName: "esp32"})
		assert.True(t, errors.Is(err, project.ErrUnknownPort))
	})
}

func TestPrepareConfigError(t *testing.T) {
	root := newProject(t)
	write(t, root, "macrame.toml", "Environment = 3\n")
	m, runner := newManager(t, Options{ProjectRoot: root})

	plan, err := m.Build(t.Context())
	require.Error(t, err)
	assert.Nil(t, plan)
	assert.Empty(t, runner.calls)
}
