// Package buildsys drives make for a macrame project: it prepares the
// environment, synthesizes the generated Makefile and invokes the build.
package buildsys

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/shlex"
	"github.com/spf13/afero"

	"github.com/bianoble/macrame/internal/config"
	"github.com/bianoble/macrame/internal/engine"
	"github.com/bianoble/macrame/internal/environ"
	"github.com/bianoble/macrame/internal/logger"
	"github.com/bianoble/macrame/internal/project"
	"github.com/bianoble/macrame/internal/sandbox"
	"github.com/bianoble/macrame/internal/settings"
	"github.com/bianoble/macrame/internal/source"
)

//go:embed Makefile.base
var baseMakefile []byte

// BaseMakefile returns the embedded Makefile used when the project has
// none of its own.
func BaseMakefile() []byte {
	return baseMakefile
}

// LocalMakefile is the project Makefile that takes precedence over the
// embedded one.
const LocalMakefile = "Makefile"

// RemoteMakefileDir is where the embedded Makefile is materialized,
// relative to the project root.
var RemoteMakefileDir = filepath.Join(engine.GenDir, ".macrame")

// ManagedVars are cleared from the inherited environment before a build
// so stale values from the caller's shell cannot leak in.
var ManagedVars = []string{
	"PROJ_NAME", "TARGET", "PORT_NAME", "BUILDSYSTEM_DIRPATH",
	"RUN_CMD", "SIZE_CMD",
	"AS", "CC", "CXX", "LD", "SZ", "OC", "NM",
	"ASFLAGS", "CFLAGS", "CXXFLAGS", "CPPFLAGS", "LDFLAGS",
}

// Options configures a Manager.
type Options struct {
	ProjectRoot string
	// PortName selects a port. Empty selects the first available one.
	PortName string
	// ForceRemote ignores a project-local Makefile.
	ForceRemote bool
	// DryRun prepares without writing files or taking the project lock.
	DryRun bool

	Settings *settings.Settings
	// Base is the inherited environment. Nil means the process environment.
	Base   *environ.Map
	Runner Runner
	Prober engine.Prober
	Fs     afero.Fs
	Logger logger.Logger

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Plan is the outcome of preparing a project for make.
type Plan struct {
	ProjectName string
	Port        string
	Makefile    string
	// Local is set when the project's own Makefile is used.
	Local     bool
	Layers    []config.ConfigLayerInfo
	Resolved  *config.Resolved
	Synthesis *engine.SynthesisResult
	Sources   source.Sources
	Env       *environ.Map
}

// Manager prepares and runs builds for one project and port.
type Manager struct {
	opts Options
	port string
	root *sandbox.Root
}

// New validates the project and resolves the port.
func New(opts Options) (*Manager, error) {
	root, err := filepath.Abs(opts.ProjectRoot)
	if err != nil {
		return nil, fmt.Errorf("resolving project root: %w", err)
	}
	if err := project.Check(root); err != nil {
		return nil, err
	}
	port, err := project.ResolvePort(root, opts.PortName)
	if err != nil {
		return nil, err
	}
	sb, err := sandbox.New(root)
	if err != nil {
		return nil, err
	}
	opts.ProjectRoot = sb.Dir()

	if opts.Settings == nil {
		s := settings.Default()
		opts.Settings = &s
	}
	if opts.Runner == nil {
		opts.Runner = ExecRunner{}
	}
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Logger == nil {
		opts.Logger = logger.GetDefault()
	}
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	return &Manager{opts: opts, port: port, root: sb}, nil
}

// Port returns the resolved port, empty when the project has none.
func (m *Manager) Port() string { return m.port }

// Root returns the resolved project root.
func (m *Manager) Root() string { return m.opts.ProjectRoot }

// Prepare synthesizes the environment and the generated Makefile without
// running make.
func (m *Manager) Prepare(ctx context.Context) (*Plan, error) {
	unlock, err := m.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()
	return m.prepare(ctx)
}

// Build prepares the project and runs the default goal.
func (m *Manager) Build(ctx context.Context) (*Plan, error) {
	return m.do(ctx, "")
}

// Run prepares the project and runs the run goal.
func (m *Manager) Run(ctx context.Context) (*Plan, error) {
	return m.do(ctx, "run")
}

// Clean prepares the project and runs the clean goal. With all, every
// generated file under gen/ is removed as well.
func (m *Manager) Clean(ctx context.Context, all bool) (*Plan, error) {
	unlock, err := m.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	plan, err := m.prepare(ctx)
	if err != nil {
		return nil, err
	}
	if err := m.invoke(ctx, plan, "clean"); err != nil {
		return plan, err
	}
	if all {
		if err := m.removeGenerated(); err != nil {
			return plan, err
		}
	}
	return plan, nil
}

func (m *Manager) do(ctx context.Context, goal string) (*Plan, error) {
	unlock, err := m.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	plan, err := m.prepare(ctx)
	if err != nil {
		return nil, err
	}
	return plan, m.invoke(ctx, plan, goal)
}

func (m *Manager) lock(ctx context.Context) (func(), error) {
	if m.opts.DryRun {
		return func() {}, nil
	}
	fl, err := project.Lock(ctx, m.opts.ProjectRoot)
	if err != nil {
		return nil, err
	}
	return func() {
		if err := fl.Unlock(); err != nil {
			m.opts.Logger.Warn("Failed to release project lock", "error", err)
		}
	}, nil
}

func (m *Manager) prepare(ctx context.Context) (*Plan, error) {
	root := m.opts.ProjectRoot
	s := m.opts.Settings
	plan := &Plan{ProjectName: project.Name(root), Port: m.port}

	makefile, local, err := m.selectMakefile()
	if err != nil {
		return nil, err
	}
	plan.Makefile, plan.Local = makefile, local

	base := m.opts.Base
	if base == nil {
		base = environ.FromOS()
	}
	env := environ.NewMap(base.Snapshot())
	for _, name := range ManagedVars {
		_ = env.Unset(name)
	}
	genDir := engine.ArtifactDir(root, m.port, s.TargetTag)
	_ = env.Set("PROJ_NAME", plan.ProjectName)
	_ = env.Set("TARGET", s.TargetTag)
	if m.port != "" {
		_ = env.Set("PORT_NAME", m.port)
	}
	_ = env.Set("BUILDSYSTEM_DIRPATH", filepath.Dir(makefile))
	_ = env.Set("GEN_DIRPATH", genDir)
	_ = env.Set("GEN_MAKEFILE", filepath.Join(genDir, s.ArtifactName))

	if s.EnvFile != "" {
		path := s.EnvFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(root, path)
		}
		env, err = environ.WithDotEnv(path, env)
		if err != nil {
			return nil, err
		}
	}
	plan.Env = env

	resolved, loaded, err := config.Resolve(config.HierarchicalOptions{
		DiscoverOptions: config.DiscoverOptions{
			ProjectRoot: root,
			PortName:    m.port,
			DefaultPath: s.DefaultConfig,
		},
	})
	if loaded != nil {
		plan.Layers = loaded.Layers
	}
	if err != nil {
		return nil, err
	}
	plan.Resolved = resolved
	for _, name := range resolved.Skipped {
		m.opts.Logger.Warn("Ignoring unknown category", "category", name)
	}

	c, err := engine.New(engine.Options{
		ProjectRoot:  root,
		PortName:     m.port,
		TargetTag:    s.TargetTag,
		ArtifactName: s.ArtifactName,
		Env:          env,
		Prober:       m.opts.Prober,
		Fs:           m.opts.Fs,
		Logger:       m.opts.Logger,
		DryRun:       m.opts.DryRun,
	})
	if err != nil {
		return nil, err
	}
	synth, err := c.Apply(ctx, resolved)
	if err != nil {
		return nil, err
	}
	plan.Synthesis = synth

	srcs, err := source.Discover(root, m.port)
	if err != nil {
		return nil, err
	}
	if err := srcs.Export(env); err != nil {
		return nil, err
	}
	plan.Sources = srcs

	m.opts.Logger.Debug("Project prepared",
		"project", plan.ProjectName, "port", plan.Port, "makefile", plan.Makefile,
		"sources", srcs.Count(), "artifact", synth.Artifact.Path)
	return plan, nil
}

// selectMakefile returns the Makefile to run, materializing the embedded
// one when the project has none or ForceRemote is set.
func (m *Manager) selectMakefile() (string, bool, error) {
	if !m.opts.ForceRemote {
		local := filepath.Join(m.opts.ProjectRoot, LocalMakefile)
		if fi, err := os.Stat(local); err == nil && fi.Mode().IsRegular() {
			return local, true, nil
		}
	}

	path, err := m.root.Resolve(filepath.Join(RemoteMakefileDir, "Makefile"))
	if err != nil {
		return "", false, err
	}
	action, err := engine.WriteIfChanged(m.opts.Fs, path, baseMakefile, m.opts.DryRun)
	if err != nil {
		return "", false, fmt.Errorf("materializing base Makefile: %w", err)
	}
	m.opts.Logger.Debug("Base Makefile", "path", path, "action", action.Action)
	return path, false, nil
}

func (m *Manager) invoke(ctx context.Context, plan *Plan, goal string) error {
	argv, err := shlex.Split(m.opts.Settings.MakeProgram)
	if err != nil {
		return fmt.Errorf("parsing make program %q: %w", m.opts.Settings.MakeProgram, err)
	}
	if len(argv) == 0 {
		return fmt.Errorf("make program is empty")
	}
	args := append(argv[1:], "-f", plan.Makefile)
	if goal != "" {
		args = append(args, goal)
	}

	m.opts.Logger.Info("Running make", "makefile", plan.Makefile, "goal", goal, "port", plan.Port)
	return m.opts.Runner.Run(ctx, Invocation{
		Program: argv[0],
		Args:    args,
		Dir:     m.opts.ProjectRoot,
		Env:     plan.Env.Environ(),
		Stdin:   m.opts.Stdin,
		Stdout:  m.opts.Stdout,
		Stderr:  m.opts.Stderr,
	})
}

// removeGenerated deletes everything under gen/ except the lock file,
// which is held for the duration of the clean.
func (m *Manager) removeGenerated() error {
	entries, err := os.ReadDir(project.GenDir(m.opts.ProjectRoot))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("listing generated files: %w", err)
	}
	for _, e := range entries {
		if e.Name() == project.LockFile {
			continue
		}
		if err := m.root.RemoveAll(filepath.Join(engine.GenDir, e.Name())); err != nil {
			return fmt.Errorf("removing generated files: %w", err)
		}
	}
	m.opts.Logger.Info("Removed generated files", "dir", engine.GenDir)
	return nil
}
