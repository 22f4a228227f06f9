// Package macrame provides the public Go library API for macrame.
//
// macrame turns a stack of layered configuration documents into a build
// environment and a generated Makefile, then drives make with it. This
// package exposes constructors for embedding macrame in other Go programs.
//
// # Basic Usage
//
//	client, err := macrame.New(macrame.Options{
//	    ProjectRoot: "/path/to/project",
//	    PortName:    "avr",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Inspect the merged configuration
//	res, err := client.Resolve()
//
//	// Check tools and write the generated Makefile
//	plan, err := client.Generate(ctx, macrame.GenerateOptions{})
//
//	// Run make
//	plan, err = client.Build(ctx)
package macrame

import (
	"context"
	"io"

	"github.com/bianoble/macrame/internal/buildsys"
	"github.com/bianoble/macrame/internal/config"
	"github.com/bianoble/macrame/internal/project"
	"github.com/bianoble/macrame/internal/scaffold"
	"github.com/bianoble/macrame/internal/settings"
)

// GenerateOptions configures a generate operation.
type GenerateOptions struct {
	DryRun bool
}

// Resolver merges the configuration layers of a project.
type Resolver interface {
	Resolve() (*ResolveResult, error)
}

// Generator checks tools, prepares the environment and writes the
// generated Makefile without running make.
type Generator interface {
	Generate(ctx context.Context, opts GenerateOptions) (*Plan, error)
}

// Builder runs make goals.
type Builder interface {
	Build(ctx context.Context) (*Plan, error)
	Run(ctx context.Context) (*Plan, error)
	Clean(ctx context.Context, all bool) (*Plan, error)
}

// Options configures a macrame client.
type Options struct {
	// ProjectRoot is the directory holding src/ (required).
	ProjectRoot string

	// PortName selects a port. Empty selects the first available one.
	PortName string

	// TargetTag names the build flavor. Default: "dbg".
	TargetTag string

	// ArtifactName is the generated file name. Default: "Makefile".
	ArtifactName string

	// DefaultConfig replaces the built-in default layer.
	DefaultConfig string

	// EnvFile is read before configuration is applied. Default: ".env".
	EnvFile string

	// MakeProgram is the build program and its leading arguments.
	// Default: "make".
	MakeProgram string

	// ForceRemote ignores a project-local Makefile.
	ForceRemote bool

	// Stdout and Stderr receive make's output. Nil discards it.
	Stdout io.Writer
	Stderr io.Writer
}

// Client is the main entry point for the macrame library.
// It implements Resolver, Generator and Builder.
type Client struct {
	opts     Options
	port     string
	settings settings.Settings
}

// New validates the project and resolves the port.
func New(opts Options) (*Client, error) {
	if err := project.Check(opts.ProjectRoot); err != nil {
		return nil, err
	}
	port, err := project.ResolvePort(opts.ProjectRoot, opts.PortName)
	if err != nil {
		return nil, err
	}

	s := settings.Default()
	if opts.TargetTag != "" {
		s.TargetTag = opts.TargetTag
	}
	if opts.ArtifactName != "" {
		s.ArtifactName = opts.ArtifactName
	}
	if opts.EnvFile != "" {
		s.EnvFile = opts.EnvFile
	}
	if opts.MakeProgram != "" {
		s.MakeProgram = opts.MakeProgram
	}
	s.DefaultConfig = opts.DefaultConfig
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if opts.Stdout == nil {
		opts.Stdout = io.Discard
	}
	if opts.Stderr == nil {
		opts.Stderr = io.Discard
	}

	return &Client{opts: opts, port: port, settings: s}, nil
}

// Port returns the port the client builds, empty when the project has none.
func (c *Client) Port() string { return c.port }

// Ports lists the project's ports in sorted order.
func (c *Client) Ports() ([]string, error) {
	return project.ListPorts(c.opts.ProjectRoot)
}

// Resolve loads and merges the configuration layers without checking tools
// or writing anything.
func (c *Client) Resolve() (*ResolveResult, error) {
	r, loaded, err := config.Resolve(config.HierarchicalOptions{
		DiscoverOptions: config.DiscoverOptions{
			ProjectRoot: c.opts.ProjectRoot,
			PortName:    c.port,
			DefaultPath: c.settings.DefaultConfig,
		},
	})
	if err != nil {
		return nil, err
	}
	return &ResolveResult{Port: c.port, Resolved: r, Layers: loaded.Layers}, nil
}

// Generate writes the generated Makefile and returns the prepared plan.
func (c *Client) Generate(ctx context.Context, opts GenerateOptions) (*Plan, error) {
	m, err := c.manager(opts.DryRun)
	if err != nil {
		return nil, err
	}
	return m.Prepare(ctx)
}

// Build prepares the project and runs make's default goal.
func (c *Client) Build(ctx context.Context) (*Plan, error) {
	m, err := c.manager(false)
	if err != nil {
		return nil, err
	}
	return m.Build(ctx)
}

// Run prepares the project and runs make's run goal.
func (c *Client) Run(ctx context.Context) (*Plan, error) {
	m, err := c.manager(false)
	if err != nil {
		return nil, err
	}
	return m.Run(ctx)
}

// Clean runs make's clean goal, removing gen/ as well when all is set.
func (c *Client) Clean(ctx context.Context, all bool) (*Plan, error) {
	m, err := c.manager(false)
	if err != nil {
		return nil, err
	}
	return m.Clean(ctx, all)
}

func (c *Client) manager(dryRun bool) (*buildsys.Manager, error) {
	s := c.settings
	return buildsys.New(buildsys.Options{
		ProjectRoot: c.opts.ProjectRoot,
		PortName:    c.port,
		ForceRemote: c.opts.ForceRemote,
		DryRun:      dryRun,
		Settings:    &s,
		Stdout:      c.opts.Stdout,
		Stderr:      c.opts.Stderr,
	})
}

// Resolve is a shortcut for New followed by Client.Resolve.
func Resolve(opts Options) (*ResolveResult, error) {
	c, err := New(opts)
	if err != nil {
		return nil, err
	}
	return c.Resolve()
}

// Generate is a shortcut for New followed by Client.Generate.
func Generate(ctx context.Context, opts Options, gen GenerateOptions) (*Plan, error) {
	c, err := New(opts)
	if err != nil {
		return nil, err
	}
	return c.Generate(ctx, gen)
}

// Create scaffolds a new project in dst from the built-in starter, or from
// templateDir when it is set.
func Create(dst, templateDir string) (*ScaffoldResult, error) {
	return scaffold.New(dst, templateDir)
}
