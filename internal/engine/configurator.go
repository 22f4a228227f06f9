package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bianoble/macrame/internal/config"
	"github.com/bianoble/macrame/internal/entry"
	"github.com/bianoble/macrame/internal/environ"
	"github.com/bianoble/macrame/internal/expr"
	"github.com/bianoble/macrame/internal/logger"
	"github.com/bianoble/macrame/internal/version"
	"github.com/spf13/afero"
)

const (
	DefaultTargetTag    = "dbg"
	DefaultArtifactName = "Makefile"
)

// Options configures a Configurator. Zero-valued collaborators are
// replaced with the real ones.
type Options struct {
	ProjectRoot  string
	PortName     string
	TargetTag    string
	ArtifactName string

	Env       environ.Env
	Prober    Prober
	Evaluator *expr.Evaluator
	Fs        afero.Fs
	Logger    logger.Logger

	// DryRun reports what Handle would do without writing.
	DryRun bool
}

// Configurator applies resolved entries: tool checks, variable
// registration and rule rendering. Load is called once per entry in
// resolved order, then Handle writes the generated Makefile.
//
// A Configurator is used for a single run.
type Configurator struct {
	opts   Options
	text   strings.Builder
	result SynthesisResult
	err    error
}

// New returns a Configurator for opts.
func New(opts Options) (*Configurator, error) {
	if opts.ProjectRoot == "" {
		return nil, fmt.Errorf("project root is required")
	}
	if opts.TargetTag == "" {
		opts.TargetTag = DefaultTargetTag
	}
	if opts.ArtifactName == "" {
		opts.ArtifactName = DefaultArtifactName
	}
	if opts.Env == nil {
		opts.Env = environ.NewOS()
	}
	if opts.Prober == nil {
		opts.Prober = ExecProber{}
	}
	if opts.Evaluator == nil {
		ev, err := expr.NewEvaluator()
		if err != nil {
			return nil, err
		}
		opts.Evaluator = ev
	}
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Logger == nil {
		opts.Logger = logger.GetDefault()
	}
	return &Configurator{opts: opts}, nil
}

// ArtifactPath returns the absolute path of the generated file.
func (c *Configurator) ArtifactPath() string {
	return filepath.Join(ArtifactDir(c.opts.ProjectRoot, c.opts.PortName, c.opts.TargetTag), c.opts.ArtifactName)
}

// Text returns the rule text accumulated so far.
func (c *Configurator) Text() string {
	return c.text.String()
}

// Load applies one entry. After a failure every further call, and Handle,
// returns an error wrapping ErrAborted.
func (c *Configurator) Load(ctx context.Context, e entry.Entry) error {
	if c.err != nil {
		return fmt.Errorf("%w: %w", ErrAborted, c.err)
	}
	if err := ctx.Err(); err != nil {
		c.err = err
		return err
	}

	var err error
	switch v := e.(type) {
	case entry.Tool:
		err = c.checkTool(ctx, v)
	case entry.Environment:
		err = c.register(v)
	case entry.MakefileRule:
		c.text.WriteString(RenderRule(v))
		c.result.Rules++
	default:
		err = fmt.Errorf("no handler for %s entry '%s'", e.Category(), e.Label())
	}
	if err != nil {
		c.err = err
	}
	return err
}

func (c *Configurator) checkTool(ctx context.Context, t entry.Tool) error {
	path, err := c.opts.Prober.LookPath(t.Name)
	if err != nil {
		return &ToolNotFoundError{Name: t.Name, Err: err}
	}
	report := ToolReport{Name: t.Name, Path: path}

	op, required, ok := t.Requirement()
	if !ok {
		c.opts.Logger.Debug("Tool found", "name", t.Name, "path", path)
		c.result.Tools = append(c.result.Tools, report)
		return nil
	}
	requiredText := t.Version.Or(required.String())
	report.Required = fmt.Sprintf("%s %s", op, requiredText)

	args, err := splitArgs(t.Arg.Or(""))
	if err != nil {
		return fmt.Errorf("tool '%s': %w", t.Name, err)
	}
	out, err := c.opts.Prober.Output(ctx, path, args, c.opts.Env.Environ())
	if err != nil {
		return fmt.Errorf("probing tool '%s': %w", t.Name, err)
	}

	raw, found := version.Extract(out)
	if !found {
		return &ToolVersionMismatchError{Name: t.Name, Operator: op, Required: requiredText}
	}
	actual, err := version.Parse(raw)
	if err != nil || !actual.Satisfies(op, required) {
		return &ToolVersionMismatchError{Name: t.Name, Operator: op, Required: requiredText, Actual: raw}
	}

	report.Version = raw
	c.opts.Logger.Debug("Tool version satisfied", "name", t.Name, "version", raw, "required", report.Required)
	c.result.Tools = append(c.result.Tools, report)
	return nil
}

func (c *Configurator) register(e entry.Environment) error {
	lookup := c.opts.Env.Lookup

	enabled := true
	if cond := e.ConditionText(); strings.TrimSpace(cond) != "" {
		var err error
		enabled, err = c.opts.Evaluator.EvalWith(cond, lookup)
		if err != nil {
			return fmt.Errorf("environment variable '%s': %w", e.Name, err)
		}
	}
	if !enabled {
		c.opts.Logger.Debug("Variable skipped", "name", e.Name, "condition", e.ConditionText())
		c.result.Variables = append(c.result.Variables, VariableChange{Name: e.Name, Skipped: true})
		return nil
	}

	var unset []string
	for _, name := range expr.References(e.Value) {
		if _, ok := lookup(name); !ok && !slices.Contains(unset, name) {
			unset = append(unset, name)
		}
	}
	if len(unset) > 0 {
		c.opts.Logger.Warn("Variable references unset names", "name", e.Name, "unset", strings.Join(unset, " "))
	}

	value := expr.Interpolate(e.Value, lookup)
	var err error
	if e.Appends() {
		err = c.opts.Env.Append(e.Name, value)
	} else {
		err = c.opts.Env.Set(e.Name, value)
	}
	if err != nil {
		return fmt.Errorf("setting %s: %w", e.Name, err)
	}

	final := c.opts.Env.Get(e.Name)
	c.opts.Logger.Debug("Variable registered", "name", e.Name, "value", final)
	c.result.Variables = append(c.result.Variables, VariableChange{Name: e.Name, Value: final, Unset: unset})
	return nil
}

// Handle writes the accumulated rules to ArtifactPath if they differ from
// the file's current content. It is legal to call Handle without loading
// any rule; the artifact is then empty.
func (c *Configurator) Handle() (FileAction, error) {
	if c.err != nil {
		return FileAction{}, fmt.Errorf("%w: %w", ErrAborted, c.err)
	}

	path := c.ArtifactPath()
	action, err := WriteIfChanged(c.opts.Fs, path, []byte(c.text.String()), c.opts.DryRun)
	if err != nil {
		return FileAction{}, err
	}
	if rel, err := filepath.Rel(c.opts.ProjectRoot, path); err == nil {
		action.Path = rel
	}
	c.opts.Logger.Debug("Artifact handled", "path", action.Path, "action", action.Action)
	c.result.Artifact = action
	return action, nil
}

// Result returns what the run has done so far.
func (c *Configurator) Result() SynthesisResult {
	return c.result
}

// Apply loads every entry of r in application order and then calls Handle.
// The first failing entry aborts the run before anything is written.
func (c *Configurator) Apply(ctx context.Context, r *config.Resolved) (*SynthesisResult, error) {
	for _, e := range r.All() {
		if err := c.Load(ctx, e); err != nil {
			return nil, err
		}
	}
	if _, err := c.Handle(); err != nil {
		return nil, err
	}
	result := c.Result()
	return &result, nil
}
