package engine

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"

	"github.com/google/shlex"
)

// Prober locates and runs toolchain executables.
type Prober interface {
	LookPath(name string) (string, error)
	// Output runs path with args and returns its standard output.
	Output(ctx context.Context, path string, args []string, env []string) (string, error)
}

// ExecProber runs real processes.
type ExecProber struct{}

func (ExecProber) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

func (ExecProber) Output(ctx context.Context, path string, args []string, env []string) (string, error) {
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Env = env
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		// Some tools print their version and still exit non-zero; keep the
		// output when there is any.
		if stdout.Len() > 0 {
			return stdout.String(), nil
		}
		return "", fmt.Errorf("running %s: %w: %s", path, err, bytes.TrimSpace(stderr.Bytes()))
	}
	if stdout.Len() == 0 {
		return stderr.String(), nil
	}
	return stdout.String(), nil
}

// splitArgs splits a declared argument string the way a shell would.
func splitArgs(arg string) ([]string, error) {
	if arg == "" {
		return nil, nil
	}
	args, err := shlex.Split(arg)
	if err != nil {
		return nil, fmt.Errorf("splitting arguments %q: %w", arg, err)
	}
	return args, nil
}
