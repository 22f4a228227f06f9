package buildsys

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
)

// Invocation is one run of the build program.
type Invocation struct {
	Program string
	Args    []string
	Dir     string
	Env     []string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Runner executes an Invocation. A non-zero exit is reported as *ExitError.
type Runner interface {
	Run(ctx context.Context, inv Invocation) error
}

// ExitError carries the exit status of a build program that failed.
type ExitError struct {
	Program string
	Code    int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with status %d", e.Program, e.Code)
}

// ExecRunner starts real processes.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, inv Invocation) error {
	cmd := exec.CommandContext(ctx, inv.Program, inv.Args...)
	cmd.Dir = inv.Dir
	cmd.Env = inv.Env
	cmd.Stdin = inv.Stdin
	cmd.Stdout = inv.Stdout
	cmd.Stderr = inv.Stderr

	err := cmd.Run()
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		code := ee.ExitCode()
		if code < 0 {
			code = 1
		}
		return &ExitError{Program: inv.Program, Code: code}
	}
	if err != nil {
		return fmt.Errorf("running %s: %w", inv.Program, err)
	}
	return nil
}
