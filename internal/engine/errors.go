package engine

import (
	"errors"
	"fmt"

	"github.com/bianoble/macrame/internal/version"
)

var (
	ErrToolNotFound        = errors.New("tool not found")
	ErrToolVersionMismatch = errors.New("tool version mismatch")
	// ErrAborted is returned by Handle after an earlier Load failed.
	ErrAborted = errors.New("synthesis aborted")
)

// ToolNotFoundError reports an executable missing from the search path.
type ToolNotFoundError struct {
	Name string
	Err  error
}

func (e *ToolNotFoundError) Error() string {
	return fmt.Sprintf("tool '%s' not found in PATH", e.Name)
}

func (e *ToolNotFoundError) Unwrap() error { return ErrToolNotFound }

// ToolVersionMismatchError reports an installed tool that does not satisfy
// the declared requirement. Actual is empty when no version could be read
// from the tool's output.
type ToolVersionMismatchError struct {
	Name     string
	Operator version.Operator
	Required string
	Actual   string
}

func (e *ToolVersionMismatchError) Error() string {
	actual := e.Actual
	if actual == "" {
		actual = "unknown"
	}
	return fmt.Sprintf("tool '%s' version %s does not satisfy %s %s", e.Name, actual, e.Operator, e.Required)
}

func (e *ToolVersionMismatchError) Unwrap() error { return ErrToolVersionMismatch }
