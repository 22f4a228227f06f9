// Package project answers questions about a macrame project directory:
// whether it is usable, which ports it has, and where generated files go.
package project

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bianoble/macrame/internal/config"
	"github.com/bianoble/macrame/internal/engine"
	"github.com/gofrs/flock"
)

// SrcDir holds the project's portable sources.
const SrcDir = "src"

// LockFile serializes concurrent runs against the same project.
const LockFile = ".macrame.lock"

// ErrNotAProject is returned when a directory has no src/ directory.
var ErrNotAProject = errors.New("not a macrame project")

// ErrUnknownPort is returned when a requested port does not exist.
var ErrUnknownPort = errors.New("unknown port")

// IsUsable reports whether root looks like a project.
func IsUsable(root string) bool {
	fi, err := os.Stat(filepath.Join(root, SrcDir))
	return err == nil && fi.IsDir()
}

// Check returns ErrNotAProject, wrapped with root, when root is not usable.
func Check(root string) error {
	if !IsUsable(root) {
		return fmt.Errorf("%s: %w (no %s/ directory)", root, ErrNotAProject, SrcDir)
	}
	return nil
}

// Name returns the project name, the base name of its directory.
func Name(root string) string {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}
	return filepath.Base(abs)
}

// ListPorts returns the sorted names of the directories under port/.
// Hidden directories are ignored. A project without port/ has no ports.
func ListPorts(root string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(root, config.PortsDir))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing ports: %w", err)
	}

	var ports []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			ports = append(ports, e.Name())
		}
	}
	sort.Strings(ports)
	return ports, nil
}

// ResolvePort picks the port to build. An empty request selects the first
// port in sorted order, or none when the project has no ports.
func ResolvePort(root, requested string) (string, error) {
	ports, err := ListPorts(root)
	if err != nil {
		return "", err
	}
	if requested == "" {
		if len(ports) == 0 {
			return "", nil
		}
		return ports[0], nil
	}
	for _, p := range ports {
		if p == requested {
			return p, nil
		}
	}
	if len(ports) == 0 {
		return "", fmt.Errorf("%w '%s': project has no ports", ErrUnknownPort, requested)
	}
	return "", fmt.Errorf("%w '%s' (available: %s)", ErrUnknownPort, requested, strings.Join(ports, ", "))
}

// GenDir returns <root>/gen.
func GenDir(root string) string {
	return filepath.Join(root, engine.GenDir)
}

// Lock takes the project lock, waiting until ctx is done. The caller
// releases it with Unlock.
func Lock(ctx context.Context, root string) (*flock.Flock, error) {
	dir := GenDir(root)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", dir, err)
	}
	fl := flock.New(filepath.Join(dir, LockFile))
	ok, err := fl.TryLockContext(ctx, 100*time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("locking project: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("locking project: %s is held by another process", fl.Path())
	}
	return fl, nil
}
