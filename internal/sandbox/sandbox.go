// Package sandbox confines file system changes to a project directory.
// Every path is resolved through symlinks before it is touched, so a link
// inside the project cannot redirect a write or a removal elsewhere.
package sandbox

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrEscape is returned when a path resolves outside the sandbox root.
var ErrEscape = errors.New("path escapes the project root")

// TempPattern names the temporary files created by WriteFile.
const TempPattern = ".macrame-*.tmp"

// Root is a project directory that writes and removals are confined to.
type Root struct {
	dir string
}

// New resolves dir to its real absolute path. The directory must exist.
func New(dir string) (*Root, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving project root: %w", err)
	}
	real, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("resolving project root symlinks: %w", err)
	}
	return &Root{dir: real}, nil
}

// Dir returns the resolved root directory.
func (r *Root) Dir() string { return r.dir }

// Resolve returns the real path of rel inside the root. Components that do
// not exist yet are appended to the longest existing prefix.
func (r *Root) Resolve(rel string) (string, error) {
	if filepath.IsAbs(rel) {
		p, err := filepath.Rel(r.dir, rel)
		if err != nil {
			return "", fmt.Errorf("%w: '%s'", ErrEscape, rel)
		}
		rel = p
	}
	candidate := filepath.Clean(filepath.Join(r.dir, rel))
	resolved, err := realPrefix(candidate)
	if err != nil {
		return "", fmt.Errorf("resolving '%s': %w", rel, err)
	}
	if resolved != r.dir && !strings.HasPrefix(resolved, r.dir+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: '%s' resolves to '%s' outside '%s'", ErrEscape, rel, resolved, r.dir)
	}
	return resolved, nil
}

func realPrefix(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err == nil {
		return resolved, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}
	dir, base := filepath.Dir(path), filepath.Base(path)
	if dir == path {
		return path, nil
	}
	parent, err := realPrefix(dir)
	if err != nil {
		return "", err
	}
	return filepath.Join(parent, base), nil
}

// MkdirAll creates rel and its parents.
func (r *Root) MkdirAll(rel string, perm os.FileMode) error {
	resolved, err := r.Resolve(rel)
	if err != nil {
		return err
	}
	return os.MkdirAll(resolved, perm)
}

// WriteFile replaces rel with content through a temporary file and a
// rename, creating parent directories as needed.
func (r *Root) WriteFile(rel string, content []byte, perm os.FileMode) error {
	resolved, err := r.Resolve(rel)
	if err != nil {
		return err
	}
	dir := filepath.Dir(resolved)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, TempPattern)
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	done := false
	defer func() {
		if !done {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmpPath, resolved); err != nil {
		return fmt.Errorf("renaming temp file to %s: %w", resolved, err)
	}
	done = true
	return nil
}

// Remove deletes the file rel. A missing file is not an error.
func (r *Root) Remove(rel string) error {
	resolved, err := r.Resolve(rel)
	if err != nil {
		return err
	}
	if err := os.Remove(resolved); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// RemoveAll deletes rel and everything below it. The root itself cannot
// be removed.
func (r *Root) RemoveAll(rel string) error {
	resolved, err := r.Resolve(rel)
	if err != nil {
		return err
	}
	if resolved == r.dir {
		return fmt.Errorf("%w: refusing to remove the root itself", ErrEscape)
	}
	return os.RemoveAll(resolved)
}
