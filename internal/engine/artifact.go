package engine

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"
)

// GenDir is the project directory holding generated files.
const GenDir = "gen"

// ArtifactDir returns <root>/gen[/<port>]/<tag>.
func ArtifactDir(root, port, tag string) string {
	if port == "" {
		return filepath.Join(root, GenDir, tag)
	}
	return filepath.Join(root, GenDir, port, tag)
}

// WriteIfChanged writes content to path unless the file already holds
// exactly that content, in which case the file is left alone and keeps its
// modification time. With dryRun nothing is written; the returned action
// says what would have happened.
func WriteIfChanged(fsys afero.Fs, path string, content []byte, dryRun bool) (FileAction, error) {
	existing, err := afero.ReadFile(fsys, path)
	exists := err == nil
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return FileAction{}, fmt.Errorf("reading %s: %w", path, err)
	}

	if exists && bytes.Equal(existing, content) {
		return FileAction{Path: path, Action: ActionUnchanged}, nil
	}

	if dryRun {
		if exists {
			return FileAction{Path: path, Action: ActionModified}, nil
		}
		return FileAction{Path: path, Action: ActionNew}, nil
	}

	if err := writeAtomic(fsys, path, content, 0644); err != nil {
		return FileAction{}, err
	}
	if exists {
		return FileAction{Path: path, Action: ActionModified}, nil
	}
	return FileAction{Path: path, Action: ActionWritten}, nil
}

// writeAtomic writes through a temp file in the target directory and
// renames it into place.
func writeAtomic(fsys afero.Fs, path string, content []byte, perm fs.FileMode) error {
	dir := filepath.Dir(path)
	if err := fsys.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmp, err := afero.TempFile(fsys, dir, ".macrame-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = fsys.Remove(tmpPath)
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
	if err := fsys.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := fsys.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming temp file to %s: %w", path, err)
	}

	success = true
	return nil
}
