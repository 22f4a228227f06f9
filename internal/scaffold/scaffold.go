// Package scaffold creates new macrame projects.
package scaffold

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/otiai10/copy"

	"github.com/bianoble/macrame/internal/engine"
	"github.com/bianoble/macrame/internal/project"
	"github.com/bianoble/macrame/internal/sandbox"
)

//go:embed all:starter
var starter embed.FS

const starterRoot = "starter"

// ErrNotEmpty is returned when the destination holds anything other than
// dotfiles.
var ErrNotEmpty = errors.New("directory is not empty")

// Result lists what New created.
type Result struct {
	Dir string
	// Files are slash-separated paths relative to Dir.
	Files []string
}

// New creates a project in dst, which may be missing or hold only
// dotfiles. The embedded starter project is used unless templateDir names
// an existing project to copy. Whatever New created is removed again when
// it fails.
func New(dst, templateDir string) (res *Result, err error) {
	if templateDir != "" && !project.IsUsable(templateDir) {
		return nil, fmt.Errorf("template %s: %w", templateDir, project.ErrNotAProject)
	}

	dir, err := filepath.Abs(dst)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", dst, err)
	}
	existing, created, err := prepareDir(dir)
	if err != nil {
		return nil, err
	}

	root, err := sandbox.New(dir)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			rollback(root, existing, created)
		}
	}()

	if templateDir != "" {
		err = copyTemplate(templateDir, root.Dir())
	} else {
		err = writeStarter(root)
	}
	if err != nil {
		return nil, err
	}

	all, err := doublestar.Glob(os.DirFS(root.Dir()), "**", doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", root.Dir(), err)
	}
	var files []string
	for _, f := range all {
		if top, _, _ := strings.Cut(f, "/"); !existing[top] {
			files = append(files, f)
		}
	}
	sort.Strings(files)
	return &Result{Dir: root.Dir(), Files: files}, nil
}

// prepareDir returns the names already present in dir and whether dir was
// created.
func prepareDir(dir string) (map[string]bool, bool, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, false, fmt.Errorf("creating %s: %w", dir, err)
		}
		return map[string]bool{}, true, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading %s: %w", dir, err)
	}

	existing := make(map[string]bool, len(entries))
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), ".") {
			return nil, false, fmt.Errorf("%s: %w", dir, ErrNotEmpty)
		}
		existing[e.Name()] = true
	}
	return existing, false, nil
}

func writeStarter(root *sandbox.Root) error {
	return fs.WalkDir(starter, starterRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := starter.ReadFile(path)
		if err != nil {
			return err
		}
		rel := strings.TrimPrefix(path, starterRoot+"/")
		return root.WriteFile(filepath.FromSlash(rel), data, 0644)
	})
}

func copyTemplate(src, dst string) error {
	err := copy.Copy(src, dst, copy.Options{
		Skip: func(_ os.FileInfo, path, _ string) (bool, error) {
			rel, err := filepath.Rel(src, path)
			if err != nil {
				return false, err
			}
			top := strings.Split(filepath.ToSlash(rel), "/")[0]
			return top == engine.GenDir || top == ".git", nil
		},
		OnSymlink: func(string) copy.SymlinkAction {
			return copy.Skip
		},
	})
	if err != nil {
		return fmt.Errorf("copying template %s: %w", src, err)
	}
	return nil
}

// rollback removes what New added.
func rollback(root *sandbox.Root, existing map[string]bool, created bool) {
	if created {
		_ = os.RemoveAll(root.Dir())
		return
	}
	entries, err := os.ReadDir(root.Dir())
	if err != nil {
		return
	}
	for _, e := range entries {
		if !existing[e.Name()] {
			_ = root.RemoveAll(e.Name())
		}
	}
}
