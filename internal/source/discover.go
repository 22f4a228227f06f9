// Package source finds the files the generated build compiles.
package source

import (
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/bianoble/macrame/internal/config"
	"github.com/bianoble/macrame/internal/environ"
	"github.com/bmatcuk/doublestar/v4"
)

// Kind groups source files by the tool that compiles them.
type Kind struct {
	// Variable is the environment variable the file list is exported as.
	Variable   string
	Extensions []string
}

// Kinds lists the recognized source kinds.
var Kinds = []Kind{
	{Variable: "AS_SRCs", Extensions: []string{".s"}},
	{Variable: "C_SRCs", Extensions: []string{".c"}},
	{Variable: "CXX_SRCs", Extensions: []string{".cpp"}},
}

// Sources maps each Kind's variable to project-relative, slash-separated
// paths in sorted order.
type Sources map[string][]string

// Discover collects the sources under src/ and, when port is set, under
// port/<port>/.
func Discover(root, port string) (Sources, error) {
	dirs := []string{"src"}
	if port != "" {
		dirs = append(dirs, path.Join(config.PortsDir, port))
	}

	fsys := os.DirFS(root)
	out := make(Sources, len(Kinds))
	for _, k := range Kinds {
		var files []string
		for _, dir := range dirs {
			for _, ext := range k.Extensions {
				matches, err := doublestar.Glob(fsys, dir+"/**/*"+ext, doublestar.WithFilesOnly())
				if err != nil {
					return nil, fmt.Errorf("searching %s for *%s: %w", dir, ext, err)
				}
				files = append(files, matches...)
			}
		}
		sort.Strings(files)
		out[k.Variable] = files
	}
	return out, nil
}

// Count returns the number of files across all kinds.
func (s Sources) Count() int {
	n := 0
	for _, files := range s {
		n += len(files)
	}
	return n
}

// Export sets one space-separated variable per kind in env.
func (s Sources) Export(env environ.Env) error {
	for _, k := range Kinds {
		if err := env.Set(k.Variable, strings.Join(s[k.Variable], " ")); err != nil {
			return fmt.Errorf("exporting %s: %w", k.Variable, err)
		}
	}
	return nil
}
