package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bianoble/macrame/internal/entry"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

//go:embed default.toml
var defaultDocument []byte

// DefaultDocument returns the embedded default layer.
func DefaultDocument() []byte {
	return append([]byte(nil), defaultDocument...)
}

// Load reads the layer document at path. BuiltinDefaultPath loads the
// embedded default.
func Load(level Level, path string) (*Document, error) {
	if path == BuiltinDefaultPath {
		return Parse(level, path, defaultDocument)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return Parse(level, path, data)
}

// Parse decodes a layer document. The format is chosen by the extension of
// path: TOML for .toml, YAML for .yaml and .yml.
func Parse(level Level, path string, data []byte) (*Document, error) {
	raw := map[string]any{}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if err := toml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("config %s: unsupported extension %q, use one of %s", path, ext, strings.Join(Extensions, ", "))
	}

	doc := &Document{Level: level, Path: path, Categories: make(map[string][]any, len(raw))}
	var errs []string
	for key, value := range raw {
		list, ok := asList(value)
		if !ok {
			if _, known := entry.LookupCategory(key); known {
				errs = append(errs, fmt.Sprintf("'%s' must be a list of tables, got %T", key, value))
				continue
			}
		}
		doc.Categories[key] = list
	}
	if len(errs) > 0 {
		sort.Strings(errs)
		return nil, &ValidationError{Path: path, Errors: errs}
	}
	return doc, nil
}

func asList(v any) ([]any, bool) {
	switch x := v.(type) {
	case nil:
		return nil, true
	case []any:
		return x, true
	case []map[string]any:
		out := make([]any, len(x))
		for i, m := range x {
			out[i] = m
		}
		return out, true
	}
	return nil, false
}

// ValidationError holds every structural problem found in one document.
type ValidationError struct {
	Path   string
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config %s is invalid:\n  - %s", e.Path, strings.Join(e.Errors, "\n  - "))
}

func (e *ValidationError) Unwrap() error {
	return entry.ErrInvalidConfiguration
}

// LoadHierarchical discovers and loads every layer. Loading stops at the
// first document that cannot be read or parsed; its ConfigLayerInfo
// carries the error.
func LoadHierarchical(opts HierarchicalOptions) (*HierarchicalResult, error) {
	result := &HierarchicalResult{Layers: DiscoverPaths(opts.DiscoverOptions)}

	for i := range result.Layers {
		layer := &result.Layers[i]
		doc, err := Load(layer.Level, layer.Path)
		if err != nil {
			layer.Err = err
			return result, fmt.Errorf("loading %s layer: %w", layer.Level, err)
		}
		layer.Loaded = true
		result.Documents = append(result.Documents, doc)
	}
	return result, nil
}
