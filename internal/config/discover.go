package config

import (
	"os"
	"path/filepath"
)

// RootConfigName is the base name of the project-root document.
const RootConfigName = "macrame"

// PortConfigName is the base name of a port document under port/<name>/.
const PortConfigName = "config"

// PortsDir is the project directory holding one subdirectory per port.
const PortsDir = "port"

// BuiltinDefaultPath names the embedded default document.
const BuiltinDefaultPath = "builtin:default.toml"

// Extensions lists the recognized document extensions in lookup order.
var Extensions = []string{".toml", ".yaml", ".yml"}

// Level represents the precedence level of a configuration layer.
type Level string

const (
	LevelDefault Level = "default"
	LevelRoot    Level = "root"
	LevelPort    Level = "port"
)

// ConfigLayerInfo describes a candidate layer and its load status.
type ConfigLayerInfo struct {
	Err    error // non-nil if the file exists but failed to load
	Path   string
	Level  Level
	Loaded bool
}

// DiscoverOptions controls how layer paths are discovered.
type DiscoverOptions struct {
	// ProjectRoot is the project directory (required).
	ProjectRoot string

	// PortName selects the port layer. Empty means no port layer.
	PortName string

	// DefaultPath replaces the embedded default document.
	DefaultPath string
}

// DiscoverPaths returns the layers to load, from lowest precedence
// (default) to highest (port). The default layer is always present. The
// root and port layers are listed only when a document exists for them.
func DiscoverPaths(opts DiscoverOptions) []ConfigLayerInfo {
	defaultPath := opts.DefaultPath
	if defaultPath == "" {
		defaultPath = BuiltinDefaultPath
	}
	layers := []ConfigLayerInfo{{Path: defaultPath, Level: LevelDefault}}

	if p, ok := findDocument(opts.ProjectRoot, RootConfigName); ok {
		layers = append(layers, ConfigLayerInfo{Path: p, Level: LevelRoot})
	}

	if opts.PortName != "" {
		dir := filepath.Join(opts.ProjectRoot, PortsDir, opts.PortName)
		if p, ok := findDocument(dir, PortConfigName); ok {
			layers = append(layers, ConfigLayerInfo{Path: p, Level: LevelPort})
		}
	}

	return layers
}

// findDocument returns the first dir/base.<ext> that is a regular file.
func findDocument(dir, base string) (string, bool) {
	for _, ext := range Extensions {
		p := filepath.Join(dir, base+ext)
		if fi, err := os.Stat(p); err == nil && fi.Mode().IsRegular() {
			return p, true
		}
	}
	return "", false
}
