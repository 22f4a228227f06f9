package environ

import (
	"fmt"
	"os"

	"dario.cat/mergo"
	"github.com/joho/godotenv"
)

// ReadDotEnv reads a .env file. A missing file yields an empty map.
func ReadDotEnv(path string) (map[string]string, error) {
	vars, err := godotenv.Read(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return vars, nil
}

// Merge returns base overlaid with overlay; overlay wins on conflicts, also
// when its value is empty.
func Merge(base, overlay map[string]string) (map[string]string, error) {
	out := make(map[string]string, len(base)+len(overlay))
	if err := mergo.Merge(&out, base, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("merging environment: %w", err)
	}
	if err := mergo.Merge(&out, overlay, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("merging environment: %w", err)
	}
	// mergo skips empty source values.
	for k, v := range overlay {
		if v == "" {
			out[k] = v
		}
	}
	return out, nil
}

// WithDotEnv returns a Map holding base on top of the variables from the
// .env file at path. Variables present in base take precedence over the
// file. A nil base means the process environment.
func WithDotEnv(path string, base *Map) (*Map, error) {
	fileVars, err := ReadDotEnv(path)
	if err != nil {
		return nil, err
	}
	if base == nil {
		base = FromOS()
	}
	merged, err := Merge(fileVars, base.Snapshot())
	if err != nil {
		return nil, err
	}
	return NewMap(merged), nil
}
