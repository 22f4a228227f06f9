package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestDiscoverPathsAllLevels(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "macrame.toml"), "")
	writeFile(t, filepath.Join(root, "port", "stm32", "config.yaml"), "")

	layers := DiscoverPaths(DiscoverOptions{ProjectRoot: root, PortName: "stm32"})

	if len(layers) != 3 {
		t.Fatalf("expected 3 layers, got %d", len(layers))
	}
	if layers[0].Level != LevelDefault || layers[0].Path != BuiltinDefaultPath {
		t.Errorf("layers[0] = %+v, want builtin default", layers[0])
	}
	if layers[1].Level != LevelRoot {
		t.Errorf("layers[1].Level = %q, want %q", layers[1].Level, LevelRoot)
	}
	if layers[2].Level != LevelPort {
		t.Errorf("layers[2].Level = %q, want %q", layers[2].Level, LevelPort)
	}
	if got, want := layers[2].Path, filepath.Join(root, "port", "stm32", "config.yaml"); got != want {
		t.Errorf("port path = %q, want %q", got, want)
	}
}

func TestDiscoverPathsDefaultOnly(t *testing.T) {
	layers := DiscoverPaths(DiscoverOptions{ProjectRoot: t.TempDir()})

	if len(layers) != 1 {
		t.Fatalf("expected 1 layer, got %d", len(layers))
	}
	if layers[0].Level != LevelDefault {
		t.Errorf("layers[0].Level = %q, want %q", layers[0].Level, LevelDefault)
	}
}

func TestDiscoverPathsMissingPortDocument(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "port", "nrf52"), 0755); err != nil {
		t.Fatal(err)
	}

	layers := DiscoverPaths(DiscoverOptions{ProjectRoot: root, PortName: "nrf52"})
	for _, l := range layers {
		if l.Level == LevelPort {
			t.Errorf("port layer should be omitted when no document exists, got %+v", l)
		}
	}
}

func TestDiscoverPathsExtensionPreference(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "macrame.yml"), "")
	writeFile(t, filepath.Join(root, "macrame.toml"), "")

	layers := DiscoverPaths(DiscoverOptions{ProjectRoot: root})
	if got, want := layers[1].Path, filepath.Join(root, "macrame.toml"); got != want {
		t.Errorf("root path = %q, want %q", got, want)
	}
}

func TestDiscoverPathsIgnoresDirectories(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "macrame.toml"), 0755); err != nil {
		t.Fatal(err)
	}

	layers := DiscoverPaths(DiscoverOptions{ProjectRoot: root})
	if len(layers) != 1 {
		t.Errorf("expected a directory named like the document to be ignored, got %d layers", len(layers))
	}
}

func TestDiscoverPathsDefaultOverride(t *testing.T) {
	layers := DiscoverPaths(DiscoverOptions{ProjectRoot: t.TempDir(), DefaultPath: "/opt/macrame/defaults.toml"})
	if layers[0].Path != "/opt/macrame/defaults.toml" {
		t.Errorf("default path = %q, want override", layers[0].Path)
	}
}
