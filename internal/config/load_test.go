package config

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bianoble/macrame/internal/entry"
)

func TestLoadBuiltinDefault(t *testing.T) {
	doc, err := Load(LevelDefault, BuiltinDefaultPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(doc.Categories["Tool"]) == 0 {
		t.Error("default document should declare at least one Tool")
	}
	if len(doc.Categories["Environment"]) == 0 {
		t.Error("default document should declare Environment variables")
	}
	if _, err := Aggregate([]*Document{doc}); err != nil {
		t.Errorf("default document does not aggregate: %v", err)
	}
}

func TestParseTOML(t *testing.T) {
	data := `
[[Environment]]
name = "CFLAGS"
value = "-O2"

[[Environment]]
name = "CFLAGS"
value = "-g"
method = "append"

[[MakefileRule]]
targets = "flash"
prerequisites = ["all"]
command = "openocd -f board.cfg"
phony = true
`
	doc, err := Parse(LevelRoot, "macrame.toml", []byte(data))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := len(doc.Categories["Environment"]); got != 2 {
		t.Errorf("Environment declarations = %d, want 2", got)
	}
	rule, ok := doc.Categories["MakefileRule"][0].(map[string]any)
	if !ok {
		t.Fatalf("rule declaration is %T, want map", doc.Categories["MakefileRule"][0])
	}
	if rule["phony"] != true {
		t.Errorf("phony = %v, want true", rule["phony"])
	}
}

func TestParseYAML(t *testing.T) {
	data := `
Tool:
  - name: arm-none-eabi-gcc
    arg: --version
    compare: ">="
    version: "10.3"
Environment:
  - name: CC
    value: arm-none-eabi-gcc
`
	doc, err := Parse(LevelPort, "config.yaml", []byte(data))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	r, err := Aggregate([]*Document{doc})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if r.Len() != 2 {
		t.Errorf("resolved entries = %d, want 2", r.Len())
	}
}

func TestParseEmptyDocuments(t *testing.T) {
	for _, name := range []string{"a.toml", "a.yaml"} {
		doc, err := Parse(LevelRoot, name, nil)
		if err != nil {
			t.Fatalf("Parse(%s): %v", name, err)
		}
		if len(doc.Categories) != 0 {
			t.Errorf("%s: categories = %v, want none", name, doc.Categories)
		}
	}
}

func TestParseInvalidSyntax(t *testing.T) {
	if _, err := Parse(LevelRoot, "macrame.toml", []byte("[[Environment]\nname=")); err == nil {
		t.Error("expected TOML syntax error")
	}
	if _, err := Parse(LevelRoot, "macrame.yaml", []byte("Environment: [")); err == nil {
		t.Error("expected YAML syntax error")
	}
}

func TestParseUnsupportedExtension(t *testing.T) {
	_, err := Parse(LevelRoot, "macrame.json", []byte("{}"))
	if err == nil || !strings.Contains(err.Error(), "unsupported extension") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestParseCategoryNotAList(t *testing.T) {
	data := "Environment:\n  name: CC\n  value: gcc\nFuture: 3\n"
	_, err := Parse(LevelRoot, "macrame.yaml", []byte(data))
	if err == nil {
		t.Fatal("expected error for a category that is not a list")
	}
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("error is %T, want *ValidationError", err)
	}
	if len(ve.Errors) != 1 || !strings.Contains(ve.Errors[0], "'Environment' must be a list") {
		t.Errorf("Errors = %v", ve.Errors)
	}
	if !errors.Is(err, entry.ErrInvalidConfiguration) {
		t.Error("expected error to match ErrInvalidConfiguration")
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(LevelRoot, filepath.Join(t.TempDir(), "macrame.toml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadHierarchical(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "macrame.toml"), "[[Environment]]\nname = \"OPT\"\nvalue = \"0\"\n")
	writeFile(t, filepath.Join(root, "port", "avr", "config.toml"), "[[Environment]]\nname = \"OPT\"\nvalue = \"s\"\n")

	result, err := LoadHierarchical(HierarchicalOptions{DiscoverOptions{ProjectRoot: root, PortName: "avr"}})
	if err != nil {
		t.Fatalf("LoadHierarchical: %v", err)
	}
	if len(result.Documents) != 3 {
		t.Fatalf("documents = %d, want 3", len(result.Documents))
	}
	for _, l := range result.Layers {
		if !l.Loaded {
			t.Errorf("layer %s not loaded", l.Level)
		}
	}
}

func TestLoadHierarchicalParseError(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "macrame.toml"), "not = [valid")

	result, err := LoadHierarchical(HierarchicalOptions{DiscoverOptions{ProjectRoot: root}})
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !strings.Contains(err.Error(), "root layer") {
		t.Errorf("error should name the layer: %v", err)
	}
	if result == nil || result.Layers[1].Err == nil || result.Layers[1].Loaded {
		t.Errorf("root layer info should carry the error: %+v", result)
	}
	if !result.Layers[0].Loaded {
		t.Error("default layer should have loaded before the failure")
	}
}
