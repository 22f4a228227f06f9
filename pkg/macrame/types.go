package macrame

import (
	"github.com/bianoble/macrame/internal/buildsys"
	"github.com/bianoble/macrame/internal/config"
	"github.com/bianoble/macrame/internal/engine"
	"github.com/bianoble/macrame/internal/entry"
	"github.com/bianoble/macrame/internal/scaffold"
)

// Type aliases re-export internal types as the public API.

type Entry = entry.Entry
type Tool = entry.Tool
type Environment = entry.Environment
type MakefileRule = entry.MakefileRule
type Category = entry.Category
type Resolved = config.Resolved
type LayerInfo = config.ConfigLayerInfo
type Plan = buildsys.Plan
type ExitError = buildsys.ExitError
type FileAction = engine.FileAction
type SynthesisResult = engine.SynthesisResult
type ScaffoldResult = scaffold.Result

// ResolveResult holds the merged configuration of a project and the status
// of every layer that was considered.
type ResolveResult struct {
	Port     string
	Resolved *Resolved
	Layers   []LayerInfo
}
