package engine

// FileAction represents an action taken on a single file during synthesis.
type FileAction struct {
	Path   string
	Action string // "written", "modified", "unchanged", "new" (dry run)
}

const (
	ActionWritten   = "written"
	ActionModified  = "modified"
	ActionUnchanged = "unchanged"
	ActionNew       = "new"
)

// Changed reports whether the action touched (or would touch) the file.
func (a FileAction) Changed() bool {
	return a.Action != ActionUnchanged
}

// ToolReport records the outcome of one tool check.
type ToolReport struct {
	Name     string
	Path     string
	Version  string // empty when only existence was checked
	Required string // e.g. ">= 3.81", empty when only existence was checked
}

// VariableChange records one environment registration.
type VariableChange struct {
	Name    string
	Value   string // value after registration
	Skipped bool   // condition evaluated to false
	// Unset lists the ${NAME} references in the value that had no value.
	Unset []string
}

// SynthesisResult holds the outcome of applying a resolved configuration.
type SynthesisResult struct {
	Tools     []ToolReport
	Variables []VariableChange
	Rules     int
	Artifact  FileAction
}
