package entry

import "github.com/bianoble/macrame/internal/version"

// Tool requires an executable on the search path, optionally at a
// particular version.
type Tool struct {
	Name string
	// Arg is passed to the tool when probing its version, e.g. "--version".
	Arg     Optional[string]
	Compare Optional[version.Operator]
	Version Optional[string]
}

func (Tool) Category() Category { return CategoryTool }

func (t Tool) Label() string { return t.Name }

// NewTool validates a raw Tool declaration.
func NewTool(raw map[string]any) (Tool, error) {
	a := newAttributes(CategoryTool, raw, "name")

	name, err := a.required("name")
	if err != nil {
		return Tool{}, err
	}
	t := Tool{Name: name}

	if t.Arg, err = a.optional("arg"); err != nil {
		return Tool{}, err
	}

	cmp, err := a.optional("compare")
	if err != nil {
		return Tool{}, err
	}
	if s, ok := cmp.Get(); ok {
		op, err := version.ParseOperator(s)
		if err != nil {
			return Tool{}, a.invalid("compare", s, "must be one of ==, >=, >, <=, <")
		}
		t.Compare = Some(op)
	}

	if t.Version, err = a.optional("version"); err != nil {
		return Tool{}, err
	}
	if s, ok := t.Version.Get(); ok {
		if _, err := version.Parse(s); err != nil {
			return Tool{}, a.invalid("version", s, err.Error())
		}
	}

	switch {
	case t.Compare.IsSet() && !t.Version.IsSet():
		return Tool{}, a.invalid("compare", cmp.String(), "requires 'version'")
	case t.Version.IsSet() && !t.Compare.IsSet():
		return Tool{}, a.invalid("version", t.Version.String(), "requires 'compare'")
	}

	return t, nil
}

// Requirement returns the version constraint, if the declaration has one.
func (t Tool) Requirement() (version.Operator, version.Version, bool) {
	op, ok := t.Compare.Get()
	if !ok {
		return "", version.Version{}, false
	}
	raw, _ := t.Version.Get()
	v, err := version.Parse(raw)
	if err != nil {
		return "", version.Version{}, false
	}
	return op, v, true
}

// CombineTool keeps the later declaration in full. Tool checks are not
// merged field by field.
func CombineTool(earlier, later Tool) (Tool, error) {
	if earlier.Name != later.Name {
		return Tool{}, &IncompatibleCombineError{Category: CategoryTool, Earlier: earlier.Name, Later: later.Name}
	}
	return later, nil
}
