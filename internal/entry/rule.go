package entry

// MakefileRule is a rule written verbatim into the generated Makefile.
type MakefileRule struct {
	Targets string
	// Prerequisites may be empty, in which case the rule has none.
	Prerequisites string
	Command       Optional[string]
	Description   Optional[string]
	Phony         Optional[bool]
}

func (MakefileRule) Category() Category { return CategoryMakefileRule }

func (r MakefileRule) Label() string { return r.Targets }

// NewMakefileRule validates a raw MakefileRule declaration. Targets and
// prerequisites may be given as a string or as a list of strings.
func NewMakefileRule(raw map[string]any) (MakefileRule, error) {
	a := newAttributes(CategoryMakefileRule, raw, "targets")
	if l, ok := words(raw["targets"]); ok {
		a.label = l
	}

	targets, err := a.requiredWords("targets")
	if err != nil {
		return MakefileRule{}, err
	}
	if targets == "" {
		return MakefileRule{}, a.invalid("targets", targets, "must not be empty")
	}
	prereqs, err := a.requiredWords("prerequisites")
	if err != nil {
		return MakefileRule{}, err
	}
	r := MakefileRule{Targets: targets, Prerequisites: prereqs}

	if r.Command, err = a.optional("command"); err != nil {
		return MakefileRule{}, err
	}
	if r.Description, err = a.optional("description"); err != nil {
		return MakefileRule{}, err
	}
	if r.Phony, err = a.optionalBool("phony"); err != nil {
		return MakefileRule{}, err
	}
	return r, nil
}

// IsPhony reports whether the rule is declared phony.
func (r MakefileRule) IsPhony() bool {
	return r.Phony.Or(false)
}

// CombineMakefileRule keeps the later declaration of a target.
func CombineMakefileRule(earlier, later MakefileRule) (MakefileRule, error) {
	if earlier.Targets != later.Targets {
		return MakefileRule{}, &IncompatibleCombineError{
			Category: CategoryMakefileRule,
			Earlier:  earlier.Targets,
			Later:    later.Targets,
		}
	}
	return later, nil
}
