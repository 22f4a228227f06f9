package entry

// Method controls how a variable's value is combined with what is already set.
type Method string

// MethodAppend appends to the existing value, separated by a space.
const MethodAppend Method = "append"

// DefaultCondition is the condition of a variable that declares none.
const DefaultCondition = "True"

// Environment registers a variable into the build environment.
type Environment struct {
	Name        string
	Value       string
	Condition   Optional[string]
	Method      Optional[Method]
	Description Optional[string]
}

func (Environment) Category() Category { return CategoryEnvironment }

func (e Environment) Label() string { return e.Name }

// NewEnvironment validates a raw Environment declaration.
func NewEnvironment(raw map[string]any) (Environment, error) {
	a := newAttributes(CategoryEnvironment, raw, "name")

	name, err := a.required("name")
	if err != nil {
		return Environment{}, err
	}
	value, err := a.required("value")
	if err != nil {
		return Environment{}, err
	}
	e := Environment{Name: name, Value: value}

	if e.Condition, err = a.optional("condition"); err != nil {
		return Environment{}, err
	}

	method, err := a.optional("method")
	if err != nil {
		return Environment{}, err
	}
	if m, ok := method.Get(); ok {
		if Method(m) != MethodAppend {
			return Environment{}, a.invalid("method", m, "must be absent or 'append'")
		}
		e.Method = Some(MethodAppend)
	}

	if e.Description, err = a.optional("description"); err != nil {
		return Environment{}, err
	}
	return e, nil
}

// ConditionText returns the declared condition or DefaultCondition.
func (e Environment) ConditionText() string {
	return e.Condition.Or(DefaultCondition)
}

// Appends reports whether the variable appends to the existing value.
func (e Environment) Appends() bool {
	m, ok := e.Method.Get()
	return ok && m == MethodAppend
}

// CombineEnvironment merges a later declaration of a variable into an
// earlier one. An appending later declaration concatenates the values,
// otherwise the later value replaces the earlier one. The merged entry is
// unconditional and carries no description.
func CombineEnvironment(earlier, later Environment) (Environment, error) {
	if earlier.Name != later.Name {
		return Environment{}, &IncompatibleCombineError{
			Category: CategoryEnvironment,
			Earlier:  earlier.Name,
			Later:    later.Name,
		}
	}

	merged := Environment{
		Name:      later.Name,
		Value:     later.Value,
		Condition: Some(DefaultCondition),
		Method:    later.Method,
	}
	if later.Appends() {
		merged.Value = earlier.Value + " " + later.Value
		merged.Method = Some(MethodAppend)
	}
	return merged, nil
}
