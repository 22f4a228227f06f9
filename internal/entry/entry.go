// Package entry defines the typed configuration entries a layer document
// declares and the rules for combining declarations of the same entry made
// at different layers.
package entry

// Category names one kind of configuration entry. The value doubles as the
// top-level key of the category in a layer document.
type Category string

const (
	CategoryTool         Category = "Tool"
	CategoryEnvironment  Category = "Environment"
	CategoryMakefileRule Category = "MakefileRule"
)

// Categories lists the known categories in application order. Tool checks
// run before variables are registered so that a missing toolchain fails
// fast, and rules come last.
var Categories = []Category{CategoryTool, CategoryEnvironment, CategoryMakefileRule}

// LookupCategory maps a document key to a known category.
func LookupCategory(name string) (Category, bool) {
	for _, c := range Categories {
		if string(c) == name {
			return c, true
		}
	}
	return "", false
}

// Entry is one validated configuration declaration.
type Entry interface {
	Category() Category
	// Label identifies the entry within its category.
	Label() string
}

// Decode builds the entry of the given category from one raw declaration.
func Decode(category Category, raw any) (Entry, error) {
	attrs, ok := raw.(map[string]any)
	if !ok {
		return nil, &InvalidConfigurationError{Category: category, Got: raw}
	}
	switch category {
	case CategoryTool:
		return NewTool(attrs)
	case CategoryEnvironment:
		return NewEnvironment(attrs)
	case CategoryMakefileRule:
		return NewMakefileRule(attrs)
	}
	return nil, &InvalidConfigurationError{Category: category, Got: raw}
}

// Combine merges a later declaration of an entry into an earlier one and
// returns the result. Neither operand is modified. The argument order is
// significant: earlier must come from a lower precedence layer than later.
func Combine(earlier, later Entry) (Entry, error) {
	if earlier.Category() != later.Category() {
		return nil, &IncompatibleCombineError{
			Category: earlier.Category(),
			Earlier:  earlier.Label(),
			Later:    later.Label(),
		}
	}
	switch e := earlier.(type) {
	case Tool:
		if l, ok := later.(Tool); ok {
			return CombineTool(e, l)
		}
	case Environment:
		if l, ok := later.(Environment); ok {
			return CombineEnvironment(e, l)
		}
	case MakefileRule:
		if l, ok := later.(MakefileRule); ok {
			return CombineMakefileRule(e, l)
		}
	}
	return nil, &IncompatibleCombineError{
		Category: earlier.Category(),
		Earlier:  earlier.Label(),
		Later:    later.Label(),
	}
}
