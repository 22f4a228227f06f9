package entry

import (
	"fmt"
	"strconv"
	"strings"
)

// attributes reads typed values out of one raw declaration. Keys that no
// category knows about are ignored so newer documents still load.
type attributes struct {
	category Category
	raw      map[string]any
	label    string
}

func newAttributes(category Category, raw map[string]any, labelKey string) *attributes {
	a := &attributes{category: category, raw: raw}
	if s, ok := scalarString(raw[labelKey]); ok {
		a.label = s
	}
	return a
}

func (a *attributes) missing(name string) error {
	return &MandatoryAttributeMissingError{Category: a.category, Label: a.label, Attribute: name}
}

func (a *attributes) invalid(name string, value any, reason string) error {
	return &InvalidAttributeError{Category: a.category, Attribute: name, Value: value, Reason: reason}
}

// required returns a mandatory scalar attribute rendered as a string.
func (a *attributes) required(name string) (string, error) {
	v, ok := a.raw[name]
	if !ok || v == nil {
		return "", a.missing(name)
	}
	s, ok := scalarString(v)
	if !ok {
		return "", a.invalid(name, v, fmt.Sprintf("expected a scalar, got %T", v))
	}
	return s, nil
}

// requiredWords returns a mandatory attribute given either as a string or as
// a list of strings, joined with single spaces.
func (a *attributes) requiredWords(name string) (string, error) {
	v, ok := a.raw[name]
	if !ok || v == nil {
		return "", a.missing(name)
	}
	s, ok := words(v)
	if !ok {
		return "", a.invalid(name, v, fmt.Sprintf("expected a string or a list of strings, got %T", v))
	}
	return s, nil
}

func (a *attributes) optional(name string) (Optional[string], error) {
	v, ok := a.raw[name]
	if !ok || v == nil {
		return None[string](), nil
	}
	s, ok := scalarString(v)
	if !ok {
		return None[string](), a.invalid(name, v, fmt.Sprintf("expected a scalar, got %T", v))
	}
	return Some(s), nil
}

func (a *attributes) optionalBool(name string) (Optional[bool], error) {
	v, ok := a.raw[name]
	if !ok || v == nil {
		return None[bool](), nil
	}
	switch b := v.(type) {
	case bool:
		return Some(b), nil
	case string:
		parsed, err := strconv.ParseBool(b)
		if err == nil {
			return Some(parsed), nil
		}
	}
	return None[bool](), a.invalid(name, v, "expected a boolean")
}

// scalarString renders strings, numbers and booleans. Booleans use the
// capitalized spelling that conditions accept.
func scalarString(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case bool:
		if x {
			return "True", true
		}
		return "False", true
	case int:
		return strconv.Itoa(x), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case uint64:
		return strconv.FormatUint(x, 10), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	}
	return "", false
}

func words(v any) (string, bool) {
	switch x := v.(type) {
	case []any:
		parts := make([]string, 0, len(x))
		for _, item := range x {
			s, ok := scalarString(item)
			if !ok {
				return "", false
			}
			parts = append(parts, s)
		}
		return strings.Join(parts, " "), true
	case []string:
		return strings.Join(x, " "), true
	}
	return scalarString(v)
}
