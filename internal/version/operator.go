package version

import "fmt"

// Operator is a comparison used to check an installed version against a
// required one.
type Operator string

const (
	OpEqual          Operator = "=="
	OpGreaterOrEqual Operator = ">="
	OpGreater        Operator = ">"
	OpLessOrEqual    Operator = "<="
	OpLess           Operator = "<"
)

// Operators lists every recognized operator.
var Operators = []Operator{OpEqual, OpGreaterOrEqual, OpGreater, OpLessOrEqual, OpLess}

// ParseOperator validates s as one of the recognized operators.
func ParseOperator(s string) (Operator, error) {
	for _, op := range Operators {
		if string(op) == s {
			return op, nil
		}
	}
	return "", fmt.Errorf("unknown comparison operator %q", s)
}

// Satisfies reports whether v op required holds.
func (v Version) Satisfies(op Operator, required Version) bool {
	c := v.Compare(required)
	switch op {
	case OpEqual:
		return c == 0
	case OpGreaterOrEqual:
		return c >= 0
	case OpGreater:
		return c > 0
	case OpLessOrEqual:
		return c <= 0
	case OpLess:
		return c < 0
	}
	return false
}
