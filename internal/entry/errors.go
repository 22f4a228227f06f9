package entry

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidConfiguration      = errors.New("invalid configuration")
	ErrMandatoryAttributeMissing = errors.New("mandatory attribute missing")
	ErrInvalidAttribute          = errors.New("invalid attribute")
	ErrIncompatibleCombine       = errors.New("incompatible combine")
)

// InvalidConfigurationError reports a declaration that is not a key/value mapping.
type InvalidConfigurationError struct {
	Category Category
	Got      any
}

func (e *InvalidConfigurationError) Error() string {
	return fmt.Sprintf("'%s' declaration must be a table of attributes, got %T", e.Category, e.Got)
}

func (e *InvalidConfigurationError) Unwrap() error { return ErrInvalidConfiguration }

// MandatoryAttributeMissingError reports a declaration lacking a required attribute.
// Label is a best-effort hint and may be empty when the label attribute
// itself is the one missing.
type MandatoryAttributeMissingError struct {
	Category  Category
	Label     string
	Attribute string
}

func (e *MandatoryAttributeMissingError) Error() string {
	if e.Label != "" {
		return fmt.Sprintf("'%s' '%s' is missing mandatory attribute '%s'", e.Category, e.Label, e.Attribute)
	}
	return fmt.Sprintf("'%s' is missing mandatory attribute '%s'", e.Category, e.Attribute)
}

func (e *MandatoryAttributeMissingError) Unwrap() error { return ErrMandatoryAttributeMissing }

// InvalidAttributeError reports an attribute whose value is outside its allowed set
// or of the wrong type.
type InvalidAttributeError struct {
	Category  Category
	Attribute string
	Value     any
	Reason    string
}

func (e *InvalidAttributeError) Error() string {
	msg := fmt.Sprintf("'%s.%s' is invalid", e.Category, e.Attribute)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *InvalidAttributeError) Unwrap() error { return ErrInvalidAttribute }

// IncompatibleCombineError reports an attempt to combine entries with different labels.
type IncompatibleCombineError struct {
	Category Category
	Earlier  string
	Later    string
}

func (e *IncompatibleCombineError) Error() string {
	return fmt.Sprintf("cannot combine '%s' '%s' with '%s'", e.Category, e.Earlier, e.Later)
}

func (e *IncompatibleCombineError) Unwrap() error { return ErrIncompatibleCombine }
