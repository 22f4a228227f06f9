// Package expr expands ${NAME} references and evaluates the boolean
// conditions attached to environment variables.
package expr

import "regexp"

// placeholder matches up to the first closing brace.
var placeholder = regexp.MustCompile(`\$\{(.*?)\}`)

// LookupFunc returns the value of a variable and whether it is set.
type LookupFunc func(name string) (string, bool)

// Interpolate replaces every ${NAME} in s with the value lookup returns.
// Unset variables expand to the empty string.
func Interpolate(s string, lookup LookupFunc) string {
	return placeholder.ReplaceAllStringFunc(s, func(m string) string {
		name := placeholder.FindStringSubmatch(m)[1]
		v, _ := lookup(name)
		return v
	})
}

// References returns the variable names s refers to, in order of appearance.
func References(s string) []string {
	var names []string
	for _, m := range placeholder.FindAllStringSubmatch(s, -1) {
		names = append(names, m[1])
	}
	return names
}
