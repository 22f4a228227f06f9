// Package version parses the dotted numeric versions reported by toolchain
// programs and compares them against the versions a project requires.
package version

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/Masterminds/semver/v3"
)

// ErrInvalidVersion is the sentinel wrapped by every parse failure.
var ErrInvalidVersion = errors.New("invalid version")

// InvalidVersionError reports the raw text that could not be parsed.
type InvalidVersionError struct {
	Raw string
}

func (e *InvalidVersionError) Error() string {
	return fmt.Sprintf("invalid version %q", e.Raw)
}

func (e *InvalidVersionError) Unwrap() error {
	return ErrInvalidVersion
}

// A suffix is only accepted once major, minor and patch are all present,
// so "1.2.3.post13+meta" parses but "1.2." and "1..3" do not.
var versionPattern = regexp.MustCompile(`^(\d+)(?:\.(\d+)(?:\.(\d+)(?:[.+-][0-9A-Za-z][0-9A-Za-z.+-]*)?)?)?$`)

// outputPattern finds a version-like substring in free-form tool output.
var outputPattern = regexp.MustCompile(`\d+(\.\d+)(\.\d+)?`)

// Version is a parsed major.minor.patch triple. Suffixes are discarded.
type Version struct {
	sv *semver.Version
}

// Parse parses s, defaulting missing minor and patch components to 0.
func Parse(s string) (Version, error) {
	m := versionPattern.FindStringSubmatch(s)
	if m == nil {
		return Version{}, &InvalidVersionError{Raw: s}
	}

	var parts [3]uint64
	for i := range parts {
		if m[i+1] == "" {
			continue
		}
		n, err := strconv.ParseUint(m[i+1], 10, 64)
		if err != nil {
			return Version{}, &InvalidVersionError{Raw: s}
		}
		parts[i] = n
	}

	return Version{sv: semver.New(parts[0], parts[1], parts[2], "", "")}, nil
}

// MustParse is like Parse but panics on invalid input.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

func (v Version) semver() *semver.Version {
	if v.sv == nil {
		return semver.New(0, 0, 0, "", "")
	}
	return v.sv
}

// Major returns the major component.
func (v Version) Major() uint64 { return v.semver().Major() }

// Minor returns the minor component.
func (v Version) Minor() uint64 { return v.semver().Minor() }

// Patch returns the patch component.
func (v Version) Patch() uint64 { return v.semver().Patch() }

// String renders the version as major.minor.patch.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major(), v.Minor(), v.Patch())
}

// Compare returns -1, 0 or 1 depending on whether v is lower than, equal to
// or greater than o.
func (v Version) Compare(o Version) int {
	return v.semver().Compare(o.semver())
}

// Equal reports whether both versions have the same triple.
func (v Version) Equal(o Version) bool {
	return v.semver().Equal(o.semver())
}

// LessThan reports whether v orders before o.
func (v Version) LessThan(o Version) bool {
	return v.semver().LessThan(o.semver())
}

// GreaterThan reports whether v orders after o.
func (v Version) GreaterThan(o Version) bool {
	return v.semver().GreaterThan(o.semver())
}

// Extract returns the first version-like substring of output.
func Extract(output string) (string, bool) {
	m := outputPattern.FindString(output)
	return m, m != ""
}
