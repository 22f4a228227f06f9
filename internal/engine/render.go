package engine

import (
	"strings"
	"unicode"

	"github.com/bianoble/macrame/internal/entry"
)

// RenderRule renders a rule as Makefile text followed by a blank line.
func RenderRule(r entry.MakefileRule) string {
	var b strings.Builder
	if r.IsPhony() {
		b.WriteString("PHONY: " + r.Targets + "\n")
	}
	b.WriteString(r.Targets + ":")
	if r.Prerequisites != "" {
		b.WriteString(" " + r.Prerequisites)
	}
	b.WriteString("\n")
	if cmd, ok := r.Command.Get(); ok && cmd != "" {
		b.WriteString(strings.TrimRightFunc(cmd, unicode.IsSpace) + "\n")
	} else {
		b.WriteString(":\n")
	}
	b.WriteString("\n")
	return b.String()
}
