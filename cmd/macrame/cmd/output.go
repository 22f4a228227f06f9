package cmd

import (
	"fmt"
	"strings"

	"github.com/bianoble/macrame/internal/buildsys"
	"github.com/bianoble/macrame/internal/entry"
)

// describe names the project and port of a plan.
func describe(plan *buildsys.Plan) string {
	if plan.Port == "" {
		return plan.ProjectName
	}
	return fmt.Sprintf("%s (port %s)", plan.ProjectName, plan.Port)
}

// reportPlan prints what preparing the project did. Tools and variables
// are only shown in verbose mode.
func reportPlan(plan *buildsys.Plan) {
	source := "built-in"
	if plan.Local {
		source = "project"
	}
	detail("makefile   %s (%s)", plan.Makefile, source)

	s := plan.Synthesis
	if s == nil {
		return
	}
	for _, t := range s.Tools {
		if t.Version != "" {
			detail("tool       %s %s (%s)", t.Name, t.Version, t.Required)
		} else {
			detail("tool       %s", t.Name)
		}
	}
	for _, v := range s.Variables {
		if v.Skipped {
			detail("skip       %s", v.Name)
		} else {
			detail("set        %s=%s", v.Name, v.Value)
		}
		if len(v.Unset) > 0 {
			detail("unset      %s (referenced by %s)", strings.Join(v.Unset, " "), v.Name)
		}
	}
	detail("sources    %d", plan.Sources.Count())
	info("  %s  %s", s.Artifact.Action, s.Artifact.Path)
}

// entryFields returns the declared attributes of e, omitting absent ones.
func entryFields(e entry.Entry) map[string]any {
	out := map[string]any{}
	switch v := e.(type) {
	case entry.Tool:
		out["name"] = v.Name
		if arg, ok := v.Arg.Get(); ok {
			out["arg"] = arg
		}
		if op, ok := v.Compare.Get(); ok {
			out["compare"] = string(op)
		}
		if ver, ok := v.Version.Get(); ok {
			out["version"] = ver
		}
	case entry.Environment:
		out["name"] = v.Name
		out["value"] = v.Value
		if c, ok := v.Condition.Get(); ok {
			out["condition"] = c
		}
		if m, ok := v.Method.Get(); ok {
			out["method"] = string(m)
		}
		if d, ok := v.Description.Get(); ok {
			out["description"] = d
		}
	case entry.MakefileRule:
		out["targets"] = v.Targets
		if v.Prerequisites != "" {
			out["prerequisites"] = v.Prerequisites
		}
		if c, ok := v.Command.Get(); ok {
			out["command"] = c
		}
		if d, ok := v.Description.Get(); ok {
			out["description"] = d
		}
		if p, ok := v.Phony.Get(); ok {
			out["phony"] = p
		}
	}
	return out
}

// summarize renders e on one line for the text view.
func summarize(e entry.Entry) string {
	switch v := e.(type) {
	case entry.Tool:
		s := v.Name
		if op, req, ok := v.Requirement(); ok {
			s += fmt.Sprintf(" %s %s", op, v.Version.Or(req.String()))
		}
		return s
	case entry.Environment:
		op := "="
		if v.Appends() {
			op = "+="
		}
		s := fmt.Sprintf("%s %s %s", v.Name, op, v.Value)
		if c, ok := v.Condition.Get(); ok && strings.TrimSpace(c) != "" && c != entry.DefaultCondition {
			s += "  if " + c
		}
		return s
	case entry.MakefileRule:
		s := v.Targets + ":"
		if v.Prerequisites != "" {
			s += " " + v.Prerequisites
		}
		if v.IsPhony() {
			s += "  (phony)"
		}
		return s
	}
	return e.Label()
}
