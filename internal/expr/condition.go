package expr

import (
	"errors"
	"fmt"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/ast"
	"github.com/google/cel-go/common/operators"
	"github.com/google/cel-go/common/types"
)

// ErrCondition is the sentinel wrapped by every condition failure.
var ErrCondition = errors.New("condition evaluation failed")

// ConditionError names the condition text that could not be evaluated.
type ConditionError struct {
	Condition string
	Err       error
}

func (e *ConditionError) Error() string {
	return fmt.Sprintf("cannot evaluate condition %q: %v", e.Condition, e.Err)
}

func (e *ConditionError) Unwrap() []error {
	return []error{ErrCondition, e.Err}
}

// allowedCalls are the only functions a condition may use. Everything else,
// including arithmetic, member access and macros, is rejected.
var allowedCalls = map[string]bool{
	operators.Equals:        true,
	operators.NotEquals:     true,
	operators.Less:          true,
	operators.LessEquals:    true,
	operators.Greater:       true,
	operators.GreaterEquals: true,
	operators.LogicalAnd:    true,
	operators.LogicalOr:     true,
	operators.LogicalNot:    true,
	operators.Negate:        true,
}

// allowedIdents are the capitalized boolean spellings older documents use.
var allowedIdents = map[string]bool{
	"True":  true,
	"False": true,
}

// literals binds allowedIdents at evaluation time.
var literals = map[string]any{
	"True":  true,
	"False": false,
}

// Evaluator evaluates restricted boolean expressions: literals, True and
// False, comparisons and logical operators. It holds no per-call state.
type Evaluator struct {
	env *cel.Env
}

// NewEvaluator builds an Evaluator.
func NewEvaluator() (*Evaluator, error) {
	env, err := cel.NewEnv(
		cel.Constant("True", cel.BoolType, types.True),
		cel.Constant("False", cel.BoolType, types.False),
		cel.CrossTypeNumericComparisons(true),
	)
	if err != nil {
		return nil, fmt.Errorf("creating condition environment: %w", err)
	}
	return &Evaluator{env: env}, nil
}

// Eval evaluates condition, which must already be interpolated.
func (ev *Evaluator) Eval(condition string) (bool, error) {
	fail := func(err error) (bool, error) {
		return false, &ConditionError{Condition: condition, Err: err}
	}

	// Parsed but not type-checked: the checker has no int/double equality
	// overload, while the runtime compares numbers across types.
	parsed, iss := ev.env.Parse(condition)
	if iss != nil && iss.Err() != nil {
		return fail(iss.Err())
	}
	if err := restrict(parsed.NativeRep().Expr()); err != nil {
		return fail(err)
	}

	prg, err := ev.env.Program(parsed)
	if err != nil {
		return fail(err)
	}
	out, _, err := prg.Eval(literals)
	if err != nil {
		return fail(err)
	}
	b, ok := out.Value().(bool)
	if !ok {
		return fail(fmt.Errorf("result is %s, not a boolean", out.Type().TypeName()))
	}
	return b, nil
}

// EvalWith interpolates condition using lookup and evaluates the result.
func (ev *Evaluator) EvalWith(condition string, lookup LookupFunc) (bool, error) {
	return ev.Eval(Interpolate(condition, lookup))
}

func restrict(e ast.Expr) error {
	switch e.Kind() {
	case ast.LiteralKind:
		return nil
	case ast.IdentKind:
		if allowedIdents[e.AsIdent()] {
			return nil
		}
		return fmt.Errorf("undefined name %q", e.AsIdent())
	case ast.CallKind:
		call := e.AsCall()
		if call.IsMemberFunction() || !allowedCalls[call.FunctionName()] {
			return fmt.Errorf("function %q is not allowed", call.FunctionName())
		}
		for _, arg := range call.Args() {
			if err := restrict(arg); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("unsupported expression")
}
