// Package constraint compiles CEL expressions into node invariants that the
// transaction manager enforces at commit time.
package constraint

import (
	"fmt"
	"reflect"

	"github.com/google/cel-go/cel"
)

// Evaluator struct contains the CEL expression & the cel program used to evaluate
// the invariant vs. a node's prospective committed value.
type Evaluator struct {
	Name       string
	Expression string
	program    cel.Program
}

// NewEvaluator instantiates a new CEL invariant evaluator. The expression sees two
// variables: id (the node's string key) and value (the prospective committed value,
// an int), and must evaluate to a boolean; false rejects the whole commit.
// Example: `value <= 1000000` or `id != "escrow" || value >= 100`.
func NewEvaluator(name string, expression string) (*Evaluator, error) {
	if name == "" {
		return nil, fmt.Errorf("name can't be empty string")
	}
	if expression == "" {
		return nil, fmt.Errorf("expression can't be empty string")
	}

	env, err := cel.NewEnv(
		// Declare variables matching the node data handed in by Evaluate.
		cel.Variable("id", cel.StringType),
		cel.Variable("value", cel.IntType),
	)
	if err != nil {
		return nil, fmt.Errorf("error creating CEL environment: %v", err)
	}

	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("error compiling CEL expression: %v", issues.Err())
	}
	p, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("error creating Program: %v", err)
	}
	return &Evaluator{
		Name:       name,
		Expression: expression,
		program:    p,
	}, nil
}

// Evaluate runs the compiled invariant against a node id & prospective value.
func (e *Evaluator) Evaluate(id string, value int64) (bool, error) {
	out, _, err := e.program.Eval(map[string]any{
		"id":    id,
		"value": value,
	})
	if err != nil {
		return false, fmt.Errorf("error evaluating CEL expression: %v", err)
	}
	nv, err := out.ConvertToNative(reflect.TypeOf(false))
	if err != nil {
		return false, fmt.Errorf("error ConvertToNative, got err: %v", err)
	}

	if v, ok := nv.(bool); !ok {
		return false, fmt.Errorf("error converting to bool, nv: %v", nv)
	} else {
		return v, nil
	}
}
