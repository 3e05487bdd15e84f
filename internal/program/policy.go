package program

import (
	"fmt"
	"strings"

	"github.com/google/cel-go/cel"
)

// policy wraps a compiled CEL expression that must evaluate to true for an
// instruction to proceed. When disabled, Allow always returns true.
//
// Variables: caller (string), key (int), size (int, payload bytes), count
// (int, events already stored). Keys above MaxInt64 appear negative.
type policy struct {
	prog    cel.Program
	enabled bool
}

func newPolicy(expr string) (policy, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return policy{enabled: false}, nil
	}
	env, err := cel.NewEnv(
		cel.Variable("caller", cel.StringType),
		cel.Variable("key", cel.IntType),
		cel.Variable("size", cel.IntType),
		cel.Variable("count", cel.IntType),
	)
	if err != nil {
		return policy{}, err
	}
	ast, iss := env.Compile(expr)
	if iss != nil && iss.Err() != nil {
		return policy{}, iss.Err()
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return policy{}, fmt.Errorf("policy %q: expression must evaluate to bool, got %s", expr, ast.OutputType())
	}
	prog, err := env.Program(ast)
	if err != nil {
		return policy{}, err
	}
	return policy{prog: prog, enabled: true}, nil
}

// Allow evaluates the policy. Evaluation errors deny.
func (p policy) Allow(caller string, key uint64, size, count int) bool {
	if !p.enabled {
		return true
	}
	out, _, err := p.prog.Eval(map[string]any{
		"caller": caller,
		"key":    int64(key),
		"size":   int64(size),
		"count":  int64(count),
	})
	if err != nil {
		return false
	}
	b, ok := out.Value().(bool)
	return ok && b
}
