package completion

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/rlch/nqls"
)

// Filter hides candidates matching a boolean expression.
// The expression sees name, display and meta, e.g.
//
//	meta endsWith ":type/Array" or name startsWith "_"
type Filter struct {
	expression string
	program    *vm.Program
}

// CompileFilter compiles a hide expression. An empty expression yields a nil
// filter, which keeps every candidate.
func CompileFilter(expression string) (*Filter, error) {
	if strings.TrimSpace(expression) == "" {
		return nil, nil //nolint:nilnil // nil filter is a valid no-op
	}

	program, err := expr.Compile(expression, expr.Env(candidateEnv(nqls.Candidate{})), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile hide expression %q: %w", expression, err)
	}

	return &Filter{expression: expression, program: program}, nil
}

// Apply returns the candidates the expression does not hide. Candidates for
// which evaluation fails are kept.
func (f *Filter) Apply(candidates []nqls.Candidate) []nqls.Candidate {
	if f == nil {
		return candidates
	}

	out := make([]nqls.Candidate, 0, len(candidates))

	for _, c := range candidates {
		output, err := expr.Run(f.program, candidateEnv(c))
		if hide, ok := output.(bool); err == nil && ok && hide {
			continue
		}

		out = append(out, c)
	}

	return out
}

// String returns the source expression.
func (f *Filter) String() string {
	if f == nil {
		return ""
	}

	return f.expression
}

func candidateEnv(c nqls.Candidate) map[string]any {
	return map[string]any{
		"name":    c.Name,
		"display": c.DisplayValue,
		"meta":    c.Meta,
	}
}
