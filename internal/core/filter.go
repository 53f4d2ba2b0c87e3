package core

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// FilterEnv is what a candidate filter expression can see.
type FilterEnv struct {
	Key       string
	AgentID   int
	ElementID int
	Name      string
	Property  string
}

// Filter is a compiled boolean expression over FilterEnv,
// e.g. `Name startsWith "ENC" && AgentID == 12`.
type Filter struct {
	source  string
	program *vm.Program
}

// CompileFilter compiles source. An empty source yields a nil filter that
// accepts everything.
func CompileFilter(source string) (*Filter, error) {
	if source == "" {
		return nil, nil
	}
	program, err := expr.Compile(source, expr.Env(FilterEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("invalid filter %q: %w", source, err)
	}
	return &Filter{source: source, program: program}, nil
}

// Match reports whether env passes the filter.
func (f *Filter) Match(env FilterEnv) (bool, error) {
	if f == nil {
		return true, nil
	}
	out, err := expr.Run(f.program, env)
	if err != nil {
		return false, fmt.Errorf("filter %q: %w", f.source, err)
	}
	ok, _ := out.(bool)
	return ok, nil
}

func (f *Filter) String() string {
	if f == nil {
		return ""
	}
	return f.source
}
