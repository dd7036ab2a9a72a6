package aggregate

import (
	"fmt"

	"github.com/SteelMorgan/multicurl-log-analyzer/internal/summary"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// filterEnv exposes a row to filter expressions under its table column names
type filterEnv struct {
	FileName        string  `expr:"file_name"`
	BatchSize       int     `expr:"batch_size"`
	MaxParallel     int     `expr:"max_parallel"`
	DurationSeconds float64 `expr:"duration_seconds"`
}

// Filter keeps rows matching a boolean expression, for example
// `batch_size >= 16 && duration_seconds < 120`.
type Filter struct {
	source  string
	program *vm.Program
}

// NewFilter compiles a filter expression.
// An empty expression yields a filter that keeps every row.
func NewFilter(source string) (*Filter, error) {
	if source == "" {
		return &Filter{}, nil
	}

	program, err := expr.Compile(source, expr.Env(filterEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("failed to compile filter %q: %w", source, err)
	}

	return &Filter{source: source, program: program}, nil
}

// Apply returns the rows matching the filter, in input order
func (f *Filter) Apply(rows []summary.Row) ([]summary.Row, error) {
	if f.program == nil {
		return rows, nil
	}

	kept := make([]summary.Row, 0, len(rows))
	for _, row := range rows {
		env := filterEnv{
			FileName:        row.FileName,
			BatchSize:       row.BatchSize,
			MaxParallel:     row.MaxParallel,
			DurationSeconds: row.DurationSeconds,
		}

		output, err := expr.Run(f.program, env)
		if err != nil {
			return nil, fmt.Errorf("filter %q failed on %s: %w", f.source, row.FileName, err)
		}
		if matched, ok := output.(bool); ok && matched {
			kept = append(kept, row)
		}
	}

	return kept, nil
}
