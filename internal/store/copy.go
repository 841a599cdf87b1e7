package store

import (
	"github.com/jackc/pgx/v5"

	"github.com/gyeh/claimcheck/internal/model"
)

// ruleSetSource implements pgx.CopyFromSource directly over a RuleSet,
// avoiding an intermediate [][]any materialization of the rows.
type ruleSetSource struct {
	rules *model.RuleSet
	idx   int
}

func newRuleSetSource(rules *model.RuleSet) *ruleSetSource {
	return &ruleSetSource{rules: rules, idx: -1}
}

// Next advances to the next row.
func (s *ruleSetSource) Next() bool {
	s.idx++
	return s.idx < s.rules.Len()
}

// Values returns the current row's values in COPY column order.
func (s *ruleSetSource) Values() ([]any, error) {
	switch s.rules.Kind {
	case model.KindPTP:
		return s.rules.PTP[s.idx].CopyValues(), nil
	case model.KindMUE:
		return s.rules.MUE[s.idx].CopyValues(), nil
	default:
		return s.rules.AOC[s.idx].CopyValues(), nil
	}
}

// Err returns any error encountered during iteration.
func (s *ruleSetSource) Err() error {
	return nil
}

// Compile-time check that ruleSetSource satisfies the interface.
var _ pgx.CopyFromSource = (*ruleSetSource)(nil)
