package store

import (
	"context"
	"sync"

	"github.com/gyeh/claimcheck/internal/model"
)

// Memory is an in-memory RuleRepository used by tests and dry runs. It
// mirrors the Postgres lookup semantics, including partition replacement.
type Memory struct {
	mu  sync.RWMutex
	ptp []model.EditPair
	mue []model.MUERule
	aoc []model.AOCRule
}

// NewMemory returns an empty in-memory repository.
func NewMemory() *Memory {
	return &Memory{}
}

func contains(codes []string, code string) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}

// LookupPTP returns edits for the provider type whose codes both appear in
// the billed set.
func (m *Memory) LookupPTP(ctx context.Context, codes []string, providerType string) ([]model.EditPair, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.EditPair
	for _, e := range m.ptp {
		if e.ProviderType == providerType && contains(codes, e.Code1) && contains(codes, e.Code2) {
			out = append(out, e)
		}
	}
	return out, nil
}

// LookupMUE returns MUE rows for the billed codes, scoped to serviceType
// unless it is empty.
func (m *Memory) LookupMUE(ctx context.Context, codes []string, serviceType string) ([]model.MUERule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.MUERule
	for _, r := range m.mue {
		if !contains(codes, r.Code) {
			continue
		}
		if serviceType != "" && r.ServiceType != serviceType {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// LookupAOC returns add-on rows for billed addon codes.
func (m *Memory) LookupAOC(ctx context.Context, codes []string) ([]model.AOCRule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.AOCRule
	for _, r := range m.aoc {
		if contains(codes, r.AddonCode) {
			out = append(out, r)
		}
	}
	return out, nil
}

// ReplacePartition swaps the partition's rows for the given set.
func (m *Memory) ReplacePartition(ctx context.Context, rules *model.RuleSet) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch rules.Kind {
	case model.KindPTP:
		kept := m.ptp[:0]
		for _, e := range m.ptp {
			if e.ProviderType != rules.Partition {
				kept = append(kept, e)
			}
		}
		m.ptp = append(kept, rules.PTP...)
	case model.KindMUE:
		kept := m.mue[:0]
		for _, r := range m.mue {
			if r.ServiceType != rules.Partition {
				kept = append(kept, r)
			}
		}
		m.mue = append(kept, rules.MUE...)
	case model.KindAOC:
		m.aoc = append([]model.AOCRule(nil), rules.AOC...)
	}
	return int64(rules.Len()), nil
}

// Compile-time check.
var _ RuleRepository = (*Memory)(nil)
