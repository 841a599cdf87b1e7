// Package store owns the rule tables and their access paths. The
// RuleRepository interface is the seam between the ingester/validator and
// Postgres, so tests can substitute an in-memory double.
package store

import (
	"context"

	"github.com/gyeh/claimcheck/internal/model"
)

// RuleRepository is the read/write surface over the three rule tables.
//
// The lookups are batched: each takes the full billed code set and returns
// every matching row in one round trip. ReplacePartition atomically swaps
// the rows of one partition (provider/service type, or the single global
// AOC partition); concurrent readers see either the old or the new rows,
// never a half-empty partition.
type RuleRepository interface {
	LookupPTP(ctx context.Context, codes []string, providerType string) ([]model.EditPair, error)
	LookupMUE(ctx context.Context, codes []string, serviceType string) ([]model.MUERule, error)
	LookupAOC(ctx context.Context, codes []string) ([]model.AOCRule, error)
	ReplacePartition(ctx context.Context, rules *model.RuleSet) (int64, error)
}
