package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gyeh/claimcheck/internal/model"
	embedsql "github.com/gyeh/claimcheck/internal/sql"
)

// Postgres is the pgx-backed RuleRepository. Each call acquires a pooled
// connection for its duration and releases it on every exit path.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres wraps an existing pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// LookupPTP returns every PTP edit row for the provider type whose column1
// and column2 both fall within the billed code set.
func (p *Postgres) LookupPTP(ctx context.Context, codes []string, providerType string) ([]model.EditPair, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	rows, err := p.pool.Query(ctx, embedsql.LookupPTP, providerType, codes)
	if err != nil {
		return nil, fmt.Errorf("lookup ptp: %w", err)
	}
	defer rows.Close()

	var out []model.EditPair
	for rows.Next() {
		var e model.EditPair
		var indicator string
		if err := rows.Scan(&e.Code1, &e.Code2, &indicator, &e.EffectiveDate, &e.ProviderType); err != nil {
			return nil, fmt.Errorf("scan ptp row: %w", err)
		}
		e.ModifierIndicator = model.ModifierIndicator(indicator)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ptp rows: %w", err)
	}
	return out, nil
}

// LookupMUE returns MUE rows for the billed codes, scoped to serviceType
// unless serviceType is empty.
func (p *Postgres) LookupMUE(ctx context.Context, codes []string, serviceType string) ([]model.MUERule, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	rows, err := p.pool.Query(ctx, embedsql.LookupMUE, codes, serviceType)
	if err != nil {
		return nil, fmt.Errorf("lookup mue: %w", err)
	}
	defer rows.Close()

	var out []model.MUERule
	for rows.Next() {
		var m model.MUERule
		if err := rows.Scan(&m.Code, &m.MaxUnits, &m.EffectiveDate, &m.ServiceType); err != nil {
			return nil, fmt.Errorf("scan mue row: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mue rows: %w", err)
	}
	return out, nil
}

// LookupAOC returns add-on code rows for any billed code that is a known
// addon code.
func (p *Postgres) LookupAOC(ctx context.Context, codes []string) ([]model.AOCRule, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	rows, err := p.pool.Query(ctx, embedsql.LookupAOC, codes)
	if err != nil {
		return nil, fmt.Errorf("lookup aoc: %w", err)
	}
	defer rows.Close()

	var out []model.AOCRule
	for rows.Next() {
		var a model.AOCRule
		if err := rows.Scan(&a.AddonCode, &a.PrimaryCode, &a.EffectiveDate); err != nil {
			return nil, fmt.Errorf("scan aoc row: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate aoc rows: %w", err)
	}
	return out, nil
}

// ReplacePartition deletes the partition's existing rows and COPY-loads the
// new ones inside a single transaction, so readers never observe the
// partition half-empty. Returns the number of rows inserted.
func (p *Postgres) ReplacePartition(ctx context.Context, rules *model.RuleSet) (int64, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin replace: %w", err)
	}
	defer tx.Rollback(ctx)

	var table string
	var columns []string
	switch rules.Kind {
	case model.KindPTP:
		table = "ptp_edits"
		columns = model.PTPColumns()
		if _, err := tx.Exec(ctx, embedsql.DeletePTPPartition, rules.Partition); err != nil {
			return 0, fmt.Errorf("delete ptp partition %s: %w", rules.Partition, err)
		}
	case model.KindMUE:
		table = "mue"
		columns = model.MUEColumns()
		if _, err := tx.Exec(ctx, embedsql.DeleteMUEPartition, rules.Partition); err != nil {
			return 0, fmt.Errorf("delete mue partition %s: %w", rules.Partition, err)
		}
	case model.KindAOC:
		table = "aoc"
		columns = model.AOCColumns()
		if _, err := tx.Exec(ctx, embedsql.DeleteAOC); err != nil {
			return 0, fmt.Errorf("delete aoc rows: %w", err)
		}
	default:
		return 0, fmt.Errorf("unknown dataset kind %q", rules.Kind)
	}

	inserted, err := tx.CopyFrom(ctx, pgx.Identifier{table}, columns, newRuleSetSource(rules))
	if err != nil {
		return 0, fmt.Errorf("copy into %s: %w", table, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit replace: %w", err)
	}
	return inserted, nil
}

// Compile-time check.
var _ RuleRepository = (*Postgres)(nil)
