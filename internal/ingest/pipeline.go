// Package ingest runs the dataset build pipeline: for each category,
// locate the latest artifact, download it, extract its sheets, normalize
// the rows, and replace the category's rule partition.
package ingest

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gyeh/claimcheck/internal/archive"
	"github.com/gyeh/claimcheck/internal/fetch"
	"github.com/gyeh/claimcheck/internal/locator"
	"github.com/gyeh/claimcheck/internal/model"
	"github.com/gyeh/claimcheck/internal/sheet"
	"github.com/gyeh/claimcheck/internal/store"
)

// PipelineError wraps an error with the phase where it occurred.
type PipelineError struct {
	Phase string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %s", e.Phase, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Options configures a build run.
type Options struct {
	OutDir string
	DryRun bool // locate only; no download or ingest
	Client *http.Client
}

// Run executes the pipeline for every category concurrently. Categories
// are independent partitions, so a failure in one never stops the others;
// each failure is recorded on its CategoryResult. Run itself errors only
// on setup problems.
func Run(ctx context.Context, repo store.RuleRepository, log zerolog.Logger, cats []model.Category, opts Options) (*model.BuildSummary, error) {
	start := time.Now()
	runID := uuid.New()
	log = log.With().Str("run_id", runID.String()).Logger()

	loc := locator.New(opts.Client, log)

	results := make([]model.CategoryResult, len(cats))
	var wg sync.WaitGroup
	for i, cat := range cats {
		wg.Add(1)
		go func(i int, cat model.Category) {
			defer wg.Done()
			results[i] = runCategory(ctx, repo, loc, log, cat, opts)
		}(i, cat)
	}
	wg.Wait()

	summary := &model.BuildSummary{
		RunID:         runID.String(),
		Results:       results,
		DurationTotal: time.Since(start),
	}

	var inserted int64
	for _, r := range results {
		inserted += r.RowsInserted
	}
	log.Info().
		Int("categories", len(cats)).
		Int("failed", len(summary.Failed())).
		Int64("rows_inserted", inserted).
		Str("total_duration", summary.DurationTotal.String()).
		Msg("build complete")

	return summary, nil
}

// runCategory executes locate → fetch → extract → normalize → replace for
// one category. A discovery miss marks the result skipped; any later
// failure is fatal to this category only, leaving its prior partition
// authoritative.
func runCategory(ctx context.Context, repo store.RuleRepository, loc *locator.Locator, log zerolog.Logger, cat model.Category, opts Options) model.CategoryResult {
	start := time.Now()
	res := model.CategoryResult{CategoryKey: cat.Key}
	clog := log.With().Str("category", cat.Key).Logger()

	candidate, err := loc.FindLatest(ctx, cat)
	if err != nil {
		res.Err = &PipelineError{Phase: "locate", Err: err}
		res.Duration = time.Since(start)
		return res
	}
	if candidate == nil {
		clog.Warn().Msg("no artifact found; keeping existing partition")
		res.Skipped = true
		res.Duration = time.Since(start)
		return res
	}
	res.ArtifactURL = candidate.URL

	if opts.DryRun {
		clog.Info().Str("url", candidate.URL).Int("score", candidate.Score).Msg("dry run: would download")
		res.Duration = time.Since(start)
		return res
	}

	artifactPath, err := fetch.Download(ctx, opts.Client, candidate.URL, opts.OutDir)
	if err != nil {
		res.Err = &PipelineError{Phase: "fetch", Err: err}
		res.Duration = time.Since(start)
		return res
	}
	res.ArtifactPath = artifactPath

	if !strings.EqualFold(filepath.Ext(artifactPath), ".zip") {
		clog.Warn().Str("artifact", artifactPath).Msg("artifact is not a zip; downloaded but not ingested")
		res.Duration = time.Since(start)
		return res
	}

	rules := &model.RuleSet{Kind: cat.Kind, Partition: cat.Partition}
	err = archive.ExtractSheets(artifactPath, func(name string, data []byte) error {
		parsed, perr := sheet.Parse(cat, name, data)
		if perr != nil {
			return perr
		}
		res.RowsParsed += parsed.RowsParsed
		res.RowsSkipped += parsed.RowsSkipped
		rules.PTP = append(rules.PTP, parsed.Rules.PTP...)
		rules.MUE = append(rules.MUE, parsed.Rules.MUE...)
		rules.AOC = append(rules.AOC, parsed.Rules.AOC...)
		return nil
	})
	if err != nil {
		res.Err = &PipelineError{Phase: "extract", Err: err}
		res.Duration = time.Since(start)
		return res
	}

	if rules.Len() == 0 {
		clog.Warn().Msg("archive contained no usable rows; keeping existing partition")
		res.Skipped = true
		res.Duration = time.Since(start)
		return res
	}

	inserted, err := repo.ReplacePartition(ctx, rules)
	if err != nil {
		res.Err = &PipelineError{Phase: "replace", Err: err}
		res.Duration = time.Since(start)
		return res
	}
	res.RowsInserted = inserted
	res.Duration = time.Since(start)

	clog.Info().
		Int64("rows_parsed", res.RowsParsed).
		Int64("rows_skipped", res.RowsSkipped).
		Int64("rows_inserted", res.RowsInserted).
		Str("duration", res.Duration.String()).
		Msg("category ingested")
	return res
}
