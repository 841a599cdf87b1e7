package model

import "time"

// CategoryResult captures the outcome of one category's ingest run.
type CategoryResult struct {
	CategoryKey  string
	ArtifactURL  string
	ArtifactPath string
	Skipped      bool // discovery miss: no candidate artifact found
	RowsParsed   int64
	RowsSkipped  int64
	RowsInserted int64
	Duration     time.Duration
	Err          error
}

// BuildSummary captures metrics from a single build (ingest) run across
// all requested categories.
type BuildSummary struct {
	RunID         string
	Results       []CategoryResult
	DurationTotal time.Duration
}

// ArtifactPaths returns the category→downloaded-artifact-path map for
// categories that produced one.
func (s *BuildSummary) ArtifactPaths() map[string]string {
	paths := make(map[string]string)
	for _, r := range s.Results {
		if r.ArtifactPath != "" {
			paths[r.CategoryKey] = r.ArtifactPath
		}
	}
	return paths
}

// Failed returns the results that ended in an error.
func (s *BuildSummary) Failed() []CategoryResult {
	var failed []CategoryResult
	for _, r := range s.Results {
		if r.Err != nil {
			failed = append(failed, r)
		}
	}
	return failed
}
