// Package locator discovers the latest downloadable NCCI artifact on a CMS
// landing page. The pages are hand-maintained HTML with no stable
// structure, so discovery is anchor scraping plus date-signal scoring.
package locator

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/gyeh/claimcheck/internal/model"
)

// Candidate is one downloadable artifact found on a landing page.
type Candidate struct {
	URL   string
	Text  string
	Score int
	Date  *time.Time
}

// Locator scrapes landing pages for artifact links.
type Locator struct {
	client *http.Client
	log    zerolog.Logger
}

// New creates a Locator. A nil client gets a 30s-timeout default.
func New(client *http.Client, log zerolog.Logger) *Locator {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Locator{client: client, log: log}
}

// FindLatest fetches the category's landing page and returns the best
// candidate artifact, or nil if no anchor survives filtering. A nil result
// is not an error: the category is simply skipped this run.
func (l *Locator) FindLatest(ctx context.Context, cat model.Category) (*Candidate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cat.PageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build page request: %w", err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch landing page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("landing page returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse landing page: %w", err)
	}

	base, err := url.Parse(cat.PageURL)
	if err != nil {
		return nil, fmt.Errorf("parse page url: %w", err)
	}

	candidates := collectCandidates(doc, base, cat.Keywords)
	if len(candidates) == 0 {
		l.log.Warn().Str("category", cat.Key).Msg("no candidate artifact found")
		return nil, nil
	}

	// Score descending, ties broken by date descending (dateless last).
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		di, dj := candidates[i].Date, candidates[j].Date
		switch {
		case di == nil:
			return false
		case dj == nil:
			return true
		default:
			return di.After(*dj)
		}
	})

	for _, c := range candidates {
		l.log.Debug().
			Str("category", cat.Key).
			Str("url", c.URL).
			Int("score", c.Score).
			Msg("candidate scored")
	}

	best := candidates[0]
	l.log.Info().
		Str("category", cat.Key).
		Str("url", best.URL).
		Int("score", best.Score).
		Int("candidates", len(candidates)).
		Msg("artifact selected")
	return &best, nil
}

// collectCandidates extracts .zip/.pdf anchors matching the category
// keyword set and scores each one.
func collectCandidates(doc *goquery.Document, base *url.URL, keywords []string) []Candidate {
	var out []Candidate
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" {
			return
		}
		lowerHref := strings.ToLower(href)
		if !strings.HasSuffix(lowerHref, ".zip") && !strings.HasSuffix(lowerHref, ".pdf") {
			return
		}

		text := strings.TrimSpace(sel.Text())
		haystack := strings.ToLower(href + " " + text)
		matched := false
		for _, kw := range keywords {
			if strings.Contains(haystack, strings.ToLower(kw)) {
				matched = true
				break
			}
		}
		if !matched {
			return
		}

		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		score, date := effectiveScore(href + " " + text)
		out = append(out, Candidate{
			URL:   base.ResolveReference(ref).String(),
			Text:  text,
			Score: score,
			Date:  date,
		})
	})
	return out
}
