package pipeline

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/stoltzen/stoltzen-cli/internal/fetcher"
	"github.com/stoltzen/stoltzen-cli/internal/model"
	"github.com/stoltzen/stoltzen-cli/internal/report"
	"github.com/stoltzen/stoltzen-cli/internal/scrape"
)

// ErrSourceUnavailable is matched (errors.Is) by every error that prevents a
// run from producing a report at all.
var ErrSourceUnavailable = eris.New("pipeline: source unavailable")

// SourceError reports why the primary input of a run could not be read.
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("pipeline: source %s unavailable: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrSourceUnavailable) hold for any SourceError.
func (e *SourceError) Is(target error) bool {
	return target == ErrSourceUnavailable
}

// Options configures a Driver.
type Options struct {
	BaseURL     string // site root for profile URLs; empty uses scrape.DefaultBaseURL
	Concurrency int    // clamped to [1, MaxConcurrency]
}

// Driver wires fetching, extraction, enrichment and report building.
type Driver struct {
	fetcher     fetcher.Fetcher
	profiles    *scrape.ProfileClient
	enricher    *Enricher
	concurrency int
}

// NewDriver creates a Driver that performs every request through f.
func NewDriver(f fetcher.Fetcher, opts Options) *Driver {
	profiles := scrape.NewProfileClient(f, opts.BaseURL)
	return &Driver{
		fetcher:     f,
		profiles:    profiles,
		enricher:    NewEnricher(profiles, opts.Concurrency),
		concurrency: clampConcurrency(opts.Concurrency),
	}
}

// Result is the outcome of one run.
type Result struct {
	Report       *report.Report
	Participants []model.EnrichedParticipant // in extraction order
	Year         int

	Skipped int // rows or pages that could not be turned into a participant
	Dropped int // result rows with an unrecognized category
	Enrich  EnrichStats
}

// RunResults scrapes a results list, enriches every participant with its
// profile statistics and builds the report.
func (d *Driver) RunResults(ctx context.Context, resultsURL string, currentYear int) (*Result, error) {
	log := zap.L().With(zap.String("url", resultsURL), zap.Int("year", currentYear))

	page, err := d.fetcher.Fetch(ctx, resultsURL)
	if err != nil {
		return nil, &SourceError{Source: resultsURL, Err: err}
	}

	ext, err := scrape.ExtractResults(bytes.NewReader(page.Body))
	if err != nil {
		return nil, &SourceError{Source: resultsURL, Err: err}
	}
	log.Info("extracted results",
		zap.Int("rows", len(ext.Rows)),
		zap.Int("skipped", ext.Skipped),
		zap.Int("dropped", ext.Dropped),
	)

	enriched, stats := d.enricher.Enrich(ctx, ext.Rows, currentYear)

	return &Result{
		Report:       report.Build(enriched),
		Participants: enriched,
		Year:         currentYear,
		Skipped:      ext.Skipped,
		Dropped:      ext.Dropped,
		Enrich:       stats,
	}, nil
}

// RunProfiles builds a report straight from statistics pages. Every page
// supplies both the participant (name, class, this season's time) and the
// statistics. Pages that fail to load or lack any of those are skipped.
func (d *Driver) RunProfiles(ctx context.Context, urls []string, currentYear int) (*Result, error) {
	if len(urls) == 0 {
		return nil, &SourceError{Source: "url list", Err: eris.New("no profile URLs")}
	}

	pages := make([]*scrape.ProfilePage, len(urls))
	fanOut(ctx, len(urls), d.concurrency, func(ctx context.Context, i int) {
		p, err := d.profiles.FetchPage(ctx, urls[i], currentYear)
		if err != nil {
			zap.L().Warn("profiles: fetch failed", zap.String("url", urls[i]), zap.Error(err))
			return
		}
		pages[i] = p
	})

	res := &Result{Year: currentYear}
	for i, p := range pages {
		if p == nil {
			res.Enrich.Failed++
			continue
		}
		res.Enrich.Fetched++

		raw, err := p.Participant()
		if err != nil {
			res.Skipped++
			zap.L().Warn("profiles: skipping page", zap.String("url", urls[i]), zap.Error(err))
			continue
		}
		res.Participants = append(res.Participants, Derive(raw, p.Stats, currentYear))
	}
	res.Report = report.Build(res.Participants)

	zap.L().Info("profiles: complete",
		zap.Int("urls", len(urls)),
		zap.Int("participants", len(res.Participants)),
		zap.Int("failed", res.Enrich.Failed),
		zap.Int("skipped", res.Skipped),
	)
	return res, nil
}

// LoadURLFile reads profile URLs, one per line. Blank lines and lines
// starting with # are ignored; lines that are not statistics page URLs are
// skipped with a warning.
func LoadURLFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &SourceError{Source: path, Err: eris.Wrap(err, "open url file")}
	}
	defer func() { _ = f.Close() }()

	var urls []string
	sc := bufio.NewScanner(f)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !strings.Contains(line, "stat.php?id=") {
			zap.L().Warn("url file: not a statistics page URL, skipping",
				zap.String("file", path),
				zap.Int("line", lineNo),
				zap.String("value", line),
			)
			continue
		}
		urls = append(urls, line)
	}
	if err := sc.Err(); err != nil {
		return nil, &SourceError{Source: path, Err: eris.Wrap(err, "read url file")}
	}
	if len(urls) == 0 {
		return nil, &SourceError{Source: path, Err: eris.New("no profile URLs in file")}
	}
	return urls, nil
}
