package pipeline

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/stoltzen/stoltzen-cli/internal/model"
)

// MaxConcurrency caps simultaneous profile fetches regardless of configuration.
const MaxConcurrency = 10

// ProfileSource returns the statistics behind a profile id.
type ProfileSource interface {
	Fetch(ctx context.Context, id string, currentYear int) (model.ProfileStats, error)
}

// EnrichStats summarizes one enrichment pass.
type EnrichStats struct {
	Fetched int // profiles fetched and parsed
	Failed  int // profiles whose fetch failed
	Skipped int // participants without a profile link
}

// Enricher attaches profile statistics to extracted participants.
type Enricher struct {
	source      ProfileSource
	concurrency int
}

// NewEnricher creates an Enricher. concurrency is clamped to
// [1, MaxConcurrency].
func NewEnricher(source ProfileSource, concurrency int) *Enricher {
	return &Enricher{
		source:      source,
		concurrency: clampConcurrency(concurrency),
	}
}

func clampConcurrency(n int) int {
	return min(max(n, 1), MaxConcurrency)
}

type slotOutcome int

const (
	slotNoProfile slotOutcome = iota
	slotFetched
	slotFailed
)

// Enrich fetches the profile of every participant that has one and derives
// the comparison fields. The result has one entry per input, in input order.
// A failed fetch leaves that participant's statistics empty and never
// affects its siblings.
func (e *Enricher) Enrich(ctx context.Context, raw []model.RawParticipant, currentYear int) ([]model.EnrichedParticipant, EnrichStats) {
	stats := make([]model.ProfileStats, len(raw))
	outcomes := make([]slotOutcome, len(raw))

	fanOut(ctx, len(raw), e.concurrency, func(ctx context.Context, i int) {
		p := raw[i]
		if !p.HasProfile() {
			return
		}

		s, err := e.source.Fetch(ctx, p.ProfileID, currentYear)
		if err != nil {
			outcomes[i] = slotFailed
			zap.L().Warn("enrich: profile fetch failed",
				zap.String("name", p.Name),
				zap.String("profile_id", p.ProfileID),
				zap.Error(err),
			)
			return
		}
		stats[i] = s
		outcomes[i] = slotFetched
	})

	var summary EnrichStats
	out := make([]model.EnrichedParticipant, len(raw))
	for i, p := range raw {
		switch outcomes[i] {
		case slotFetched:
			summary.Fetched++
		case slotFailed:
			summary.Failed++
		default:
			summary.Skipped++
		}
		out[i] = Derive(p, stats[i], currentYear)
	}

	zap.L().Info("enrich: complete",
		zap.Int("participants", len(raw)),
		zap.Int("fetched", summary.Fetched),
		zap.Int("failed", summary.Failed),
		zap.Int("without_profile", summary.Skipped),
	)
	return out, summary
}

// fanOut calls fn for every index in [0, n) with at most limit calls in
// flight and returns once all of them have finished. Each call owns slot i
// of whatever the caller collects into.
func fanOut(ctx context.Context, n, limit int, fn func(ctx context.Context, i int)) {
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(clampConcurrency(limit))

	for i := range n {
		g.Go(func() error {
			fn(gCtx, i)
			return nil // don't abort batch on individual failure
		})
	}

	_ = g.Wait()
}
