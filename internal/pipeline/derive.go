package pipeline

import (
	"github.com/stoltzen/stoltzen-cli/internal/model"
	"github.com/stoltzen/stoltzen-cli/internal/racetime"
)

// Derive merges a participant with its profile statistics and computes
// whether this season's time beats the best earlier one, and by how much.
// IsNewBest stays false whenever the comparison cannot be made.
func Derive(raw model.RawParticipant, stats model.ProfileStats, currentYear int) model.EnrichedParticipant {
	out := model.EnrichedParticipant{
		RawParticipant: raw,
		Stats:          stats,
	}

	best := stats.BestTimeBeforeYear
	if best == nil {
		return out
	}

	d := racetime.Sub(raw.Time, *best)
	out.Delta = &d

	if stats.BestYear != nil && *stats.BestYear < currentYear {
		out.IsNewBest = raw.Time.Before(*best)
	}
	return out
}
