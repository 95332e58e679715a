package model

import (
	"github.com/stoltzen/stoltzen-cli/internal/racetime"
)

// RawParticipant is one result row as extracted from a results page.
type RawParticipant struct {
	Category   Category      `json:"category"`
	Name       string        `json:"name"`
	Time       racetime.Time `json:"time"`
	ClassLabel string        `json:"class_label"`
	ProfileID  string        `json:"profile_id,omitempty"` // empty when the row carries no profile link
}

// HasProfile reports whether the row links to a profile page.
func (p RawParticipant) HasProfile() bool {
	return p.ProfileID != ""
}

// ProfileStats holds the historical statistics scraped from a profile page.
// A nil field means the page did not provide that datum.
type ProfileStats struct {
	ParticipationCount *int           `json:"participation_count"`
	BestTimeBeforeYear *racetime.Time `json:"best_time_before_year"`
	BestYear           *int           `json:"best_year"`
}

// Empty reports whether no field is present.
func (s ProfileStats) Empty() bool {
	return s.ParticipationCount == nil && s.BestTimeBeforeYear == nil && s.BestYear == nil
}

// EnrichedParticipant is a participant merged with its profile statistics and
// the metrics derived from both.
type EnrichedParticipant struct {
	RawParticipant
	Stats ProfileStats `json:"stats"`

	// IsNewBest is false whenever it cannot be determined.
	IsNewBest bool            `json:"is_new_best"`
	Delta     *racetime.Delta `json:"delta"`
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int { return &v }

// TimePtr returns a pointer to t.
func TimePtr(t racetime.Time) *racetime.Time { return &t }
