// Package report groups enriched participants by category and renders them
// as JSON, CSV, XLSX or a terminal summary.
package report

import (
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/stoltzen/stoltzen-cli/internal/model"
	"github.com/stoltzen/stoltzen-cli/internal/racetime"
)

// Format selects an output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatCSV, FormatXLSX:
		return f, nil
	default:
		return "", eris.Errorf("report: unknown format %q (want json, csv or xlsx)", s)
	}
}

// Report holds participants grouped by category, each group ordered by
// ascending time. Participants with equal times keep their input order.
type Report struct {
	groups map[model.Category][]model.EnrichedParticipant
}

// Build groups participants by category and sorts each group by time. The
// input slice is not modified.
func Build(participants []model.EnrichedParticipant) *Report {
	groups := make(map[model.Category][]model.EnrichedParticipant, len(model.Categories))
	for _, p := range participants {
		if !p.Category.Valid() {
			continue
		}
		groups[p.Category] = append(groups[p.Category], p)
	}
	for c, g := range groups {
		slices.SortStableFunc(g, func(a, b model.EnrichedParticipant) int {
			return racetime.Compare(a.Time, b.Time)
		})
		groups[c] = g
	}
	return &Report{groups: groups}
}

// Group returns the participants of one category in report order.
func (r *Report) Group(c model.Category) []model.EnrichedParticipant {
	return r.groups[c]
}

// Len returns the total number of participants.
func (r *Report) Len() int {
	n := 0
	for _, g := range r.groups {
		n += len(g)
	}
	return n
}

// Write renders the report in the given format.
func (r *Report) Write(w io.Writer, f Format) error {
	switch f {
	case FormatJSON:
		return r.WriteJSON(w)
	case FormatCSV:
		return r.WriteCSV(w)
	case FormatXLSX:
		return r.WriteXLSX(w)
	default:
		return eris.Errorf("report: unknown format %q", f)
	}
}

// columns is the tabular layout shared by CSV and XLSX.
var columns = []string{
	"Gruppe",
	"Navn",
	"Tid",
	"Klasse",
	"Deltagelser",
	"BesteTidligere",
	"BesteÅr",
	"NyBestetid",
	"Differanse",
}

// records returns the tabular rows, category-major. Absent values are empty.
func (r *Report) records() [][]string {
	out := make([][]string, 0, r.Len())
	for _, c := range model.Categories {
		for _, p := range r.groups[c] {
			out = append(out, []string{
				string(c),
				p.Name,
				p.Time.String(),
				p.ClassLabel,
				optInt(p.Stats.ParticipationCount),
				optString(p.Stats.BestTimeBeforeYear),
				optInt(p.Stats.BestYear),
				strconv.FormatBool(p.IsNewBest),
				optString(p.Delta),
			})
		}
	}
	return out
}

func optInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func optString[T interface{ String() string }](v *T) string {
	if v == nil {
		return ""
	}
	return (*v).String()
}
