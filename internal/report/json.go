package report

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"

	"github.com/stoltzen/stoltzen-cli/internal/model"
)

// jsonRow fixes the key order of one participant object.
type jsonRow struct {
	Navn           string  `json:"Navn"`
	Tid            string  `json:"Tid"`
	Klasse         string  `json:"Klasse"`
	Deltagelser    *int    `json:"Deltagelser"`
	BesteTidligere *string `json:"BesteTidligere"`
	BesteAar       *int    `json:"BesteÅr"`
	NyBestetid     bool    `json:"NyBestetid"`
	Differanse     *string `json:"Differanse"`
}

// jsonReport fixes the key order of the results document (Mann, Dame, Pluss);
// every key is present even when its group is empty.
type jsonReport struct {
	Mann  []jsonRow `json:"Mann"`
	Dame  []jsonRow `json:"Dame"`
	Pluss []jsonRow `json:"Pluss"`
}

// WriteJSON writes the report as an indented JSON object keyed by category.
// Absent values are null.
func (r *Report) WriteJSON(w io.Writer) error {
	doc := jsonReport{
		Mann:  r.jsonRows(model.CategoryMan),
		Dame:  r.jsonRows(model.CategoryWoman),
		Pluss: r.jsonRows(model.CategoryPlus),
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return eris.Wrap(err, "report: encode json")
	}
	return nil
}

func (r *Report) jsonRows(c model.Category) []jsonRow {
	rows := make([]jsonRow, 0, len(r.groups[c]))
	for _, p := range r.groups[c] {
		row := jsonRow{
			Navn:        p.Name,
			Tid:         p.Time.String(),
			Klasse:      p.ClassLabel,
			Deltagelser: p.Stats.ParticipationCount,
			BesteAar:    p.Stats.BestYear,
			NyBestetid:  p.IsNewBest,
		}
		if p.Stats.BestTimeBeforeYear != nil {
			s := p.Stats.BestTimeBeforeYear.String()
			row.BesteTidligere = &s
		}
		if p.Delta != nil {
			s := p.Delta.String()
			row.Differanse = &s
		}
		rows = append(rows, row)
	}
	return rows
}
