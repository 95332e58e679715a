package scrape

import (
	"io"
	"regexp"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/stoltzen/stoltzen-cli/internal/model"
	"github.com/stoltzen/stoltzen-cli/internal/racetime"
)

// ErrNoResultsTable is returned when a page holds no table linking to
// profile pages.
var ErrNoResultsTable = eris.New("scrape: no results table")

var positionRe = regexp.MustCompile(`^\d+\.?$`)

// Extraction is the outcome of reading one results page.
type Extraction struct {
	Rows []model.RawParticipant // in page order

	// Skipped counts data rows with a missing name or unparseable time.
	Skipped int
	// Dropped counts data rows whose class label maps to no category.
	Dropped int
}

// ByCategory groups rows by category, keeping extraction order within each.
func (e *Extraction) ByCategory() map[model.Category][]model.RawParticipant {
	out := make(map[model.Category][]model.RawParticipant, len(model.Categories))
	for _, r := range e.Rows {
		out[r.Category] = append(out[r.Category], r)
	}
	return out
}

// ExtractResults reads a results page. The innermost table holding the first
// link to stat.php is the results table, so layout tables wrapping it are
// ignored. Its data rows are position | name (+ profile link) | time | class.
func ExtractResults(r io.Reader) (*Extraction, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, eris.Wrap(err, "scrape: parse results document")
	}

	var table *goquery.Selection
	doc.Find(`a[href*="stat.php"]`).EachWithBreak(func(_ int, link *goquery.Selection) bool {
		if t := link.Closest("table"); t.Length() > 0 {
			table = t
			return false
		}
		return true
	})
	if table == nil {
		return nil, ErrNoResultsTable
	}

	ext := &Extraction{}
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		// Rows of tables nested inside the results table are not results.
		if !row.Closest("table").IsSelection(table) {
			return
		}
		cells := row.ChildrenFiltered("td, th")
		if cells.Length() < 3 {
			return
		}
		if !positionRe.MatchString(cleanText(cells.Eq(0).Text())) {
			return
		}

		p, ok := parseResultRow(cells)
		if !ok {
			ext.Skipped++
			zap.L().Debug("scrape: skipping result row",
				zap.String("position", cleanText(cells.Eq(0).Text())),
				zap.String("name", cleanText(cells.Eq(1).Text())),
				zap.String("time", cleanText(cells.Eq(2).Text())),
			)
			return
		}

		cat, known := model.CategoryFromLabel(p.ClassLabel)
		if !known {
			ext.Dropped++
			zap.L().Warn("scrape: unrecognized class label, dropping row",
				zap.String("name", p.Name),
				zap.String("class", p.ClassLabel),
			)
			return
		}
		p.Category = cat
		ext.Rows = append(ext.Rows, p)
	})

	return ext, nil
}

// parseResultRow reads name, time, class and profile id from a data row.
// Category is left for the caller.
func parseResultRow(cells *goquery.Selection) (model.RawParticipant, bool) {
	nameCell := cells.Eq(1)
	name := cleanText(nameCell.Text())
	if len([]rune(name)) <= 1 {
		return model.RawParticipant{}, false
	}

	timeText := cleanText(cells.Eq(2).Text())
	t, err := racetime.Parse(timeText)
	if err != nil {
		var ok bool
		if t, ok = racetime.Find(timeText); !ok {
			return model.RawParticipant{}, false
		}
	}

	var class string
	if cells.Length() > 3 {
		class = cleanText(cells.Eq(3).Text())
	}

	p := model.RawParticipant{
		Name:       name,
		Time:       t,
		ClassLabel: class,
	}
	nameCell.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if id, ok := ProfileIDFromHref(href); ok {
			p.ProfileID = id
			return false
		}
		return true
	})
	return p, true
}
