package scrape

import (
	"bytes"
	"context"
	"errors"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"

	"github.com/stoltzen/stoltzen-cli/internal/fetcher"
	"github.com/stoltzen/stoltzen-cli/internal/model"
	"github.com/stoltzen/stoltzen-cli/internal/racetime"
)

// ProfileClient retrieves statistics pages (stat.php) for participants.
type ProfileClient struct {
	fetcher fetcher.Fetcher
	baseURL string
}

// NewProfileClient creates a ProfileClient. An empty baseURL falls back to
// DefaultBaseURL.
func NewProfileClient(f fetcher.Fetcher, baseURL string) *ProfileClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &ProfileClient{
		fetcher: f,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// ProfileURL builds the statistics page URL for a profile id.
func (c *ProfileClient) ProfileURL(id string) string {
	return c.baseURL + "/stat.php?id=" + url.QueryEscape(id)
}

// Fetch downloads and parses the profile page for id. Fields the page does
// not provide are left nil. Any failure is a *fetcher.FetchError.
func (c *ProfileClient) Fetch(ctx context.Context, id string, currentYear int) (model.ProfileStats, error) {
	doc, err := c.load(ctx, c.ProfileURL(id))
	if err != nil {
		return model.ProfileStats{}, err
	}
	return ParseProfile(doc, currentYear), nil
}

// FetchPage downloads a statistics page by URL and reads the participant's
// identity along with the statistics.
func (c *ProfileClient) FetchPage(ctx context.Context, pageURL string, currentYear int) (*ProfilePage, error) {
	doc, err := c.load(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	p := ParseProfilePage(doc, currentYear)
	if id, ok := ProfileIDFromHref(pageURL); ok {
		p.ProfileID = id
	}
	return p, nil
}

func (c *ProfileClient) load(ctx context.Context, pageURL string) (*goquery.Document, error) {
	page, err := c.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		var fe *fetcher.FetchError
		if errors.As(err, &fe) {
			return nil, fe
		}
		return nil, &fetcher.FetchError{URL: pageURL, Err: err}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
	if err != nil {
		return nil, &fetcher.FetchError{
			URL:        pageURL,
			StatusCode: page.StatusCode,
			Err:        eris.Wrap(err, "scrape: parse profile document"),
		}
	}
	return doc, nil
}

// ParseProfile extracts participation count and best earlier time from a
// statistics page. Each field is read independently; one missing field
// never hides another.
func ParseProfile(doc *goquery.Document, currentYear int) model.ProfileStats {
	var stats model.ProfileStats
	if n, ok := parseParticipations(doc); ok {
		stats.ParticipationCount = model.IntPtr(n)
	}
	if t, year, ok := parseBestBefore(doc, currentYear); ok {
		stats.BestTimeBeforeYear = model.TimePtr(t)
		stats.BestYear = model.IntPtr(year)
	}
	return stats
}

func parseParticipations(doc *goquery.Document) (int, bool) {
	if td := doc.Find("td#participations").First(); td.Length() > 0 {
		if n, ok := firstInt(cleanText(td.Text())); ok {
			return n, true
		}
	}

	var (
		count int
		found bool
	)
	doc.Find("tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		cells := rowCells(row)
		if len(cells) < 2 || !strings.Contains(strings.ToLower(cells[0]), "deltagelser") {
			return true
		}
		count, found = firstInt(cells[1])
		return !found
	})
	return count, found
}

// parseBestBefore finds the fastest time from a season before currentYear.
func parseBestBefore(doc *goquery.Document, currentYear int) (racetime.Time, int, bool) {
	if td := doc.Find("td#personal_best").First(); td.Length() > 0 {
		if t, year, ok := timeWithYear(cleanText(td.Text())); ok && year < currentYear {
			return t, year, true
		}
	}

	var (
		best     racetime.Time
		bestYear int
		found    bool
	)
	consider := func(t racetime.Time, year int) {
		if !found || t.Before(best) || (t == best && year < bestYear) {
			best, bestYear, found = t, year, true
		}
	}

	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := rowCells(row)
		for i, cell := range cells {
			if t, year, ok := timeWithYear(cell); ok {
				if year < currentYear {
					consider(t, year)
				}
				continue
			}
			year, ok := findYear(cell)
			if !ok || year >= currentYear {
				continue
			}
			if t, ok := nearbyTime(cells, i); ok {
				consider(t, year)
			}
		}
	})
	return best, bestYear, found
}

// nearbyTime returns the first time found within two cells of index i,
// nearest first.
func nearbyTime(cells []string, i int) (racetime.Time, bool) {
	for _, off := range []int{1, -1, 2, -2} {
		j := i + off
		if j < 0 || j >= len(cells) {
			continue
		}
		if t, ok := racetime.Find(cells[j]); ok {
			return t, true
		}
	}
	return racetime.Time{}, false
}

// timeWithYear reads the "07.54 (2016)" shape.
func timeWithYear(s string) (racetime.Time, int, bool) {
	m := timeYearRe.FindStringSubmatch(s)
	if m == nil {
		return racetime.Time{}, 0, false
	}
	t, err := racetime.Parse(m[1])
	if err != nil {
		return racetime.Time{}, 0, false
	}
	year, err := strconv.Atoi(m[2])
	if err != nil {
		return racetime.Time{}, 0, false
	}
	return t, year, true
}

// ProfilePage is everything a statistics page says about one participant.
type ProfilePage struct {
	ProfileID   string
	Name        string
	ClassLabel  string
	CurrentTime *racetime.Time // nil when the page has no result this season
	Stats       model.ProfileStats
}

// Participant converts the page to a result row. It fails when the name,
// this season's time or a recognized category is missing.
func (p *ProfilePage) Participant() (model.RawParticipant, error) {
	if len([]rune(p.Name)) <= 1 {
		return model.RawParticipant{}, eris.New("scrape: profile page has no name")
	}
	if p.CurrentTime == nil {
		return model.RawParticipant{}, eris.Errorf("scrape: no current season time for %q", p.Name)
	}
	cat, ok := model.CategoryFromLabel(p.ClassLabel)
	if !ok {
		return model.RawParticipant{}, eris.Errorf("scrape: unrecognized class %q for %q", p.ClassLabel, p.Name)
	}
	return model.RawParticipant{
		Category:   cat,
		Name:       p.Name,
		Time:       *p.CurrentTime,
		ClassLabel: p.ClassLabel,
		ProfileID:  p.ProfileID,
	}, nil
}

var (
	titleNameRe   = regexp.MustCompile(`(?i)\bfor\s+(.+?)(?:\s+-\s.*)?$`)
	statsPrefixRe = regexp.MustCompile(`(?i)^(?:stoltzestatistikk|statistikk)\s+for\s+`)
)

// ParseProfilePage reads name, class label and this season's time in
// addition to the statistics ParseProfile extracts.
func ParseProfilePage(doc *goquery.Document, currentYear int) *ProfilePage {
	p := &ProfilePage{
		Name:  parseName(doc),
		Stats: ParseProfile(doc, currentYear),
	}
	p.ClassLabel = parseClassLabel(doc)

	t, class, ok := parseCurrentSeason(doc, currentYear)
	if ok {
		p.CurrentTime = model.TimePtr(t)
		if p.ClassLabel == "" {
			p.ClassLabel = class
		}
	}
	return p
}

func parseName(doc *goquery.Document) string {
	if m := titleNameRe.FindStringSubmatch(cleanText(doc.Find("title").First().Text())); m != nil {
		if name := strings.TrimSpace(statsPrefixRe.ReplaceAllString(m[1], "")); len([]rune(name)) >= 3 {
			return name
		}
	}

	var name string
	doc.Find("h1, h2, h3").EachWithBreak(func(_ int, h *goquery.Selection) bool {
		text := statsPrefixRe.ReplaceAllString(cleanText(h.Text()), "")
		if len([]rune(text)) > 3 && strings.Contains(text, " ") &&
			!strings.HasPrefix(strings.ToLower(text), "statistikk") {
			name = text
			return false
		}
		return true
	})
	return name
}

func parseClassLabel(doc *goquery.Document) string {
	var label string
	doc.Find("tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		cells := rowCells(row)
		if len(cells) < 2 || !strings.Contains(strings.ToLower(cells[0]), "klasse") {
			return true
		}
		if len([]rune(cells[1])) > 1 {
			label = cells[1]
			return false
		}
		return true
	})
	return label
}

// parseCurrentSeason finds this season's time, plus a class label when the
// row it was found in carries one.
func parseCurrentSeason(doc *goquery.Document, currentYear int) (racetime.Time, string, bool) {
	if td := doc.Find("td#last_time").First(); td.Length() > 0 {
		if t, year, ok := timeWithYear(cleanText(td.Text())); ok && year == currentYear {
			return t, "", true
		}
	}

	var (
		found racetime.Time
		class string
		ok    bool
	)
	doc.Find("tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		cells := rowCells(row)
		for i, cell := range cells {
			if t, year, match := timeWithYear(cell); match {
				if year == currentYear {
					found, ok = t, true
				}
			} else if y, hasYear := findYear(cell); hasYear && y == currentYear {
				found, ok = nearbyTime(cells, i)
			}
			if ok {
				class = classNear(cells, i)
				return false
			}
		}
		return true
	})
	return found, class, ok
}

// classNear returns the first cell within two of i whose text maps to a
// category.
func classNear(cells []string, i int) string {
	for j := max(0, i-2); j < min(len(cells), i+3); j++ {
		if j == i {
			continue
		}
		if _, ok := model.CategoryFromLabel(cells[j]); ok {
			return cells[j]
		}
	}
	return ""
}
