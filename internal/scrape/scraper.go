// Package scrape turns stoltzen.no result lists and statistics pages into
// model values.
package scrape

import (
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DefaultBaseURL is the site root profile URLs are built against.
const DefaultBaseURL = "http://stoltzen.no"

var (
	intRe  = regexp.MustCompile(`\d+`)
	yearRe = regexp.MustCompile(`(?:^|\D)(20\d{2})(?:\D|$)`)
	// timeYearRe matches the "07.54 (2016)" shape used by the profile cells.
	timeYearRe = regexp.MustCompile(`(\d{1,3}[.:]\d{2}(?:[.:]\d{2})?)\s*\(\s*(\d{4})\s*\)`)
)

// ProfileIDFromHref returns the numeric id query parameter of a link to
// stat.php, e.g. "stat.php?id=1234" or "/stat.php?id=1234&lang=no".
func ProfileIDFromHref(href string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", false
	}
	if !strings.EqualFold(path.Base(u.Path), "stat.php") {
		return "", false
	}
	id := strings.TrimSpace(u.Query().Get("id"))
	if id == "" {
		return "", false
	}
	if _, err := strconv.ParseUint(id, 10, 64); err != nil {
		return "", false
	}
	return id, true
}

// cleanText collapses whitespace runs, non-breaking spaces included, to
// single spaces.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// rowCells returns the trimmed text of a row's direct td/th children.
func rowCells(row *goquery.Selection) []string {
	cells := row.ChildrenFiltered("td, th")
	out := make([]string, 0, cells.Length())
	cells.Each(func(_ int, c *goquery.Selection) {
		out = append(out, cleanText(c.Text()))
	})
	return out
}

// firstInt returns the first run of digits in s.
func firstInt(s string) (int, bool) {
	m := intRe.FindString(s)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}

// findYear returns the first 20xx year in s.
func findYear(s string) (int, bool) {
	m := yearRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}
