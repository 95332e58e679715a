package scrape

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stoltzen/stoltzen-cli/internal/model"
)

const resultsPage = `<html><head><title>Resultater Stoltzekleiven Opp</title></head><body>
<table><tr><td><a href="index.php">Forside</a></td></tr></table>
<table>
<tr><th>Plass</th><th>Navn</th><th>Tid</th><th>Klasse</th></tr>
<tr><td>1.</td><td><a href="stat.php?id=101">Ola  Nordmann</a></td><td>7:54</td><td>Menn 35-39</td></tr>
<tr><td>2</td><td><a href="/stat.php?id=102&amp;aar=2024">Kari Nordmann</a></td><td>08.11</td><td>Kvinner 20-24</td></tr>
<tr><td>3.</td><td>Per Uten Lenke</td><td>9:02</td><td>Pluss 60</td></tr>
<tr><td>4.</td><td><a href="stat.php?id=104">X</a></td><td>9:10</td><td>Menn</td></tr>
<tr><td>5.</td><td><a href="stat.php?id=105">Brutt Løp</a></td><td>DNF</td><td>Menn</td></tr>
<tr><td>6.</td><td><a href="stat.php?id=106">Gjest Løper</a></td><td>9:30</td><td>Gjester</td></tr>
<tr><td colspan="4">Menn</td></tr>
<tr><td>7.</td><td><a href="annet.php?id=107">Åse Ødegård</a></td><td>10:01</td><td>Damer</td></tr>
</table>
</body></html>`

func TestExtractResults(t *testing.T) {
	ext, err := ExtractResults(strings.NewReader(resultsPage))
	require.NoError(t, err)

	require.Len(t, ext.Rows, 4)
	assert.Equal(t, 2, ext.Skipped)
	assert.Equal(t, 1, ext.Dropped)

	ola := ext.Rows[0]
	assert.Equal(t, "Ola Nordmann", ola.Name)
	assert.Equal(t, model.CategoryMan, ola.Category)
	assert.Equal(t, "7:54", ola.Time.String())
	assert.Equal(t, "Menn 35-39", ola.ClassLabel)
	assert.Equal(t, "101", ola.ProfileID)

	kari := ext.Rows[1]
	assert.Equal(t, model.CategoryWoman, kari.Category)
	assert.Equal(t, "8:11", kari.Time.String())
	assert.Equal(t, "102", kari.ProfileID)

	per := ext.Rows[2]
	assert.Equal(t, model.CategoryPlus, per.Category)
	assert.False(t, per.HasProfile())

	aase := ext.Rows[3]
	assert.Equal(t, "Åse Ødegård", aase.Name)
	assert.Equal(t, model.CategoryWoman, aase.Category)
	assert.Empty(t, aase.ProfileID, "link not pointing at stat.php")
}

func TestExtraction_ByCategory(t *testing.T) {
	ext, err := ExtractResults(strings.NewReader(resultsPage))
	require.NoError(t, err)

	groups := ext.ByCategory()
	require.Len(t, groups[model.CategoryWoman], 2)
	assert.Equal(t, "Kari Nordmann", groups[model.CategoryWoman][0].Name)
	assert.Equal(t, "Åse Ødegård", groups[model.CategoryWoman][1].Name)
	assert.Len(t, groups[model.CategoryMan], 1)
	assert.Len(t, groups[model.CategoryPlus], 1)
}

func TestExtractResults_NoResultsTable(t *testing.T) {
	page := `<html><body><table>
<tr><td>1.</td><td>Ola Nordmann</td><td>7:54</td><td>Menn</td></tr>
</table></body></html>`

	_, err := ExtractResults(strings.NewReader(page))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoResultsTable)
}

func TestExtractResults_EmptyTable(t *testing.T) {
	page := `<table><tr><td><a href="stat.php?id=1">Profil</a></td></tr></table>`

	ext, err := ExtractResults(strings.NewReader(page))
	require.NoError(t, err)
	assert.Empty(t, ext.Rows)
	assert.Zero(t, ext.Skipped)
	assert.Zero(t, ext.Dropped)
}

func TestExtractResults_IgnoresNestedTables(t *testing.T) {
	page := `<table>
<tr><td>1.</td><td><a href="stat.php?id=1">Ola Nordmann</a></td><td>7:54</td><td>Menn</td></tr>
<tr><td colspan="4"><table><tr><td>2.</td><td>Inni Tabell</td><td>8:00</td><td>Menn</td></tr></table></td></tr>
</table>`

	ext, err := ExtractResults(strings.NewReader(page))
	require.NoError(t, err)
	require.Len(t, ext.Rows, 1)
	assert.Equal(t, "Ola Nordmann", ext.Rows[0].Name)
}

func TestExtractResults_LayoutTableWrapper(t *testing.T) {
	page := `<html><body><table width="100%">
<tr><td><a href="index.php">Forside</a></td></tr>
<tr><td>
<table class="resultater">
<tr><th>Plass</th><th>Navn</th><th>Tid</th><th>Klasse</th></tr>
<tr><td>1.</td><td><a href="stat.php?id=1">Ola Nordmann</a></td><td>7:54</td><td>Menn 35-39</td></tr>
<tr><td>2.</td><td><a href="stat.php?id=2">Kari Nordmann</a></td><td>8:40</td><td>Kvinner</td></tr>
</table>
</td></tr>
</table></body></html>`

	ext, err := ExtractResults(strings.NewReader(page))
	require.NoError(t, err)
	require.Len(t, ext.Rows, 2)
	assert.Equal(t, "Ola Nordmann", ext.Rows[0].Name)
	assert.Equal(t, "2", ext.Rows[1].ProfileID)
	assert.Zero(t, ext.Skipped)
	assert.Zero(t, ext.Dropped)
}

func TestProfileIDFromHref(t *testing.T) {
	tests := []struct {
		href string
		want string
		ok   bool
	}{
		{"stat.php?id=123", "123", true},
		{"/stat.php?id=123&aar=2024", "123", true},
		{"http://stoltzen.no/stat.php?id=9", "9", true},
		{"STAT.PHP?id=5", "5", true},
		{"stat.php?id=abc", "", false},
		{"stat.php", "", false},
		{"resultat.php?id=1", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.href, func(t *testing.T) {
			got, ok := ProfileIDFromHref(tt.href)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
