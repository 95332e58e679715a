package report

import (
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"github.com/stoltzen/stoltzen-cli/internal/model"
)

// RenderSummary writes a per-category overview: participant count, how many
// have profile statistics, new personal bests and the fastest time.
func (r *Report) RenderSummary(w io.Writer) error {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Gruppe", "Deltakere", "Med statistikk", "Ny bestetid", "Raskeste"})

	var total, withStats, newBests int
	for _, c := range model.Categories {
		g := r.groups[c]
		fastest := ""
		if len(g) > 0 {
			fastest = g[0].Time.String()
		}
		s, nb := countGroup(g)
		total += len(g)
		withStats += s
		newBests += nb
		tw.AppendRow(table.Row{string(c), len(g), s, nb, fastest})
	}
	tw.AppendFooter(table.Row{"Totalt", total, withStats, newBests, ""})

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})

	_, err := io.WriteString(w, tw.Render()+"\n")
	return err
}

func countGroup(g []model.EnrichedParticipant) (withStats, newBests int) {
	for _, p := range g {
		if !p.Stats.Empty() {
			withStats++
		}
		if p.IsNewBest {
			newBests++
		}
	}
	return withStats, newBests
}

// IsTerminal reports whether w is a terminal, so decoration such as the
// summary table is only shown to people and never to pipes or files.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
