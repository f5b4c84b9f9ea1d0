package output

import (
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/westhuggin/prca-standings-scraper/internal/runner"
)

// Summary renders one row per category with the winning strategy, record
// count and outcome.
func Summary(w io.Writer, results []runner.CategoryResult) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Event", "Name", "Season", "Strategy", "Rows", "Took", "Status"})

	total := 0
	for _, r := range results {
		status := "ok"
		if !r.OK() {
			status = "failed"
			if r.Err != nil {
				status = r.Err.Error()
			}
			if r.Dumped {
				status += " (dumped)"
			}
		}
		total += len(r.Records)
		t.AppendRow(table.Row{
			string(r.Event),
			r.Event.Name(),
			r.Season,
			r.Strategy.String(),
			len(r.Records),
			r.Duration.Round(time.Millisecond).String(),
			status,
		})
	}

	t.AppendFooter(table.Row{"", "", "", "total", total, "", ""})
	t.Render()
}
