package extractor

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/westhuggin/prca-standings-scraper/pkg/logger"
)

// DefaultMinRows is the confidence threshold: a selector must match more
// rows than this to be trusted.
const DefaultMinRows = 5

// RowSelector describes one structural pattern for standings rows.
// An empty Cells selector means the row's element children.
type RowSelector struct {
	Name    string
	Rows    string
	Cells   string
	Tabular bool
}

// DefaultRowSelectors are tried in order; real tables come first.
var DefaultRowSelectors = []RowSelector{
	{Name: "table", Rows: "table tbody tr", Cells: "td", Tabular: true},
	{Name: "aria-rowgroup", Rows: `[role="rowgroup"] [role="row"]`, Cells: `[role="cell"], [role="gridcell"]`},
	{Name: "aria-row", Rows: `[role="row"]`, Cells: `[role="cell"], [role="gridcell"]`},
	{Name: "standings-row", Rows: `[class*="standings"] [class*="row"], [class*="Standings"] [class*="Row"]`},
	{Name: "grid-row", Rows: `[class*="grid"] [class*="row"], [class*="Grid"] [class*="Row"]`},
}

var currencyMarkers = []string{"$", "€", "£", "USD"}

type MarkupExtractor struct {
	minRows   int
	selectors []RowSelector
}

func NewMarkupExtractor(minRows int, selectors []RowSelector) *MarkupExtractor {
	if minRows < 0 {
		minRows = DefaultMinRows
	}
	if len(selectors) == 0 {
		selectors = DefaultRowSelectors
	}
	return &MarkupExtractor{minRows: minRows, selectors: selectors}
}

// Extract returns raw rows from the first selector matching more than
// minRows elements, and that selector's name. Nothing clears the threshold:
// nil, "".
func (m *MarkupExtractor) Extract(doc *goquery.Document) ([]RawRow, string) {
	for _, sel := range m.selectors {
		rows := doc.Find(sel.Rows)
		if sel.Tabular {
			rows = largestTable(doc).Find("tbody tr")
		}
		// the gate applies to the rows actually extracted, not to matches
		// summed over several small tables
		if rows.Length() <= m.minRows {
			continue
		}
		return m.rowsFrom(rows, sel), sel.Name
	}
	return nil, ""
}

// largestTable picks the table with the most body rows; the first one wins
// a tie.
func largestTable(doc *goquery.Document) *goquery.Selection {
	best := doc.Find("table").First()
	bestRows := -1
	doc.Find("table").Each(func(_ int, t *goquery.Selection) {
		if n := t.Find("tbody tr").Length(); n > bestRows {
			best, bestRows = t, n
		}
	})
	return best
}

func (m *MarkupExtractor) rowsFrom(rows *goquery.Selection, sel RowSelector) []RawRow {
	out := make([]RawRow, 0, rows.Length())
	rows.Each(func(_ int, row *goquery.Selection) {
		var cells *goquery.Selection
		if sel.Cells == "" {
			cells = row.Children()
		} else {
			cells = row.Find(sel.Cells)
		}

		texts := cells.Map(func(_ int, c *goquery.Selection) string {
			return cleanText(c.Text())
		})
		if raw, ok := rowFromCells(texts); ok {
			out = append(out, raw)
		}
	})
	return out
}

// rowFromCells maps cell text by position: rank, name, then the first cell
// carrying a currency marker (the last cell when none does).
func rowFromCells(texts []string) (RawRow, bool) {
	nonEmpty := 0
	for _, t := range texts {
		if t != "" {
			nonEmpty++
		}
	}
	if nonEmpty < 2 {
		return nil, false
	}

	money := texts[len(texts)-1]
	for _, t := range texts {
		if hasCurrency(t) {
			money = t
			break
		}
	}

	return RawRow{
		{Key: "rank", Value: String(texts[0])},
		{Key: "name", Value: String(texts[1])},
		{Key: "earnings", Value: String(money)},
	}, true
}

func hasCurrency(s string) bool {
	for _, marker := range currencyMarkers {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}

type MarkupStrategy struct {
	extractor *MarkupExtractor
}

func NewMarkupStrategy(extractor *MarkupExtractor) *MarkupStrategy {
	return &MarkupStrategy{extractor: extractor}
}

func (s *MarkupStrategy) State() State {
	return StateMarkup
}

func (s *MarkupStrategy) Extract(ctx context.Context, page Page) ([]RawRow, error) {
	doc, err := page.Document(ctx)
	if err != nil {
		return nil, err
	}

	rows, selector := s.extractor.Extract(doc)
	if selector == "" {
		logger.Log.Debug().Msg("no row selector cleared the confidence threshold")
		return nil, nil
	}
	logger.Log.Debug().Str("selector", selector).Int("rows", len(rows)).Msg("markup rows extracted")
	return rows, nil
}
