package extractor

import (
	"fmt"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tableHTML(rows [][]string) string {
	var b strings.Builder
	b.WriteString("<html><body><table><thead><tr><th>Rank</th><th>Name</th><th>Earnings</th></tr></thead><tbody>")
	for _, r := range rows {
		b.WriteString("<tr>")
		for _, c := range r {
			fmt.Fprintf(&b, "<td>%s</td>", c)
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</tbody></table></body></html>")
	return b.String()
}

func numberedRows(n int) [][]string {
	rows := make([][]string, n)
	for i := range rows {
		rows[i] = []string{fmt.Sprint(i + 1), fmt.Sprintf("Rider %d", i+1), fmt.Sprintf("$%d,000.00", 10-i)}
	}
	return rows
}

func docOf(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestMarkupExtractor_ConfidenceBoundary(t *testing.T) {
	m := NewMarkupExtractor(DefaultMinRows, nil)

	rows, selector := m.Extract(docOf(t, tableHTML(numberedRows(5))))
	assert.Empty(t, rows)
	assert.Empty(t, selector)

	rows, selector = m.Extract(docOf(t, tableHTML(numberedRows(6))))
	assert.Len(t, rows, 6)
	assert.Equal(t, "table", selector)
}

func TestMarkupExtractor_PositionalCells(t *testing.T) {
	m := NewMarkupExtractor(DefaultMinRows, nil)
	rows, _ := m.Extract(docOf(t, tableHTML(numberedRows(6))))
	require.Len(t, rows, 6)

	rank, _ := rows[0].Lookup("rank")
	name, _ := rows[0].Lookup("name")
	money, _ := rows[0].Lookup("earnings")
	assert.Equal(t, "1", rank.Str)
	assert.Equal(t, "Rider 1", name.Str)
	assert.Equal(t, "$10,000.00", money.Str)
}

func TestMarkupExtractor_EmptyNameRowDropsAfterNormalize(t *testing.T) {
	rows := numberedRows(8)
	rows[2] = []string{"3", "", "$500"}

	m := NewMarkupExtractor(DefaultMinRows, nil)
	raw, _ := m.Extract(docOf(t, tableHTML(rows)))
	require.Len(t, raw, 8)

	got := NewNormalizer(nil).Normalize(raw, testContext)
	assert.Len(t, got, 7)
	for _, rec := range got {
		assert.NotEqual(t, 3, *rec.Placing)
	}
}

func TestMarkupExtractor_SkipsSparseRows(t *testing.T) {
	rows := numberedRows(7)
	rows[0] = []string{"", "", "Sponsored"}
	rows[1] = []string{"", "", ""}

	m := NewMarkupExtractor(DefaultMinRows, nil)
	raw, _ := m.Extract(docOf(t, tableHTML(rows)))
	assert.Len(t, raw, 5)
}

func TestMarkupExtractor_CurrencyCellAndLastCellFallback(t *testing.T) {
	rows := numberedRows(6)
	rows[0] = []string{"1", "Jane", "$7,000", "12 events"}
	rows[1] = []string{"2", "John", "Round 3", "4,500"}

	m := NewMarkupExtractor(DefaultMinRows, nil)
	raw, _ := m.Extract(docOf(t, tableHTML(rows)))
	require.Len(t, raw, 6)

	money, _ := raw[0].Lookup("earnings")
	assert.Equal(t, "$7,000", money.Str)
	money, _ = raw[1].Lookup("earnings")
	assert.Equal(t, "4,500", money.Str)
}

func TestMarkupExtractor_PicksLargestTable(t *testing.T) {
	small := tableHTML(numberedRows(2))
	large := tableHTML(numberedRows(9))
	html := strings.Replace(small, "</body></html>", "", 1) + large

	m := NewMarkupExtractor(DefaultMinRows, nil)
	raw, selector := m.Extract(docOf(t, html))
	assert.Equal(t, "table", selector)
	assert.Len(t, raw, 9)
}

func TestMarkupExtractor_SmallTablesDoNotAddUp(t *testing.T) {
	// three 2-row tables match 6 body rows in total, but the one that would
	// be extracted has only 2
	var b strings.Builder
	b.WriteString("<html><body>")
	for i := 0; i < 3; i++ {
		html := tableHTML(numberedRows(2))
		html = strings.TrimPrefix(html, "<html><body>")
		html = strings.TrimSuffix(html, "</body></html>")
		b.WriteString(html)
	}
	b.WriteString("</body></html>")

	m := NewMarkupExtractor(DefaultMinRows, nil)
	raw, selector := m.Extract(docOf(t, b.String()))
	assert.Empty(t, selector)
	assert.Nil(t, raw)
}

func TestMarkupExtractor_SmallTablesFallThroughToGrid(t *testing.T) {
	var b strings.Builder
	b.WriteString("<html><body>")
	for i := 0; i < 4; i++ {
		html := tableHTML(numberedRows(2))
		html = strings.TrimPrefix(html, "<html><body>")
		html = strings.TrimSuffix(html, "</body></html>")
		b.WriteString(html)
	}
	b.WriteString(`<div role="grid"><div role="rowgroup">`)
	for i := 1; i <= 6; i++ {
		fmt.Fprintf(&b, `<div role="row"><span role="cell">%d</span><span role="cell">Roper %d</span><span role="cell">$%d</span></div>`, i, i, i*100)
	}
	b.WriteString(`</div></div></body></html>`)

	m := NewMarkupExtractor(DefaultMinRows, nil)
	raw, selector := m.Extract(docOf(t, b.String()))
	assert.Equal(t, "aria-rowgroup", selector)
	assert.Len(t, raw, 6)
}

func TestMarkupExtractor_AriaGrid(t *testing.T) {
	var b strings.Builder
	b.WriteString(`<div role="grid"><div role="rowgroup">`)
	for i := 1; i <= 7; i++ {
		fmt.Fprintf(&b, `<div role="row"><span role="cell">%d</span><span role="cell">Roper %d</span><span role="cell">$%d</span></div>`, i, i, i*100)
	}
	b.WriteString(`</div></div>`)

	m := NewMarkupExtractor(DefaultMinRows, nil)
	raw, selector := m.Extract(docOf(t, b.String()))
	assert.Equal(t, "aria-rowgroup", selector)
	require.Len(t, raw, 7)
	name, _ := raw[6].Lookup("name")
	assert.Equal(t, "Roper 7", name.Str)
}

func TestMarkupExtractor_TablePreferredOverGrid(t *testing.T) {
	var b strings.Builder
	b.WriteString(`<div class="standings-list">`)
	for i := 1; i <= 10; i++ {
		fmt.Fprintf(&b, `<div class="standings-row"><span>%d</span><span>Grid %d</span><span>$1</span></div>`, i, i)
	}
	b.WriteString(`</div>`)
	html := tableHTML(numberedRows(6)) + b.String()

	m := NewMarkupExtractor(DefaultMinRows, nil)
	raw, selector := m.Extract(docOf(t, html))
	assert.Equal(t, "table", selector)
	assert.Len(t, raw, 6)
}

func TestMarkupExtractor_GenericRowsUseChildren(t *testing.T) {
	var b strings.Builder
	b.WriteString(`<section class="standings">`)
	for i := 1; i <= 6; i++ {
		fmt.Fprintf(&b, `<div class="row"><div>%d</div><div>Bull Rider %d</div><div>$%d</div></div>`, i, i, i)
	}
	b.WriteString(`</section>`)

	m := NewMarkupExtractor(DefaultMinRows, nil)
	raw, selector := m.Extract(docOf(t, b.String()))
	assert.Equal(t, "standings-row", selector)
	require.Len(t, raw, 6)
	name, _ := raw[0].Lookup("name")
	assert.Equal(t, "Bull Rider 1", name.Str)
}

func TestMarkupExtractor_ConfigurableThreshold(t *testing.T) {
	m := NewMarkupExtractor(1, nil)
	raw, selector := m.Extract(docOf(t, tableHTML(numberedRows(2))))
	assert.Equal(t, "table", selector)
	assert.Len(t, raw, 2)
}
