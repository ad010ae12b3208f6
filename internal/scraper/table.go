package scraper

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Cell is one table cell: its text and the first hyperlink inside it
type Cell struct {
	Text string
	Href string
}

// parseableTables returns every table with at least one row, in document order
// (nested tables included)
func parseableTables(doc *goquery.Document) []*goquery.Selection {
	var tables []*goquery.Selection
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		if table.Find("tr").Length() > 0 {
			tables = append(tables, table)
		}
	})
	return tables
}

type pendingSpan struct {
	cell Cell
	left int
}

// expandRows converts table rows into a rectangular-ish grid, repeating a cell across
// its colspan and into the following rows for its rowspan.
func expandRows(rows *goquery.Selection) [][]Cell {
	grid := make([][]Cell, 0, rows.Length())
	pending := make(map[int]*pendingSpan)

	rows.Each(func(_ int, tr *goquery.Selection) {
		var row []Cell
		col := 0

		// Cells carried down from rows above occupy their columns first
		carry := func() {
			for {
				span, ok := pending[col]
				if !ok {
					return
				}
				row = append(row, span.cell)
				span.left--
				if span.left == 0 {
					delete(pending, col)
				}
				col++
			}
		}

		tr.ChildrenFiltered("td, th").Each(func(_ int, td *goquery.Selection) {
			carry()
			cell := newCell(td)
			colspan := spanAttr(td, "colspan")
			rowspan := spanAttr(td, "rowspan")
			for i := 0; i < colspan; i++ {
				row = append(row, cell)
				if rowspan > 1 {
					pending[col] = &pendingSpan{cell: cell, left: rowspan - 1}
				}
				col++
			}
		})
		carry()

		// Spans further right than this row reaches
		for c := col; c <= maxKey(pending); c++ {
			if span, ok := pending[c]; ok {
				row = append(row, span.cell)
				span.left--
				if span.left == 0 {
					delete(pending, c)
				}
			} else {
				row = append(row, Cell{})
			}
		}

		grid = append(grid, row)
	})

	return grid
}

func newCell(td *goquery.Selection) Cell {
	cell := Cell{Text: normalizeSpace(td.Text())}
	if href, ok := td.Find("a[href]").First().Attr("href"); ok {
		cell.Href = strings.TrimSpace(href)
	}
	return cell
}

func spanAttr(td *goquery.Selection, name string) int {
	v, ok := td.Attr(name)
	if !ok {
		return 1
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func maxKey(m map[int]*pendingSpan) int {
	max := -1
	for k := range m {
		if k > max {
			max = k
		}
	}
	return max
}

// normalizeSpace trims and collapses whitespace runs (including &nbsp;) to a single space
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// cellText returns the text of column idx, or "" when the row is too short
func cellText(row []Cell, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx].Text
}

// uniqueRows drops rows whose cell texts duplicate an earlier row
func uniqueRows(grid [][]Cell) [][]Cell {
	seen := make(map[string]bool)
	out := make([][]Cell, 0, len(grid))
	for _, row := range grid {
		texts := make([]string, len(row))
		for i, c := range row {
			texts[i] = c.Text
		}
		key := strings.Join(texts, "\x1f")
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, row)
	}
	return out
}
