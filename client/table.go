package client

import (
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/dsh2dsh/cafef/internal/model"
)

// Upper bound for colspan, so a broken attribute can't blow up a row.
const maxColSpan = 64

var reWhitespace = regexp.MustCompile(`[\s\x{00A0}]+`)

// ParseTable parses only the table at index pos.
func ParseTable(r io.Reader, pos int) (model.RawTable, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return model.RawTable{}, fmt.Errorf("parse html: %w", err)
	}

	tables := doc.Find("table")
	if pos >= tables.Length() {
		return model.RawTable{}, fmt.Errorf("table #%d of %d: %w", pos,
			tables.Length(), ErrTableNotFound)
	}
	return parseTable(tables.Eq(pos)), nil
}

// parseTable returns data rows of table. Rows of <thead> are the header.
// Without <thead>, the leading run of all-<th> rows is the header and later
// all-<th> rows are data.
func parseTable(table *goquery.Selection) model.RawTable {
	var rows [][]string
	trs := ownRows(table)
	leading := trs.FilterFunction(func(_ int, tr *goquery.Selection) bool {
		return inHead(tr)
	}).Length() == 0

	trs.Each(func(_ int, tr *goquery.Selection) {
		if inHead(tr) {
			return
		} else if leading {
			if allHeaderCells(tr) {
				return
			}
			leading = false
		}
		cells := tr.ChildrenFiltered("td, th")
		row := make([]string, 0, cells.Length())
		cells.Each(func(_ int, cell *goquery.Selection) {
			text := CleanText(cell.Text())
			for range colSpan(cell) {
				row = append(row, text)
			}
		})
		if len(row) > 0 {
			rows = append(rows, row)
		}
	})
	return model.RawTable{Rows: rows}
}

// ownRows selects rows of this table, skipping rows of nested tables.
func ownRows(table *goquery.Selection) *goquery.Selection {
	return table.Find("tr").FilterFunction(func(_ int, tr *goquery.Selection) bool {
		return tr.Closest("table").IsSelection(table)
	})
}

func inHead(tr *goquery.Selection) bool {
	return tr.Parent().Is("thead")
}

func allHeaderCells(tr *goquery.Selection) bool {
	cells := tr.ChildrenFiltered("td, th")
	return cells.Length() > 0 && cells.Length() == tr.ChildrenFiltered("th").Length()
}

func colSpan(cell *goquery.Selection) int {
	n, err := strconv.Atoi(cell.AttrOr("colspan", "1"))
	if err != nil || n < 1 {
		return 1
	}
	return min(n, maxColSpan)
}

// CleanText collapses line breaks and whitespace runs into one space.
func CleanText(s string) string {
	return strings.TrimSpace(reWhitespace.ReplaceAllString(s, " "))
}

// ParseValue converts a report cell into a number. Empty cells, dashes and
// non-numeric text give nil. Thousands separators are dropped and
// parentheses mean a negative value.
func ParseValue(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	if negative {
		v = -v
	}
	return &v
}
