// Package dataset persists consolidated statement rows.
package dataset

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dsh2dsh/cafef/internal/model"
	"github.com/dsh2dsh/cafef/internal/table"
)

var ErrSchema = errors.New("not a statements dataset")

// Schema returns dataset columns in their fixed order.
func Schema() []table.Column {
	return []table.Column{
		{Name: model.ColCompanyCode, Kind: table.KindString},
		{Name: model.ColExchange, Kind: table.KindString},
		{Name: model.ColCompanyName, Kind: table.KindString},
		{Name: model.ColIndustry, Kind: table.KindString},
		{Name: model.ColReportType, Kind: table.KindString},
		{Name: model.ColReportDate, Kind: table.KindInt},
		{Name: model.ColAccount, Kind: table.KindString},
		{Name: model.ColValue, Kind: table.KindFloat},
		{Name: model.ColAccountVi, Kind: table.KindString},
		{Name: model.ColAccountEn, Kind: table.KindString},
	}
}

func ToTable(rows []model.LongFormRow) *table.Table {
	t := table.New(Schema()...)
	t.Rows = make([][]any, len(rows))
	for i := range rows {
		r := &rows[i]
		t.Rows[i] = []any{
			r.CompanyCode,
			strOrNil(r.Exchange),
			strOrNil(r.CompanyName),
			strOrNil(r.Industry),
			r.ReportType,
			int64(r.ReportDate),
			strOrNil(r.Account),
			floatOrNil(r.Value),
			r.AccountVi,
			strOrNil(r.AccountEn),
		}
	}
	return t
}

func strOrNil(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func floatOrNil(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

// FromTable converts a table with dataset columns, in any order, back into
// rows.
func FromTable(t *table.Table) ([]model.LongFormRow, error) {
	cols := make([]int, len(Schema()))
	for i, col := range Schema() {
		j := t.Index(col.Name)
		if j < 0 {
			return nil, fmt.Errorf("missing column %q: %w", col.Name, ErrSchema)
		}
		cols[i] = j
	}

	rows := make([]model.LongFormRow, len(t.Rows))
	for i, src := range t.Rows {
		cell := func(n int) any { return src[cols[n]] }
		year, err := toInt(cell(5))
		if err != nil {
			return nil, fmt.Errorf("row #%d %v: %w", i, model.ColReportDate, err)
		}
		value, err := toFloat(cell(7))
		if err != nil {
			return nil, fmt.Errorf("row #%d %v: %w", i, model.ColValue, err)
		}

		rows[i] = model.LongFormRow{
			CompanyCode: toStr(cell(0)),
			Exchange:    toStrPtr(cell(1)),
			CompanyName: toStrPtr(cell(2)),
			Industry:    toStrPtr(cell(3)),
			ReportType:  toStr(cell(4)),
			ReportDate:  year,
			Account:     toStrPtr(cell(6)),
			Value:       value,
			AccountVi:   toStr(cell(8)),
			AccountEn:   toStrPtr(cell(9)),
		}
	}
	return rows, nil
}

func toStr(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	}
	return fmt.Sprint(table.Coerce(v, table.KindString))
}

func toStrPtr(v any) *string {
	if v == nil {
		return nil
	}
	s := toStr(v)
	return &s
}

func toInt(v any) (int, error) {
	switch v := v.(type) {
	case nil:
		return 0, nil
	case int64:
		return int(v), nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("%v is not a year", v)
		}
		return int(v), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("parse %q: %w", v, err)
		}
		return n, nil
	}
	return 0, fmt.Errorf("unexpected %T", v)
}

func toFloat(v any) (*float64, error) {
	var f float64
	switch v := v.(type) {
	case nil:
		return nil, nil
	case float64:
		f = v
	case int64:
		f = float64(v)
	case string:
		if v == "" {
			return nil, nil
		}
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", v, err)
		}
		f = parsed
	default:
		return nil, fmt.Errorf("unexpected %T", v)
	}
	return &f, nil
}

// ------------------------------------------------------------

// Write stores rows into path using format of its extension.
func Write(path string, rows []model.LongFormRow) error {
	f, ok := table.FormatFromPath(path)
	if !ok {
		return fmt.Errorf("dataset %q: %w", path, table.ErrUnknownFormat)
	}
	return table.WriteFile(path, ToTable(rows), f) //nolint:wrapcheck // wrapped inside
}

func Read(path string) ([]model.LongFormRow, error) {
	f, ok := table.FormatFromPath(path)
	if !ok {
		return nil, fmt.Errorf("dataset %q: %w", path, table.ErrUnknownFormat)
	}

	t, err := table.ReadFile(path, f)
	if err != nil {
		return nil, err //nolint:wrapcheck // wrapped inside
	}

	rows, err := FromTable(t)
	if err != nil {
		return nil, fmt.Errorf("dataset %q: %w", path, err)
	}
	return rows, nil
}

// MirrorPath returns path of the tab separated copy of a dataset file.
func MirrorPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + table.CSV.Ext()
}
