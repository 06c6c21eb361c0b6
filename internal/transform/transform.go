// Package transform joins scraped rows with company metadata and account
// mapping.
package transform

import (
	"cmp"
	"slices"

	"github.com/dsh2dsh/cafef/internal/model"
)

// Directory looks up company metadata by symbol.
type Directory interface {
	Lookup(symbol string) (model.CompanyRecord, bool)
}

// Transform builds dataset rows from raw rows. Rows without a symbol, year
// or label are dropped. The result is stably sorted by company, report type
// and year.
func Transform(raw []model.RawRow, dir Directory, mapping Mapping,
) []model.LongFormRow {
	rows := make([]model.LongFormRow, 0, len(raw))
	for i := range raw {
		r := &raw[i]
		if r.Symbol == "" || r.Year == 0 || r.Account == "" {
			continue
		}

		row := model.LongFormRow{
			CompanyCode: r.Symbol,
			ReportType:  r.ReportType,
			ReportDate:  r.Year,
			Value:       r.Value,
			AccountVi:   r.Account,
		}

		if company, ok := dir.Lookup(r.Symbol); ok {
			row.Exchange = optional(company.Exchange)
			row.CompanyName = optional(company.Name)
			row.Industry = optional(company.Industry)
		}

		entry := mapping.Lookup(r.Account)
		row.AccountEn = entry.English
		row.Account = entry.EnglishFormat
		rows = append(rows, row)
	}

	slices.SortStableFunc(rows, func(a, b model.LongFormRow) int {
		return cmp.Or(
			cmp.Compare(a.CompanyCode, b.CompanyCode),
			cmp.Compare(a.ReportType, b.ReportType),
			cmp.Compare(a.ReportDate, b.ReportDate),
		)
	})
	return rows
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
