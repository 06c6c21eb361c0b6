package mapping

import (
	"cmp"
	"slices"

	"github.com/dsh2dsh/cafef/internal/model"
	"github.com/dsh2dsh/cafef/internal/table"
	"github.com/dsh2dsh/cafef/internal/transform"
)

// Label is a distinct account label of one report type.
type Label struct {
	ReportType string
	AccountVi  string
	AccountEn  *string
	Account    *string
}

func (self *Label) Filled() bool { return self.Account != nil }

// Labels returns distinct (report type, label) pairs of rows, ordered by
// report type and label. The first mapped value of a pair wins.
func Labels(rows []model.LongFormRow) []Label {
	type key struct{ reportType, accountVi string }
	index := make(map[key]int)
	var labels []Label

	for i := range rows {
		r := &rows[i]
		k := key{reportType: r.ReportType, accountVi: r.AccountVi}
		if j, ok := index[k]; ok {
			l := &labels[j]
			l.AccountEn = cmp.Or(l.AccountEn, r.AccountEn)
			l.Account = cmp.Or(l.Account, r.Account)
			continue
		}
		index[k] = len(labels)
		labels = append(labels, Label{
			ReportType: r.ReportType,
			AccountVi:  r.AccountVi,
			AccountEn:  r.AccountEn,
			Account:    r.Account,
		})
	}

	slices.SortFunc(labels, func(a, b Label) int {
		return cmp.Or(
			cmp.Compare(a.ReportType, b.ReportType),
			cmp.Compare(a.AccountVi, b.AccountVi),
		)
	})
	return labels
}

// Coverage of normalized account names.
type Coverage struct {
	Labels   int
	Filled   int
	Unfilled []Label
}

func NewCoverage(labels []Label) Coverage {
	c := Coverage{Labels: len(labels)}
	for i := range labels {
		if labels[i].Filled() {
			c.Filled++
		} else {
			c.Unfilled = append(c.Unfilled, labels[i])
		}
	}
	return c
}

// Percent returns share of filled labels, 0..100.
func (self *Coverage) Percent() float64 {
	if self.Labels == 0 {
		return 0
	}
	return float64(self.Filled) * 100 / float64(self.Labels)
}

// SheetTable returns a curation sheet loadable back as a mapping.
func SheetTable(labels []Label) *table.Table {
	t := table.New(
		table.Column{Name: "report_type", Kind: table.KindString},
		table.Column{Name: transform.SheetAccountVi, Kind: table.KindString},
		table.Column{Name: transform.SheetAccountEn, Kind: table.KindString},
		table.Column{Name: transform.SheetAccount, Kind: table.KindString},
	)
	for i := range labels {
		l := &labels[i]
		t.Rows = append(t.Rows, []any{
			l.ReportType, l.AccountVi, strOrNil(l.AccountEn), strOrNil(l.Account),
		})
	}
	return t
}

func strOrNil(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
