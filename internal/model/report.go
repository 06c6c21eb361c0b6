package model

import (
	"fmt"
	"strings"
)

// ReportType is a statement category code used in cafef URLs.
type ReportType string

const (
	BalanceSheet    ReportType = "bsheet"
	IncomeStatement ReportType = "incsta"
	CashFlow        ReportType = "cashflow"
	CashFlowDirect  ReportType = "cashflowdirect"
)

const reportTypesAllowed = "bsheet, incsta, cashflow, cashflowdirect"

var reportNames = map[ReportType]string{
	BalanceSheet:    "Balance Sheet",
	IncomeStatement: "Income Statement",
	CashFlow:        "Cash Flow Statement",
	CashFlowDirect:  "Direct Cash Flow Statement",
}

// AllReportTypes returns every supported report type in declared order.
func AllReportTypes() []ReportType {
	return []ReportType{BalanceSheet, IncomeStatement, CashFlow, CashFlowDirect}
}

func ParseReportType(s string) (ReportType, error) {
	rt := ReportType(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := reportNames[rt]; !ok {
		return "", fmt.Errorf("unknown report type %q, expected one of: %s",
			s, reportTypesAllowed)
	}
	return rt, nil
}

func ParseReportTypes(values []string) ([]ReportType, error) {
	if len(values) == 0 {
		return AllReportTypes(), nil
	}

	types := make([]ReportType, 0, len(values))
	seen := make(map[ReportType]struct{}, len(values))
	for _, s := range values {
		rt, err := ParseReportType(s)
		if err != nil {
			return nil, err
		} else if _, ok := seen[rt]; ok {
			continue
		}
		seen[rt] = struct{}{}
		types = append(types, rt)
	}
	return types, nil
}

// Name returns the canonical report name stored in datasets.
func (self ReportType) Name() string {
	return reportNames[self]
}

func (self ReportType) String() string {
	return string(self)
}
