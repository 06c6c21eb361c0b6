package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReportTypes(t *testing.T) {
	tests := []struct {
		name    string
		in      []string
		want    []ReportType
		wantErr bool
	}{
		{name: "default", want: AllReportTypes()},
		{
			name: "case and spaces",
			in:   []string{" BSheet ", "incsta"},
			want: []ReportType{BalanceSheet, IncomeStatement},
		},
		{
			name: "duplicates",
			in:   []string{"cashflow", "cashflow", "cashflowdirect"},
			want: []ReportType{CashFlow, CashFlowDirect},
		},
		{name: "unknown", in: []string{"bsheet", "ledger"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseReportTypes(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReportType_Name(t *testing.T) {
	assert.Equal(t, "Balance Sheet", BalanceSheet.Name())
	assert.Equal(t, "Income Statement", IncomeStatement.Name())
	assert.Equal(t, "Cash Flow Statement", CashFlow.Name())
	assert.Equal(t, "Direct Cash Flow Statement", CashFlowDirect.Name())
	assert.Empty(t, ReportType("x").Name())
}

func TestRawTable(t *testing.T) {
	table := RawTable{Rows: [][]string{
		{"a", "", "", "", "1"},
		{"b"},
	}}
	assert.Equal(t, 2, table.Len())
	assert.Equal(t, 5, table.Width())
	assert.Equal(t, "1", table.Cell(0, ValueColumn))
	assert.Empty(t, table.Cell(1, ValueColumn))
	assert.Empty(t, table.Cell(5, 0))
	assert.Empty(t, table.Cell(-1, 0))
}

func TestStatementColumns(t *testing.T) {
	cols := StatementColumns()
	require.Len(t, cols, 10)
	assert.Equal(t, ColCompanyCode, cols[0])
	assert.Equal(t, ColAccountEn, cols[9])
}
