package transform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/dsh2dsh/cafef/internal/model"
)

type fakeDirectory map[string]model.CompanyRecord

func (self fakeDirectory) Lookup(symbol string) (model.CompanyRecord, bool) {
	r, ok := self[symbol]
	return r, ok
}

func ptr[T any](v T) *T { return &v }

func testMapping() Mapping {
	return Mapping{
		"Tiền": {English: ptr("Cash"), EnglishFormat: ptr("cash")},
		"Nợ":   {English: ptr("Liabilities")},
	}
}

func TestTransform(t *testing.T) {
	dir := fakeDirectory{
		"FPT": {Symbol: "FPT", Exchange: "HSX", Name: "FPT Corp", Industry: "IT"},
	}
	raw := []model.RawRow{
		{Symbol: "VNM", ReportType: "Balance Sheet", Year: 2021, Account: "Tiền", Value: ptr(5.0)},
		{Symbol: "FPT", ReportType: "Income Statement", Year: 2020, Account: "Lãi"},
		{Symbol: "FPT", ReportType: "Balance Sheet", Year: 2021, Account: "Tiền", Value: ptr(1.0)},
		{Symbol: "FPT", ReportType: "Balance Sheet", Year: 2020, Account: "Nợ", Value: ptr(2.0)},
		{Symbol: "FPT", ReportType: "Balance Sheet", Year: 2020, Account: "Tiền", Value: ptr(3.0)},
		{Symbol: "FPT", ReportType: "Balance Sheet", Year: 2020, Account: ""},
		{Symbol: "", ReportType: "Balance Sheet", Year: 2020, Account: "Tiền"},
	}

	rows := Transform(raw, dir, testMapping())
	require.Len(t, rows, 5)

	assert.Equal(t, model.LongFormRow{
		CompanyCode: "FPT",
		Exchange:    ptr("HSX"),
		CompanyName: ptr("FPT Corp"),
		Industry:    ptr("IT"),
		ReportType:  "Balance Sheet",
		ReportDate:  2020,
		Account:     nil,
		Value:       ptr(2.0),
		AccountVi:   "Nợ",
		AccountEn:   ptr("Liabilities"),
	}, rows[0], "stable order keeps label order inside a year")

	assert.Equal(t, "Tiền", rows[1].AccountVi)
	assert.Equal(t, ptr("cash"), rows[1].Account)
	assert.Equal(t, ptr("Cash"), rows[1].AccountEn)
	assert.Equal(t, 2021, rows[2].ReportDate)

	assert.Equal(t, "Income Statement", rows[3].ReportType)
	assert.Nil(t, rows[3].Account, "unknown label")
	assert.Nil(t, rows[3].AccountEn)

	assert.Equal(t, "VNM", rows[4].CompanyCode)
	assert.Nil(t, rows[4].Exchange, "no directory entry")
	assert.Nil(t, rows[4].CompanyName)
	assert.Nil(t, rows[4].Industry)
}

func TestLoadMapping(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "mapping.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{
  "Tiền": {"english": "Cash", "english_format": "cash"},
  "Nợ": {"english": "Liabilities", "english_format": null}
}`), 0o600))

	yamlPath := filepath.Join(dir, "mapping.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
Tiền:
  english: Cash
  english_format: cash
Nợ:
  english: Liabilities
`), 0o600))

	xlsxPath := filepath.Join(dir, "mapping.xlsx")
	writeMappingSheet(t, xlsxPath, [][]any{
		{"report_type", SheetAccountVi, SheetAccountEn, SheetAccount},
		{"Balance Sheet", "Tiền", "Cash", "cash"},
		{"Balance Sheet", "Nợ", "Liabilities"},
		{"Income Statement", "Tiền", "Money", "money"},
	})

	for _, path := range []string{jsonPath, yamlPath, xlsxPath} {
		t.Run(filepath.Ext(path), func(t *testing.T) {
			m, err := LoadMapping(path)
			require.NoError(t, err)
			assert.Equal(t, testMapping(), m)
		})
	}
}

func writeMappingSheet(t *testing.T, path string, rows [][]any) {
	wb := excelize.NewFile()
	defer wb.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, wb.SetSheetRow("Sheet1", cell, &row))
	}
	require.NoError(t, wb.SaveAs(path))
}

func TestLoadMapping_errors(t *testing.T) {
	dir := t.TempDir()
	broken := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte("{"), 0o600))
	noHeader := filepath.Join(dir, "empty.xlsx")
	writeMappingSheet(t, noHeader, [][]any{{"label", "english"}})

	paths := []string{
		filepath.Join(dir, "missing.json"),
		broken,
		filepath.Join(dir, "mapping.txt"),
		noHeader,
	}
	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			_, err := LoadMapping(path)
			require.ErrorIs(t, err, ErrMappingUnavailable)
		})
	}
}

func TestMapping_Lookup(t *testing.T) {
	m := testMapping()
	assert.Equal(t, ptr("Cash"), m.Lookup("Tiền").English)
	assert.Equal(t, model.AccountMappingEntry{}, m.Lookup("unknown"))
	assert.Equal(t, model.AccountMappingEntry{}, Mapping(nil).Lookup("Tiền"))
}
