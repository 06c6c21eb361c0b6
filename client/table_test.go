package client

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsh2dsh/cafef/internal/model"
)

const testTablesHTML = `<html><body>
<table><tr><td>menu</td></tr></table>
<table>
  <thead><tr><th>Chỉ tiêu</th><th>2020</th></tr></thead>
  <tbody>
    <tr><td>  Tiền và
      các khoản   tương đương tiền</td><td>1,234</td></tr>
    <tr><td colspan="2">Tổng cộng</td></tr>
    <tr><td>nested<table><tr><td>inner</td></tr></table></td><td>(56)</td></tr>
  </tbody>
</table>
</body></html>`

func TestParseTable_all(t *testing.T) {
	tables := make([]model.RawTable, 3)
	for i := range tables {
		table, err := ParseTable(strings.NewReader(testTablesHTML), i)
		require.NoError(t, err)
		tables[i] = table
	}

	assert.Equal(t, [][]string{{"menu"}}, tables[0].Rows)

	second := tables[1]
	require.Equal(t, 3, second.Len())
	assert.Equal(t, 2, second.Width())
	assert.Equal(t, "Tiền và các khoản tương đương tiền", second.Cell(0, 0))
	assert.Equal(t, "1,234", second.Cell(0, 1))
	assert.Equal(t, []string{"Tổng cộng", "Tổng cộng"}, second.Rows[1])
	assert.Equal(t, "(56)", second.Cell(2, 1))

	assert.Equal(t, [][]string{{"inner"}}, tables[2].Rows)
}

func TestParseTable_headerRows(t *testing.T) {
	tests := []struct {
		name string
		html string
		want [][]string
	}{
		{
			name: "leading th rows without thead",
			html: `<table>
<tr><th>Chỉ tiêu</th><th>2020</th></tr>
<tr><th>Đơn vị</th><th>VND</th></tr>
<tr><td>Cash</td><td>1</td></tr>
<tr><th>TOTAL ASSETS</th><th>3</th></tr>
<tr><td>Debt</td><td>2</td></tr>
</table>`,
			want: [][]string{
				{"Cash", "1"}, {"TOTAL ASSETS", "3"}, {"Debt", "2"},
			},
		},
		{
			name: "th rows after thead",
			html: `<table>
<thead><tr><th>Chỉ tiêu</th><th>2020</th></tr></thead>
<tbody>
<tr><th>TOTAL ASSETS</th><th>3</th></tr>
<tr><td>Debt</td><td>2</td></tr>
</tbody>
</table>`,
			want: [][]string{{"TOTAL ASSETS", "3"}, {"Debt", "2"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := ParseTable(strings.NewReader(tt.html), 0)
			require.NoError(t, err)
			assert.Equal(t, tt.want, table.Rows)
		})
	}
}

func TestParseTable(t *testing.T) {
	table, err := ParseTable(strings.NewReader(testTablesHTML), 1)
	require.NoError(t, err)
	assert.Equal(t, 3, table.Len())

	_, err = ParseTable(strings.NewReader(testTablesHTML), 5)
	require.ErrorIs(t, err, ErrTableNotFound)
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: ""},
		{in: "  plain  ", want: "plain"},
		{in: "line\r\nbreak", want: "line break"},
		{in: "many    spaces", want: "many spaces"},
		{in: "nbsp\u00a0\u00a0run", want: "nbsp run"},
		{in: "tab\tseparated", want: "tab separated"},
		{in: "single space kept", want: "single space kept"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanText(tt.in))
		})
	}
}

func TestParseValue(t *testing.T) {
	ptr := func(v float64) *float64 { return &v }

	tests := []struct {
		name string
		in   string
		want *float64
	}{
		{name: "empty", in: "", want: nil},
		{name: "dash", in: "-", want: nil},
		{name: "text", in: "n/a", want: nil},
		{name: "integer", in: "1234", want: ptr(1234)},
		{name: "thousands", in: "1,234,567", want: ptr(1234567)},
		{name: "decimal", in: "12.5", want: ptr(12.5)},
		{name: "negative", in: "-42", want: ptr(-42)},
		{name: "parentheses", in: "(1,000)", want: ptr(-1000)},
		{name: "NaN", in: "NaN", want: nil},
		{name: "Inf", in: "Inf", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseValue(tt.in)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 1e-9)
		})
	}
}
