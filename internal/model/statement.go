package model

// Fixed cell positions inside a cafef report table.
const (
	LabelColumn = 0
	ValueColumn = 4
)

// Dataset column names in their fixed order.
const (
	ColCompanyCode = "company_code"
	ColExchange    = "exchange"
	ColCompanyName = "company_name"
	ColIndustry    = "industry"
	ColReportType  = "report_type"
	ColReportDate  = "report_date"
	ColAccount     = "account"
	ColValue       = "value"
	ColAccountVi   = "account_vi"
	ColAccountEn   = "account_en"
)

// StatementColumns returns the 10 dataset columns in order.
func StatementColumns() []string {
	return []string{
		ColCompanyCode, ColExchange, ColCompanyName, ColIndustry, ColReportType,
		ColReportDate, ColAccount, ColValue, ColAccountVi, ColAccountEn,
	}
}

// RawTable is one fetched report table without its header rows.
type RawTable struct {
	Rows [][]string
}

func (self *RawTable) Len() int { return len(self.Rows) }

func (self *RawTable) Width() int {
	var width int
	for _, row := range self.Rows {
		width = max(width, len(row))
	}
	return width
}

// Cell returns the text at (row, col) or "" if the row is too short.
func (self *RawTable) Cell(row, col int) string {
	if row < 0 || row >= len(self.Rows) {
		return ""
	}
	cells := self.Rows[row]
	if col < 0 || col >= len(cells) {
		return ""
	}
	return cells[col]
}

// RawRow is one scraped observation before the directory join and mapping.
type RawRow struct {
	Symbol     string
	ReportType string
	Year       int
	Account    string
	Value      *float64
}

// LongFormRow is one row of the consolidated dataset.
type LongFormRow struct {
	CompanyCode string
	Exchange    *string
	CompanyName *string
	Industry    *string
	ReportType  string
	ReportDate  int
	Account     *string
	Value       *float64
	AccountVi   string
	AccountEn   *string
}

// AccountMappingEntry translates a raw statement label.
type AccountMappingEntry struct {
	English       *string `json:"english" yaml:"english"`
	EnglishFormat *string `json:"english_format" yaml:"english_format"`
}
