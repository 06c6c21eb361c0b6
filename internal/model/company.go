package model

// CompanyRecord identifies one listed company.
type CompanyRecord struct {
	Symbol   string `validate:"required"`
	Exchange string
	Name     string
	Industry string
}
