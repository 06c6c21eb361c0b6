package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/dsh2dsh/cafef/internal/model"
)

const (
	symbolsURL    = "https://trading.vietcap.com.vn/api/price/symbols/getAll"
	industriesURL = "https://trading.vietcap.com.vn/data-mt/graphql"

	industriesQuery = `query Query {
  CompaniesListingInfo {
    ticker
    organName
    icbName2
  }
}`
)

var (
	listedExchanges = []string{"HSX", "HNX"}
	listedType      = "STOCK"
)

// ListingURLs are endpoints of the company listing source.
type ListingURLs struct {
	Symbols    string
	Industries string
}

type ListedSymbol struct {
	Symbol    string `json:"symbol"`
	Board     string `json:"board"`
	Type      string `json:"type"`
	OrganName string `json:"organName"`
}

type CompanyIndustry struct {
	Ticker    string `json:"ticker"`
	OrganName string `json:"organName"`
	ICBName2  string `json:"icbName2"`
}

type industriesResponse struct {
	Data struct {
		CompaniesListingInfo []CompanyIndustry `json:"CompaniesListingInfo"`
	} `json:"data"`
}

func (self *Client) WithListingURLs(urls ListingURLs) *Client {
	self.listing = urls
	return self
}

func (self *Client) ListingURLs() ListingURLs {
	urls := self.listing
	if urls.Symbols == "" {
		urls.Symbols = symbolsURL
	}
	if urls.Industries == "" {
		urls.Industries = industriesURL
	}
	return urls
}

func (self *Client) ListedSymbols(ctx context.Context) ([]ListedSymbol, error) {
	var symbols []ListedSymbol
	if err := self.GetJSON(ctx, self.ListingURLs().Symbols, &symbols); err != nil {
		return nil, fmt.Errorf("listed symbols: %w", err)
	}
	return symbols, nil
}

func (self *Client) CompanyIndustries(ctx context.Context,
) ([]CompanyIndustry, error) {
	var resp industriesResponse
	err := self.PostJSON(ctx, self.ListingURLs().Industries,
		map[string]any{"query": industriesQuery, "variables": map[string]any{}},
		&resp)
	if err != nil {
		return nil, fmt.Errorf("company industries: %w", err)
	}
	return resp.Data.CompaniesListingInfo, nil
}

// Companies returns stocks listed on HSX and HNX with their industry. A
// symbol without an industry entry keeps an empty industry.
func (self *Client) Companies(ctx context.Context) ([]model.CompanyRecord, error) {
	symbols, err := self.ListedSymbols(ctx)
	if err != nil {
		return nil, err
	}

	industries, err := self.CompanyIndustries(ctx)
	if err != nil {
		return nil, err
	}

	industryBySymbol := make(map[string]string, len(industries))
	for _, item := range industries {
		if _, ok := industryBySymbol[item.Ticker]; !ok {
			industryBySymbol[item.Ticker] = item.ICBName2
		}
	}

	companies := make([]model.CompanyRecord, 0, len(symbols))
	for _, item := range symbols {
		if item.Symbol == "" || !isListedStock(item) {
			continue
		}
		companies = append(companies, model.CompanyRecord{
			Symbol:   strings.ToUpper(item.Symbol),
			Exchange: item.Board,
			Name:     item.OrganName,
			Industry: industryBySymbol[item.Symbol],
		})
	}
	return companies, nil
}

func isListedStock(item ListedSymbol) bool {
	if item.Type != listedType {
		return false
	}
	for _, exchange := range listedExchanges {
		if item.Board == exchange {
			return true
		}
	}
	return false
}
