package common

import (
	"fmt"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/dsh2dsh/cafef/client"
	"github.com/dsh2dsh/cafef/internal/config"
)

// LoadConfig parses CAFEF_* environment variables.
func LoadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, fmt.Errorf("load cafef config: %w", err)
	}
	return cfg, nil
}

// NewClient builds a client sharing one rate limiter across all requests.
func NewClient(cfg *config.Config) *client.Client {
	burst := max(int(cfg.RateLimit), 1)
	c := client.New(
		client.WithHttpClient(&http.Client{Timeout: cfg.HTTPTimeout}),
		client.WithRateLimiter(rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)),
	)
	return c.WithUserAgent(cfg.UserAgent).
		WithReportBaseURL(cfg.ReportBaseURL).
		WithListingURLs(client.ListingURLs{
			Symbols:    cfg.SymbolsURL,
			Industries: cfg.IndustriesURL,
		})
}
