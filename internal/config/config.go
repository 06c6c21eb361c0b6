package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"
)

const envPrefix = "CAFEF_"

// Config holds settings of one pipeline run. It's built once by the command
// and passed down explicitly.
type Config struct {
	StartYear int `env:"START_YEAR" envDefault:"2015" validate:"min=1990"`
	// Zero means the current year.
	EndYear    int `env:"END_YEAR" validate:"omitempty,gtefield=StartYear"`
	MaxWorkers int `env:"MAX_WORKERS" envDefault:"12" validate:"min=1"`

	OutputDir           string `env:"OUTPUT_DIR" envDefault:"output_data" validate:"required"`
	CompanyListFilename string `env:"COMPANY_LIST" envDefault:"company_list.csv" validate:"required"`
	FinalDataFilename   string `env:"FINAL_DATA" envDefault:"final_financial_statements.parquet" validate:"required"`
	MappingPath         string `env:"MAPPING" envDefault:"account_mapping.json" validate:"required"`

	UserAgent     string        `env:"UA" envDefault:"Mozilla/5.0 (X11; Linux x86_64) cafef/1.0"`
	ReportBaseURL string        `env:"REPORT_URL" envDefault:"https://s.cafef.vn/bao-cao-tai-chinh" validate:"url"`
	SymbolsURL    string        `env:"SYMBOLS_URL" envDefault:"https://trading.vietcap.com.vn/api/price/symbols/getAll" validate:"url"`
	IndustriesURL string        `env:"INDUSTRIES_URL" envDefault:"https://trading.vietcap.com.vn/data-mt/graphql" validate:"url"`
	RateLimit     float64       `env:"RATE_LIMIT" envDefault:"10" validate:"gt=0"`
	HTTPTimeout   time.Duration `env:"HTTP_TIMEOUT" envDefault:"30s"`

	ProgressInterval time.Duration `env:"PROGRESS_INTERVAL" envDefault:"5s"`
}

// Load parses CAFEF_* environment variables and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: envPrefix}); err != nil {
		return cfg, fmt.Errorf("parse cafef envs: %w", err)
	}
	return cfg, cfg.Validate()
}

func (self *Config) Validate() error {
	if err := validator.New().Struct(self); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// YearRange returns inclusive years to scrape relative to now.
func (self *Config) YearRange(now time.Time) (int, int) {
	end := self.EndYear
	if end == 0 {
		end = now.Year()
	}
	return self.StartYear, end
}

func (self *Config) CompanyListPath() string {
	return filepath.Join(self.OutputDir, self.CompanyListFilename)
}

// FinalDataPath returns the dataset path. A single report type run gets its
// code as a suffix, so partial runs don't overwrite each other.
func (self *Config) FinalDataPath(suffix string) string {
	name := self.FinalDataFilename
	if suffix != "" {
		ext := filepath.Ext(name)
		name = strings.TrimSuffix(name, ext) + "_" + suffix + ext
	}
	return filepath.Join(self.OutputDir, name)
}
