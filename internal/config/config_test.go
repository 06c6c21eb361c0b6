package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 2015, cfg.StartYear)
	assert.Equal(t, 12, cfg.MaxWorkers)
	assert.Equal(t, "output_data", cfg.OutputDir)
	assert.Equal(t, "account_mapping.json", cfg.MappingPath)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.InDelta(t, 10.0, cfg.RateLimit, 0.0001)
}

func TestLoad_envs(t *testing.T) {
	t.Setenv("CAFEF_START_YEAR", "2020")
	t.Setenv("CAFEF_MAX_WORKERS", "3")
	t.Setenv("CAFEF_OUTPUT_DIR", "/tmp/out")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 2020, cfg.StartYear)
	assert.Equal(t, 3, cfg.MaxWorkers)
	assert.Equal(t, "/tmp/out", cfg.OutputDir)
}

func TestLoad_invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "not a number", key: "CAFEF_MAX_WORKERS", val: "many"},
		{name: "zero workers", key: "CAFEF_MAX_WORKERS", val: "0"},
		{name: "ancient start", key: "CAFEF_START_YEAR", val: "1900"},
		{name: "end before start", key: "CAFEF_END_YEAR", val: "2000"},
		{name: "bad url", key: "CAFEF_REPORT_URL", val: "not a url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := Load()
			require.Error(t, err)
		})
	}
}

func TestConfig_YearRange(t *testing.T) {
	now := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)

	cfg := Config{StartYear: 2015}
	start, end := cfg.YearRange(now)
	assert.Equal(t, 2015, start)
	assert.Equal(t, 2024, end)

	cfg.EndYear = 2020
	_, end = cfg.YearRange(now)
	assert.Equal(t, 2020, end)
}

func TestConfig_FinalDataPath(t *testing.T) {
	cfg := Config{
		OutputDir:         "out",
		FinalDataFilename: "final_financial_statements.parquet",
	}
	assert.Equal(t, filepath.Join("out", "final_financial_statements.parquet"),
		cfg.FinalDataPath(""))
	assert.Equal(t, filepath.Join("out", "final_financial_statements_bsheet.parquet"),
		cfg.FinalDataPath("bsheet"))
}
