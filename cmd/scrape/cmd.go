package scrape

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dsh2dsh/cafef/cmd/internal/common"
	"github.com/dsh2dsh/cafef/internal/model"
)

var (
	reload       bool
	limit        int
	singleThread bool
	reportTypes  []string
	tsv          bool
	startYear    int
	endYear      int

	Cmd = cobra.Command{
		Use:   "scrape",
		Short: "Scrape financial statements of listed companies from cafef.vn",
		Long: `Fetches the company list, scrapes yearly statements of every company,
maps Vietnamese account labels and writes the consolidated dataset into
CAFEF_OUTPUT_DIR.`,
		Example: `
  - Scrape all report types of all companies:

    $ cafef scrape

  - Scrape balance sheets of the first 10 companies, refreshing the list:

    $ cafef scrape --reload --limit 10 --report-type bsheet`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cobra.CheckErr(runScrape(cmd))
		},
	}
)

func init() {
	flags := Cmd.Flags()
	flags.BoolVar(&reload, "reload", false,
		"refresh the company list even if cached")
	flags.IntVar(&limit, "limit", 0, "scrape only the first N companies")
	flags.BoolVar(&singleThread, "single-thread", false,
		"scrape companies one by one")
	flags.StringSliceVarP(&reportTypes, "report-type", "t", nil,
		"report types to scrape: bsheet, incsta, cashflow, cashflowdirect")
	flags.BoolVar(&tsv, "tsv", false,
		"also write a tab separated copy of the dataset")
	flags.IntVar(&startYear, "start-year", 0,
		"first fiscal year, overrides CAFEF_START_YEAR")
	flags.IntVar(&endYear, "end-year", 0,
		"last fiscal year, overrides CAFEF_END_YEAR")
}

//nolint:wrapcheck // we'll pass error as is to cobra
func runScrape(cmd *cobra.Command) error {
	types, err := model.ParseReportTypes(reportTypes)
	if err != nil {
		return err
	}

	cfg, err := common.LoadConfig()
	if err != nil {
		return err
	}
	if startYear != 0 {
		cfg.StartYear = startYear
	}
	if endYear != 0 {
		cfg.EndYear = endYear
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	c := common.NewClient(&cfg)
	result, err := NewPipeline(cfg, c, c).
		WithReportTypes(types).
		WithReload(reload).
		WithLimit(limit).
		WithSequential(singleThread).
		WithMirror(tsv).
		Run(ctx)
	if err != nil {
		return err
	}

	slog.Info("all done", slog.String("run", result.RunId),
		slog.Int("companies", result.Companies),
		slog.Int("failed", result.Failed),
		slog.Int("rows", result.Rows),
		slog.String("path", result.Path))
	return nil
}
