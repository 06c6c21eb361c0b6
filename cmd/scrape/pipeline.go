package scrape

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dsh2dsh/cafef/internal/config"
	"github.com/dsh2dsh/cafef/internal/dataset"
	"github.com/dsh2dsh/cafef/internal/directory"
	"github.com/dsh2dsh/cafef/internal/logger"
	"github.com/dsh2dsh/cafef/internal/model"
	"github.com/dsh2dsh/cafef/internal/scraper"
	"github.com/dsh2dsh/cafef/internal/transform"
)

func NewPipeline(cfg config.Config, lister directory.Lister,
	fetcher scraper.Fetcher,
) *Pipeline {
	return &Pipeline{
		cfg:     cfg,
		lister:  lister,
		fetcher: fetcher,
		types:   model.AllReportTypes(),
		now:     time.Now,
	}
}

// Pipeline runs one scrape: company list, statements, mapping and the
// dataset file.
type Pipeline struct {
	cfg     config.Config
	lister  directory.Lister
	fetcher scraper.Fetcher

	types      []model.ReportType
	reload     bool
	limit      int
	sequential bool
	mirror     bool
	now        func() time.Time
}

// Result of a pipeline run. Path is empty when no dataset was written.
type Result struct {
	RunId     string
	Companies int
	Failed    int
	Rows      int
	Path      string
	Mirror    string
}

func (self *Pipeline) WithReportTypes(types []model.ReportType) *Pipeline {
	if len(types) > 0 {
		self.types = types
	}
	return self
}

func (self *Pipeline) WithReload(reload bool) *Pipeline {
	self.reload = reload
	return self
}

// WithLimit scrapes only the first n companies. Zero means all of them.
func (self *Pipeline) WithLimit(n int) *Pipeline {
	self.limit = n
	return self
}

func (self *Pipeline) WithSequential(sequential bool) *Pipeline {
	self.sequential = sequential
	return self
}

// WithMirror writes a tab separated copy of the dataset.
func (self *Pipeline) WithMirror(mirror bool) *Pipeline {
	self.mirror = mirror
	return self
}

func (self *Pipeline) Run(ctx context.Context) (Result, error) {
	result := Result{RunId: uuid.NewString()}
	log := logger.FromContext(ctx).With(slog.String("run", result.RunId))
	ctx = logger.WithContext(ctx, log)

	mapping, err := transform.LoadMapping(self.cfg.MappingPath)
	if err != nil {
		return result, err //nolint:wrapcheck // wrapped inside
	}
	log.Info("loaded account mapping", slog.Int("labels", len(mapping)),
		slog.String("path", self.cfg.MappingPath))

	dir, err := directory.Load(ctx, self.cfg.CompanyListPath(), self.lister,
		self.reload)
	if err != nil {
		return result, err //nolint:wrapcheck // wrapped inside
	}

	symbols := dir.Symbols()
	if self.limit > 0 && self.limit < len(symbols) {
		symbols = symbols[:self.limit]
		log.Info("scraping limited", slog.Int("companies", self.limit))
	}
	result.Companies = len(symbols)

	startYear, endYear := self.cfg.YearRange(self.now())
	log.Info("target report types", slog.Any("types", self.types),
		slog.Int("from", startYear), slog.Int("to", endYear))

	raw, failed := scraper.NewOrchestrator(self.fetcher, self.types, startYear,
		endYear).
		WithProcsLimit(self.cfg.MaxWorkers).
		WithSequential(self.sequential).
		WithProgressInterval(self.cfg.ProgressInterval).
		Run(ctx, symbols)
	result.Failed = failed

	if len(raw) == 0 {
		log.Warn("scraping finished, but no data was collected")
		return result, nil
	}

	rows := transform.Transform(raw, dir, mapping)
	result.Rows = len(rows)
	log.Info("transformed", slog.Int("raw", len(raw)), slog.Int("rows", len(rows)))

	return self.save(ctx, rows, result)
}

func (self *Pipeline) save(ctx context.Context, rows []model.LongFormRow,
	result Result,
) (Result, error) {
	var suffix string
	if len(self.types) == 1 {
		suffix = self.types[0].String()
	}

	path := self.cfg.FinalDataPath(suffix)
	if err := dataset.Write(path, rows); err != nil {
		return result, fmt.Errorf("save dataset: %w", err)
	}
	result.Path = path

	if self.mirror {
		mirror := dataset.MirrorPath(path)
		if err := dataset.Write(mirror, rows); err != nil {
			return result, fmt.Errorf("save dataset mirror: %w", err)
		}
		result.Mirror = mirror
	}

	logger.FromContext(ctx).Info("saved dataset", slog.String("path", path),
		slog.String("mirror", result.Mirror), slog.Int("rows", len(rows)))
	return result, nil
}
