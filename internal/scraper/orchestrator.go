package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dsh2dsh/cafef/internal/logger"
	"github.com/dsh2dsh/cafef/internal/model"
)

const defaultProgressInterval = 5 * time.Second

func NewOrchestrator(fetcher Fetcher, types []model.ReportType,
	startYear, endYear int,
) *Orchestrator {
	return &Orchestrator{
		fetcher:   fetcher,
		types:     types,
		startYear: startYear,
		endYear:   endYear,

		procs:    1,
		interval: defaultProgressInterval,
	}
}

// Orchestrator scrapes many companies, one unit of work per company.
type Orchestrator struct {
	fetcher   Fetcher
	types     []model.ReportType
	startYear int
	endYear   int

	procs      int
	sequential bool
	interval   time.Duration
}

type unitResult struct {
	symbol string
	rows   []model.RawRow
	ok     bool
}

func (self *Orchestrator) WithProcsLimit(n int) *Orchestrator {
	self.procs = max(n, 1)
	return self
}

// WithSequential runs companies one by one in the calling goroutine.
func (self *Orchestrator) WithSequential(sequential bool) *Orchestrator {
	self.sequential = sequential
	return self
}

func (self *Orchestrator) WithProgressInterval(d time.Duration) *Orchestrator {
	if d > 0 {
		self.interval = d
	}
	return self
}

// Run scrapes every symbol and returns collected rows in symbol order and
// the number of companies without data. A company failure never stops the
// batch.
func (self *Orchestrator) Run(ctx context.Context, symbols []string,
) ([]model.RawRow, int) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var progress atomic.Uint32
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		self.logProgress(ctx, &progress, len(symbols))
	}()

	var results []unitResult
	if self.sequential {
		logger.FromContext(ctx).Info("scrape companies one by one",
			slog.Int("companies", len(symbols)))
		results = self.runSequential(ctx, symbols, &progress)
	} else {
		logger.FromContext(ctx).Info("scrape companies concurrently",
			slog.Int("companies", len(symbols)), slog.Int("workers", self.procs))
		results = self.runConcurrent(ctx, symbols, &progress)
	}
	cancel()
	wg.Wait()

	return self.collect(ctx, results)
}

func (self *Orchestrator) runSequential(ctx context.Context, symbols []string,
	progress *atomic.Uint32,
) []unitResult {
	results := make([]unitResult, len(symbols))
	for i, symbol := range symbols {
		results[i] = self.scrapeCompany(ctx, symbol)
		progress.Add(1)
	}
	return results
}

func (self *Orchestrator) runConcurrent(ctx context.Context, symbols []string,
	progress *atomic.Uint32,
) []unitResult {
	type indexedResult struct {
		index int
		unitResult
	}

	resultsCh := make(chan indexedResult, self.procs)
	results := make([]unitResult, len(symbols))
	done := make(chan struct{})
	go func() {
		defer close(done)
		for r := range resultsCh {
			results[r.index] = r.unitResult
		}
	}()

	var g errgroup.Group
	g.SetLimit(self.procs)
	for i, symbol := range symbols {
		g.Go(func() error {
			r := self.scrapeCompany(ctx, symbol)
			progress.Add(1)
			resultsCh <- indexedResult{index: i, unitResult: r}
			return nil
		})
	}
	_ = g.Wait()
	close(resultsCh)
	<-done
	return results
}

func (self *Orchestrator) scrapeCompany(ctx context.Context, symbol string,
) unitResult {
	l := logger.FromContext(ctx).With(slog.String("symbol", symbol))
	rows, ok := ScrapeAll(logger.WithContext(ctx, l), self.fetcher, symbol,
		self.startYear, self.endYear, self.types)
	return unitResult{symbol: symbol, rows: rows, ok: ok}
}

func (self *Orchestrator) collect(ctx context.Context, results []unitResult,
) ([]model.RawRow, int) {
	var size, failures int
	for i := range results {
		size += len(results[i].rows)
	}

	rows := make([]model.RawRow, 0, size)
	for _, r := range results {
		if !r.ok {
			failures++
			logger.FromContext(ctx).Info("no data for company",
				slog.String("symbol", r.symbol))
			continue
		}
		rows = append(rows, r.rows...)
	}

	logger.FromContext(ctx).Info("scraping finished",
		slog.Int("companies", len(results)),
		slog.Int("failed", failures), slog.Int("rows", len(rows)))
	return rows, failures
}

func (self *Orchestrator) logProgress(ctx context.Context,
	progress *atomic.Uint32, total int,
) {
	tick := time.NewTicker(self.interval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			logger.FromContext(ctx).Info("scraping companies",
				slog.String("progress",
					fmt.Sprintf("%v/%v", progress.Load(), total)))
		}
	}
}
