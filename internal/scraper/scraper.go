// Package scraper collects statement tables of companies and reshapes them
// into long rows.
package scraper

import (
	"context"
	"log/slog"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/dsh2dsh/cafef/client"
	"github.com/dsh2dsh/cafef/internal/logger"
	"github.com/dsh2dsh/cafef/internal/model"
)

// Fetcher returns one report table or false when it's unavailable.
type Fetcher interface {
	FetchReport(ctx context.Context, symbol string, rt model.ReportType,
		year int) (model.RawTable, bool)
}

// YearTable is a report table of one fiscal year.
type YearTable struct {
	Year  int
	Table model.RawTable
}

// ScrapeAll fetches every requested report type of symbol for years
// startYear..endYear and returns all reshaped rows. It returns false when
// no report type had any data.
func ScrapeAll(ctx context.Context, fetcher Fetcher, symbol string,
	startYear, endYear int, types []model.ReportType,
) ([]model.RawRow, bool) {
	symbol = strings.ToUpper(symbol)
	log := logger.FromContext(ctx).With(slog.String("symbol", symbol))

	var rows []model.RawRow
	for _, rt := range types {
		var tables []YearTable
		for year := startYear; year <= endYear; year++ {
			if table, ok := fetcher.FetchReport(ctx, symbol, rt, year); ok {
				tables = append(tables, YearTable{Year: year, Table: table})
			}
		}

		if len(tables) == 0 {
			log.Debug("no data for any year", slog.String("report", rt.String()))
			continue
		}

		if year, ok := labelsDiverge(tables); ok {
			log.Warn("labels differ from the first year",
				slog.String("report", rt.String()),
				slog.Int("first", tables[0].Year), slog.Int("year", year))
		}
		rows = append(rows, Reshape(symbol, rt, tables)...)
	}
	return rows, len(rows) > 0
}

// Reshape melts wide yearly tables of one report type into long rows. Labels
// of the first table are the account axis for every year, rows are matched
// by position. Rows are ordered by year, then by label.
func Reshape(symbol string, rt model.ReportType, tables []YearTable,
) []model.RawRow {
	if len(tables) == 0 {
		return nil
	}

	first := &tables[0].Table
	labels := make([]string, first.Len())
	for i := range labels {
		labels[i] = first.Cell(i, model.LabelColumn)
	}

	reportName := rt.Name()
	rows := make([]model.RawRow, 0, len(labels)*len(tables))
	for i := range tables {
		table := &tables[i].Table
		for j, label := range labels {
			rows = append(rows, model.RawRow{
				Symbol:     symbol,
				ReportType: reportName,
				Year:       tables[i].Year,
				Account:    label,
				Value:      client.ParseValue(table.Cell(j, model.ValueColumn)),
			})
		}
	}
	return rows
}

// labelsDiverge compares fingerprints of label columns and returns the first
// year whose labels differ from the first table.
func labelsDiverge(tables []YearTable) (int, bool) {
	want := labelsHash(&tables[0].Table)
	for i := 1; i < len(tables); i++ {
		if labelsHash(&tables[i].Table) != want {
			return tables[i].Year, true
		}
	}
	return 0, false
}

func labelsHash(table *model.RawTable) uint64 {
	h := xxhash.New()
	for i := range table.Rows {
		_, _ = h.WriteString(table.Cell(i, model.LabelColumn))
		_, _ = h.Write([]byte{0})
	}
	return h.Sum64()
}
