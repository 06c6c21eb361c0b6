package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/dsh2dsh/cafef/internal/logger"
	"github.com/dsh2dsh/cafef/internal/model"
)

const (
	// Position of the statement table among all tables of a report page.
	reportTablePos = 4
	reportPageName = "0/0/0/0/bao-cao-tai-chinh-.chn"
)

var ErrEmptyTable = errors.New("report table has no data")

// ReportURL builds the page URL of one (symbol, report type, year) report.
func (self *Client) ReportURL(symbol string, rt model.ReportType, year int,
) (string, error) {
	u, err := url.JoinPath(self.ReportBaseURL(), strings.ToUpper(symbol),
		rt.String(), strconv.Itoa(year), reportPageName)
	if err != nil {
		return "", fmt.Errorf("join report path of %v/%v/%v: %w",
			symbol, rt, year, err)
	}
	return u, nil
}

// FetchReport returns the report table or false. Every failure is reported
// as false, the caller can't tell missing data from a broken request.
func (self *Client) FetchReport(ctx context.Context, symbol string,
	rt model.ReportType, year int,
) (model.RawTable, bool) {
	table, err := self.ReportTable(ctx, symbol, rt, year)
	if err != nil {
		logger.FromContext(ctx).Debug("no report table",
			slog.String("symbol", symbol), slog.String("report", rt.String()),
			slog.Int("year", year), slog.String("error", err.Error()))
		return table, false
	}
	return table, true
}

// ReportTable fetches and validates the report table.
func (self *Client) ReportTable(ctx context.Context, symbol string,
	rt model.ReportType, year int,
) (model.RawTable, error) {
	var table model.RawTable
	u, err := self.ReportURL(symbol, rt, year)
	if err != nil {
		return table, err
	}

	resp, err := self.Get(ctx, u)
	if err != nil {
		return table, err
	}
	defer resp.Body.Close()

	if resp.StatusCode > maxExpectedStatusCode {
		return table, fmt.Errorf("GET %s: %w", u, newUnexpectedStatusError(resp))
	}

	table, err = ParseTable(resp.Body, reportTablePos)
	if err != nil {
		return table, fmt.Errorf("GET %s: %w", u, err)
	}

	switch {
	case table.Len() == 0:
		return table, fmt.Errorf("GET %s: %w", u, ErrEmptyTable)
	case table.Width() <= model.ValueColumn:
		return table, fmt.Errorf("GET %s: table has %v columns, want > %v: %w",
			u, table.Width(), model.ValueColumn, ErrTableNotFound)
	}
	return table, nil
}
