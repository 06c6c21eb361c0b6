package db

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/dsh2dsh/cafef/internal/dataset"
	"github.com/dsh2dsh/cafef/internal/logger"
	"github.com/dsh2dsh/cafef/internal/model"
	"github.com/dsh2dsh/cafef/internal/repo"
)

func NewUpload(repo Repo) *Upload {
	return &Upload{
		repo:      repo,
		companies: newCompanies(),
		procs:     1,
	}
}

type Repo interface {
	AddCompany(ctx context.Context, c repo.Company) (bool, error)
	ReplaceStatements(ctx context.Context, company, reportType string,
		length int, next func(i int) (*model.LongFormRow, error)) error
}

type Upload struct {
	repo      Repo
	companies companies

	procs int
}

func (self *Upload) WithProcsLimit(n int) *Upload {
	self.procs = n
	return self
}

// UploadFiles reads all dataset files before touching the database.
func (self *Upload) UploadFiles(ctx context.Context, paths []string) error {
	var rows []model.LongFormRow
	for _, path := range paths {
		fileRows, err := dataset.Read(path)
		if err != nil {
			return err //nolint:wrapcheck // wrapped inside
		}
		logger.FromContext(ctx).Info("read dataset", slog.String("path", path),
			slog.Int("rows", len(fileRows)))
		rows = append(rows, fileRows...)
	}
	return self.Upload(ctx, rows)
}

// Upload replaces stored statements of every (company, report type) found
// in rows.
func (self *Upload) Upload(ctx context.Context, rows []model.LongFormRow,
) error {
	groups := groupStatements(rows)
	log := logger.FromContext(ctx)
	log.Info("upload statements", slog.Int("groups", len(groups)),
		slog.Int("rows", len(rows)))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(self.procs)

	var uploaded atomic.Int64
	for i := range groups {
		if ctx.Err() != nil {
			break
		}
		group := &groups[i]
		g.Go(func() error {
			if err := self.uploadGroup(ctx, group); err != nil {
				return err
			}
			uploaded.Add(int64(len(group.rows)))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("upload statements: %w", err)
	}
	log.Info("uploaded", slog.Int("companies", self.companies.Len()),
		slog.Int64("rows", uploaded.Load()))
	return nil
}

func (self *Upload) uploadGroup(ctx context.Context, group *statementGroup,
) error {
	if err := self.addCompany(ctx, &group.rows[0]); err != nil {
		return err
	}

	err := self.repo.ReplaceStatements(ctx, group.company, group.reportType,
		len(group.rows), func(i int) (*model.LongFormRow, error) {
			return &group.rows[i], nil
		})
	if err != nil {
		return err //nolint:wrapcheck // wrapped inside
	}
	logger.FromContext(ctx).Debug("statements replaced",
		slog.String("company", group.company),
		slog.String("report", group.reportType),
		slog.Int("rows", len(group.rows)))
	return nil
}

func (self *Upload) addCompany(ctx context.Context, row *model.LongFormRow,
) error {
	c := repo.CompanyOf(row)
	return self.companies.Add(c.Code, func() error {
		added, err := self.repo.AddCompany(ctx, c)
		if err != nil {
			return err //nolint:wrapcheck // wrapped inside
		} else if added {
			logger.FromContext(ctx).Info("add company", slog.String("company", c.Code))
		}
		return nil
	})
}

// --------------------------------------------------

type statementGroup struct {
	company    string
	reportType string
	rows       []model.LongFormRow
}

// groupStatements splits rows by company and report type keeping order of
// first appearance.
func groupStatements(rows []model.LongFormRow) []statementGroup {
	type key struct{ company, reportType string }
	index := make(map[key]int)
	var groups []statementGroup

	for i := range rows {
		r := &rows[i]
		k := key{company: r.CompanyCode, reportType: r.ReportType}
		j, ok := index[k]
		if !ok {
			j = len(groups)
			index[k] = j
			groups = append(groups, statementGroup{
				company:    r.CompanyCode,
				reportType: r.ReportType,
			})
		}
		groups[j].rows = append(groups[j].rows, *r)
	}
	return groups
}
