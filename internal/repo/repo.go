package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dsh2dsh/cafef/internal/model"
)

var statementCols = [...]string{
	"company_code", "report_type", "report_date", "account", "val",
	"account_vi", "account_en",
}

func New(db Postgreser) *Repo {
	return &Repo{db: db}
}

type Repo struct {
	db Postgreser
}

type Postgreser interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string,
		rowSrc pgx.CopyFromSource) (int64, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Company is a companies row. Nil fields are NULL.
type Company struct {
	Code     string  `db:"company_code"`
	Exchange *string `db:"exchange"`
	Name     *string `db:"company_name"`
	Industry *string `db:"industry"`
}

// CompanyOf returns the company columns of a dataset row.
func CompanyOf(row *model.LongFormRow) Company {
	return Company{
		Code:     row.CompanyCode,
		Exchange: row.Exchange,
		Name:     row.CompanyName,
		Industry: row.Industry,
	}
}

// AddCompany inserts the company or refreshes its metadata. It returns true
// for a new company.
func (self *Repo) AddCompany(ctx context.Context, c Company) (bool, error) {
	rows, err := self.db.Query(ctx, `
INSERT INTO companies (company_code, exchange, company_name, industry)
  VALUES              ($1,           $2,       $3,           $4)
  ON CONFLICT (company_code) DO UPDATE
    SET exchange = EXCLUDED.exchange, company_name = EXCLUDED.company_name,
        industry = EXCLUDED.industry
  RETURNING (xmax = 0) AS inserted`, c.Code, c.Exchange, c.Name, c.Industry)
	if err != nil {
		return false, fmt.Errorf("add company %q: %w", c.Code, err)
	}

	inserted, err := pgx.CollectExactlyOneRow(rows, pgx.RowTo[bool])
	if err != nil {
		return false, fmt.Errorf("add company %q: %w", c.Code, err)
	}
	return inserted, nil
}

func (self *Repo) CopyStatements(ctx context.Context, length int,
	next func(i int) (*model.LongFormRow, error),
) error {
	return self.copyStatements(ctx, self.db, length, next)
}

func (self *Repo) copyStatements(ctx context.Context, conn Postgreser,
	length int, next func(i int) (*model.LongFormRow, error),
) error {
	n, err := conn.CopyFrom(ctx, pgx.Identifier{"statements"}, statementCols[:],
		pgx.CopyFromSlice(length, func(i int) ([]any, error) {
			row, err := next(i)
			if err != nil {
				return nil, err
			}
			values := []any{
				row.CompanyCode, row.ReportType, row.ReportDate, row.Account,
				row.Value, row.AccountVi, row.AccountEn,
			}
			return values, nil
		}))
	if err != nil {
		return fmt.Errorf("failed copy %v statements: %w", length, err)
	} else if n != int64(length) {
		return fmt.Errorf("copied %v statements instead of %v", n, length)
	}
	return nil
}

// ReplaceStatements deletes statement rows of company and report type and
// copies new ones inside one transaction.
func (self *Repo) ReplaceStatements(ctx context.Context, company,
	reportType string, length int, next func(i int) (*model.LongFormRow, error),
) error {
	err := pgx.BeginFunc(ctx, self.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
DELETE FROM statements WHERE company_code = $1 AND report_type = $2`,
			company, reportType)
		if err != nil {
			return err //nolint:wrapcheck // wrap it below
		}
		return self.copyStatements(ctx, tx, length, next)
	})
	if err != nil {
		return fmt.Errorf("repo.ReplaceStatements %q %q: %w", company,
			reportType, err)
	}
	return nil
}

// StatementCounts returns number of statement rows per company.
func (self *Repo) StatementCounts(ctx context.Context) (map[string]int, error) {
	rows, err := self.db.Query(ctx, `
SELECT company_code, COUNT(*) AS statements
  FROM statements GROUP BY company_code`)
	if err != nil {
		return nil, fmt.Errorf("repo.StatementCounts: %w", err)
	}

	type companyCount struct {
		Code  string `db:"company_code"`
		Count int    `db:"statements"`
	}

	items, err := pgx.CollectRows(rows, pgx.RowToStructByName[companyCount])
	if err != nil {
		return nil, fmt.Errorf("repo.StatementCounts: %w", err)
	}

	counts := make(map[string]int, len(items))
	for _, item := range items {
		counts[item.Code] = item.Count
	}
	return counts, nil
}
