// Package directory keeps the set of companies to scrape and their
// metadata.
package directory

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dsh2dsh/cafef/internal/logger"
	"github.com/dsh2dsh/cafef/internal/model"
)

var ErrUnavailable = errors.New("company directory unavailable")

// Cache file columns.
const (
	colSymbol   = "symbol"
	colExchange = "exchange"
	colName     = "organ_name"
	colIndustry = "industry"
)

var csvHeader = []string{colSymbol, colExchange, colName, colIndustry}

// Lister fetches the current company listing.
type Lister interface {
	Companies(ctx context.Context) ([]model.CompanyRecord, error)
}

// Load returns the directory from the CSV cache at path. If reload is set or
// the cache is missing, it refreshes the listing first and saves it into the
// cache. A failed refresh falls back to the cache.
func Load(ctx context.Context, path string, lister Lister, reload bool,
) (*Directory, error) {
	log := logger.FromContext(ctx)

	if !reload {
		d, err := ReadFile(path)
		if err == nil {
			log.Info("loaded company list", slog.Int("companies", d.Len()),
				slog.String("path", path))
			return d, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		log.Info("no cached company list", slog.String("path", path))
	}

	d, err := Refresh(ctx, path, lister)
	if err == nil {
		return d, nil
	}
	log.Warn("failed refresh company list, try cached one",
		slog.String("error", err.Error()))

	d, cacheErr := ReadFile(path)
	if cacheErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable,
			errors.Join(err, cacheErr))
	}
	log.Info("loaded company list", slog.Int("companies", d.Len()),
		slog.String("path", path))
	return d, nil
}

// Refresh fetches the listing and saves it into path.
func Refresh(ctx context.Context, path string, lister Lister) (*Directory, error) {
	logger.FromContext(ctx).Info("fetching company list...")
	records, err := lister.Companies(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch company list: %w", err)
	}

	d, err := New(records)
	if err != nil {
		return nil, err
	} else if err := d.WriteFile(path); err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("saved company list",
		slog.Int("companies", d.Len()), slog.String("path", path))
	return d, nil
}

func ReadFile(path string) (*Directory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open company list: %w", err)
	}
	defer f.Close()

	records, err := DecodeCSV(f)
	if err != nil {
		return nil, fmt.Errorf("company list %q: %w", path, err)
	}
	return New(records)
}

// DecodeCSV reads comma separated records with a header line. Columns are
// matched by name, unknown columns are ignored.
func DecodeCSV(r io.Reader) ([]model.CompanyRecord, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	pos := make(map[string]int, len(header))
	for i, name := range header {
		pos[strings.TrimSpace(name)] = i
	}
	if _, ok := pos[colSymbol]; !ok {
		return nil, fmt.Errorf("no %q column in %v", colSymbol, header)
	}

	field := func(rec []string, name string) string {
		if i, ok := pos[name]; ok && i < len(rec) {
			return strings.TrimSpace(rec[i])
		}
		return ""
	}

	var records []model.CompanyRecord
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		records = append(records, model.CompanyRecord{
			Symbol:   field(rec, colSymbol),
			Exchange: field(rec, colExchange),
			Name:     field(rec, colName),
			Industry: field(rec, colIndustry),
		})
	}
	return records, nil
}

func EncodeCSV(w io.Writer, records []model.CompanyRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range records {
		if err := cw.Write([]string{r.Symbol, r.Exchange, r.Name, r.Industry}); err != nil {
			return fmt.Errorf("write %q: %w", r.Symbol, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}

// ------------------------------------------------------------

// Directory is a read-only set of companies keyed by symbol. It's safe for
// concurrent use.
type Directory struct {
	records  []model.CompanyRecord
	bySymbol map[string]int
}

// New validates records and drops symbol duplicates, keeping the first one.
// Rows without a symbol are skipped.
func New(records []model.CompanyRecord) (*Directory, error) {
	validate := validator.New()
	d := &Directory{
		records:  make([]model.CompanyRecord, 0, len(records)),
		bySymbol: make(map[string]int, len(records)),
	}

	for i := range records {
		r := records[i]
		r.Symbol = strings.ToUpper(strings.TrimSpace(r.Symbol))
		if err := validate.Struct(&r); err != nil {
			var validationErrs validator.ValidationErrors
			if errors.As(err, &validationErrs) {
				continue
			}
			return nil, fmt.Errorf("validate company #%d: %w", i, err)
		} else if _, ok := d.bySymbol[r.Symbol]; ok {
			continue
		}
		d.bySymbol[r.Symbol] = len(d.records)
		d.records = append(d.records, r)
	}
	return d, nil
}

func (self *Directory) Len() int { return len(self.records) }

// Symbols returns symbols in listing order.
func (self *Directory) Symbols() []string {
	symbols := make([]string, len(self.records))
	for i, r := range self.records {
		symbols[i] = r.Symbol
	}
	return symbols
}

func (self *Directory) Lookup(symbol string) (model.CompanyRecord, bool) {
	if i, ok := self.bySymbol[strings.ToUpper(symbol)]; ok {
		return self.records[i], true
	}
	return model.CompanyRecord{}, false
}

func (self *Directory) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir for %q: %w", path, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create company list: %w", err)
	}

	if err := EncodeCSV(f, self.records); err != nil {
		f.Close()
		return fmt.Errorf("company list %q: %w", path, err)
	} else if err := f.Close(); err != nil {
		return fmt.Errorf("close company list %q: %w", path, err)
	}
	return nil
}
