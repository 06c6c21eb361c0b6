package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
)

const csvSep = '\t'

func writeCSV(path string, t *Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create: %w", err)
	}

	if err := EncodeCSV(f, t); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	return nil
}

// EncodeCSV writes a header line and all rows of t, tab separated.
func EncodeCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	cw.Comma = csvSep

	if err := cw.Write(t.Names()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	rec := make([]string, len(t.Columns))
	for i, row := range t.Rows {
		for j, v := range row {
			rec[j] = cellText(v, t.Columns[j].Kind)
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row #%d: %w", i, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}

func readCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()
	return DecodeCSV(f)
}

// DecodeCSV reads a tab separated table with a header line and infers column
// kinds from cell text.
func DecodeCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = csvSep
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("no header line")
	} else if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	return inferKinds(header, records), nil
}
