package table

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

var ErrUnknownFormat = errors.New("unknown file format")

// Format is a file encoding of a table. CSV files are tab separated.
type Format string

const (
	Parquet Format = "parquet"
	CSV     Format = "csv"
	XLSX    Format = "xlsx"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimPrefix(s, "."))); f {
	case Parquet, CSV, XLSX:
		return f, nil
	case "tsv":
		return CSV, nil
	}
	return "", fmt.Errorf("%q: %w", s, ErrUnknownFormat)
}

// FormatFromPath returns format of the file by its extension.
func FormatFromPath(path string) (Format, bool) {
	f, err := ParseFormat(filepath.Ext(path))
	return f, err == nil
}

func (self Format) Ext() string { return "." + string(self) }

func (self Format) String() string { return string(self) }

// WriteFile writes t into path, creating parent directories. The file is
// written next to path first and renamed on success, so a failed write never
// leaves a partial file behind.
func WriteFile(path string, t *Table, f Format) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir for %q: %w", path, err)
	}

	tmp := path + ".tmp"
	var err error
	switch f {
	case Parquet:
		err = writeParquet(tmp, t)
	case CSV:
		err = writeCSV(tmp, t)
	case XLSX:
		err = writeXLSX(tmp, t)
	default:
		err = fmt.Errorf("%q: %w", f, ErrUnknownFormat)
	}

	if err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write %v file %q: %w", f, path, err)
	} else if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename %q: %w", tmp, err)
	}
	return nil
}

func ReadFile(path string, f Format) (*Table, error) {
	var t *Table
	var err error
	switch f {
	case Parquet:
		t, err = readParquet(path)
	case CSV:
		t, err = readCSV(path)
	case XLSX:
		t, err = readXLSX(path)
	default:
		err = fmt.Errorf("%q: %w", f, ErrUnknownFormat)
	}

	if err != nil {
		return nil, fmt.Errorf("read %v file %q: %w", f, path, err)
	}
	return t, nil
}

// ------------------------------------------------------------

// inferKinds builds typed rows from text records. A column is int when all
// its non-empty cells are integers, float when they are numbers, and string
// otherwise. Empty cells are nil.
func inferKinds(header []string, records [][]string) *Table {
	t := &Table{Columns: make([]Column, len(header))}
	for i, name := range header {
		t.Columns[i] = Column{Name: name, Kind: inferColumn(records, i)}
	}

	t.Rows = make([][]any, len(records))
	for i, rec := range records {
		row := make([]any, len(header))
		for j := range header {
			if j < len(rec) && rec[j] != "" {
				row[j] = parseCell(rec[j], t.Columns[j].Kind)
			}
		}
		t.Rows[i] = row
	}
	return t
}

func inferColumn(records [][]string, col int) Kind {
	var kind Kind
	for _, rec := range records {
		if col >= len(rec) || rec[col] == "" {
			continue
		}
		s := rec[col]
		switch {
		case kind < KindFloat && isInt(s):
			kind = KindInt
		case kind < KindString && isFloat(s):
			kind = KindFloat
		default:
			return KindString
		}
	}
	return kind
}

func isInt(s string) bool {
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}

func isFloat(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

func parseCell(s string, k Kind) any {
	switch k {
	case KindInt:
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
	case KindFloat:
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			return v
		}
	}
	return s
}

// cellText renders a cell for text formats. Nil is an empty string.
func cellText(v any, k Kind) string {
	switch v := Coerce(v, k).(type) {
	case nil:
		return ""
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return FormatFloat(v)
	}
	return fmt.Sprint(v)
}

func storedKind(k Kind) Kind {
	if k == 0 {
		return KindString
	}
	return k
}
