package transform

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/dsh2dsh/cafef/internal/model"
)

var ErrMappingUnavailable = errors.New("account mapping unavailable")

// Header columns of a mapping curation sheet.
const (
	SheetAccountVi = "account_vi"
	SheetAccountEn = "account_en"
	SheetAccount   = "account"
)

// Mapping translates raw statement labels. It's read-only after loading.
type Mapping map[string]model.AccountMappingEntry

// Lookup returns the entry of label. Unknown labels give an empty entry.
func (self Mapping) Lookup(label string) model.AccountMappingEntry {
	return self[label]
}

// LoadMapping reads a mapping from a .json, .yaml/.yml or .xlsx file. Any
// failure wraps ErrMappingUnavailable.
func LoadMapping(path string) (Mapping, error) {
	m, err := loadMapping(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrMappingUnavailable, path, err)
	}
	return m, nil
}

func loadMapping(path string) (Mapping, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return loadMappingJSON(path)
	case ".yaml", ".yml":
		return loadMappingYAML(path)
	case ".xlsx":
		return loadMappingXLSX(path)
	default:
		return nil, fmt.Errorf("unsupported mapping format %q", ext)
	}
}

func loadMappingJSON(path string) (Mapping, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	var m Mapping
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("unmarshal json: %w", err)
	}
	return m, nil
}

func loadMappingYAML(path string) (Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	var m Mapping
	if err := yaml.NewDecoder(f).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return m, nil
}

func loadMappingXLSX(path string) (Mapping, error) {
	wb, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}

	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return mappingFromRows(rows)
}

func mappingFromRows(rows [][]string) (Mapping, error) {
	if len(rows) == 0 {
		return nil, errors.New("no header row")
	}

	pos := map[string]int{}
	for i, name := range rows[0] {
		pos[strings.TrimSpace(name)] = i
	}
	viCol, ok := pos[SheetAccountVi]
	if !ok {
		return nil, fmt.Errorf("no %q column", SheetAccountVi)
	}

	cell := func(row []string, name string) *string {
		i, ok := pos[name]
		if !ok || i >= len(row) {
			return nil
		}
		if s := strings.TrimSpace(row[i]); s != "" {
			return &s
		}
		return nil
	}

	m := make(Mapping, len(rows)-1)
	for _, row := range rows[1:] {
		if viCol >= len(row) || row[viCol] == "" {
			continue
		}
		label := row[viCol]
		if _, ok := m[label]; ok {
			continue
		}
		m[label] = model.AccountMappingEntry{
			English:       cell(row, SheetAccountEn),
			EnglishFormat: cell(row, SheetAccount),
		}
	}
	return m, nil
}
