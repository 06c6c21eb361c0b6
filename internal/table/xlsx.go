package table

import (
	"errors"
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"
)

const xlsxSheet = "Sheet1"

func writeXLSX(path string, t *Table) error {
	wb := excelize.NewFile()
	defer wb.Close()

	sw, err := wb.NewStreamWriter(xlsxSheet)
	if err != nil {
		return fmt.Errorf("new stream writer: %w", err)
	}

	header := make([]any, len(t.Columns))
	for i, name := range t.Names() {
		header[i] = name
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i := range t.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("row #%d: %w", i, err)
		}
		row := make([]any, len(t.Columns))
		for j := range t.Columns {
			row[j] = t.Value(i, j)
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("write row #%d: %w", i, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create: %w", err)
	}
	if _, err := wb.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("save: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	return nil
}

func readXLSX(path string) (*Table, error) {
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
	} else if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q has no header", sheets[0])
	}
	return inferKinds(rows[0], rows[1:]), nil
}
