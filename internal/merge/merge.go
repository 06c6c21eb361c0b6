// Package merge consolidates many dataset files into one.
package merge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dsh2dsh/cafef/internal/dataset"
	"github.com/dsh2dsh/cafef/internal/logger"
	"github.com/dsh2dsh/cafef/internal/table"
)

var (
	ErrNoReadableFiles = errors.New("no input file could be read")
	ErrInputDir        = errors.New("input directory unavailable")
)

// Result describes one merge run. OutputPath is empty when nothing was
// written.
type Result struct {
	Found      int
	Merged     int
	Skipped    []string
	Rows       int
	Columns    int
	OutputPath string
}

// Merge concatenates every inputDir/*.<fileType> file in lexical order and
// writes the result into outputPath, encoded by its extension. Files with
// dataset columns win the column set, otherwise the set most files share.
// Unreadable files and files with another column set are skipped.
func Merge(ctx context.Context, inputDir string, fileType table.Format,
	outputPath string,
) (Result, error) {
	var result Result
	log := logger.FromContext(ctx)

	if fi, err := os.Stat(inputDir); err != nil {
		return result, fmt.Errorf("%w: %w", ErrInputDir, err)
	} else if !fi.IsDir() {
		return result, fmt.Errorf("%w: %q is not a directory", ErrInputDir, inputDir)
	}

	files, err := discover(inputDir, fileType, outputPath)
	if err != nil {
		return result, err
	}
	result.Found = len(files)

	if len(files) == 0 {
		log.Warn("no files to merge", slog.String("dir", inputDir),
			slog.String("type", fileType.String()))
		return result, nil
	}
	log.Info("merging files", slog.Int("files", len(files)),
		slog.String("type", fileType.String()))

	merged := readAll(ctx, files, fileType, &result)
	if merged == nil {
		return result, fmt.Errorf("merge %v files from %q: %w", len(files),
			inputDir, ErrNoReadableFiles)
	}
	result.Rows, result.Columns = merged.Len(), len(merged.Columns)
	log.Info("merged", slog.Int("rows", result.Rows),
		slog.Int("columns", result.Columns))

	outputPath, format := OutputFormat(ctx, outputPath)
	if err := table.WriteFile(outputPath, merged, format); err != nil {
		return result, fmt.Errorf("save merged file: %w", err)
	}
	result.OutputPath = outputPath
	log.Info("saved merged file", slog.String("path", outputPath))
	return result, nil
}

func discover(dir string, fileType table.Format, outputPath string,
) ([]string, error) {
	pattern := filepath.Join(dir, "*"+fileType.Ext())
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("glob %q: %w", pattern, err)
	}

	outAbs, _ := filepath.Abs(outputPath)
	kept := files[:0]
	for _, path := range files {
		if abs, _ := filepath.Abs(path); abs == outAbs {
			continue
		}
		kept = append(kept, path)
	}
	return kept, nil
}

type input struct {
	path  string
	table *table.Table
}

// readAll reads files and concatenates those having the reference column
// set. Unreadable files and files with other columns are skipped.
func readAll(ctx context.Context, files []string, fileType table.Format,
	result *Result,
) *table.Table {
	log := logger.FromContext(ctx)
	inputs := make([]input, 0, len(files))
	for _, path := range files {
		t, err := table.ReadFile(path, fileType)
		if err != nil {
			log.Error("skip unreadable file", slog.String("path", path),
				slog.String("error", err.Error()))
			result.Skipped = append(result.Skipped, path)
			continue
		}
		inputs = append(inputs, input{path: path, table: t})
	}

	if len(inputs) == 0 {
		return nil
	}
	ref := referenceTable(inputs)

	var merged *table.Table
	for _, in := range inputs {
		if !ref.SameColumns(in.table) {
			log.Warn("skip file with other columns", slog.String("path", in.path),
				slog.Any("columns", in.table.Names()),
				slog.Any("want", ref.Names()))
			result.Skipped = append(result.Skipped, in.path)
			continue
		}

		if merged == nil {
			merged = in.table
		} else if err := merged.Append(in.table); err != nil {
			log.Warn("skip file", slog.String("path", in.path),
				slog.String("error", err.Error()))
			result.Skipped = append(result.Skipped, in.path)
			continue
		}
		result.Merged++
		log.Debug("file merged", slog.String("path", in.path),
			slog.Int("rows", in.table.Len()))
	}
	slices.Sort(result.Skipped)
	return merged
}

// referenceTable returns the first table with dataset columns. Without any,
// it returns the first table of the column set most files share.
func referenceTable(inputs []input) *table.Table {
	statements := table.New(dataset.Schema()...)
	counts := make(map[string]int, len(inputs))
	for _, in := range inputs {
		if statements.SameColumns(in.table) {
			return in.table
		}
		counts[columnsKey(in.table)]++
	}

	var ref *table.Table
	var refCount int
	for _, in := range inputs {
		if n := counts[columnsKey(in.table)]; n > refCount {
			ref, refCount = in.table, n
		}
	}
	return ref
}

func columnsKey(t *table.Table) string {
	names := t.Names()
	slices.Sort(names)
	return strings.Join(names, "\x00")
}

// OutputFormat returns the format for path by its extension. Unsupported
// extensions fall back to parquet next to path.
func OutputFormat(ctx context.Context, path string) (string, table.Format) {
	if f, ok := table.FormatFromPath(path); ok {
		return path, f
	}

	fallback := strings.TrimSuffix(path, filepath.Ext(path)) + table.Parquet.Ext()
	logger.FromContext(ctx).Warn(
		"unsupported output format, use .parquet, .csv or .xlsx",
		slog.String("path", path), slog.String("fallback", fallback))
	return fallback, table.Parquet
}
