package merge

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dsh2dsh/cafef/internal/logger"
	datamerge "github.com/dsh2dsh/cafef/internal/merge"
	"github.com/dsh2dsh/cafef/internal/table"
)

var (
	inputDir   string
	outputFile string
	fileType   string

	Cmd = cobra.Command{
		Use:   "merge",
		Short: "Merge dataset files of a directory into one file",
		Example: `
  - Merge all parquet files from output_data:

    $ cafef merge

  - Merge tab separated files into an Excel workbook:

    $ cafef merge --file-type csv --output-file merged_data/all.xlsx`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			_, err := run(ctx, inputDir, fileType, outputFile)
			cobra.CheckErr(err)
		},
	}
)

func init() {
	flags := Cmd.Flags()
	flags.StringVarP(&inputDir, "input-dir", "i", "output_data",
		"directory with files to merge")
	flags.StringVarP(&outputFile, "output-file", "o",
		"merged_data/all_financial_statements.parquet",
		"merged file, encoded by extension: .parquet, .csv or .xlsx")
	flags.StringVarP(&fileType, "file-type", "t", "parquet",
		"type of input files: parquet or csv")
}

func run(ctx context.Context, dir, typ, output string,
) (datamerge.Result, error) {
	format, err := table.ParseFormat(typ)
	if err != nil {
		return datamerge.Result{}, err //nolint:wrapcheck // pass as is to cobra
	} else if format == table.XLSX {
		return datamerge.Result{}, fmt.Errorf(
			"unsupported input file type %q, expected parquet or csv", typ)
	}

	result, err := datamerge.Merge(ctx, dir, format, output)
	if err != nil {
		return result, err //nolint:wrapcheck // pass as is to cobra
	}

	log := logger.FromContext(ctx)
	if len(result.Skipped) > 0 {
		log.Warn("some files skipped", slog.Int("skipped", len(result.Skipped)),
			slog.String("files", strings.Join(result.Skipped, ", ")))
	}
	log.Info("all done", slog.Int("found", result.Found),
		slog.Int("merged", result.Merged), slog.Int("rows", result.Rows),
		slog.String("path", result.OutputPath))
	return result, nil
}
