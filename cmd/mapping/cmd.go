package mapping

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dsh2dsh/cafef/internal/dataset"
	"github.com/dsh2dsh/cafef/internal/table"
)

var (
	Cmd = cobra.Command{
		Use:   "mapping",
		Short: "Curate the account label mapping",
	}

	statusCmd = cobra.Command{
		Use:   "status dataset",
		Short: "Show how many account labels of a dataset are mapped",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			cobra.CheckErr(status(cmd.OutOrStdout(), args[0]))
		},
	}

	exportCmd = cobra.Command{
		Use:   "export dataset sheet",
		Short: "Export distinct account labels of a dataset for curation",
		Long: `Writes one row per distinct report type and Vietnamese label with its
current translations. The sheet format follows its extension: .xlsx,
.parquet or .csv. An edited .xlsx sheet can be used as CAFEF_MAPPING.`,
		Example: `
  $ cafef mapping export output_data/final_financial_statements.parquet account_mapping.xlsx`,
		Args: cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			cobra.CheckErr(export(args[0], args[1]))
		},
	}
)

func init() {
	Cmd.AddCommand(&statusCmd)
	Cmd.AddCommand(&exportCmd)
}

func status(w io.Writer, path string) error {
	rows, err := dataset.Read(path)
	if err != nil {
		return err //nolint:wrapcheck // pass as is to cobra
	}

	c := NewCoverage(Labels(rows))
	fmt.Fprintf(w, "labels: %d, mapped: %d, coverage: %.1f%%\n",
		c.Labels, c.Filled, c.Percent())
	for _, l := range c.Unfilled {
		fmt.Fprintf(w, "%s\t%s\n", l.ReportType, l.AccountVi)
	}
	return nil
}

func export(path, sheetPath string) error {
	f, ok := table.FormatFromPath(sheetPath)
	if !ok {
		return fmt.Errorf("sheet %q: %w", sheetPath, table.ErrUnknownFormat)
	}

	rows, err := dataset.Read(path)
	if err != nil {
		return err //nolint:wrapcheck // pass as is to cobra
	}

	labels := Labels(rows)
	if err := table.WriteFile(sheetPath, SheetTable(labels), f); err != nil {
		return fmt.Errorf("export labels: %w", err)
	}
	slog.Info("exported labels", slog.Int("labels", len(labels)),
		slog.String("path", sheetPath))
	return nil
}
