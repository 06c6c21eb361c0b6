package cmd

import (
	"fmt"
	"log/slog"
	"os"

	dotenv "github.com/dsh2dsh/expx-dotenv"
	"github.com/spf13/cobra"

	"github.com/dsh2dsh/cafef/cmd/db"
	"github.com/dsh2dsh/cafef/cmd/mapping"
	"github.com/dsh2dsh/cafef/cmd/merge"
	"github.com/dsh2dsh/cafef/cmd/scrape"
	"github.com/dsh2dsh/cafef/internal/logger"
)

var (
	verbose bool

	rootCmd = cobra.Command{
		Use:   "cafef",
		Short: "Scrape financial statements from cafef.vn into datasets",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			slog.SetDefault(logger.New(os.Stderr, verbose))
			return loadEnvs()
		},
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"log debug messages")

	rootCmd.AddCommand(&scrape.Cmd)
	rootCmd.AddCommand(&merge.Cmd)
	rootCmd.AddCommand(&mapping.Cmd)
	rootCmd.AddCommand(&db.Cmd)
}

func Execute(version string) {
	rootCmd.Version = version
	cobra.CheckErr(rootCmd.Execute())
}

func loadEnvs() error {
	if err := dotenv.New().WithDepth(1).Load(); err != nil {
		return fmt.Errorf("load cafef envs: %w", err)
	}
	return nil
}
