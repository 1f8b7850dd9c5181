package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"yamdb/proj/internal/importer"
	"yamdb/proj/internal/storage/postgres"
)

var dataDir string

var importCmd = &cobra.Command{
	Use:   "import [all|" + strings.Join(importer.Names(), "|") + "]...",
	Short: "Import CSV fixtures into the database",
	Long: `Import reads the fixture CSV files from --data-dir and inserts their rows by id.
Rows that already exist are kept, rows pointing at missing parents are skipped.
Without arguments every file is imported in dependency order.`,
	ValidArgs: append([]string{"all"}, importer.Names()...),
	Args:      cobra.OnlyValidArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		db, err := postgres.New(ctx, cfg.DB.Dsn, cfg.DB.MaxConns, cfg.DB.MaxConnIdleTime)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer db.Close()

		results, err := importer.New(db.Conn, log, dataDir).Run(ctx, args...)
		printResults(cmd.OutOrStdout(), results)
		return err
	},
}

func printResults(w io.Writer, results []importer.Result) {
	for _, res := range results {
		if res.Missing {
			fmt.Fprintf(w, "%-13s file not found\n", res.Source)
			continue
		}
		fmt.Fprintf(w, "%-13s inserted: %d, existing: %d, skipped: %d\n", res.Source, res.Inserted, res.Existing, res.Skipped)
	}
}

func init() {
	importCmd.Flags().StringVar(&dataDir, "data-dir", "static/data", "directory with the CSV files")
}
