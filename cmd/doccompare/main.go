// Command doccompare compares two documents or two spreadsheets from the
// command line without a database or object storage.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"doccompare/internal/compare"
	"doccompare/internal/config"
	"doccompare/internal/linematch"
	"doccompare/internal/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type app struct {
	cfg    *config.Config
	engine compare.Engine
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "doccompare",
		Short: "Fuzzy comparison of documents and spreadsheets",
		Long: `doccompare matches the lines of two text documents by similarity score,
or joins two spreadsheets on key columns and reports every differing cell.
Defaults come from the DOCCOMPARE_COMPARE_* environment variables.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logging.Setup(cfg.Log)
			a.cfg = cfg
			a.engine = compare.Engine{Workers: cfg.Compare.Workers}
			if cfg.Compare.Exclusive {
				a.engine.Strategy = linematch.Exclusive{}
			}
			return nil
		},
	}
	root.AddCommand(a.textCmd(), a.tableCmd(), a.columnsCmd(), a.sheetsCmd())
	return root
}
