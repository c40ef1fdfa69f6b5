package cmd

import (
	"fmt"

	"github.com/KaramelBytes/housing-cli/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	expKind   string
	expTarget string
)

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Clean a listings file and export the cleaned rows to CSV, SQLite or PostgreSQL",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := currentConfig()
		if err != nil {
			return err
		}
		path := c.DataPath
		if len(args) == 1 {
			path = args[0]
		}
		kind, target := c.ExportKind, c.ExportTarget
		if cmd.Flags().Changed("to") {
			kind = expKind
		}
		if cmd.Flags().Changed("target") {
			target = expTarget
		}
		if kind == "" {
			return fmt.Errorf("export kind required: use --to csv|sqlite|postgres")
		}
		opt, err := analysisOptions(cmd, path)
		if err != nil {
			return err
		}
		res, err := pipeline.Analyze(cmd.Context(), opt, newLogger(c))
		if err != nil {
			return err
		}
		return exportDataset(cmd, res, kind, target)
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	addAnalysisFlags(exportCmd)
	exportCmd.Flags().StringVar(&expKind, "to", "", "sink: csv | sqlite | postgres")
	exportCmd.Flags().StringVar(&expTarget, "target", "", "output file (csv, sqlite) or connection string (postgres)")
}
