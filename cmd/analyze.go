package cmd

import (
	"fmt"

	"github.com/KaramelBytes/housing-cli/internal/dataset"
	"github.com/KaramelBytes/housing-cli/internal/pipeline"
	"github.com/KaramelBytes/housing-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	anaOutputPath  string
	anaDelimiter   string
	anaSheetName   string
	anaMaxRows     int
	anaPreviewRows int
	anaThreshold   float64
	anaDropMode    string
	anaShowPrompt  bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Clean and analyze a listings file and print a Markdown report (no AI call)",
	Long: `Runs the cleaning and statistics stages only and renders a Markdown report.
With no file the configured data_path is used; "-" reads CSV from stdin.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := currentConfig()
		if err != nil {
			return err
		}
		path := c.DataPath
		if len(args) == 1 {
			path = args[0]
		}
		opt, err := analysisOptions(cmd, path)
		if err != nil {
			return err
		}
		if path == "-" {
			opt.DataPath = "stdin"
			opt.Input = cmd.InOrStdin()
		}
		res, err := pipeline.Analyze(cmd.Context(), opt, newLogger(c))
		if err != nil {
			return err
		}
		md := res.Report().Markdown()
		if anaShowPrompt {
			md += "\n[PROMPT]\n" + res.Prompt
		}
		if anaOutputPath != "" {
			if err := utils.SafeWriteFile(anaOutputPath, []byte(md)); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote analysis to %s\n", anaOutputPath)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), md)
		return nil
	},
}

// analysisOptions builds pipeline options from config plus the analyze flags.
func analysisOptions(cmd *cobra.Command, path string) (pipeline.Options, error) {
	c, err := currentConfig()
	if err != nil {
		return pipeline.Options{}, err
	}
	run := *c
	run.DataPath = path
	f := cmd.Flags()
	if f.Changed("threshold") {
		run.CorrelationThreshold = anaThreshold
	}
	if f.Changed("drop-mode") {
		run.DropMode = anaDropMode
	}
	if f.Changed("preview-rows") {
		run.PreviewRows = anaPreviewRows
	}
	opt, err := pipelineOptions(&run)
	if err != nil {
		return opt, err
	}
	opt.Load = dataset.LoadOptions{Sheet: anaSheetName, MaxRows: anaMaxRows}
	switch anaDelimiter {
	case "":
	case ",":
		opt.Load.Delimiter = ','
	case "\t", "tab":
		opt.Load.Delimiter = '\t'
	case ";":
		opt.Load.Delimiter = ';'
	default:
		return opt, fmt.Errorf("unsupported --delimiter: %s", anaDelimiter)
	}
	return opt, nil
}

// addAnalysisFlags registers the flags shared by analyze, analyze-batch and export.
func addAnalysisFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&anaDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' (default from extension)")
	f.StringVar(&anaSheetName, "sheet", "", "XLSX: sheet name (default first sheet)")
	f.IntVar(&anaMaxRows, "max-rows", 0, "maximum rows to read (0 = unlimited)")
	f.IntVar(&anaPreviewRows, "preview-rows", 10, "rows shown in the sample table")
	f.Float64Var(&anaThreshold, "threshold", 0.05, "report columns with |r| against Price below this value")
	f.StringVar(&anaDropMode, "drop-mode", "", "low-correlation columns: none | report | dataset")
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	addAnalysisFlags(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "optional path to write analysis (Markdown)")
	analyzeCmd.Flags().BoolVar(&anaShowPrompt, "prompt", false, "append the rendered summary prompt")
}
