package cmd

import (
	"fmt"
	"time"

	cfgpkg "github.com/KaramelBytes/housing-cli/internal/config"
	"github.com/KaramelBytes/housing-cli/internal/pipeline"
	"github.com/KaramelBytes/housing-cli/internal/report"
	"github.com/KaramelBytes/housing-cli/internal/store"
	"github.com/KaramelBytes/housing-cli/internal/summary"
	"github.com/KaramelBytes/housing-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	runDataPath    string
	runOutputPath  string
	runThreshold   float64
	runDropMode    string
	runVerbosity   int
	runModel       string
	runProvider    string
	runTemperature float64
	runMaxTokens   int
	runDryRun      bool
	runPrintPrompt bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline: clean, analyze, summarize, write",
	Args:  cobra.NoArgs,
	RunE:  runPipeline,
}

func init() {
	rootCmd.AddCommand(runCmd)
	addRunFlags(runCmd)
}

// addRunFlags registers the pipeline flags on cmd. Root and run share them.
func addRunFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&runDataPath, "data", "", "listings dataset (CSV/TSV/XLSX; default from config)")
	f.StringVarP(&runOutputPath, "output", "o", "", "summary output file (default from config)")
	f.Float64Var(&runThreshold, "threshold", 0, "report columns with |r| against Price below this value")
	f.StringVar(&runDropMode, "drop-mode", "", "low-correlation columns: none | report | dataset")
	f.IntVarP(&runVerbosity, "verbosity", "v", 0, "diagnostics: 0 quiet, 1 summary, 2 full tables")
	f.StringVar(&runModel, "model", "", "model name for the summary")
	f.StringVar(&runProvider, "provider", "", "summary provider: openai | openrouter | ollama")
	f.Float64Var(&runTemperature, "temperature", 0, "sampling temperature")
	f.IntVar(&runMaxTokens, "max-tokens", 0, "maximum summary length in tokens")
	f.BoolVar(&runDryRun, "dry-run", false, "stop after rendering the prompt; no service call")
	f.BoolVar(&runPrintPrompt, "print-prompt", false, "print the rendered prompt")
}

// applyRunFlags copies changed pipeline flags onto c.
func applyRunFlags(cmd *cobra.Command, c *cfgpkg.Global) {
	f := cmd.Flags()
	if f.Changed("data") {
		c.DataPath = runDataPath
	}
	if f.Changed("output") {
		c.OutputPath = runOutputPath
	}
	if f.Changed("threshold") {
		c.CorrelationThreshold = runThreshold
	}
	if f.Changed("drop-mode") {
		c.DropMode = runDropMode
	}
	if f.Changed("verbosity") {
		c.Verbosity = runVerbosity
	}
	if f.Changed("model") {
		c.Model = runModel
	}
	if f.Changed("provider") {
		c.Provider = runProvider
	}
	if f.Changed("temperature") {
		c.Temperature = runTemperature
	}
	if f.Changed("max-tokens") {
		c.MaxTokens = runMaxTokens
	}
}

func pipelineOptions(c *cfgpkg.Global) (pipeline.Options, error) {
	mode, err := pipeline.ParseDropMode(c.DropMode)
	if err != nil {
		return pipeline.Options{}, err
	}
	opt := pipeline.DefaultOptions(c.DataPath)
	opt.PreviewRows = c.PreviewRows
	opt.Analysis.Threshold = c.CorrelationThreshold
	opt.Analysis.DropMode = mode
	return opt, nil
}

func generatorConfig(c *cfgpkg.Global) summary.Config {
	return summary.Config{
		Provider:    c.Provider,
		Model:       c.Model,
		APIKey:      c.APIKey,
		BaseURL:     c.BaseURL,
		OllamaHost:  c.OllamaHost,
		HTTPTimeout: time.Duration(c.HTTPTimeoutSec) * time.Second,
		RetryMax:    c.RetryMaxAttempts,
		BaseDelay:   time.Duration(c.RetryBaseDelayMs) * time.Millisecond,
		MaxDelay:    time.Duration(c.RetryMaxDelayMs) * time.Millisecond,
	}
}

func runPipeline(cmd *cobra.Command, args []string) error {
	c, err := currentConfig()
	if err != nil {
		return err
	}
	run := *c
	applyRunFlags(cmd, &run)
	if err := run.Validate(); err != nil {
		return err
	}
	opt, err := pipelineOptions(&run)
	if err != nil {
		return err
	}
	log := newLogger(&run)
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	res, err := pipeline.Analyze(ctx, opt, log)
	if err != nil {
		return err
	}
	report.New(out).Run(res, run.Verbosity)

	if runPrintPrompt {
		fmt.Fprintln(out, "\n--- Prompt ---")
		fmt.Fprint(out, res.Prompt)
		fmt.Fprintln(out, "--- End Prompt ---")
	}
	if run.ExportKind != "" {
		if err := exportDataset(cmd, res, run.ExportKind, run.ExportTarget); err != nil {
			return err
		}
	}
	if runDryRun {
		fmt.Fprintf(out, "✓ Dry run: prompt rendered (~%d tokens), no summary requested\n", utils.CountTokens(res.Prompt))
		return nil
	}

	gen, err := summary.NewGenerator(generatorConfig(&run))
	if err != nil {
		return &pipeline.StageError{Stage: pipeline.StageGenerate, Err: err}
	}
	params := summary.Params{Role: run.Role, Temperature: summary.Temperature(run.Temperature), MaxTokens: run.MaxTokens}
	text, err := pipeline.Summarize(ctx, res, gen, params, run.OutputPath, log)
	if err != nil {
		return err
	}
	if run.Verbosity > 0 {
		fmt.Fprintf(out, "\n%s\n\n", text)
	}
	fmt.Fprintf(out, "✓ Summary written to %s (%s via %s)\n", run.OutputPath, gen.Model(), run.Provider)
	return nil
}

// exportDataset writes the run's cleaned dataset to the configured sink.
func exportDataset(cmd *cobra.Command, res *pipeline.Result, kind, target string) error {
	sink, err := store.Open(cmd.Context(), kind, target)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	defer sink.Close()
	if err := sink.Write(cmd.Context(), res.RunID, res.Dataset); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	where := target
	if kind == store.KindPostgres {
		where = "postgres"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported %d rows to %s (run %s)\n", res.Dataset.Len(), where, res.RunID)
	return nil
}
