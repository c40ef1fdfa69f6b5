// Package pipeline runs the listings pipeline end to end:
// load, clean, statistics, prompt, and optionally generate and write.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/housing-cli/internal/analysis"
	"github.com/KaramelBytes/housing-cli/internal/dataset"
	"github.com/KaramelBytes/housing-cli/internal/logging"
	"github.com/KaramelBytes/housing-cli/internal/prompt"
	"github.com/KaramelBytes/housing-cli/internal/summary"
	"github.com/KaramelBytes/housing-cli/internal/utils"
)

// Stage names a pipeline step in errors and logs.
type Stage string

const (
	StageLoad       Stage = "load"
	StageClean      Stage = "clean"
	StageStatistics Stage = "statistics"
	StagePrompt     Stage = "prompt"
	StageGenerate   Stage = "generate"
	StageWrite      Stage = "write"
)

// StageError reports which stage failed.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s: %v", e.Stage, e.Err) }

func (e *StageError) Unwrap() error { return e.Err }

// DropMode controls what happens to columns weakly correlated with the target.
type DropMode string

const (
	// DropNone skips low-correlation detection.
	DropNone DropMode = "none"
	// DropReport lists low-correlation columns without touching the dataset.
	DropReport DropMode = "report"
	// DropDataset also removes them from the returned dataset once the
	// summary statistics are computed.
	DropDataset DropMode = "dataset"
)

// ParseDropMode accepts none, report or dataset (case-insensitive).
func ParseDropMode(s string) (DropMode, error) {
	switch m := DropMode(strings.ToLower(strings.TrimSpace(s))); m {
	case DropNone, DropReport, DropDataset:
		return m, nil
	case "":
		return DropReport, nil
	}
	return "", fmt.Errorf("invalid drop mode %q (want none, report or dataset)", s)
}

// AnalysisOptions parameterizes the statistics stage.
type AnalysisOptions struct {
	// Columns for the correlation matrix; nil means analysis.CorrelationColumns.
	Columns   []string
	Target    string
	Threshold float64
	DropMode  DropMode
}

// Options configures one run.
type Options struct {
	DataPath string
	// Input, when set, is read instead of DataPath (DataPath still names it).
	Input       io.Reader
	Load        dataset.LoadOptions
	Analysis    AnalysisOptions
	PreviewRows int
}

// DefaultOptions mirrors the CLI defaults.
func DefaultOptions(path string) Options {
	return Options{
		DataPath:    path,
		PreviewRows: 10,
		Analysis: AnalysisOptions{
			Target:    dataset.ColPrice,
			Threshold: 0.05,
			DropMode:  DropReport,
		},
	}
}

// Result holds everything the core produced for one run.
type Result struct {
	RunID   string
	Source  string
	Dataset *dataset.Dataset
	Stats   dataset.CleanStats
	// Preview is the head of the cleaned data before incomplete rows were dropped.
	Preview       *dataset.Dataset
	Corr          *analysis.CorrMatrix
	Threshold     float64
	LowCorrelated []string
	// Dropped lists columns removed from Dataset in DropDataset mode.
	Dropped []string
	Summary analysis.Summary
	Prompt  string
}

// Analyze runs load, clean, statistics and prompt. It needs no credentials.
func Analyze(ctx context.Context, opt Options, log *slog.Logger) (*Result, error) {
	if log == nil {
		log = logging.Discard()
	}
	if opt.Analysis.Target == "" {
		opt.Analysis.Target = dataset.ColPrice
	}
	if opt.Analysis.DropMode == "" {
		opt.Analysis.DropMode = DropReport
	}
	res := &Result{RunID: uuid.NewString(), Source: opt.DataPath, Threshold: opt.Analysis.Threshold}
	ctx = logging.WithRunID(ctx, res.RunID)
	start := time.Now()

	// load
	if err := ctx.Err(); err != nil {
		return nil, &StageError{Stage: StageLoad, Err: err}
	}
	var d *dataset.Dataset
	var err error
	if opt.Input != nil {
		d, err = dataset.Read(opt.DataPath, opt.Input, opt.Load)
	} else {
		d, err = dataset.Load(opt.DataPath, opt.Load)
	}
	if err != nil {
		return nil, &StageError{Stage: StageLoad, Err: err}
	}
	log.InfoContext(ctx, "dataset loaded", "path", opt.DataPath, "rows", d.Len(), "columns", len(d.Columns))

	// clean
	res.Stats, res.Preview, err = dataset.CleanAndFilter(d, opt.PreviewRows)
	if err != nil {
		return nil, &StageError{Stage: StageClean, Err: err}
	}
	res.Dataset = d
	log.InfoContext(ctx, "dataset cleaned", "kept", res.Stats.Kept, "dropped", res.Stats.Dropped)

	// statistics
	if err := ctx.Err(); err != nil {
		return nil, &StageError{Stage: StageStatistics, Err: err}
	}
	res.Summary, err = analysis.Summarize(d)
	if err != nil {
		return nil, &StageError{Stage: StageStatistics, Err: err}
	}
	res.Corr, err = analysis.Correlate(d, opt.Analysis.Columns)
	if err != nil {
		return nil, &StageError{Stage: StageStatistics, Err: err}
	}
	if opt.Analysis.DropMode != DropNone {
		res.LowCorrelated = analysis.LowCorrelated(res.Corr, opt.Analysis.Target, opt.Analysis.Threshold)
		if len(res.LowCorrelated) > 0 {
			log.InfoContext(ctx, "low correlation with target", "target", opt.Analysis.Target, "threshold", opt.Analysis.Threshold, "columns", res.LowCorrelated)
		}
	}
	if opt.Analysis.DropMode == DropDataset && len(res.LowCorrelated) > 0 {
		d.DropColumns(res.LowCorrelated...)
		res.Dropped = append([]string(nil), res.LowCorrelated...)
		log.DebugContext(ctx, "columns dropped from dataset", "columns", res.Dropped)
	}

	// prompt
	res.Prompt = prompt.Build(res.Summary)
	log.InfoContext(ctx, "prompt rendered", "approx_tokens", utils.CountTokens(res.Prompt), "elapsed", time.Since(start).Round(time.Millisecond))
	return res, nil
}

// TextGenerator produces summary text for a prompt.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string, p summary.Params) (string, error)
}

// Summarize generates the summary for res and writes it to outputPath.
// res is left untouched on failure and no output file is written.
func Summarize(ctx context.Context, res *Result, gen TextGenerator, p summary.Params, outputPath string, log *slog.Logger) (string, error) {
	if log == nil {
		log = logging.Discard()
	}
	if res != nil {
		ctx = logging.WithRunID(ctx, res.RunID)
	}
	if res == nil || res.Prompt == "" {
		return "", &StageError{Stage: StagePrompt, Err: fmt.Errorf("no prompt to summarize")}
	}
	start := time.Now()
	text, err := gen.Generate(ctx, res.Prompt, p)
	if err != nil {
		return "", &StageError{Stage: StageGenerate, Err: err}
	}
	log.InfoContext(ctx, "summary generated", "chars", len(text), "elapsed", time.Since(start).Round(time.Millisecond))
	if err := summary.Write(outputPath, text); err != nil {
		return "", &StageError{Stage: StageWrite, Err: err}
	}
	log.InfoContext(ctx, "summary written", "path", outputPath)
	return text, nil
}

// Report assembles the markdown view of res.
func (r *Result) Report() *analysis.Report {
	rep := &analysis.Report{
		Name:          r.Source,
		Loaded:        r.Stats.Loaded,
		Kept:          r.Stats.Kept,
		NullCounts:    r.Stats.NullCounts,
		Corr:          r.Corr,
		Threshold:     r.Threshold,
		LowCorrelated: r.LowCorrelated,
		Summary:       r.Summary,
		Samples:       r.Preview,
	}
	// NullCounts and Preview describe the columns as loaded, before any drop.
	switch {
	case r.Preview != nil:
		rep.Columns = r.Preview.Columns
	case r.Dataset != nil:
		rep.Columns = r.Dataset.Columns
	}
	if r.Dataset != nil {
		if f, err := analysis.Frequencies(r.Dataset, dataset.ColPropertyType); err == nil {
			rep.TopTypes = f
		}
		if f, err := analysis.Frequencies(r.Dataset, dataset.ColCounty); err == nil {
			rep.TopCounties = f
		}
	}
	if len(r.Dropped) > 0 {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("Dropped from dataset: %s", strings.Join(r.Dropped, ", ")))
	}
	if r.Stats.Dropped > 0 {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("%d rows dropped for missing price, bedrooms, bathrooms or floor area", r.Stats.Dropped))
	}
	return rep
}
