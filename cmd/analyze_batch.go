package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/KaramelBytes/housing-cli/internal/pipeline"
	"github.com/KaramelBytes/housing-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	abOutDir string
	abQuiet  bool
)

var analyzeBatchCmd = &cobra.Command{
	Use:   "analyze-batch <files...>",
	Short: "Analyze several listings files (globs allowed) and write one report per file",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files := expandInputs(args)
		if len(files) == 0 {
			return fmt.Errorf("no input files matched")
		}
		c, err := currentConfig()
		if err != nil {
			return err
		}
		log := newLogger(c)
		out := cmd.OutOrStdout()
		if abOutDir != "" {
			if err := utils.EnsureDir(abOutDir); err != nil {
				return err
			}
		}

		total := len(files)
		for i, path := range files {
			if !abQuiet {
				fmt.Fprintf(out, "[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
			}
			opt, err := analysisOptions(cmd, path)
			if err != nil {
				return err
			}
			res, err := pipeline.Analyze(cmd.Context(), opt, log)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			md := res.Report().Markdown()
			if abOutDir == "" {
				if !abQuiet {
					fmt.Fprintln(out, md)
				}
				continue
			}
			outFile := uniqueReportPath(abOutDir, path)
			if err := utils.SafeWriteFile(outFile, []byte(md)); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
			if !abQuiet {
				fmt.Fprintf(out, "✓ %s: %d/%d rows kept, wrote %s\n", filepath.Base(path), res.Stats.Kept, res.Stats.Loaded, filepath.Base(outFile))
			}
		}
		return nil
	},
}

// expandInputs resolves globs and literal paths, dropping duplicates, sorted.
func expandInputs(args []string) []string {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files
}

// uniqueReportPath returns dir/<base>.summary.md, adding __2, __3... when taken.
func uniqueReportPath(dir, input string) string {
	base := filepath.Base(input)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	out := filepath.Join(dir, stem+".summary.md")
	for idx := 2; ; idx++ {
		if _, err := os.Stat(out); os.IsNotExist(err) {
			return out
		}
		out = filepath.Join(dir, fmt.Sprintf("%s__%d.summary.md", stem, idx))
	}
}

func init() {
	rootCmd.AddCommand(analyzeBatchCmd)
	addAnalysisFlags(analyzeBatchCmd)
	analyzeBatchCmd.Flags().StringVar(&abOutDir, "out-dir", "", "directory for <name>.summary.md reports (default: print)")
	analyzeBatchCmd.Flags().BoolVar(&abQuiet, "quiet", false, "suppress progress and non-essential output")
}
