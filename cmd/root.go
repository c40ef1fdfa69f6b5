package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	cfgpkg "github.com/KaramelBytes/housing-cli/internal/config"
	"github.com/KaramelBytes/housing-cli/internal/logging"
	"github.com/spf13/cobra"
)

var (
	cfgFile       string
	debug         bool
	flagLogFormat string
	// Retry/HTTP flags (override config if set)
	flagHTTPTimeoutSec   int
	flagRetryMaxAttempts int

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "housing",
	Short: "Housing CLI: clean listings data and write an AI market summary",
	Long: `Housing cleans a real-estate listings dataset (price, bedrooms, bathrooms, floor area),
computes correlations and summary statistics, and asks a language model for a short
market summary. Running it without a subcommand runs the full pipeline.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
}

// Execute is the entry point called by main.main()
func Execute() {
	cobra.OnInitialize(loadConfig)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	// Assigned here rather than in the literal to avoid an initialization cycle
	// (runPipeline -> currentConfig -> rootCmd).
	rootCmd.RunE = runPipeline
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.housing/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "log format: text | json (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagHTTPTimeoutSec, "http-timeout", 0, "HTTP client timeout in seconds (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagRetryMaxAttempts, "retry-max", 0, "total attempts for the summary request (overrides config)")
	addRunFlags(rootCmd)
}

func loadConfig() {
	// Credentials may live in a .env file next to the data.
	if err := cfgpkg.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: %v\n", err)
	}
	if _, err := currentConfig(); err != nil {
		// Non-fatal: commands report it again when they need config
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
	}
}

// currentConfig loads the configuration once and applies persistent flag overrides.
func currentConfig() (*cfgpkg.Global, error) {
	if cfg != nil {
		return cfg, nil
	}
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	f := rootCmd.PersistentFlags()
	if f.Changed("http-timeout") && flagHTTPTimeoutSec > 0 {
		c.HTTPTimeoutSec = flagHTTPTimeoutSec
	}
	if f.Changed("retry-max") && flagRetryMaxAttempts > 0 {
		c.RetryMaxAttempts = flagRetryMaxAttempts
	}
	if f.Changed("log-format") && flagLogFormat != "" {
		c.LogFormat = flagLogFormat
	}
	if debug {
		c.LogLevel = "debug"
	}
	cfg = c
	return cfg, nil
}

func newLogger(c *cfgpkg.Global) *slog.Logger {
	return logging.New(os.Stderr, c.LogLevel, c.LogFormat)
}
