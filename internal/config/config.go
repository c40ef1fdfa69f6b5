package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// Summary service
	APIKey      string  `mapstructure:"api_key" yaml:"api_key,omitempty"`
	Provider    string  `mapstructure:"provider" yaml:"provider" validate:"oneof=openai openrouter ollama"`
	Model       string  `mapstructure:"model" yaml:"model" validate:"required"`
	BaseURL     string  `mapstructure:"base_url" yaml:"base_url,omitempty" validate:"omitempty,url"`
	Role        string  `mapstructure:"role" yaml:"role" validate:"required"`
	Temperature float64 `mapstructure:"temperature" yaml:"temperature" validate:"gte=0,lte=2"`
	MaxTokens   int     `mapstructure:"max_tokens" yaml:"max_tokens" validate:"gt=0"`

	// Pipeline
	DataPath             string  `mapstructure:"data_path" yaml:"data_path" validate:"required"`
	OutputPath           string  `mapstructure:"output_path" yaml:"output_path" validate:"required"`
	CorrelationThreshold float64 `mapstructure:"correlation_threshold" yaml:"correlation_threshold" validate:"gte=0,lte=1"`
	DropMode             string  `mapstructure:"drop_mode" yaml:"drop_mode" validate:"oneof=none report dataset"`
	Verbosity            int     `mapstructure:"verbosity" yaml:"verbosity" validate:"gte=0,lte=2"`
	PreviewRows          int     `mapstructure:"preview_rows" yaml:"preview_rows" validate:"gte=0"`

	// HTTP/Retry configuration
	HTTPTimeoutSec   int `mapstructure:"http_timeout_sec" yaml:"http_timeout_sec" validate:"gt=0"`
	RetryMaxAttempts int `mapstructure:"retry_max_attempts" yaml:"retry_max_attempts" validate:"gte=1,lte=10"`
	RetryBaseDelayMs int `mapstructure:"retry_base_delay_ms" yaml:"retry_base_delay_ms" validate:"gte=0"`
	RetryMaxDelayMs  int `mapstructure:"retry_max_delay_ms" yaml:"retry_max_delay_ms" validate:"gte=0"`

	// Local runtimes (Ollama)
	OllamaHost string `mapstructure:"ollama_host" yaml:"ollama_host" validate:"omitempty,url"`

	// Logging
	LogLevel  string `mapstructure:"log_level" yaml:"log_level" validate:"oneof=debug info warn warning error"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format" validate:"oneof=text json"`

	// Export of the cleaned dataset
	ExportKind   string `mapstructure:"export_kind" yaml:"export_kind,omitempty" validate:"omitempty,oneof=csv sqlite postgres"`
	ExportTarget string `mapstructure:"export_target" yaml:"export_target,omitempty"`
}

// Keys lists every settable configuration key in file order.
var Keys = []string{
	"api_key", "provider", "model", "base_url", "role", "temperature", "max_tokens",
	"data_path", "output_path", "correlation_threshold", "drop_mode", "verbosity", "preview_rows",
	"http_timeout_sec", "retry_max_attempts", "retry_base_delay_ms", "retry_max_delay_ms",
	"ollama_host", "log_level", "log_format", "export_kind", "export_target",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api_key", "")
	v.SetDefault("provider", "openai")
	v.SetDefault("model", "gpt-3.5-turbo")
	v.SetDefault("base_url", "")
	v.SetDefault("role", "data analyst")
	v.SetDefault("temperature", 0.7)
	v.SetDefault("max_tokens", 300)
	v.SetDefault("data_path", filepath.Join("data", "daft_housing_data.csv"))
	v.SetDefault("output_path", "housing_summary.txt")
	v.SetDefault("correlation_threshold", 0.05)
	v.SetDefault("drop_mode", "report")
	v.SetDefault("verbosity", 1)
	v.SetDefault("preview_rows", 10)
	// HTTP/retry defaults. One attempt: the summary call is not retried.
	v.SetDefault("http_timeout_sec", 60)
	v.SetDefault("retry_max_attempts", 1)
	v.SetDefault("retry_base_delay_ms", 500)
	v.SetDefault("retry_max_delay_ms", 4000)
	v.SetDefault("ollama_host", "http://127.0.0.1:11434")
	v.SetDefault("log_level", "warn")
	v.SetDefault("log_format", "text")
	v.SetDefault("export_kind", "")
	v.SetDefault("export_target", "")
}

// Dir returns ~/.housing.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".housing"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.housing/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	// The file may hold an API key.
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (applied by the caller) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("HOUSING")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("api_key", "HOUSING_API_KEY", "OPENAI_API_KEY", "OPENROUTER_API_KEY"); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// LoadDotEnv loads KEY=VALUE pairs from the given files (default ".env") into
// the process environment. Variables already set win. Missing files are skipped.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks value ranges and enumerations. Messages use the config key names.
func (c *Global) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, formatFieldError(fe))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func formatFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %v", fe.Field(), fe.Param(), fe.Value())
	case "url":
		return fmt.Sprintf("%s must be a URL, got %v", fe.Field(), fe.Value())
	case "gt", "gte", "lt", "lte":
		return fmt.Sprintf("%s must be %s %s, got %v", fe.Field(), fe.Tag(), fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
	}
}

// Set assigns a configuration value by key, parsing it for the field's type.
func (c *Global) Set(key, value string) error {
	rv := reflect.ValueOf(c).Elem()
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		if rt.Field(i).Tag.Get("mapstructure") != key {
			continue
		}
		f := rv.Field(i)
		switch f.Kind() {
		case reflect.String:
			f.SetString(value)
		case reflect.Int:
			n, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil {
				return fmt.Errorf("%s expects an integer: %w", key, err)
			}
			f.SetInt(int64(n))
		case reflect.Float64:
			x, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
			if err != nil {
				return fmt.Errorf("%s expects a number: %w", key, err)
			}
			f.SetFloat(x)
		}
		return nil
	}
	return fmt.Errorf("unknown key: %s", key)
}

// Get returns the value of key formatted as text.
func (c *Global) Get(key string) (string, error) {
	rv := reflect.ValueOf(c).Elem()
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		if rt.Field(i).Tag.Get("mapstructure") == key {
			return fmt.Sprint(rv.Field(i).Interface()), nil
		}
	}
	return "", fmt.Errorf("unknown key: %s", key)
}
