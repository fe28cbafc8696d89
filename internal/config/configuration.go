package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	// Scraping
	CommentLimit   int    `mapstructure:"COMMENT_LIMIT" validate:"min=1"`
	Concurrency    int    `mapstructure:"CONCURRENCY" validate:"min=1"`
	Proxy          string `mapstructure:"PROXY" validate:"omitempty,url"`
	TimeoutSeconds int    `mapstructure:"TIMEOUT_SECONDS" validate:"min=1"`
	APIBaseURL     string `mapstructure:"API_BASE_URL" validate:"required,url"`

	// Input / output
	InputFile    string `mapstructure:"INPUT_FILE" validate:"required"`
	OutputDir    string `mapstructure:"OUTPUT_DIR" validate:"required"`
	OutputFormat string `mapstructure:"OUTPUT_FORMAT" validate:"oneof=json csv"`

	LogLevel string `mapstructure:"LOG_LEVEL" validate:"oneof=debug info warn error"`
}

// Timeout is the per-request HTTP timeout.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LogValue keeps proxy credentials out of the logs.
func (c Config) LogValue() slog.Value {
	proxy := ""
	if c.Proxy != "" {
		proxy = "[set]"
	}
	return slog.GroupValue(
		slog.Int("comment_limit", c.CommentLimit),
		slog.Int("concurrency", c.Concurrency),
		slog.String("proxy", proxy),
		slog.Int("timeout_seconds", c.TimeoutSeconds),
		slog.String("api_base_url", c.APIBaseURL),
		slog.String("input_file", c.InputFile),
		slog.String("output_dir", c.OutputDir),
		slog.String("output_format", c.OutputFormat),
		slog.String("log_level", c.LogLevel),
	)
}

// flagKeys maps CLI flag names to config keys.
var flagKeys = map[string]string{
	"input":       "INPUT_FILE",
	"output-dir":  "OUTPUT_DIR",
	"format":      "OUTPUT_FORMAT",
	"limit":       "COMMENT_LIMIT",
	"concurrency": "CONCURRENCY",
	"proxy":       "PROXY",
	"timeout":     "TIMEOUT_SECONDS",
	"log-level":   "LOG_LEVEL",
}

// BindFlags lets explicitly set flags override every other source. Flags
// missing from fs are ignored.
func BindFlags(fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := viper.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

// use reflect to bind environment variables based on mapstructure tags
func bindEnv(c Config) {
	typ := reflect.TypeOf(c)
	for i := 0; i < typ.NumField(); i++ {
		if tag := typ.Field(i).Tag.Get("mapstructure"); tag != "" {
			_ = viper.BindEnv(tag)
		}
	}
	slog.Debug("Environment variables bound", "fields", typ.NumField())
}

func setDefaults() {
	viper.SetDefault("COMMENT_LIMIT", 100)
	viper.SetDefault("CONCURRENCY", 8)
	viper.SetDefault("PROXY", "")
	viper.SetDefault("TIMEOUT_SECONDS", 25)
	viper.SetDefault("API_BASE_URL", "https://www.tiktok.com")
	viper.SetDefault("INPUT_FILE", "data/input_urls.txt")
	viper.SetDefault("OUTPUT_DIR", "data")
	viper.SetDefault("OUTPUT_FORMAT", "json")
	viper.SetDefault("LOG_LEVEL", "info")
}

// readSettings merges the optional settings file. A missing file is fine and
// an unreadable one only costs a warning; defaults still apply.
func readSettings(settingsPath string) {
	if settingsPath != "" {
		viper.SetConfigFile(settingsPath)
	} else {
		viper.SetConfigName("settings")
		viper.AddConfigPath("config")
		viper.AddConfigPath(".")
	}

	err := viper.ReadInConfig()
	if err == nil {
		slog.Info("Loaded settings file", "path", viper.ConfigFileUsed())
		return
	}

	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		slog.Debug("No settings file found, using defaults")
		return
	}
	slog.Warn("Failed to read settings file, using defaults", "path", settingsPath, "error", err)
}

// LoadConfig resolves the configuration from defaults, the settings file,
// the environment and any flags bound with BindFlags, in increasing priority.
func LoadConfig(ctx context.Context, settingsPath string) (*Config, error) {
	setDefaults()
	readSettings(settingsPath)
	bindEnv(Config{})
	viper.AutomaticEnv()

	cfg := Config{}
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.OutputFormat = strings.ToLower(strings.TrimSpace(cfg.OutputFormat))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.Proxy = strings.TrimSpace(cfg.Proxy)

	slog.Debug("Loaded configuration", "config", cfg)

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}
