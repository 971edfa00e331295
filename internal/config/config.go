// Package config loads bot settings from a file, the environment and the command line.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. KHOBOR_TELEGRAM_TOKEN.
const EnvPrefix = "KHOBOR"

// Sentinel errors for the two required startup values.
var (
	ErrMissingAPIKey = errors.New("datanews api key is required")
	ErrMissingToken  = errors.New("telegram token is required")
)

// Config is the complete bot configuration.
type Config struct {
	Datanews   DatanewsConfig   `mapstructure:"datanews"`
	Telegram   TelegramConfig   `mapstructure:"telegram"`
	Session    SessionConfig    `mapstructure:"session"`
	Publishers PublishersConfig `mapstructure:"publishers"`
	Log        LogConfig        `mapstructure:"log"`
}

// DatanewsConfig configures the headline search client.
type DatanewsConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// TelegramConfig configures the bot token and long polling.
type TelegramConfig struct {
	Token       string        `mapstructure:"token"`
	PollTimeout int           `mapstructure:"poll_timeout"`
	PollPause   time.Duration `mapstructure:"poll_pause"`
	Debug       bool          `mapstructure:"debug"`
}

// SessionConfig points at the bbolt file holding polling state.
type SessionConfig struct {
	Path string `mapstructure:"path"`
}

// PublishersConfig points at the optional audit sink definitions.
type PublishersConfig struct {
	File string `mapstructure:"file"`
}

// LogConfig selects the zap level and encoder.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Credentials are the two startup values that may come from the command line.
type Credentials struct {
	APIKey string
	Token  string
}

// Load merges, in increasing precedence: defaults, the config file (when
// cfgFile is set), a .env file in the working directory, KHOBOR_* environment
// variables and creds.
func Load(cfgFile string, creds Credentials) (*Config, error) {
	// a missing .env is normal
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	if creds.APIKey != "" {
		v.Set("datanews.api_key", creds.APIKey)
	}
	if creds.Token != "" {
		v.Set("telegram.token", creds.Token)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("datanews.api_key", "")
	v.SetDefault("datanews.base_url", "https://api.datanews.io/v1")
	v.SetDefault("datanews.timeout", 15*time.Second)

	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.poll_timeout", 60)
	v.SetDefault("telegram.poll_pause", 3*time.Second)
	v.SetDefault("telegram.debug", false)

	v.SetDefault("session.path", "datanewsbot.db")
	v.SetDefault("publishers.file", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

func (c *Config) normalize() {
	c.Datanews.APIKey = strings.TrimSpace(c.Datanews.APIKey)
	c.Telegram.Token = strings.TrimSpace(c.Telegram.Token)
	c.Publishers.File = strings.TrimSpace(c.Publishers.File)
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
}

// Validate checks required values and enumerations.
func (c *Config) Validate() error {
	var errs []error
	if c.Datanews.APIKey == "" {
		errs = append(errs, ErrMissingAPIKey)
	}
	if c.Telegram.Token == "" {
		errs = append(errs, ErrMissingToken)
	}
	if c.Datanews.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("datanews.timeout must be positive, got %s", c.Datanews.Timeout))
	}
	if c.Telegram.PollTimeout < 0 {
		errs = append(errs, fmt.Errorf("telegram.poll_timeout must not be negative, got %d", c.Telegram.PollTimeout))
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Log.Level))
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("invalid log format: %s (must be json or console)", c.Log.Format))
	}
	return errors.Join(errs...)
}
