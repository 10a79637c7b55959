// Package config handles configuration loading for intrinsic.
// It supports YAML config files with environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. INTRINSIC_SEC_USER_AGENT.
const EnvPrefix = "INTRINSIC"

// Config represents the complete application configuration.
type Config struct {
	SEC       SECConfig       `mapstructure:"sec"       yaml:"sec"`
	Quotes    QuotesConfig    `mapstructure:"quotes"    yaml:"quotes"`
	Bonds     BondsConfig     `mapstructure:"bonds"     yaml:"bonds"`
	Valuation ValuationConfig `mapstructure:"valuation" yaml:"valuation"`
	Store     StoreConfig     `mapstructure:"store"     yaml:"store"`
	API       APIConfig       `mapstructure:"api"       yaml:"api"`
	Logging   LoggingConfig   `mapstructure:"logging"   yaml:"logging"`
}

// SECConfig holds EDGAR access settings.
type SECConfig struct {
	UserAgent string        `mapstructure:"user_agent" yaml:"user_agent"` // "Name email@example.com", required by EDGAR
	RateLimit float64       `mapstructure:"rate_limit" yaml:"rate_limit"` // requests per second
	CacheTTL  time.Duration `mapstructure:"cache_ttl"  yaml:"cache_ttl"`
}

// QuotesConfig holds price and FX settings.
type QuotesConfig struct {
	RateLimit float64       `mapstructure:"rate_limit" yaml:"rate_limit"`
	CacheTTL  time.Duration `mapstructure:"cache_ttl"  yaml:"cache_ttl"`
}

// BondsConfig holds government yield settings.
type BondsConfig struct {
	FREDAPIKey    string        `mapstructure:"fred_api_key"   yaml:"fred_api_key"`
	FallbackYield float64       `mapstructure:"fallback_yield" yaml:"fallback_yield"`
	CacheTTL      time.Duration `mapstructure:"cache_ttl"      yaml:"cache_ttl"`
}

// ValuationConfig holds the market-wide valuation assumptions.
type ValuationConfig struct {
	EquityRiskPremium    float64 `mapstructure:"equity_risk_premium"   yaml:"equity_risk_premium"`
	RecessionProbability float64 `mapstructure:"recession_probability" yaml:"recession_probability"`
	HistoryYears         int     `mapstructure:"history_years"         yaml:"history_years"`
	TablesPath           string  `mapstructure:"tables_path"           yaml:"tables_path"` // empty = embedded tables
}

// StoreConfig holds persistence settings.
type StoreConfig struct {
	DataDir     string        `mapstructure:"data_dir"     yaml:"data_dir"`
	DatabaseURL string        `mapstructure:"database_url" yaml:"database_url"`
	DocumentTTL time.Duration `mapstructure:"document_ttl" yaml:"document_ttl"`
}

// APIConfig holds HTTP server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"` // empty = "*"
}

// Addr returns host:port.
func (a APIConfig) Addr() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "console" or "json"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.intrinsic/config.yaml (home directory)
//  3. /etc/intrinsic/config.yaml (system)
//
// Environment variables override config file values.
// Format: INTRINSIC_<SECTION>_<KEY>, e.g., INTRINSIC_BONDS_FRED_API_KEY
func Load() (*Config, error) {
	v := newViper()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".intrinsic"))
	v.AddConfigPath("/etc/intrinsic")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return unmarshal(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return unmarshal(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	overrideFromEnv(&cfg)
	cfg.Store.DataDir = expandHome(cfg.Store.DataDir)
	cfg.Valuation.TablesPath = expandHome(cfg.Valuation.TablesPath)
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("sec.user_agent", "")
	v.SetDefault("sec.rate_limit", 8.0)
	v.SetDefault("sec.cache_ttl", 24*time.Hour)

	v.SetDefault("quotes.rate_limit", 5.0)
	v.SetDefault("quotes.cache_ttl", 5*time.Minute)

	v.SetDefault("bonds.fred_api_key", "")
	v.SetDefault("bonds.fallback_yield", 0.04)
	v.SetDefault("bonds.cache_ttl", 6*time.Hour)

	v.SetDefault("valuation.equity_risk_premium", 0.046)
	v.SetDefault("valuation.recession_probability", 0.5)
	v.SetDefault("valuation.history_years", 10)
	v.SetDefault("valuation.tables_path", "")

	v.SetDefault("store.data_dir", "~/.intrinsic/data")
	v.SetDefault("store.database_url", "")
	v.SetDefault("store.document_ttl", 24*time.Hour)

	v.SetDefault("api.host", "127.0.0.1")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{})

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// overrideFromEnv explicitly reads secrets that are commonly exported
// without the application prefix.
func overrideFromEnv(cfg *Config) {
	if cfg.Bonds.FREDAPIKey == "" {
		if key := os.Getenv("FRED_API_KEY"); key != "" {
			cfg.Bonds.FREDAPIKey = key
		}
	}
	if cfg.Store.DatabaseURL == "" {
		if url := os.Getenv("DATABASE_URL"); url != "" {
			cfg.Store.DatabaseURL = url
		}
	}
}

// Validate checks the settings the valuation cannot run without.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.SEC.UserAgent) == "" {
		errs = append(errs, errors.New("sec.user_agent is required by EDGAR (e.g. \"Jane Doe jane@example.com\")"))
	}
	if p := c.Valuation.RecessionProbability; p < 0 || p > 1 {
		errs = append(errs, fmt.Errorf("valuation.recession_probability must be in [0,1], got %g", p))
	}
	if c.Valuation.EquityRiskPremium <= 0 {
		errs = append(errs, fmt.Errorf("valuation.equity_risk_premium must be positive, got %g", c.Valuation.EquityRiskPremium))
	}
	if c.Valuation.HistoryYears <= 0 {
		errs = append(errs, fmt.Errorf("valuation.history_years must be positive, got %d", c.Valuation.HistoryYears))
	}
	return errors.Join(errs...)
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

func expandHome(path string) string {
	if path == "~" {
		return homeDir()
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir(), path[2:])
	}
	return path
}
