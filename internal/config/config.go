package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App         AppConfig
	Logging     LoggingConfig
	Negotiation NegotiationConfig
	Pricing     PricingConfig
}

type AppConfig struct {
	Name        string
	Environment string
}

type LoggingConfig struct {
	Level  string
	Format string
}

// NegotiationConfig carries workflow defaults applied when a caller does not
// set them explicitly.
type NegotiationConfig struct {
	// DefaultMaxRounds bounds counter-proposal rounds per workflow.
	DefaultMaxRounds int
	// DefaultDeadlineDays spans the negotiation deadline ladder.
	DefaultDeadlineDays int
}

// PricingConfig injects currency exchange rates over the catalog defaults.
// Rates are configuration, never sourced from an external feed here.
type PricingConfig struct {
	// RateOverrides maps currency codes to exchange rates, e.g.
	// PRICING_RATEOVERRIDES_EUR=0.94.
	RateOverrides map[string]float64
}

// Load loads configuration from file and environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables override config file
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// AutomaticEnv never surfaces map keys that carry no default, so rate
	// overrides from the environment are collected explicitly. Env wins
	// over the config file.
	if err := applyRateOverrideEnv(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configuration a running system could not honor
func (c *Config) Validate() error {
	if c.Negotiation.DefaultMaxRounds < 1 {
		return fmt.Errorf("config: negotiation.defaultmaxrounds must be at least 1")
	}
	if c.Negotiation.DefaultDeadlineDays < 1 {
		return fmt.Errorf("config: negotiation.defaultdeadlinedays must be at least 1")
	}
	for currency, rate := range c.Pricing.RateOverrides {
		if rate <= 0 {
			return fmt.Errorf("config: pricing rate override for %q must be positive", currency)
		}
	}
	return nil
}

const rateOverrideEnvPrefix = "PRICING_RATEOVERRIDES_"

func applyRateOverrideEnv(cfg *Config) error {
	for _, entry := range os.Environ() {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || !strings.HasPrefix(key, rateOverrideEnvPrefix) {
			continue
		}
		currency := strings.ToLower(strings.TrimPrefix(key, rateOverrideEnvPrefix))
		if currency == "" {
			continue
		}
		rate, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("config: invalid rate override %s=%q: %w", key, value, err)
		}
		if cfg.Pricing.RateOverrides == nil {
			cfg.Pricing.RateOverrides = make(map[string]float64)
		}
		cfg.Pricing.RateOverrides[currency] = rate
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "distributor-core")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("negotiation.defaultmaxrounds", 5)
	v.SetDefault("negotiation.defaultdeadlinedays", 30)
}
