// Package config loads teller settings from a .env file or the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config stores all configuration for the teller
type Config struct {
	SharedKey       string        `mapstructure:"TELLER_SHARED_KEY"`
	TerminalID      string        `mapstructure:"TELLER_TERMINAL_ID"`
	BankName        string        `mapstructure:"TELLER_BANK_NAME"`
	TransferCeiling string        `mapstructure:"TELLER_TRANSFER_CEILING"`
	DailyLimit      string        `mapstructure:"TELLER_DAILY_LIMIT"`
	MinBalance      string        `mapstructure:"TELLER_MIN_BALANCE"`
	Denomination    string        `mapstructure:"TELLER_DENOMINATION"`
	InitialCash     string        `mapstructure:"TELLER_INITIAL_CASH"`
	MaxPinAttempts  int           `mapstructure:"TELLER_MAX_PIN_ATTEMPTS"`
	LockoutTTL      time.Duration `mapstructure:"TELLER_LOCKOUT_TTL"`
	SessionTTL      time.Duration `mapstructure:"TELLER_SESSION_TTL"`
	RedisURL        string        `mapstructure:"REDIS_URL"`
	LogLevel        string        `mapstructure:"LOG_LEVEL"`
	LogFormat       string        `mapstructure:"LOG_FORMAT"`
}

var keys = []string{
	"TELLER_SHARED_KEY",
	"TELLER_TERMINAL_ID",
	"TELLER_BANK_NAME",
	"TELLER_TRANSFER_CEILING",
	"TELLER_DAILY_LIMIT",
	"TELLER_MIN_BALANCE",
	"TELLER_DENOMINATION",
	"TELLER_INITIAL_CASH",
	"TELLER_MAX_PIN_ATTEMPTS",
	"TELLER_LOCKOUT_TTL",
	"TELLER_SESSION_TTL",
	"REDIS_URL",
	"LOG_LEVEL",
	"LOG_FORMAT",
}

// Load reads configuration from a .env file in path (if present) and the environment
func Load(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("TELLER_SHARED_KEY", "BANK_ECO_SECURE_2026")
	v.SetDefault("TELLER_TERMINAL_ID", "ATM-001")
	v.SetDefault("TELLER_BANK_NAME", "BANKING ECOSYSTEM")
	v.SetDefault("TELLER_TRANSFER_CEILING", "100000000")
	v.SetDefault("TELLER_DAILY_LIMIT", "10000000")
	v.SetDefault("TELLER_MIN_BALANCE", "50000")
	v.SetDefault("TELLER_DENOMINATION", "50000")
	v.SetDefault("TELLER_INITIAL_CASH", "50000000")
	v.SetDefault("TELLER_MAX_PIN_ATTEMPTS", 3)
	v.SetDefault("TELLER_LOCKOUT_TTL", 24*time.Hour)
	v.SetDefault("TELLER_SESSION_TTL", 60*time.Second)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")

	// Bind envs explicitly so containers pick them up reliably
	for _, key := range keys {
		_ = v.BindEnv(key)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects settings the teller cannot start with
func (c *Config) Validate() error {
	if c.SharedKey == "" {
		return errors.New("TELLER_SHARED_KEY must not be empty")
	}
	if c.MaxPinAttempts < 1 {
		return fmt.Errorf("TELLER_MAX_PIN_ATTEMPTS must be positive, got %d", c.MaxPinAttempts)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("TELLER_SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	if c.LockoutTTL <= 0 {
		return fmt.Errorf("TELLER_LOCKOUT_TTL must be positive, got %s", c.LockoutTTL)
	}

	amounts := []struct {
		key      string
		raw      string
		positive bool
	}{
		{"TELLER_TRANSFER_CEILING", c.TransferCeiling, true},
		{"TELLER_DAILY_LIMIT", c.DailyLimit, false},
		{"TELLER_MIN_BALANCE", c.MinBalance, false},
		{"TELLER_DENOMINATION", c.Denomination, true},
		{"TELLER_INITIAL_CASH", c.InitialCash, false},
	}
	for _, a := range amounts {
		d, err := decimal.NewFromString(a.raw)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", a.key, a.raw, err)
		}
		if d.IsNegative() {
			return fmt.Errorf("%s must not be negative, got %s", a.key, a.raw)
		}
		if a.positive && d.IsZero() {
			return fmt.Errorf("%s must be positive, got %s", a.key, a.raw)
		}
	}

	return nil
}

// Amount parses one of the monetary settings. Load has already rejected
// unparsable values, so the zero fallback is only reachable for a Config
// that skipped Validate.
func Amount(raw string) decimal.Decimal {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	return d
}
