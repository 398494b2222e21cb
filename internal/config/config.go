package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/govalues/decimal"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"tip-calculator/internal/tipcalc"
)

// Config holds the application configuration
type Config struct {
	Addr       string        `yaml:"addr"`
	Currency   string        `yaml:"currency"`
	Presets    []string      `yaml:"presets"`
	Debounce   time.Duration `yaml:"debounce"`
	SessionTTL time.Duration `yaml:"session_ttl"`
	Limits     Limits        `yaml:"limits"`
	Telemetry  Telemetry     `yaml:"telemetry"`
}

// Telemetry controls logging and the OTLP exporters.
type Telemetry struct {
	// Enabled turns the OTLP trace, log and metric exporters on. /metrics is
	// served either way.
	Enabled     bool    `yaml:"enabled"`
	SampleRatio float64 `yaml:"sample_ratio"`
	LogLevel    string  `yaml:"log_level"`
}

// Limits mirrors tipcalc.Limits in a file-friendly form.
type Limits struct {
	MaxBill    string `yaml:"max_bill"`
	TipWarn    string `yaml:"tip_warn"`
	PeopleWarn int    `yaml:"people_warn"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Addr:       ":8080",
		Currency:   "$",
		Presets:    []string{"5", "10", "15", "25", "50"},
		Debounce:   tipcalc.DefaultDebounce,
		SessionTTL: 30 * time.Minute,
		Limits: Limits{
			MaxBill:    "999999",
			TipWarn:    "100",
			PeopleWarn: 100,
		},
		Telemetry: Telemetry{
			Enabled:     true,
			SampleRatio: 1,
			LogLevel:    "info",
		},
	}
}

// Load builds the configuration from defaults, the YAML file named by
// TIPCALC_CONFIG (if set), and TIPCALC_* environment overrides.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	if path := os.Getenv("TIPCALC_CONFIG"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("TIPCALC_ADDR"); v != "" {
		c.Addr = v
	}
	if v := os.Getenv("TIPCALC_CURRENCY"); v != "" {
		c.Currency = v
	}
	if v := os.Getenv("TIPCALC_PRESETS"); v != "" {
		c.Presets = splitList(v)
	}
	if v := os.Getenv("TIPCALC_DEBOUNCE"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("TIPCALC_DEBOUNCE: %w", err)
		}
		c.Debounce = d
	}
	if v := os.Getenv("TIPCALC_SESSION_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("TIPCALC_SESSION_TTL: %w", err)
		}
		c.SessionTTL = d
	}
	if v := os.Getenv("TIPCALC_PEOPLE_WARN"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("TIPCALC_PEOPLE_WARN: %w", err)
		}
		c.Limits.PeopleWarn = n
	}
	if v := os.Getenv("TIPCALC_TELEMETRY"); v != "" {
		on, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("TIPCALC_TELEMETRY: %w", err)
		}
		c.Telemetry.Enabled = on
	}
	if v := os.Getenv("TIPCALC_TRACE_SAMPLE_RATIO"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("TIPCALC_TRACE_SAMPLE_RATIO: %w", err)
		}
		c.Telemetry.SampleRatio = f
	}
	if v := os.Getenv("TIPCALC_LOG_LEVEL"); v != "" {
		c.Telemetry.LogLevel = v
	}
	return nil
}

func (c *Config) validate() error {
	if c.Currency == "" {
		return errors.New("config: currency must not be empty")
	}
	if c.Debounce <= 0 {
		c.Debounce = tipcalc.DefaultDebounce
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("config: session_ttl must be positive, got %s", c.SessionTTL)
	}
	if r := c.Telemetry.SampleRatio; r < 0 || r > 1 {
		return fmt.Errorf("config: telemetry.sample_ratio must be within [0, 1], got %v", r)
	}
	if _, err := zapcore.ParseLevel(c.Telemetry.LogLevel); err != nil {
		return fmt.Errorf("config: telemetry.log_level: %w", err)
	}
	if c.Limits.PeopleWarn < 1 {
		return fmt.Errorf("config: people_warn must be at least 1, got %d", c.Limits.PeopleWarn)
	}
	_, err := c.CalculatorOptions()
	return err
}

// CalculatorOptions converts the config into tipcalc options.
func (c *Config) CalculatorOptions() (tipcalc.Options, error) {
	presets := make([]decimal.Decimal, 0, len(c.Presets))
	for _, p := range c.Presets {
		d, err := decimal.Parse(strings.TrimSpace(p))
		if err != nil {
			return tipcalc.Options{}, fmt.Errorf("config: preset %q: %w", p, err)
		}
		if d.IsNeg() {
			return tipcalc.Options{}, fmt.Errorf("config: preset %q: %w", p, tipcalc.ErrNegativePercent)
		}
		presets = append(presets, d)
	}

	maxBill, err := decimal.Parse(c.Limits.MaxBill)
	if err != nil {
		return tipcalc.Options{}, fmt.Errorf("config: max_bill %q: %w", c.Limits.MaxBill, err)
	}
	tipWarn, err := decimal.Parse(c.Limits.TipWarn)
	if err != nil {
		return tipcalc.Options{}, fmt.Errorf("config: tip_warn %q: %w", c.Limits.TipWarn, err)
	}

	return tipcalc.Options{
		Presets: presets,
		Limits: tipcalc.Limits{
			MaxBill:    maxBill,
			TipWarn:    tipWarn,
			PeopleWarn: c.Limits.PeopleWarn,
		},
		Money: tipcalc.Money{Symbol: c.Currency},
	}, nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
