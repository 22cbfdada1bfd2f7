// Package common provides shared utilities for the net-worth tracker
package common

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/bobmcallan/networth/internal/models"
)

// Config holds all configuration for the tracker
type Config struct {
	Environment string            `toml:"environment"`
	Server      ServerConfig      `toml:"server"`
	Source      SourceConfig      `toml:"source"`
	Storage     StorageConfig     `toml:"storage"`
	Currency    CurrencyConfig    `toml:"currency"`
	Classes     map[string]string `toml:"classes"` // asset class -> settlement currency
	Columns     map[string]string `toml:"columns"` // extra header alias -> logical column
	Reconcile   ReconcileConfig   `toml:"reconcile"`
	Goal        GoalDefaults      `toml:"goal"`
	Logging     LoggingConfig     `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// SourceConfig describes where the spreadsheet export is read from.
// URL takes precedence over Path.
type SourceConfig struct {
	URL       string `toml:"url"`        // CSV export link; treat as a secret
	Path      string `toml:"path"`       // local CSV file
	HeaderRow int    `toml:"header_row"` // 0-based line holding the column labels
	Timeout   string `toml:"timeout"`
	RateLimit int    `toml:"rate_limit"` // requests per second
	CacheTTL  string `toml:"cache_ttl"`

	// RefreshInterval re-fetches the export in the background; empty disables it
	RefreshInterval string `toml:"refresh_interval"`
}

// GetTimeout parses and returns the fetch timeout
func (c *SourceConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GetCacheTTL parses and returns the snapshot time-to-live
func (c *SourceConfig) GetCacheTTL() time.Duration {
	d, err := time.ParseDuration(c.CacheTTL)
	if err != nil || d < 0 {
		return 10 * time.Second
	}
	return d
}

// GetRefreshInterval returns the background refresh interval, 0 when disabled
func (c *SourceConfig) GetRefreshInterval() time.Duration {
	if c.RefreshInterval == "" {
		return 0
	}
	d, err := time.ParseDuration(c.RefreshInterval)
	if err != nil || d < time.Second {
		return 0
	}
	return d
}

// SourceID identifies the configured source for cache keys.
func (c *SourceConfig) SourceID() string {
	if c.URL != "" {
		return "url:" + c.URL
	}
	return "file:" + c.Path
}

// StorageConfig selects the snapshot cache backend.
type StorageConfig struct {
	Backend string `toml:"backend"` // "memory" or "badger"
	Path    string `toml:"path"`
}

// CurrencyConfig holds base/display currency and fallback rates.
type CurrencyConfig struct {
	Base         string             `toml:"base"`
	Display      string             `toml:"display"`
	RateFloor    float64            `toml:"rate_floor"`
	DefaultRates map[string]float64 `toml:"default_rates"`
}

// ReconcileConfig tunes the record reconciler.
type ReconcileConfig struct {
	TotalPriority     []string `toml:"total_priority"`
	CostBasisFallback string   `toml:"cost_basis_fallback"` // "positive" or "blank"
	DateLayouts       []string `toml:"date_layouts"`
	HistoryWindow     int      `toml:"history_window"`
}

// GoalDefaults seeds the per-request GoalConfig.
type GoalDefaults struct {
	Target              float64            `toml:"target"`
	MonthlyExpense      float64            `toml:"monthly_expense"`
	Preset              string             `toml:"preset"`
	GrowthRates         map[string]float64 `toml:"growth_rates"`
	MonthlyContribution *float64           `toml:"monthly_contribution"` // unset = historical average
	DepreciationRate    float64            `toml:"depreciation_rate"`
	ConsumptionClasses  []string           `toml:"consumption_classes"`
	HorizonYears        int                `toml:"horizon_years"`
	ProjectionMode      string             `toml:"projection_mode"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level    string   `toml:"level"`
	Format   string   `toml:"format"`
	Outputs  []string `toml:"outputs"`
	FilePath string   `toml:"file_path"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	classes := make(map[string]string)
	for c, ccy := range models.DefaultClassCurrencies() {
		classes[string(c)] = ccy
	}
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Source: SourceConfig{
			HeaderRow: 1,
			Timeout:   "30s",
			RateLimit: 2,
			CacheTTL:  "10s",
		},
		Storage: StorageConfig{
			Backend: "memory",
			Path:    "data/cache",
		},
		Currency: CurrencyConfig{
			Base:      "TWD",
			Display:   "EUR",
			RateFloor: 0.01,
			DefaultRates: map[string]float64{
				"USD": 32.5,
				"EUR": 35.0,
			},
		},
		Classes: classes,
		Reconcile: ReconcileConfig{
			TotalPriority:     []string{string(models.ColumnTrueTotal), string(models.ColumnTotalPlusVehicleDepr), string(models.ColumnTotal)},
			CostBasisFallback: "positive",
			HistoryWindow:     20,
		},
		Goal: GoalDefaults{
			Target:             50000000,
			MonthlyExpense:     60000,
			Preset:             "balanced",
			DepreciationRate:   15,
			ConsumptionClasses: []string{string(models.ClassVehicle)},
			HorizonYears:       10,
			ProjectionMode:     models.ProjectionCompound,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "console",
			Outputs:  []string{"console"},
			FilePath: "./logs/networth.log",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides.
// A .env file in the working directory is loaded first so secrets such as
// the sheet URL can stay out of the TOML files.
func LoadConfig(paths ...string) (*Config, error) {
	_ = godotenv.Load()

	config := NewDefaultConfig()

	// Later files override earlier
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)
	normalizeCurrencies(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("NETWORTH_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("NETWORTH_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("NETWORTH_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("NETWORTH_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if url := os.Getenv("NETWORTH_SHEET_URL"); url != "" {
		config.Source.URL = url
	}

	if path := os.Getenv("NETWORTH_SHEET_PATH"); path != "" {
		config.Source.Path = path
	}

	if ttl := os.Getenv("NETWORTH_CACHE_TTL"); ttl != "" {
		config.Source.CacheTTL = ttl
	}

	if backend := os.Getenv("NETWORTH_STORAGE_BACKEND"); backend != "" {
		config.Storage.Backend = backend
	}

	if dc := os.Getenv("NETWORTH_DISPLAY_CURRENCY"); dc != "" {
		config.Currency.Display = dc
	}

	if goal := os.Getenv("NETWORTH_GOAL"); goal != "" {
		if g, err := strconv.ParseFloat(goal, 64); err == nil {
			config.Goal.Target = g
		}
	}
}

func normalizeCurrencies(config *Config) {
	config.Currency.Base = strings.ToUpper(strings.TrimSpace(config.Currency.Base))
	config.Currency.Display = strings.ToUpper(strings.TrimSpace(config.Currency.Display))

	// Canonical (upper-case) keys first so a lower-case key from a config
	// file overrides the built-in default for the same currency.
	keys := make([]string, 0, len(config.Currency.DefaultRates))
	for k := range config.Currency.DefaultRates {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ci, cj := keys[i] == strings.ToUpper(keys[i]), keys[j] == strings.ToUpper(keys[j])
		if ci != cj {
			return ci
		}
		return keys[i] < keys[j]
	})
	rates := make(map[string]float64, len(keys))
	for _, k := range keys {
		rates[strings.ToUpper(k)] = config.Currency.DefaultRates[k]
	}
	config.Currency.DefaultRates = rates

	for k, v := range config.Classes {
		config.Classes[k] = strings.ToUpper(strings.TrimSpace(v))
	}
}

// Validate checks cross-field consistency. Every foreign settlement currency
// must have a default rate so an implausible cell can always be replaced.
func (c *Config) Validate() error {
	if c.Currency.Base == "" {
		return fmt.Errorf("currency.base is required")
	}
	if c.Currency.RateFloor < 0 {
		return fmt.Errorf("currency.rate_floor must not be negative, got %v", c.Currency.RateFloor)
	}
	for class, ccy := range c.Classes {
		if _, ok := models.ParseAssetClass(class); !ok {
			return fmt.Errorf("classes: unknown asset class %q", class)
		}
		if ccy == c.Currency.Base {
			continue
		}
		rate, ok := c.Currency.DefaultRates[ccy]
		if !ok {
			return fmt.Errorf("currency.default_rates: missing default for %s (class %s)", ccy, class)
		}
		if rate <= c.Currency.RateFloor {
			return fmt.Errorf("currency.default_rates: default for %s (%v) must exceed rate_floor %v", ccy, rate, c.Currency.RateFloor)
		}
	}
	switch c.Reconcile.CostBasisFallback {
	case "", "positive", "blank":
	default:
		return fmt.Errorf("reconcile.cost_basis_fallback must be \"positive\" or \"blank\", got %q", c.Reconcile.CostBasisFallback)
	}
	for _, col := range c.Reconcile.TotalPriority {
		switch models.Column(col) {
		case models.ColumnTrueTotal, models.ColumnTotalPlusVehicleDepr, models.ColumnTotal:
		default:
			return fmt.Errorf("reconcile.total_priority: %q is not a total column", col)
		}
	}
	return nil
}

// ClassCurrencies returns the typed class -> currency table.
func (c *Config) ClassCurrencies() map[models.AssetClass]string {
	out := models.DefaultClassCurrencies()
	for k, v := range c.Classes {
		if class, ok := models.ParseAssetClass(k); ok && v != "" {
			out[class] = v
		}
	}
	return out
}

// ForeignCurrencies returns the sorted set of non-base settlement currencies.
func (c *Config) ForeignCurrencies() []string {
	seen := make(map[string]bool)
	for _, ccy := range c.ClassCurrencies() {
		if ccy != c.Currency.Base {
			seen[ccy] = true
		}
	}
	out := make([]string, 0, len(seen))
	for ccy := range seen {
		out = append(out, ccy)
	}
	sort.Strings(out)
	return out
}

// TotalPriority returns the typed total-candidate order.
func (c *Config) TotalPriority() []models.Column {
	if len(c.Reconcile.TotalPriority) == 0 {
		return append([]models.Column(nil), models.DefaultTotalPriority...)
	}
	out := make([]models.Column, len(c.Reconcile.TotalPriority))
	for i, col := range c.Reconcile.TotalPriority {
		out[i] = models.Column(col)
	}
	return out
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
