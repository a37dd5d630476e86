// Package config loads and validates the run configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/quantlab/silverquant/market"
)

// Config is the complete run configuration.
type Config struct {
	Account  AccountConfig  `yaml:"account"`
	Exchange ExchangeConfig `yaml:"exchange"`
	Strategy StrategyConfig `yaml:"strategy"`
	Data     DataConfig     `yaml:"data"`
	Journal  JournalConfig  `yaml:"journal"`
	Log      LogConfig      `yaml:"log"`
}

type AccountConfig struct {
	InitialCapital  float64 `yaml:"initial_capital"`
	MaxTradesPerDay int     `yaml:"max_trades_per_day"`
}

type ExchangeConfig struct {
	ContractUnit    float64 `yaml:"contract_unit"`
	MarginRatio     float64 `yaml:"margin_ratio"`
	CommissionRate  float64 `yaml:"commission_rate"`
	OrderSize       int     `yaml:"order_size"`
	ReverseOnSignal *bool   `yaml:"reverse_on_signal"` // default true
}

type StrategyConfig struct {
	Name   string             `yaml:"name"`
	Params map[string]float64 `yaml:"params,omitempty"`
}

type DataConfig struct {
	Source         string `yaml:"source"` // "csv" for backtests; quote URL for paper/signal
	Symbol         string `yaml:"symbol"`
	Interval       string `yaml:"interval"`
	CSVPath        string `yaml:"csv_path,omitempty"`
	StartDate      string `yaml:"start_date,omitempty"` // YYYY-MM-DD
	EndDate        string `yaml:"end_date,omitempty"`
	SessionMinutes int    `yaml:"session_minutes"`
}

type JournalConfig struct {
	Type       string `yaml:"type"` // "sqlite", "csv" or "none"
	DBPath     string `yaml:"db_path,omitempty"`
	TradesFile string `yaml:"trades_file,omitempty"`
	EquityFile string `yaml:"equity_file,omitempty"`
	// Paper-mode account snapshot location.
	SnapshotPath string `yaml:"snapshot_path,omitempty"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// LoadFromFile loads and validates a YAML configuration file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile writes the configuration as YAML.
func (c *Config) SaveToFile(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks the configuration before a run starts.
func (c *Config) Validate() error {
	if c.Account.InitialCapital <= 0 {
		return fmt.Errorf("account.initial_capital must be positive")
	}
	if c.Account.MaxTradesPerDay < 0 {
		return fmt.Errorf("account.max_trades_per_day must not be negative")
	}
	if c.Exchange.ContractUnit <= 0 {
		return fmt.Errorf("exchange.contract_unit must be positive")
	}
	if c.Exchange.MarginRatio <= 0 || c.Exchange.MarginRatio > 1 {
		return fmt.Errorf("exchange.margin_ratio must be in (0, 1]")
	}
	if c.Exchange.CommissionRate < 0 {
		return fmt.Errorf("exchange.commission_rate must not be negative")
	}
	if c.Exchange.OrderSize <= 0 {
		return fmt.Errorf("exchange.order_size must be positive")
	}
	if c.Data.Symbol == "" {
		return fmt.Errorf("data.symbol is required")
	}
	if _, err := market.ParseInterval(c.Data.Interval); err != nil {
		return fmt.Errorf("data.interval: %w", err)
	}
	if c.Data.SessionMinutes <= 0 {
		return fmt.Errorf("data.session_minutes must be positive")
	}
	for _, d := range []string{c.Data.StartDate, c.Data.EndDate} {
		if d == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", d); err != nil {
			return fmt.Errorf("invalid date %q: %w", d, err)
		}
	}
	switch c.Journal.Type {
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal.db_path required for sqlite journal")
		}
	case "csv":
		if c.Journal.TradesFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("journal.trades_file and journal.equity_file required for csv journal")
		}
	case "none":
	default:
		return fmt.Errorf("journal.type must be sqlite, csv or none")
	}
	return nil
}

// ReverseOnSignal defaults to true when unset: an opposing signal
// closes and re-enters the other way.
func (c *Config) ReverseOnSignalEnabled() bool {
	if c.Exchange.ReverseOnSignal == nil {
		return true
	}
	return *c.Exchange.ReverseOnSignal
}

// DateRange returns the configured replay window; zero times mean
// unbounded.
func (c *Config) DateRange() (start, end time.Time) {
	if c.Data.StartDate != "" {
		start, _ = time.Parse("2006-01-02", c.Data.StartDate)
	}
	if c.Data.EndDate != "" {
		end, _ = time.Parse("2006-01-02", c.Data.EndDate)
		// inclusive end date
		end = end.Add(24*time.Hour - time.Nanosecond)
	}
	return start, end
}

// Interval returns the parsed bar interval. Validate must have passed.
func (c *Config) Interval() market.Interval {
	iv, _ := market.ParseInterval(c.Data.Interval)
	return iv
}

// Annualization is the number of return samples per trading year for
// the configured bar interval.
func (c *Config) Annualization() float64 {
	return float64(252 * c.Interval().BarsPerDay(c.Data.SessionMinutes))
}

// Default returns the configuration for the Shanghai silver contract.
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			InitialCapital:  1_000_000,
			MaxTradesPerDay: 10,
		},
		Exchange: ExchangeConfig{
			ContractUnit:   15,
			MarginRatio:    0.12,
			CommissionRate: 0.00005,
			OrderSize:      1,
		},
		Strategy: StrategyConfig{
			Name: "dual_ma_atr",
		},
		Data: DataConfig{
			Source:         "csv",
			Symbol:         "AG0",
			Interval:       "5m",
			SessionMinutes: 240,
		},
		Journal: JournalConfig{
			Type:   "sqlite",
			DBPath: "./silverquant.sqlite",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
