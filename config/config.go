// Package config loads riskcore configuration from YAML or JSON files
// with environment-variable overrides.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the complete runtime configuration.
type Config struct {
	Risk       RiskConfig       `json:"risk" yaml:"risk"`
	Alert      AlertConfig      `json:"alert" yaml:"alert"`
	Journal    JournalConfig    `json:"journal" yaml:"journal"`
	Monitoring MonitoringConfig `json:"monitoring" yaml:"monitoring"`
	Trading    TradingConfig    `json:"trading" yaml:"trading"`
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`
}

// RiskConfig holds the monitor thresholds and kill-switch location.
type RiskConfig struct {
	// MaxDailyLoss is negative: trading halts when daily PnL drops
	// below it.
	MaxDailyLoss float64 `json:"max_daily_loss" yaml:"max_daily_loss"`
	// MaxOrderRate is the order budget per 60-second window.
	MaxOrderRate int `json:"max_order_rate" yaml:"max_order_rate"`
	// MaxPositionSize caps absolute net volume per symbol, in lots.
	MaxPositionSize float64 `json:"max_position_size" yaml:"max_position_size"`
	// KillSwitchLockFile is the durable lock file path.
	KillSwitchLockFile string `json:"kill_switch_lock_file" yaml:"kill_switch_lock_file"`
}

type AlertConfig struct {
	// WebhookURL receives violation alerts; empty disables alerting.
	WebhookURL string `json:"webhook_url,omitempty" yaml:"webhook_url,omitempty"`
}

type JournalConfig struct {
	// DBPath is the SQLite audit database; empty disables journaling.
	DBPath string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

type MonitoringConfig struct {
	// MetricsAddr serves prometheus metrics; empty disables the endpoint.
	MetricsAddr string `json:"metrics_addr,omitempty" yaml:"metrics_addr,omitempty"`
}

type TradingConfig struct {
	Symbol      string  `json:"symbol" yaml:"symbol"`
	OrderVolume float64 `json:"order_volume" yaml:"order_volume"`
}

// SimulationConfig scripts the paper-gateway demo run.
type SimulationConfig struct {
	InitialBid float64 `json:"initial_bid" yaml:"initial_bid"`
	InitialAsk float64 `json:"initial_ask" yaml:"initial_ask"`
	Steps      []Step  `json:"steps,omitempty" yaml:"steps,omitempty"`
}

// Step is one scripted event: a quote update, optionally a signal.
type Step struct {
	Bid    float64 `json:"bid" yaml:"bid"`
	Ask    float64 `json:"ask" yaml:"ask"`
	Signal string  `json:"signal,omitempty" yaml:"signal,omitempty"` // BUY, SELL, HOLD or empty
	Delay  string  `json:"delay,omitempty" yaml:"delay,omitempty"`   // e.g. "250ms", "1s"
}

// ParseDelay converts the step's delay string to a duration.
func (s Step) ParseDelay() (time.Duration, error) {
	if s.Delay == "" {
		return 0, nil
	}
	return time.ParseDuration(s.Delay)
}

// Default returns a configuration with conservative defaults.
func Default() *Config {
	return &Config{
		Risk: RiskConfig{
			MaxDailyLoss:       -50.0,
			MaxOrderRate:       5,
			MaxPositionSize:    1.0,
			KillSwitchLockFile: "./killswitch.lock",
		},
		Journal: JournalConfig{
			DBPath: "./riskcore.sqlite",
		},
		Trading: TradingConfig{
			Symbol:      "EURUSD",
			OrderVolume: 0.01,
		},
		Simulation: SimulationConfig{
			InitialBid: 1.0541,
			InitialAsk: 1.0543,
		},
	}
}

// LoadFromFile reads a YAML or JSON config file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	if yerr := yaml.Unmarshal(data, cfg); yerr != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", yerr)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ApplyEnv loads an optional .env file and applies RISKCORE_* overrides.
func (c *Config) ApplyEnv(envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("load env file: %w", err)
		}
	} else {
		// Best effort: a local .env is optional.
		_ = godotenv.Load()
	}

	var err error
	if v := os.Getenv("RISKCORE_MAX_DAILY_LOSS"); v != "" {
		if c.Risk.MaxDailyLoss, err = strconv.ParseFloat(v, 64); err != nil {
			return fmt.Errorf("RISKCORE_MAX_DAILY_LOSS: %w", err)
		}
	}
	if v := os.Getenv("RISKCORE_MAX_ORDER_RATE"); v != "" {
		if c.Risk.MaxOrderRate, err = strconv.Atoi(v); err != nil {
			return fmt.Errorf("RISKCORE_MAX_ORDER_RATE: %w", err)
		}
	}
	if v := os.Getenv("RISKCORE_MAX_POSITION_SIZE"); v != "" {
		if c.Risk.MaxPositionSize, err = strconv.ParseFloat(v, 64); err != nil {
			return fmt.Errorf("RISKCORE_MAX_POSITION_SIZE: %w", err)
		}
	}
	if v := os.Getenv("RISKCORE_KILL_SWITCH_LOCK_FILE"); v != "" {
		c.Risk.KillSwitchLockFile = v
	}
	if v := os.Getenv("RISKCORE_WEBHOOK_URL"); v != "" {
		c.Alert.WebhookURL = v
	}
	if v := os.Getenv("RISKCORE_JOURNAL_DB"); v != "" {
		c.Journal.DBPath = v
	}
	if v := os.Getenv("RISKCORE_METRICS_ADDR"); v != "" {
		c.Monitoring.MetricsAddr = v
	}
	return nil
}

// Validate checks the configuration for values that would make the
// risk gates meaningless.
func (c *Config) Validate() error {
	if c.Risk.MaxDailyLoss >= 0 {
		return fmt.Errorf("risk.max_daily_loss must be negative, got %v", c.Risk.MaxDailyLoss)
	}
	if c.Risk.MaxOrderRate <= 0 {
		return fmt.Errorf("risk.max_order_rate must be positive")
	}
	if c.Risk.MaxPositionSize <= 0 {
		return fmt.Errorf("risk.max_position_size must be positive")
	}
	if c.Risk.KillSwitchLockFile == "" {
		return fmt.Errorf("risk.kill_switch_lock_file is required")
	}
	if c.Trading.Symbol == "" {
		return fmt.Errorf("trading.symbol is required")
	}
	if c.Trading.OrderVolume <= 0 {
		return fmt.Errorf("trading.order_volume must be positive")
	}
	if c.Simulation.InitialAsk < c.Simulation.InitialBid {
		return fmt.Errorf("simulation.initial_ask must not be below initial_bid")
	}
	for i, s := range c.Simulation.Steps {
		switch strings.ToUpper(s.Signal) {
		case "", "BUY", "SELL", "HOLD":
		default:
			return fmt.Errorf("simulation.steps[%d]: unknown signal %q", i, s.Signal)
		}
		if _, err := s.ParseDelay(); err != nil {
			return fmt.Errorf("simulation.steps[%d]: bad delay: %w", i, err)
		}
	}
	return nil
}

// SaveToFile writes the config as YAML (or JSON by extension).
func (c *Config) SaveToFile(path string) error {
	var (
		data []byte
		err  error
	)
	if strings.HasSuffix(path, ".json") {
		data, err = json.MarshalIndent(c, "", "  ")
	} else {
		data, err = yaml.Marshal(c)
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
