// Package config defines all configuration for the backtester. Config is
// loaded from a YAML file (default: configs/config.yaml) with overrides
// via PHANTOMFILL_* environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the top-level configuration. Maps directly to the YAML file structure.
type Config struct {
	Storage    StorageConfig    `mapstructure:"storage"`
	Ingest     IngestConfig     `mapstructure:"ingest"`
	Oracle     OracleConfig     `mapstructure:"oracle"`
	FillModel  FillModelConfig  `mapstructure:"fill_model"`
	Signals    SignalsConfig    `mapstructure:"signals"`
	Replay     ReplayConfig     `mapstructure:"replay"`
	MonteCarlo MonteCarloConfig `mapstructure:"monte_carlo"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// StorageConfig controls where the SQLite store lives.
type StorageConfig struct {
	DBPath string `mapstructure:"db_path"`
}

// IngestConfig controls capture file loading and the optional live tail.
type IngestConfig struct {
	CaptureDir   string        `mapstructure:"capture_dir"`
	Native       bool          `mapstructure:"native"`
	SourceURL    string        `mapstructure:"source_url"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
	LiveWSURL    string        `mapstructure:"live_ws_url"`
}

// OracleConfig points at the read-only RPC endpoint and aggregator used to
// backfill oracle prices.
type OracleConfig struct {
	RPCURL            string `mapstructure:"rpc_url"`
	AggregatorAddress string `mapstructure:"aggregator_address"`
}

// FillModelConfig tunes the DeLise three-rule fill model.
type FillModelConfig struct {
	Rf                   float64 `mapstructure:"rf"`
	AdverseFillProb      float64 `mapstructure:"adverse_fill_prob"`
	WinnerQueueThreshold float64 `mapstructure:"winner_queue_threshold"`
	SignalOffsetMS       int64   `mapstructure:"signal_offset_ms"`
	PostSignalTakerMult  float64 `mapstructure:"post_signal_taker_mult"`
	Seed                 *int64  `mapstructure:"seed"`
}

// SignalsConfig tunes cross-window fade signal precomputation.
type SignalsConfig struct {
	MinStreak int `mapstructure:"min_streak"`
	MaxStreak int `mapstructure:"max_streak"`
}

// ReplayConfig tunes the order placement side of the replay engine.
type ReplayConfig struct {
	BidPrice float64 `mapstructure:"bid_price"`
	Shares   float64 `mapstructure:"shares"`
}

// MonteCarloConfig controls how many independent runs are averaged.
type MonteCarloConfig struct {
	Runs     int    `mapstructure:"runs"`
	BaseSeed *int64 `mapstructure:"base_seed"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads config from a YAML file with env var overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("PHANTOMFILL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if path := os.Getenv("PHANTOMFILL_STORAGE_DB_PATH"); path != "" {
		cfg.Storage.DBPath = path
	}
	if url := os.Getenv("PHANTOMFILL_ORACLE_RPC_URL"); url != "" {
		cfg.Oracle.RPCURL = url
	}

	return &cfg, nil
}

// Default returns the built-in defaults, used when no config file is
// supplied.
func Default() Config {
	return Config{
		Storage: StorageConfig{DBPath: "phantomfill.db"},
		Ingest:  IngestConfig{FetchTimeout: 30 * time.Second},
		FillModel: FillModelConfig{
			Rf:                   0.02,
			AdverseFillProb:      0.99,
			WinnerQueueThreshold: 50.0,
			SignalOffsetMS:       90_000,
			PostSignalTakerMult:  1.8,
		},
		Signals:    SignalsConfig{MinStreak: 2, MaxStreak: 5},
		Replay:     ReplayConfig{BidPrice: 0.49, Shares: 10.0},
		MonteCarlo: MonteCarloConfig{Runs: 1},
		Logging:    LoggingConfig{Level: "info", Format: "text"},
	}
}

// Validate checks all required fields and value ranges.
func (c *Config) Validate() error {
	if c.Replay.Shares <= 0 {
		return fmt.Errorf("replay.shares must be > 0")
	}
	if c.Replay.BidPrice <= 0 || c.Replay.BidPrice >= 1 {
		return fmt.Errorf("replay.bid_price must be in (0, 1)")
	}
	if c.FillModel.Rf < 0 || c.FillModel.Rf > 1 {
		return fmt.Errorf("fill_model.rf must be in [0, 1]")
	}
	if c.FillModel.AdverseFillProb < 0 || c.FillModel.AdverseFillProb > 1 {
		return fmt.Errorf("fill_model.adverse_fill_prob must be in [0, 1]")
	}
	if c.FillModel.WinnerQueueThreshold < 0 {
		return fmt.Errorf("fill_model.winner_queue_threshold must be >= 0")
	}
	if c.FillModel.PostSignalTakerMult < 1 {
		return fmt.Errorf("fill_model.post_signal_taker_mult must be >= 1")
	}
	if c.Signals.MinStreak <= 0 {
		return fmt.Errorf("signals.min_streak must be > 0")
	}
	if c.Signals.MaxStreak < c.Signals.MinStreak {
		return fmt.Errorf("signals.max_streak must be >= signals.min_streak")
	}
	if c.MonteCarlo.Runs <= 0 {
		return fmt.Errorf("monte_carlo.runs must be > 0")
	}
	if c.Storage.DBPath == "" {
		return fmt.Errorf("storage.db_path is required")
	}
	return nil
}

