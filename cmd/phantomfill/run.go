package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dapdevsoftware/phantomfill/internal/config"
	"github.com/dapdevsoftware/phantomfill/internal/fillmodel"
	"github.com/dapdevsoftware/phantomfill/internal/ingest"
	"github.com/dapdevsoftware/phantomfill/internal/montecarlo"
	"github.com/dapdevsoftware/phantomfill/internal/replay"
	"github.com/dapdevsoftware/phantomfill/internal/report"
	"github.com/dapdevsoftware/phantomfill/internal/script"
	"github.com/dapdevsoftware/phantomfill/internal/signals"
	"github.com/dapdevsoftware/phantomfill/internal/storage"
	"github.com/dapdevsoftware/phantomfill/internal/strategy"
	"github.com/dapdevsoftware/phantomfill/pkg/types"
)

var runFlags struct {
	strategyName string
	scriptPath   string
	bidPrice     float64
	shares       float64
	minBps       float64
	minStreak    int
	maxStreak    int
	seed         int64
	runs         int
	csvPath      string
	dbPath       string
	native       bool
	captureDir   string
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Replay a strategy against stored (or native-captured) market history",
	RunE:  runRun,
}

func init() {
	f := runCmd.Flags()
	f.StringVar(&runFlags.strategyName, "strategy", "", "built-in strategy name (see `phantomfill strategies`)")
	f.StringVar(&runFlags.scriptPath, "script", "", "path to a JavaScript strategy (mutually exclusive with --strategy)")
	f.Float64Var(&runFlags.bidPrice, "bid-price", 0.49, "bid price in [0, 1)")
	f.Float64Var(&runFlags.shares, "shares", 10.0, "shares per bid")
	f.Float64Var(&runFlags.minBps, "min-bps", 1.0, "minimum edge in basis points for signal-gated strategies")
	f.IntVar(&runFlags.minStreak, "min-streak", 2, "fade strategy: minimum streak length to fade")
	f.IntVar(&runFlags.maxStreak, "max-streak", 5, "fade strategy: maximum streak length to fade")
	f.Int64Var(&runFlags.seed, "seed", 0, "Monte Carlo base seed (default: nondeterministic)")
	f.IntVar(&runFlags.runs, "runs", 1, "number of Monte Carlo runs (1 = single report, no summary)")
	f.StringVar(&runFlags.csvPath, "csv", "", "optional path to write per-window CSV results")
	f.StringVar(&runFlags.dbPath, "db", "phantomfill.db", "path to the SQLite store")
	f.BoolVar(&runFlags.native, "native", false, "read markets and snapshots directly from --capture-dir instead of the SQLite store")
	f.StringVar(&runFlags.captureDir, "capture-dir", "./captures", "capture directory used when --native is set")

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	if runFlags.strategyName == "" && runFlags.scriptPath == "" {
		return fmt.Errorf("one of --strategy or --script is required")
	}
	if runFlags.strategyName != "" && runFlags.scriptPath != "" {
		return fmt.Errorf("--strategy and --script are mutually exclusive")
	}
	if runFlags.scriptPath != "" {
		if _, err := script.FromFile(runFlags.scriptPath, runFlags.shares, runFlags.bidPrice, nil); err != nil {
			return fmt.Errorf("load script %s: %w", runFlags.scriptPath, err)
		}
	} else if _, ok := strategy.Create(runFlags.strategyName, strategy.Params{}); !ok && runFlags.strategyName != "fade" {
		return fmt.Errorf("unknown strategy %q (see `phantomfill strategies`)", runFlags.strategyName)
	}

	cfg := config.Default()
	if loaded, err := config.Load(cfgPath); err == nil {
		cfg = *loaded
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	logger := newLogger(cfg.Logging.Level, cfg.Logging.Format)

	var seedPtr *int64
	if cmd.Flags().Changed("seed") {
		seedPtr = &runFlags.seed
	}

	markets, loadSnapshots, err := resolveMarketsAndLoader()
	if err != nil {
		return err
	}

	var signalMap map[string]types.Side
	if runFlags.strategyName == "fade" {
		signalMap = signals.ComputeFadeSignals(markets, runFlags.minStreak, runFlags.maxStreak)
	}

	newStrategy := buildStrategyFactory(signalMap, cfg.FillModel.SignalOffsetMS)

	fillCfgFor := func() fillmodel.DeLiseConfig {
		return fillmodel.DeLiseConfig{
			Rf:                   cfg.FillModel.Rf,
			AdverseFillProb:      cfg.FillModel.AdverseFillProb,
			WinnerQueueThreshold: cfg.FillModel.WinnerQueueThreshold,
			SignalOffsetMS:       cfg.FillModel.SignalOffsetMS,
			PostSignalTakerMult:  cfg.FillModel.PostSignalTakerMult,
		}
	}

	var lastResults []types.WindowResult
	runOnce := func(seed int64) report.Report {
		model := fillmodel.NewDeLiseFillModel(fillCfgFor(), seed)
		engine := replay.New(model, replay.Config{BidPrice: runFlags.bidPrice, Shares: runFlags.shares}, logger)
		results := engine.RunAll(markets, loadSnapshots, newStrategy)
		lastResults = results
		return report.FromResults(results, strategyName(), model.Name())
	}

	if runFlags.runs <= 1 {
		seed := rand.Int63()
		if seedPtr != nil {
			seed = *seedPtr
		}
		rep := runOnce(seed)
		rep.Print()
		if runFlags.csvPath != "" {
			if err := report.WriteCSV(lastResults, runFlags.csvPath); err != nil {
				return fmt.Errorf("write csv: %w", err)
			}
		}
		return nil
	}

	reports := montecarlo.Run(runFlags.runs, seedPtr, runOnce)
	summary := montecarlo.FromReports(reports, seedPtr)
	summary.Print()
	return nil
}

func strategyName() string {
	if runFlags.scriptPath != "" {
		return filepath.Base(runFlags.scriptPath)
	}
	return runFlags.strategyName
}

func buildStrategyFactory(signalMap map[string]types.Side, signalOffsetMS int64) replay.StrategyFactory {
	if runFlags.scriptPath != "" {
		path, bidPrice, shares := runFlags.scriptPath, runFlags.bidPrice, runFlags.shares
		return func() strategy.Strategy {
			h, err := script.FromFile(path, shares, bidPrice, slog.Default())
			if err != nil {
				panic(fmt.Sprintf("script %s failed to reload: %v", path, err))
			}
			return h
		}
	}

	if runFlags.strategyName == "fade" {
		bidPrice, shares := runFlags.bidPrice, runFlags.shares
		return func() strategy.Strategy {
			return strategy.NewFadeMomentum(bidPrice, shares, signalMap)
		}
	}

	params := strategy.Params{
		BidPrice:       runFlags.bidPrice,
		Shares:         runFlags.shares,
		MinBps:         runFlags.minBps,
		SignalOffsetMS: signalOffsetMS,
	}
	name := runFlags.strategyName
	return func() strategy.Strategy {
		s, _ := strategy.Create(name, params)
		return s
	}
}

func resolveMarketsAndLoader() ([]types.Market, replay.SnapshotLoader, error) {
	if runFlags.native {
		return nativeMarketsAndLoader(runFlags.captureDir)
	}

	store, err := storage.Open(runFlags.dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open store %s: %w", runFlags.dbPath, err)
	}
	markets, err := store.Markets(storage.MarketFilter{})
	if err != nil {
		return nil, nil, fmt.Errorf("list markets: %w", err)
	}
	return markets, store.LoadSnapshots, nil
}

// nativeMarketsAndLoader reads markets.json (an array of types.Market) and
// one <market_id>.ndjson capture file per market from dir, bypassing the
// SQLite store entirely.
func nativeMarketsAndLoader(dir string) ([]types.Market, replay.SnapshotLoader, error) {
	manifestPath := filepath.Join(dir, "markets.json")
	raw, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, nil, fmt.Errorf("read markets manifest %s: %w", manifestPath, err)
	}
	var markets []types.Market
	if err := json.Unmarshal(raw, &markets); err != nil {
		return nil, nil, fmt.Errorf("parse markets manifest %s: %w", manifestPath, err)
	}

	loader := func(marketID string) ([]types.BookSnapshot, error) {
		path := filepath.Join(dir, marketID+".ndjson")
		ticks, err := ingest.LoadNDJSON(path)
		if err != nil {
			return nil, err
		}
		return ingest.Normalize(ticks), nil
	}
	return markets, loader, nil
}
