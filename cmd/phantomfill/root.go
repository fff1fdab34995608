package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "phantomfill",
	Short: "Replay prediction-market order book captures against a realistic fill model",
	Long: `phantomfill replays captured order book history against a strategy and
the DeLise three-rule fill model, surfacing the gap between the PnL a
naive backtest would report and the PnL a realistic fill model produces.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "configs/config.yaml", "path to config file")
}

func newLogger(level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(level)}
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
