package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dapdevsoftware/phantomfill/internal/ingest"
	"github.com/dapdevsoftware/phantomfill/internal/storage"
	"github.com/dapdevsoftware/phantomfill/pkg/types"
)

var importFlags struct {
	source string
	dest   string
	asset  string
	native bool
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load a capture file (local path or URL) into the SQLite store",
	RunE:  runImport,
}

func init() {
	f := importCmd.Flags()
	f.StringVar(&importFlags.source, "source", "", "capture file path or URL (required)")
	f.StringVar(&importFlags.dest, "dest", "", "destination SQLite database path (required)")
	f.StringVar(&importFlags.asset, "asset", "", "only import ticks for this market ID; also used as the synthesized market's category")
	f.BoolVar(&importFlags.native, "native", false, "parse --source as the native wire format instead of NDJSON")

	_ = importCmd.MarkFlagRequired("source")
	_ = importCmd.MarkFlagRequired("dest")

	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	path, cleanup, err := resolveSourcePath(ctx, importFlags.source)
	if err != nil {
		return err
	}
	defer cleanup()

	var ticks []types.RawTick
	if importFlags.native {
		ticks, err = ingest.LoadNative(path)
	} else {
		ticks, err = ingest.LoadNDJSON(path)
	}
	if err != nil {
		return fmt.Errorf("parse capture %s: %w", importFlags.source, err)
	}

	if importFlags.asset != "" {
		filtered := ticks[:0]
		for _, t := range ticks {
			if t.MarketID == importFlags.asset {
				filtered = append(filtered, t)
			}
		}
		ticks = filtered
	}
	if len(ticks) == 0 {
		return fmt.Errorf("no ticks found in %s (check --asset filter)", importFlags.source)
	}

	byMarket := make(map[string][]types.RawTick)
	var order []string
	for _, t := range ticks {
		if _, ok := byMarket[t.MarketID]; !ok {
			order = append(order, t.MarketID)
		}
		byMarket[t.MarketID] = append(byMarket[t.MarketID], t)
	}
	sort.Strings(order)

	store, err := storage.Open(importFlags.dest)
	if err != nil {
		return fmt.Errorf("open destination store %s: %w", importFlags.dest, err)
	}
	defer store.Close()

	for _, marketID := range order {
		snapshots := ingest.Normalize(byMarket[marketID])
		if len(snapshots) == 0 {
			continue
		}

		market := synthesizeMarket(marketID, snapshots)
		if err := store.SaveMarket(market); err != nil {
			return fmt.Errorf("save market %s: %w", marketID, err)
		}
		if err := store.SaveSnapshots(marketID, snapshots); err != nil {
			return fmt.Errorf("save snapshots for %s: %w", marketID, err)
		}
	}

	fmt.Printf("imported %d market(s) from %s into %s\n", len(order), importFlags.source, importFlags.dest)
	return nil
}

// resolveSourcePath returns a local file path for source, fetching it first
// if it's a URL. The returned cleanup always runs, a no-op for local paths.
func resolveSourcePath(ctx context.Context, source string) (path string, cleanup func(), err error) {
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		return source, func() {}, nil
	}

	fetcher := ingest.NewFetcher()
	body, err := fetcher.FetchCapture(ctx, source)
	if err != nil {
		return "", nil, fmt.Errorf("fetch %s: %w", source, err)
	}
	defer body.Close()

	tmp, err := os.CreateTemp("", "phantomfill-capture-*.ndjson")
	if err != nil {
		return "", nil, fmt.Errorf("create temp capture file: %w", err)
	}
	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", nil, fmt.Errorf("write temp capture file: %w", err)
	}
	tmp.Close()

	return tmp.Name(), func() { os.Remove(tmp.Name()) }, nil
}

// synthesizeMarket builds minimal Market metadata from a snapshot sequence
// when the capture source carries no separate market manifest: open/close
// come from the first/last snapshot timestamps, and the market starts
// unresolved (Outcome is nil). Neither `import` nor `oracle backfill` sets
// Outcome; `oracle backfill` only stamps oracle prices onto the ticks.
func synthesizeMarket(marketID string, snapshots []types.BookSnapshot) types.Market {
	openMS := snapshots[0].TimestampMS
	closeMS := snapshots[len(snapshots)-1].TimestampMS
	return types.Market{
		ID:           marketID,
		Platform:     types.Polymarket,
		Category:     importFlags.asset,
		OpenTS:       openMS / 1000,
		CloseTS:      closeMS / 1000,
		DurationSecs: (closeMS - openMS) / 1000,
	}
}
