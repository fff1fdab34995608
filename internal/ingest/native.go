package ingest

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/dapdevsoftware/phantomfill/pkg/types"
)

// nativeRecord is one per-side capture row in the GoPolymarket / CLOB wire
// shape: bids sorted descending by price (best bid first), asks ascending
// (best ask first), prices and sizes kept as strings for decimal precision
// the way the upstream API returns them.
type nativeRecord struct {
	MarketID       string                 `json:"market_id"`
	OffsetMS       int64                  `json:"offset_ms"`
	TimestampMS    int64                  `json:"timestamp_ms"`
	Outcome        string                 `json:"outcome"` // "YES" or "NO"
	Bids           []types.WirePriceLevel `json:"bids"`
	Asks           []types.WirePriceLevel `json:"asks"`
	ReferencePrice *float64               `json:"reference_price,omitempty"`
	OraclePrice    *float64               `json:"oracle_price,omitempty"`
}

// LoadNative reads a capture file of native per-side records and groups
// them by (market_id, offset_ms) into combined RawTicks, the same way the
// upstream capture store combines UP/DOWN rows taken at the same tick.
func LoadNative(path string) ([]types.RawTick, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open native capture %s: %w", path, err)
	}
	defer f.Close()

	var records []nativeRecord
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec nativeRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("parse native line %d of %s: %w", lineNum, path, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read native capture %s: %w", path, err)
	}

	return groupNativeRecords(records), nil
}

// groupNativeRecords combines same-offset UP/DOWN rows into one RawTick
// per (market_id, offset_ms), preserving file order of first appearance.
func groupNativeRecords(records []nativeRecord) []types.RawTick {
	type key struct {
		marketID string
		offsetMS int64
	}
	order := make([]key, 0, len(records))
	byKey := make(map[key]*types.RawTick)

	for _, rec := range records {
		k := key{rec.MarketID, rec.OffsetMS}
		tick, ok := byKey[k]
		if !ok {
			tick = &types.RawTick{
				MarketID:    rec.MarketID,
				OffsetMS:    rec.OffsetMS,
				TimestampMS: rec.TimestampMS,
			}
			byKey[k] = tick
			order = append(order, k)
		}
		if tick.ReferencePrice == nil {
			tick.ReferencePrice = rec.ReferencePrice
		}
		if tick.OraclePrice == nil {
			tick.OraclePrice = rec.OraclePrice
		}
		switch rec.Outcome {
		case "YES":
			tick.YesBids = rec.Bids
			tick.YesAsks = rec.Asks
		case "NO":
			tick.NoBids = rec.Bids
			tick.NoAsks = rec.Asks
		}
	}

	ticks := make([]types.RawTick, 0, len(order))
	for _, k := range order {
		ticks = append(ticks, *byKey[k])
	}
	return ticks
}
