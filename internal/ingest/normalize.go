package ingest

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/dapdevsoftware/phantomfill/pkg/types"
)

// Normalize sorts RawTicks by offset and converts them into BookSnapshots.
//
// A side is considered missing from a tick when it carries neither bids
// nor asks — the upstream capture simply didn't emit a row for that side
// at that offset. A missing side carries forward the previous snapshot's
// state for that side verbatim; only the very first tick of a market may
// carry forward the zero SideState.
func Normalize(ticks []types.RawTick) []types.BookSnapshot {
	if len(ticks) == 0 {
		return nil
	}

	sorted := append([]types.RawTick(nil), ticks...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].OffsetMS < sorted[j].OffsetMS })

	snapshots := make([]types.BookSnapshot, 0, len(sorted))
	var prevYes, prevNo types.SideState

	for _, tick := range sorted {
		yes := prevYes
		if hasSide(tick.YesBids, tick.YesAsks) {
			yes = buildSideState(tick.YesBids, tick.YesAsks)
		}
		no := prevNo
		if hasSide(tick.NoBids, tick.NoAsks) {
			no = buildSideState(tick.NoBids, tick.NoAsks)
		}

		prevYes = yes
		prevNo = no

		snapshots = append(snapshots, types.BookSnapshot{
			MarketID:       tick.MarketID,
			OffsetMS:       tick.OffsetMS,
			TimestampMS:    tick.TimestampMS,
			Yes:            yes,
			No:             no,
			ReferencePrice: tick.ReferencePrice,
			OraclePrice:    tick.OraclePrice,
		})
	}

	return snapshots
}

func hasSide(bids, asks []types.WirePriceLevel) bool {
	return len(bids) > 0 || len(asks) > 0
}

// buildSideState converts a bid/ask ladder in wire (string-encoded) form
// into a SideState. Bids arrive sorted descending by price (best bid
// first), matching the upstream capture convention; asks ascending (best
// ask first). Depth is the cumulative bid ladder, sorted ascending by
// price per the SideState.Depth convention BidDepthAt relies on, with
// cumulative size still accumulating outward from the best bid.
func buildSideState(bids, asks []types.WirePriceLevel) types.SideState {
	state := types.SideState{}

	cum := 0.0
	depth := make([]types.PriceLevel, 0, len(bids))
	for _, lvl := range bids {
		price := parseOrZero(lvl.Price)
		size := parseOrZero(lvl.Size)
		cum += size
		depth = append(depth, types.PriceLevel{Price: price, CumulativeSize: cum})
	}
	for i, j := 0, len(depth)-1; i < j; i, j = i+1, j-1 {
		depth[i], depth[j] = depth[j], depth[i]
	}
	state.Depth = depth
	state.TotalBidDepth = cum
	if len(bids) > 0 {
		p := parseOrZero(bids[0].Price)
		s := parseOrZero(bids[0].Size)
		state.BestBid = &p
		state.BestBidSize = &s
	}

	totalAsk := 0.0
	for _, lvl := range asks {
		totalAsk += parseOrZero(lvl.Size)
	}
	state.TotalAskDepth = totalAsk
	if len(asks) > 0 {
		p := parseOrZero(asks[0].Price)
		s := parseOrZero(asks[0].Size)
		state.BestAsk = &p
		state.BestAskSize = &s
	}

	return state
}

// parseOrZero converts a wire-format decimal string (price or size) to a
// float64 via shopspring/decimal, avoiding the binary rounding artifacts
// strconv.ParseFloat can introduce on exact-looking decimal literals like
// "0.1" before the value enters the rest of the pipeline's float64 math.
// A malformed string defaults to 0 rather than aborting the whole import.
func parseOrZero(s string) float64 {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0.0
	}
	v, _ := d.Float64()
	return v
}
