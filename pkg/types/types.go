// Package types defines shared data structures used across all packages.
//
// This package is the common vocabulary for the backtester — market
// metadata, order book snapshots, simulated orders, and the per-window
// results a replay produces. It has no dependencies on internal packages,
// so it can be imported by any layer.
package types

import (
	"fmt"
	"math"
)

// ————————————————————————————————————————————————————————————————————————
// Core enums
// ————————————————————————————————————————————————————————————————————————

// Platform identifies the prediction market venue a Market was captured from.
type Platform string

const (
	Polymarket Platform = "polymarket"
	Kalshi     Platform = "kalshi"
)

// Side is a binary outcome leg: YES or NO.
type Side string

const (
	SideYes Side = "YES"
	SideNo  Side = "NO"
)

// Opposite returns the other side of a binary market.
func (s Side) Opposite() Side {
	if s == SideYes {
		return SideNo
	}
	return SideYes
}

func (s Side) String() string { return string(s) }

// Outcome is the resolved result of a market. It shares YES/NO labels with
// Side but is kept distinct: a Side is something a strategy bids on, an
// Outcome is what actually happened.
type Outcome string

const (
	OutcomeYes Outcome = "YES"
	OutcomeNo  Outcome = "NO"
)

// MatchesSide reports whether a resolved outcome matches a bid side.
func (o Outcome) MatchesSide(side Side) bool {
	return (o == OutcomeYes && side == SideYes) || (o == OutcomeNo && side == SideNo)
}

func (o Outcome) String() string { return string(o) }

// ————————————————————————————————————————————————————————————————————————
// Market metadata
// ————————————————————————————————————————————————————————————————————————

// Market describes one tradeable window (a single binary contract with a
// fixed open/close time).
type Market struct {
	ID             string   `json:"id"`
	Platform       Platform `json:"platform"`
	Description    string   `json:"description"`
	Category       string   `json:"category"`
	OpenTS         int64    `json:"open_ts"`  // Unix seconds
	CloseTS        int64    `json:"close_ts"` // Unix seconds
	DurationSecs   int64    `json:"duration_secs"`
	Outcome        *Outcome `json:"outcome,omitempty"`
}

// Resolved reports whether this market has a known outcome.
func (m Market) Resolved() bool { return m.Outcome != nil }

// ————————————————————————————————————————————————————————————————————————
// Order book model
// ————————————————————————————————————————————————————————————————————————

// PriceLevel is the cumulative shares resting at or better than Price.
type PriceLevel struct {
	Price          float64 `json:"price"`
	CumulativeSize float64 `json:"cumulative_size"`
}

// SideState is the state of one side (YES or NO) of the book at an instant.
type SideState struct {
	BestBid      *float64     `json:"best_bid,omitempty"`
	BestBidSize  *float64     `json:"best_bid_size,omitempty"`
	BestAsk      *float64     `json:"best_ask,omitempty"`
	BestAskSize  *float64     `json:"best_ask_size,omitempty"`
	Depth        []PriceLevel `json:"depth,omitempty"`
	TotalBidDepth float64     `json:"total_bid_depth"`
	TotalAskDepth float64     `json:"total_ask_depth"`
}

// bidDepthEpsilon is the tolerance for treating a ladder rung's price as an
// exact match against a requested price.
const bidDepthEpsilon = 1e-9

// BidDepthAt returns the cumulative bid depth at an exact price match
// (within bidDepthEpsilon); on miss, the nearest rung with Price >= price
// (the rung with the smallest such price). Depth is assumed sorted
// ascending by price. Returns 0 when no rung covers the price, which is a
// deliberate lower bound — an uncovered price is treated as having no
// resting liquidity rather than extrapolated.
func (s SideState) BidDepthAt(price float64) float64 {
	for _, lvl := range s.Depth {
		if math.Abs(lvl.Price-price) < bidDepthEpsilon {
			return lvl.CumulativeSize
		}
	}

	var bestPrice, bestSize float64
	found := false
	for _, lvl := range s.Depth {
		if lvl.Price >= price && (!found || lvl.Price < bestPrice) {
			bestPrice = lvl.Price
			bestSize = lvl.CumulativeSize
			found = true
		}
	}
	if !found {
		return 0.0
	}
	return bestSize
}

// BookSnapshot is a combined view of both sides of a market at one instant.
type BookSnapshot struct {
	MarketID       string    `json:"market_id"`
	OffsetMS       int64     `json:"offset_ms"`    // ms since market open
	TimestampMS    int64     `json:"timestamp_ms"` // Unix ms
	Yes            SideState `json:"yes"`
	No             SideState `json:"no"`
	ReferencePrice *float64  `json:"reference_price,omitempty"`
	OraclePrice    *float64  `json:"oracle_price,omitempty"`
}

// Side returns the SideState for the given Side.
func (b BookSnapshot) Side(side Side) SideState {
	if side == SideYes {
		return b.Yes
	}
	return b.No
}

// ————————————————————————————————————————————————————————————————————————
// Strategy actions & simulated orders
// ————————————————————————————————————————————————————————————————————————

// ActionKind distinguishes the two things a Strategy can ask the replay
// engine to do.
type ActionKind string

const (
	ActionPlaceBid ActionKind = "place_bid"
	ActionCancel   ActionKind = "cancel"
)

// Action is one instruction emitted by Strategy.OnTick.
type Action struct {
	Kind   ActionKind
	Side   Side
	Price  float64
	Shares float64
}

// PlaceBid builds a place-bid action.
func PlaceBid(side Side, price, shares float64) Action {
	return Action{Kind: ActionPlaceBid, Side: side, Price: price, Shares: shares}
}

// Cancel builds a cancel action for the given side.
func Cancel(side Side) Action {
	return Action{Kind: ActionCancel, Side: side}
}

// SimOrder is a simulated resting order tracked through its lifecycle by a
// FillModel. Filled and FilledAtMS are deliberately two fields: Filled also
// becomes true on cancel (so the fill model stops processing the order),
// but FilledAtMS stays nil unless a real fill occurred. This lets downstream
// PnL code tell a cancel apart from a fill at zero extra bookkeeping cost.
type SimOrder struct {
	Side          Side
	Price         float64
	Shares        float64
	PlacedAtMS    int64
	QueueAhead    float64
	QueueConsumed float64
	Filled        bool
	FilledAtMS    *int64
}

// ————————————————————————————————————————————————————————————————————————
// Results
// ————————————————————————————————————————————————————————————————————————

// WindowResult is the complete outcome of simulating one strategy against
// one market window.
type WindowResult struct {
	MarketID     string  `json:"market_id" csv:"market_id"`
	Platform     string  `json:"platform" csv:"platform"`
	Category     string  `json:"category" csv:"category"`
	OpenTS       int64   `json:"open_ts" csv:"open_ts"`
	CloseTS      int64   `json:"close_ts" csv:"close_ts"`
	Outcome      string  `json:"outcome" csv:"outcome"`

	Predicted      *string `json:"predicted,omitempty" csv:"predicted"`
	SignalOffsetMS *int64  `json:"signal_offset_ms,omitempty" csv:"signal_offset_ms"`

	BidSide           *string `json:"bid_side,omitempty" csv:"bid_side"`
	BidPrice          float64 `json:"bid_price" csv:"bid_price"`
	Shares            float64 `json:"shares" csv:"shares"`
	Filled            bool    `json:"filled" csv:"filled"`
	QueueAheadAtPlace float64 `json:"queue_ahead_at_place" csv:"queue_ahead_at_place"`
	FillTimeMS        *int64  `json:"fill_time_ms,omitempty" csv:"fill_time_ms"`

	Correct      bool    `json:"correct" csv:"correct"`
	RealisticPnl float64 `json:"realistic_pnl" csv:"realistic_pnl"`
	NaivePnl     float64 `json:"naive_pnl" csv:"naive_pnl"`

	RefPriceOpen  *float64 `json:"ref_price_open,omitempty" csv:"ref_price_open"`
	RefPriceClose *float64 `json:"ref_price_close,omitempty" csv:"ref_price_close"`
}

// Traded reports whether the strategy placed any order during this window.
func (w WindowResult) Traded() bool { return w.BidSide != nil }

// Float64Ptr is a small helper for building Option-like fields from literals.
func Float64Ptr(v float64) *float64 { return &v }

// Int64Ptr is a small helper for building Option-like fields from literals.
func Int64Ptr(v int64) *int64 { return &v }

// StringPtr is a small helper for building Option-like fields from literals.
func StringPtr(v string) *string { return &v }

// MustOutcome panics if the market has no resolved outcome. For callers
// that have already filtered to resolved markets.
func (m Market) MustOutcome() Outcome {
	if m.Outcome == nil {
		panic(fmt.Sprintf("market %s has no outcome", m.ID))
	}
	return *m.Outcome
}
