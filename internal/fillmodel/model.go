// Package fillmodel simulates whether and when a resting limit order fills,
// given a sequence of order book snapshots. Strategies only decide where to
// bid; everything about whether that bid turns into a real fill lives here.
package fillmodel

import "github.com/dapdevsoftware/phantomfill/pkg/types"

// FillModel defines how limit orders are placed, how queue position
// evolves tick by tick, and whether a fill survives adverse-selection
// filtering once the market outcome is known.
type FillModel interface {
	Name() string

	// CreateOrder builds a new SimOrder based on current book state,
	// capturing queue position at placement time.
	CreateOrder(side types.Side, price, shares float64, snap types.BookSnapshot, offsetMS int64) types.SimOrder

	// ProcessTick advances queue consumption and checks for fills across
	// all resting orders. Returns the indices of orders newly filled on
	// this tick.
	ProcessTick(snap types.BookSnapshot, orders []types.SimOrder, prevOffsetMS int64) []int

	// AdverseSelectionFilter reports whether a fill is realistic given the
	// resolved outcome, applied after the window is complete.
	AdverseSelectionFilter(order types.SimOrder, isWinner bool) bool
}
