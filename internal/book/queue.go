// Package book holds the small, dependency-free primitives the fill model
// and strategies both need to reason about order book state: queue
// position estimation, adverse-tick detection, and taker volume estimation
// between consecutive snapshots.
package book

import "github.com/dapdevsoftware/phantomfill/pkg/types"

// QueuePosition estimates the shares resting ahead of a new order placed at
// price on side, using the cumulative bid depth at that price in snap. If
// no depth data is available at that price, the order is assumed to be at
// the front of an empty queue (0 shares ahead).
func QueuePosition(snap types.BookSnapshot, side types.Side, price float64) float64 {
	return snap.Side(side).BidDepthAt(price)
}

// EstimateTakerVolume estimates shares taken from the queue between two
// consecutive snapshots at a given side/price. A decrease in cumulative bid
// depth means resting shares were swept by incoming sell flow; an increase
// means new orders joined the queue and is not taker volume.
func EstimateTakerVolume(prev, curr types.BookSnapshot, side types.Side, price float64) float64 {
	prevDepth := prev.Side(side).BidDepthAt(price)
	currDepth := curr.Side(side).BidDepthAt(price)

	decrease := prevDepth - currDepth
	if decrease > 0 {
		return decrease
	}
	return 0.0
}

// IsAdverseTick reports whether the best ask on side has dropped to or
// below ourBid — someone is aggressively selling through the book at or
// past our resting price.
func IsAdverseTick(snap types.BookSnapshot, side types.Side, ourBid float64) bool {
	state := snap.Side(side)
	if state.BestAsk == nil {
		return false
	}
	return *state.BestAsk <= ourBid
}
