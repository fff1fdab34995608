package strategy

import "github.com/dapdevsoftware/phantomfill/pkg/types"

// DepthMomentum extends MomentumSignal with an orderbook depth agreement
// check: the momentum-predicted side must also have more resting bid depth
// than the other side at the configured bid price, or the tick is skipped.
// Higher selectivity, theoretically better accuracy, fewer trades.
type DepthMomentum struct {
	bidPrice       float64
	shares         float64
	minBps         float64
	signalOffsetMS int64
	openOracle     *float64
	acted          bool
}

func NewDepthMomentum(bidPrice, shares, minBps float64, signalOffsetMS int64) *DepthMomentum {
	return &DepthMomentum{bidPrice: bidPrice, shares: shares, minBps: minBps, signalOffsetMS: signalOffsetMS}
}

func (s *DepthMomentum) Name() string { return "depth" }

func (s *DepthMomentum) Description() string {
	return "Depth + momentum: like momentum but also requires orderbook depth agreement"
}

func (s *DepthMomentum) OnMarketOpen(snap types.BookSnapshot) {
	s.openOracle = snap.OraclePrice
}

func (s *DepthMomentum) OnTick(snap types.BookSnapshot) []types.Action {
	if s.acted || snap.OffsetMS < s.signalOffsetMS {
		return nil
	}
	s.acted = true

	if s.openOracle == nil || snap.OraclePrice == nil || *s.openOracle == 0 {
		return nil
	}
	open, current := *s.openOracle, *snap.OraclePrice

	momentumBps := (current - open) / open * 10_000.0
	if absF(momentumBps) < s.minBps {
		return nil
	}

	momentumSide := types.SideNo
	if momentumBps > 0 {
		momentumSide = types.SideYes
	}

	yesDepth := snap.Yes.BidDepthAt(s.bidPrice)
	noDepth := snap.No.BidDepthAt(s.bidPrice)

	var depthSide types.Side
	switch {
	case yesDepth > noDepth:
		depthSide = types.SideYes
	case noDepth > yesDepth:
		depthSide = types.SideNo
	default:
		return nil
	}

	if momentumSide != depthSide {
		return nil
	}

	return []types.Action{types.PlaceBid(momentumSide, s.bidPrice, s.shares)}
}

func (s *DepthMomentum) Reset() {
	s.openOracle = nil
	s.acted = false
}
