package strategy

import "github.com/dapdevsoftware/phantomfill/pkg/types"

// MomentumSignal waits for oracle price movement past a signal offset,
// then bets on the predicted winner. Momentum is measured in basis points
// from the open oracle price; a single bid is placed once the signal fires
// and the move is strong enough.
type MomentumSignal struct {
	bidPrice       float64
	shares         float64
	minBps         float64
	signalOffsetMS int64
	openOracle     *float64
	acted          bool
}

func NewMomentumSignal(bidPrice, shares, minBps float64, signalOffsetMS int64) *MomentumSignal {
	return &MomentumSignal{bidPrice: bidPrice, shares: shares, minBps: minBps, signalOffsetMS: signalOffsetMS}
}

func (s *MomentumSignal) Name() string { return "momentum" }

func (s *MomentumSignal) Description() string {
	return "Momentum signal: wait for oracle price movement, bet on predicted winner"
}

func (s *MomentumSignal) OnMarketOpen(snap types.BookSnapshot) {
	s.openOracle = snap.OraclePrice
}

func (s *MomentumSignal) OnTick(snap types.BookSnapshot) []types.Action {
	if s.acted || snap.OffsetMS < s.signalOffsetMS {
		return nil
	}
	s.acted = true

	if s.openOracle == nil || snap.OraclePrice == nil {
		return nil
	}
	open, current := *s.openOracle, *snap.OraclePrice
	if open == 0 {
		return nil
	}

	momentumBps := (current - open) / open * 10_000.0
	if absF(momentumBps) < s.minBps {
		return nil
	}

	side := types.SideNo
	if momentumBps > 0 {
		side = types.SideYes
	}
	return []types.Action{types.PlaceBid(side, s.bidPrice, s.shares)}
}

func (s *MomentumSignal) Reset() {
	s.openOracle = nil
	s.acted = false
}

func absF(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
