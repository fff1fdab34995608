package strategy

import "github.com/dapdevsoftware/phantomfill/pkg/types"

// FadeMomentum bets against detected streaks of consecutive same-direction
// outcomes. It consumes a signals map precomputed once per backtest run by
// the signals package (the streak detection itself needs the whole
// chronological run of a category to compute; a single strategy instance
// only ever sees one window). On market open it looks up whether this
// window has a fade signal; if so it places a single bid on the fade side
// at the first tick.
//
// The signals map is shared read-only across every window's strategy
// instance, so a single map built once by the caller is passed by
// reference into every NewFadeMomentum call rather than rebuilt per window.
type FadeMomentum struct {
	bidPrice      float64
	shares        float64
	signals       map[string]types.Side
	currentSignal *types.Side
	acted         bool
}

func NewFadeMomentum(bidPrice, shares float64, signals map[string]types.Side) *FadeMomentum {
	return &FadeMomentum{bidPrice: bidPrice, shares: shares, signals: signals}
}

func (s *FadeMomentum) Name() string { return "fade" }

func (s *FadeMomentum) Description() string {
	return "Fade momentum: bet against streaks of consecutive same-direction candles"
}

func (s *FadeMomentum) OnMarketOpen(snap types.BookSnapshot) {
	if side, ok := s.signals[snap.MarketID]; ok {
		sideCopy := side
		s.currentSignal = &sideCopy
	} else {
		s.currentSignal = nil
	}
}

func (s *FadeMomentum) OnTick(types.BookSnapshot) []types.Action {
	if s.acted {
		return nil
	}
	s.acted = true

	if s.currentSignal == nil {
		return nil
	}
	return []types.Action{types.PlaceBid(*s.currentSignal, s.bidPrice, s.shares)}
}

func (s *FadeMomentum) Reset() {
	s.currentSignal = nil
	s.acted = false
}
