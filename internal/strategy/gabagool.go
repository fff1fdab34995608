package strategy

import "github.com/dapdevsoftware/phantomfill/pkg/types"

// Gabagool is a combined-price arb strategy: bid on both YES and NO at
// their best_bid whenever their combined best_bid is under maxCombined. It
// places whichever side is cheaper first; the other leg goes out in the
// same call when its side has a bid, otherwise on a later tick where the
// combined best_bid is still under maxCombined. If both legs fill,
// the edge is 1.0 - yes_bid - no_bid per share regardless of outcome.
//
// Named after the Polymarket bot "gabagool22". Both legs use the same
// configured share count — the second leg is never resized relative to the
// first — and each leg is gated independently, so if the combined discount
// already holds on the very first qualifying tick, both legs fire together
// in the same call.
type Gabagool struct {
	shares      float64
	maxCombined float64
	yesPlaced   bool
	noPlaced    bool
}

func NewGabagool(shares, maxCombined float64) *Gabagool {
	return &Gabagool{shares: shares, maxCombined: maxCombined}
}

func (s *Gabagool) Name() string { return "gabagool" }

func (s *Gabagool) Description() string {
	return "Gabagool combined-price arb: buy YES+NO when combined bid < max_combined ($0.99 by default)"
}

func (s *Gabagool) OnMarketOpen(types.BookSnapshot) {}

func (s *Gabagool) OnTick(snap types.BookSnapshot) []types.Action {
	if s.yesPlaced && s.noPlaced {
		return nil
	}

	var yesBid, noBid float64
	if snap.Yes.BestBid != nil {
		yesBid = *snap.Yes.BestBid
	}
	if snap.No.BestBid != nil {
		noBid = *snap.No.BestBid
	}
	combined := yesBid + noBid

	if combined >= s.maxCombined {
		return nil
	}

	var actions []types.Action

	if !s.yesPlaced && !s.noPlaced {
		switch {
		case yesBid <= noBid && yesBid > 0:
			s.yesPlaced = true
			actions = append(actions, types.PlaceBid(types.SideYes, yesBid, s.shares))
		case noBid > 0:
			s.noPlaced = true
			actions = append(actions, types.PlaceBid(types.SideNo, noBid, s.shares))
		}
	}

	switch {
	case s.yesPlaced && !s.noPlaced && noBid > 0:
		s.noPlaced = true
		actions = append(actions, types.PlaceBid(types.SideNo, noBid, s.shares))
	case s.noPlaced && !s.yesPlaced && yesBid > 0:
		s.yesPlaced = true
		actions = append(actions, types.PlaceBid(types.SideYes, yesBid, s.shares))
	}

	return actions
}

func (s *Gabagool) Reset() {
	s.yesPlaced = false
	s.noPlaced = false
}
