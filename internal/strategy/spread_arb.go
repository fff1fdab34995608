package strategy

import "github.com/dapdevsoftware/phantomfill/pkg/types"

// NaiveSpreadArb is the baseline "dumb" strategy: bid both YES and NO at
// T+0 and never cancel, hoping both legs fill for a guaranteed profit. It
// exists to show how phantom fills inflate naive PnL — in practice both
// legs filling at once is rare.
type NaiveSpreadArb struct {
	bidPrice float64
	shares   float64
	placed   bool
}

func NewNaiveSpreadArb(bidPrice, shares float64) *NaiveSpreadArb {
	return &NaiveSpreadArb{bidPrice: bidPrice, shares: shares}
}

func (s *NaiveSpreadArb) Name() string { return "spread_arb" }

func (s *NaiveSpreadArb) Description() string {
	return "Naive spread arb: bid both sides at T+0, never cancel"
}

func (s *NaiveSpreadArb) OnMarketOpen(types.BookSnapshot) {}

func (s *NaiveSpreadArb) OnTick(types.BookSnapshot) []types.Action {
	if s.placed {
		return nil
	}
	s.placed = true
	return []types.Action{
		types.PlaceBid(types.SideYes, s.bidPrice, s.shares),
		types.PlaceBid(types.SideNo, s.bidPrice, s.shares),
	}
}

func (s *NaiveSpreadArb) Reset() { s.placed = false }
