package strategy

import "github.com/dapdevsoftware/phantomfill/pkg/types"

// Last15Seconds replicates the popular "buy the 98c favorite in the last
// 15 seconds" social-media strategy: wait until the final 15 s
// (triggerBeforeCloseMS) of the window and buy whichever side is bid at or
// above minBid. The window length is windowDurationMS, fixed at
// construction (900_000 ms through the registry); it is not read from the
// market being replayed, so for markets of another length the trigger is
// not their final 15 s. In
// reality that price level is usually empty or has deep queue ahead of any
// new order — this strategy exists to demonstrate the phantom fill gap, not
// as a serious entry.
type Last15Seconds struct {
	shares               float64
	minBid               float64
	triggerBeforeCloseMS int64
	windowDurationMS     int64
	acted                bool
}

func NewLast15Seconds(shares, minBid float64, windowDurationMS int64) *Last15Seconds {
	return &Last15Seconds{
		shares:               shares,
		minBid:               minBid,
		triggerBeforeCloseMS: 15_000,
		windowDurationMS:     windowDurationMS,
	}
}

func (s *Last15Seconds) Name() string { return "last_15s" }

func (s *Last15Seconds) Description() string {
	return "Last 15 Seconds: buy the side bid at 98c+ in the final 15 seconds"
}

func (s *Last15Seconds) OnMarketOpen(types.BookSnapshot) {}

func (s *Last15Seconds) OnTick(snap types.BookSnapshot) []types.Action {
	if s.acted {
		return nil
	}

	triggerOffset := s.windowDurationMS - s.triggerBeforeCloseMS
	if snap.OffsetMS < triggerOffset {
		return nil
	}

	var yesBid, noBid float64
	if snap.Yes.BestBid != nil {
		yesBid = *snap.Yes.BestBid
	}
	if snap.No.BestBid != nil {
		noBid = *snap.No.BestBid
	}

	var side types.Side
	var price float64
	switch {
	case yesBid >= s.minBid && yesBid >= noBid:
		side, price = types.SideYes, yesBid
	case noBid >= s.minBid:
		side, price = types.SideNo, noBid
	default:
		return nil
	}

	s.acted = true
	return []types.Action{types.PlaceBid(side, price, s.shares)}
}

func (s *Last15Seconds) Reset() { s.acted = false }
