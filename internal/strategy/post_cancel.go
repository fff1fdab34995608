package strategy

import "github.com/dapdevsoftware/phantomfill/pkg/types"

// PostBothCancelLoser bids both sides at T+0, then at the signal offset
// either cancels the predicted loser (keeping the winner bid resting) or,
// if the momentum signal is too weak to trust, cancels both to avoid blind
// exposure. This is the strategy expert analysis rates as the most viable
// of the simple built-ins.
type PostBothCancelLoser struct {
	bidPrice       float64
	shares         float64
	minBps         float64
	signalOffsetMS int64
	openOracle     *float64
	placed         bool
	signalActed    bool
}

func NewPostBothCancelLoser(bidPrice, shares, minBps float64, signalOffsetMS int64) *PostBothCancelLoser {
	return &PostBothCancelLoser{bidPrice: bidPrice, shares: shares, minBps: minBps, signalOffsetMS: signalOffsetMS}
}

func (s *PostBothCancelLoser) Name() string { return "post_cancel" }

func (s *PostBothCancelLoser) Description() string {
	return "Post both + cancel loser: bid both at T+0, cancel predicted loser at signal time"
}

func (s *PostBothCancelLoser) OnMarketOpen(snap types.BookSnapshot) {
	s.openOracle = snap.OraclePrice
}

func (s *PostBothCancelLoser) OnTick(snap types.BookSnapshot) []types.Action {
	if !s.placed {
		s.placed = true
		return []types.Action{
			types.PlaceBid(types.SideYes, s.bidPrice, s.shares),
			types.PlaceBid(types.SideNo, s.bidPrice, s.shares),
		}
	}

	if s.signalActed || snap.OffsetMS < s.signalOffsetMS {
		return nil
	}
	s.signalActed = true

	if s.openOracle == nil || snap.OraclePrice == nil || *s.openOracle == 0 {
		return []types.Action{types.Cancel(types.SideYes), types.Cancel(types.SideNo)}
	}
	open, current := *s.openOracle, *snap.OraclePrice

	momentumBps := (current - open) / open * 10_000.0
	if absF(momentumBps) < s.minBps {
		return []types.Action{types.Cancel(types.SideYes), types.Cancel(types.SideNo)}
	}

	loser := types.SideYes
	if momentumBps > 0 {
		loser = types.SideNo
	}
	return []types.Action{types.Cancel(loser)}
}

func (s *PostBothCancelLoser) Reset() {
	s.openOracle = nil
	s.placed = false
	s.signalActed = false
}
