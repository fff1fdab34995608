package strategy

import (
	"testing"

	"github.com/dapdevsoftware/phantomfill/pkg/types"
)

func testSnap(offsetMS int64, oraclePrice *float64, yesDepth, noDepth float64) types.BookSnapshot {
	mk := func(depth float64) types.SideState {
		bid, ask := 0.49, 0.51
		bidSize, askSize := depth, 100.0
		return types.SideState{
			BestBid: &bid, BestBidSize: &bidSize,
			BestAsk: &ask, BestAskSize: &askSize,
			Depth:         []types.PriceLevel{{Price: 0.49, CumulativeSize: depth}},
			TotalBidDepth: depth, TotalAskDepth: 100.0,
		}
	}
	return types.BookSnapshot{
		MarketID:    "test-market",
		OffsetMS:    offsetMS,
		TimestampMS: 1_700_000_000_000 + offsetMS,
		Yes:         mk(yesDepth),
		No:          mk(noDepth),
		OraclePrice: oraclePrice,
	}
}

func TestNaiveSpreadArbPlacesBothSidesOnFirstTick(t *testing.T) {
	t.Parallel()

	s := NewNaiveSpreadArb(0.49, 100.0)
	actions := s.OnTick(testSnap(0, types.Float64Ptr(50000.0), 500, 500))

	if len(actions) != 2 {
		t.Fatalf("len(actions) = %d, want 2", len(actions))
	}
	if actions[0].Side != types.SideYes || actions[1].Side != types.SideNo {
		t.Errorf("unexpected sides: %+v", actions)
	}
}

func TestNaiveSpreadArbDoesNotPlaceTwice(t *testing.T) {
	t.Parallel()

	s := NewNaiveSpreadArb(0.49, 100.0)
	s.OnTick(testSnap(0, types.Float64Ptr(50000.0), 500, 500))
	actions := s.OnTick(testSnap(1000, types.Float64Ptr(50000.0), 500, 500))

	if len(actions) != 0 {
		t.Errorf("expected no actions on second tick, got %+v", actions)
	}
}

func TestNaiveSpreadArbResetAllowsReplay(t *testing.T) {
	t.Parallel()

	s := NewNaiveSpreadArb(0.49, 100.0)
	s.OnTick(testSnap(0, types.Float64Ptr(50000.0), 500, 500))
	s.Reset()
	actions := s.OnTick(testSnap(0, types.Float64Ptr(50000.0), 500, 500))

	if len(actions) != 2 {
		t.Errorf("expected 2 actions after reset, got %d", len(actions))
	}
}
