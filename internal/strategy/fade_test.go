package strategy

import (
	"testing"

	"github.com/dapdevsoftware/phantomfill/pkg/types"
)

func TestFadeMomentumPlacesBidWhenSignalExists(t *testing.T) {
	t.Parallel()

	signals := map[string]types.Side{"test-market": types.SideNo}
	s := NewFadeMomentum(0.49, 25.0, signals)
	snap := makeBidSnap(0, 0.50, 0.50)
	snap.MarketID = "test-market"

	s.OnMarketOpen(snap)
	actions := s.OnTick(snap)
	if len(actions) != 1 {
		t.Fatalf("len(actions) = %d, want 1", len(actions))
	}
	if actions[0].Side != types.SideNo || actions[0].Price != 0.49 || actions[0].Shares != 25.0 {
		t.Errorf("unexpected action: %+v", actions[0])
	}
}

func TestFadeMomentumNoActionWithoutSignal(t *testing.T) {
	t.Parallel()

	s := NewFadeMomentum(0.49, 25.0, map[string]types.Side{})
	snap := makeBidSnap(0, 0.50, 0.50)
	snap.MarketID = "test-market"

	s.OnMarketOpen(snap)
	actions := s.OnTick(snap)
	if len(actions) != 0 {
		t.Errorf("expected no action, got %+v", actions)
	}
}

func TestFadeMomentumActsOnlyOnce(t *testing.T) {
	t.Parallel()

	signals := map[string]types.Side{"test-market": types.SideYes}
	s := NewFadeMomentum(0.49, 25.0, signals)
	snap := makeBidSnap(0, 0.50, 0.50)
	snap.MarketID = "test-market"

	s.OnMarketOpen(snap)
	a1 := s.OnTick(snap)
	if len(a1) != 1 {
		t.Fatalf("len(a1) = %d, want 1", len(a1))
	}
	a2 := s.OnTick(snap)
	if len(a2) != 0 {
		t.Errorf("expected no action on second tick, got %+v", a2)
	}
}

func TestFadeMomentumResetClearsState(t *testing.T) {
	t.Parallel()

	signals := map[string]types.Side{"test-market": types.SideYes}
	s := NewFadeMomentum(0.49, 25.0, signals)
	snap := makeBidSnap(0, 0.50, 0.50)
	snap.MarketID = "test-market"

	s.OnMarketOpen(snap)
	s.OnTick(snap)
	s.Reset()

	// after reset, on_market_open was never re-called, so no signal is held
	actions := s.OnTick(snap)
	if len(actions) != 0 {
		t.Errorf("expected no action after reset without re-opening, got %+v", actions)
	}
}

func TestFadeMomentumDifferentMarketNoSignal(t *testing.T) {
	t.Parallel()

	signals := map[string]types.Side{"other-market": types.SideYes}
	s := NewFadeMomentum(0.49, 25.0, signals)
	snap := makeBidSnap(0, 0.50, 0.50)
	snap.MarketID = "test-market"

	s.OnMarketOpen(snap)
	actions := s.OnTick(snap)
	if len(actions) != 0 {
		t.Errorf("expected no action for unsignaled market, got %+v", actions)
	}
}
