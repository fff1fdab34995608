package strategy

import (
	"testing"

	"github.com/dapdevsoftware/phantomfill/pkg/types"
)

func TestPostCancelPlacesBothSidesOnFirstTick(t *testing.T) {
	t.Parallel()

	s := NewPostBothCancelLoser(0.49, 100.0, 20.0, 90_000)
	snap := testSnap(0, types.Float64Ptr(50000.0), 500, 500)
	s.OnMarketOpen(snap)

	actions := s.OnTick(snap)
	if len(actions) != 2 || actions[0].Side != types.SideYes || actions[1].Side != types.SideNo {
		t.Fatalf("unexpected actions: %+v", actions)
	}
}

func TestPostCancelCancelsLoserOnStrongPositiveSignal(t *testing.T) {
	t.Parallel()

	s := NewPostBothCancelLoser(0.49, 100.0, 20.0, 90_000)
	open := testSnap(0, types.Float64Ptr(50000.0), 500, 500)
	s.OnMarketOpen(open)
	s.OnTick(open)

	actions := s.OnTick(testSnap(90_000, types.Float64Ptr(50200.0), 500, 500))
	if len(actions) != 1 || actions[0].Kind != types.ActionCancel || actions[0].Side != types.SideNo {
		t.Fatalf("expected cancel NO, got %+v", actions)
	}
}

func TestPostCancelCancelsLoserOnStrongNegativeSignal(t *testing.T) {
	t.Parallel()

	s := NewPostBothCancelLoser(0.49, 100.0, 20.0, 90_000)
	open := testSnap(0, types.Float64Ptr(50000.0), 500, 500)
	s.OnMarketOpen(open)
	s.OnTick(open)

	actions := s.OnTick(testSnap(90_000, types.Float64Ptr(49800.0), 500, 500))
	if len(actions) != 1 || actions[0].Side != types.SideYes {
		t.Fatalf("expected cancel YES, got %+v", actions)
	}
}

func TestPostCancelCancelsBothOnWeakSignal(t *testing.T) {
	t.Parallel()

	s := NewPostBothCancelLoser(0.49, 100.0, 20.0, 90_000)
	open := testSnap(0, types.Float64Ptr(50000.0), 500, 500)
	s.OnMarketOpen(open)
	s.OnTick(open)

	actions := s.OnTick(testSnap(90_000, types.Float64Ptr(50025.0), 500, 500))
	if len(actions) != 2 {
		t.Fatalf("expected two cancels, got %+v", actions)
	}
}

func TestPostCancelCancelsBothOnNoOracleData(t *testing.T) {
	t.Parallel()

	s := NewPostBothCancelLoser(0.49, 100.0, 20.0, 90_000)
	open := testSnap(0, nil, 500, 500)
	s.OnMarketOpen(open)
	s.OnTick(open)

	actions := s.OnTick(testSnap(90_000, types.Float64Ptr(50200.0), 500, 500))
	if len(actions) != 2 {
		t.Fatalf("expected two cancels, got %+v", actions)
	}
}
