package fillmodel

import (
	"testing"

	"github.com/dapdevsoftware/phantomfill/pkg/types"
)

func f64p(v float64) *float64 { return &v }
func i64p(v int64) *int64     { return &v }

func makeSide(bestBid, bestAsk, bestAskSize *float64, depth []types.PriceLevel) types.SideState {
	var bestBidSize *float64
	if bestBid != nil {
		bestBidSize = f64p(100.0)
	}
	return types.SideState{
		BestBid:     bestBid,
		BestBidSize: bestBidSize,
		BestAsk:     bestAsk,
		BestAskSize: bestAskSize,
		Depth:       depth,
	}
}

func snapWith(offsetMS int64, yes, no types.SideState) types.BookSnapshot {
	return types.BookSnapshot{
		MarketID:    "test",
		OffsetMS:    offsetMS,
		TimestampMS: offsetMS,
		Yes:         yes,
		No:          no,
	}
}

func defaultSnap(offsetMS int64) types.BookSnapshot {
	side := makeSide(f64p(0.49), f64p(0.51), f64p(100.0), []types.PriceLevel{{Price: 0.49, CumulativeSize: 200.0}})
	return snapWith(offsetMS, side, side)
}

func TestCreateOrderCapturesQueuePosition(t *testing.T) {
	t.Parallel()

	model := NewDeLiseFillModel(DefaultDeLiseConfig(), 1)
	snap := defaultSnap(5000)
	order := model.CreateOrder(types.SideYes, 0.49, 10.0, snap, 5000)

	if order.Side != types.SideYes || order.Price != 0.49 || order.Shares != 10.0 {
		t.Fatalf("unexpected order: %+v", order)
	}
	if order.PlacedAtMS != 5000 || order.QueueAhead != 200.0 || order.Filled {
		t.Fatalf("unexpected order: %+v", order)
	}
}

func TestCreateOrderEmptyBook(t *testing.T) {
	t.Parallel()

	model := NewDeLiseFillModel(DefaultDeLiseConfig(), 1)
	snap := snapWith(1000, types.SideState{}, types.SideState{})
	order := model.CreateOrder(types.SideYes, 0.49, 10.0, snap, 1000)

	if order.QueueAhead != 0.0 {
		t.Errorf("QueueAhead = %v, want 0", order.QueueAhead)
	}
}

func TestAdverseTickFill(t *testing.T) {
	t.Parallel()

	model := NewDeLiseFillModelDeterministic(DefaultDeLiseConfig(), 0.0)

	yes := makeSide(f64p(0.49), f64p(0.49), f64p(300.0), []types.PriceLevel{{Price: 0.49, CumulativeSize: 200.0}})
	snap := snapWith(2000, yes, types.SideState{})

	orders := []types.SimOrder{{
		Side: types.SideYes, Price: 0.49, Shares: 10.0,
		PlacedAtMS: 1000, QueueAhead: 200.0,
	}}

	filled := model.ProcessTick(snap, orders, 1000)
	if len(filled) != 1 || filled[0] != 0 {
		t.Fatalf("filled = %v, want [0]", filled)
	}
	if !orders[0].Filled || orders[0].FilledAtMS == nil || *orders[0].FilledAtMS != 2000 {
		t.Fatalf("unexpected order state: %+v", orders[0])
	}
}

func TestAdverseTickInsufficientSweep(t *testing.T) {
	t.Parallel()

	model := NewDeLiseFillModelDeterministic(DefaultDeLiseConfig(), 0.0)

	yes := makeSide(f64p(0.49), f64p(0.49), f64p(50.0), []types.PriceLevel{{Price: 0.49, CumulativeSize: 200.0}})
	snap := snapWith(2000, yes, types.SideState{})

	orders := []types.SimOrder{{
		Side: types.SideYes, Price: 0.49, Shares: 10.0,
		PlacedAtMS: 1000, QueueAhead: 200.0,
	}}

	filled := model.ProcessTick(snap, orders, 1000)
	if len(filled) != 0 {
		t.Fatalf("expected no fills, got %v", filled)
	}
	if orders[0].Filled {
		t.Error("order should not be filled")
	}
	if diff := orders[0].QueueConsumed - 50.0; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("QueueConsumed = %v, want 50.0", orders[0].QueueConsumed)
	}
}

func TestRfFillNonAdverse(t *testing.T) {
	t.Parallel()

	model := NewDeLiseFillModelDeterministic(DefaultDeLiseConfig(), 0.0)
	snap := defaultSnap(2000)

	orders := []types.SimOrder{{
		Side: types.SideYes, Price: 0.49, Shares: 10.0,
		PlacedAtMS: 1000, QueueAhead: 200.0,
	}}

	filled := model.ProcessTick(snap, orders, 1000)
	if len(filled) != 1 || !orders[0].Filled {
		t.Fatalf("expected fill via Rf path, got filled=%v order=%+v", filled, orders[0])
	}
}

func TestRfNoFillHighRand(t *testing.T) {
	t.Parallel()

	model := NewDeLiseFillModelDeterministic(DefaultDeLiseConfig(), 0.999)
	snap := defaultSnap(2000)

	orders := []types.SimOrder{{
		Side: types.SideYes, Price: 0.49, Shares: 10.0,
		PlacedAtMS: 1000, QueueAhead: 200.0,
	}}

	filled := model.ProcessTick(snap, orders, 1000)
	if len(filled) != 0 || orders[0].Filled {
		t.Fatalf("expected no fill, got filled=%v order=%+v", filled, orders[0])
	}
}

func TestAlreadyFilledOrderSkipped(t *testing.T) {
	t.Parallel()

	model := NewDeLiseFillModelDeterministic(DefaultDeLiseConfig(), 0.0)
	snap := defaultSnap(3000)

	orders := []types.SimOrder{{
		Side: types.SideYes, Price: 0.49, Shares: 10.0,
		PlacedAtMS: 1000, QueueAhead: 200.0,
		Filled: true, FilledAtMS: i64p(2000),
	}}

	filled := model.ProcessTick(snap, orders, 2000)
	if len(filled) != 0 {
		t.Fatalf("expected no fills for already-filled order, got %v", filled)
	}
}

func TestCumulativeSweepAcrossTicks(t *testing.T) {
	t.Parallel()

	model := NewDeLiseFillModelDeterministic(DefaultDeLiseConfig(), 0.0)

	yes1 := makeSide(f64p(0.49), f64p(0.49), f64p(120.0), []types.PriceLevel{{Price: 0.49, CumulativeSize: 200.0}})
	snap1 := snapWith(2000, yes1, types.SideState{})

	orders := []types.SimOrder{{
		Side: types.SideYes, Price: 0.49, Shares: 10.0,
		PlacedAtMS: 1000, QueueAhead: 200.0,
	}}

	filled := model.ProcessTick(snap1, orders, 1000)
	if len(filled) != 0 {
		t.Fatalf("expected no fill on first tick, got %v", filled)
	}
	if diff := orders[0].QueueConsumed - 120.0; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("QueueConsumed = %v, want 120.0", orders[0].QueueConsumed)
	}

	yes2 := makeSide(f64p(0.49), f64p(0.49), f64p(120.0), []types.PriceLevel{{Price: 0.49, CumulativeSize: 80.0}})
	snap2 := snapWith(3000, yes2, types.SideState{})

	filled = model.ProcessTick(snap2, orders, 2000)
	if len(filled) != 1 || filled[0] != 0 {
		t.Fatalf("expected fill on second tick, got %v", filled)
	}
	if !orders[0].Filled || *orders[0].FilledAtMS != 3000 {
		t.Errorf("unexpected order state: %+v", orders[0])
	}
}

func TestZeroDepthImmediateFillOnAdverse(t *testing.T) {
	t.Parallel()

	model := NewDeLiseFillModelDeterministic(DefaultDeLiseConfig(), 0.0)

	yes := makeSide(f64p(0.49), f64p(0.49), f64p(10.0), nil)
	snap := snapWith(1000, yes, types.SideState{})

	orders := []types.SimOrder{{
		Side: types.SideYes, Price: 0.49, Shares: 10.0,
		PlacedAtMS: 500, QueueAhead: 0.0,
	}}

	filled := model.ProcessTick(snap, orders, 500)
	if len(filled) != 1 || !orders[0].Filled {
		t.Fatalf("expected immediate fill, got filled=%v order=%+v", filled, orders[0])
	}
}

func TestAdverseSelectionPreSignal(t *testing.T) {
	t.Parallel()

	model := NewDeLiseFillModel(DefaultDeLiseConfig(), 1)
	order := types.SimOrder{
		Side: types.SideYes, Price: 0.49, Shares: 10.0,
		PlacedAtMS: 5000, QueueAhead: 200.0, FilledAtMS: i64p(80_000), Filled: true,
	}

	if !model.AdverseSelectionFilter(order, true) {
		t.Error("pre-signal winner should survive")
	}
	if !model.AdverseSelectionFilter(order, false) {
		t.Error("pre-signal loser should survive")
	}
}

func TestAdverseSelectionPostSignalWinner(t *testing.T) {
	t.Parallel()

	model := NewDeLiseFillModel(DefaultDeLiseConfig(), 1)

	early := types.SimOrder{QueueAhead: 30.0, QueueConsumed: 0.0, FilledAtMS: i64p(100_000)}
	if !model.AdverseSelectionFilter(early, true) {
		t.Error("early queue post-signal winner should survive")
	}

	late := types.SimOrder{QueueAhead: 200.0, QueueConsumed: 0.0, FilledAtMS: i64p(100_000)}
	if model.AdverseSelectionFilter(late, true) {
		t.Error("late queue post-signal winner should be blocked")
	}
}

func TestAdverseSelectionPostSignalLoserAlwaysPasses(t *testing.T) {
	t.Parallel()

	model := NewDeLiseFillModel(DefaultDeLiseConfig(), 1)
	order := types.SimOrder{QueueAhead: 500.0, FilledAtMS: i64p(100_000)}
	if !model.AdverseSelectionFilter(order, false) {
		t.Error("loser fills always survive")
	}
}

func TestAdverseSelectionUnfilledOrder(t *testing.T) {
	t.Parallel()

	model := NewDeLiseFillModel(DefaultDeLiseConfig(), 1)
	order := types.SimOrder{QueueAhead: 200.0, Filled: false, FilledAtMS: nil}
	if model.AdverseSelectionFilter(order, true) {
		t.Error("unfilled orders should not survive the filter")
	}
}

func TestRfProbabilityIncreasesPostSignal(t *testing.T) {
	t.Parallel()

	model := NewDeLiseFillModel(DefaultDeLiseConfig(), 1)
	pre := model.rfFillProbability(1000, false)
	post := model.rfFillProbability(1000, true)
	if post <= pre {
		t.Errorf("post-signal probability %v should exceed pre-signal %v", post, pre)
	}
}

func TestRfProbabilityZeroDt(t *testing.T) {
	t.Parallel()

	model := NewDeLiseFillModel(DefaultDeLiseConfig(), 1)
	if got := model.rfFillProbability(0, false); got != 0.0 {
		t.Errorf("rfFillProbability(0) = %v, want 0", got)
	}
	if got := model.rfFillProbability(-100, false); got != 0.0 {
		t.Errorf("rfFillProbability(-100) = %v, want 0", got)
	}
}
