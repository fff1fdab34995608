package fillmodel

import (
	"github.com/dapdevsoftware/phantomfill/internal/book"
	"github.com/dapdevsoftware/phantomfill/pkg/types"
)

// AlwaysFillModel fills every resting order on the tick immediately after
// it is placed, regardless of book state. Useful as the "naive" baseline
// fill model and in tests that only care about PnL bookkeeping, not fill
// dynamics.
type AlwaysFillModel struct{}

func (AlwaysFillModel) Name() string { return "always-fill" }

func (AlwaysFillModel) CreateOrder(side types.Side, price, shares float64, snap types.BookSnapshot, offsetMS int64) types.SimOrder {
	return types.SimOrder{
		Side:       side,
		Price:      price,
		Shares:     shares,
		PlacedAtMS: offsetMS,
		QueueAhead: book.QueuePosition(snap, side, price),
	}
}

func (AlwaysFillModel) ProcessTick(snap types.BookSnapshot, orders []types.SimOrder, prevOffsetMS int64) []int {
	var filled []int
	for i := range orders {
		if orders[i].Filled {
			continue
		}
		if orders[i].PlacedAtMS >= snap.OffsetMS {
			continue
		}
		ms := snap.OffsetMS
		orders[i].Filled = true
		orders[i].FilledAtMS = &ms
		filled = append(filled, i)
	}
	return filled
}

func (AlwaysFillModel) AdverseSelectionFilter(order types.SimOrder, isWinner bool) bool {
	return order.FilledAtMS != nil
}

// NeverFillModel never fills a resting order. Useful for isolating the
// naive-PnL path in tests, since realistic PnL degenerates to zero.
type NeverFillModel struct{}

func (NeverFillModel) Name() string { return "never-fill" }

func (NeverFillModel) CreateOrder(side types.Side, price, shares float64, snap types.BookSnapshot, offsetMS int64) types.SimOrder {
	return types.SimOrder{
		Side:       side,
		Price:      price,
		Shares:     shares,
		PlacedAtMS: offsetMS,
		QueueAhead: book.QueuePosition(snap, side, price),
	}
}

func (NeverFillModel) ProcessTick(types.BookSnapshot, []types.SimOrder, int64) []int { return nil }

func (NeverFillModel) AdverseSelectionFilter(types.SimOrder, bool) bool { return false }
