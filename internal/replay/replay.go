// Package replay drives a strategy and a fill model across a market's
// snapshot history and turns the result into a single WindowResult.
package replay

import (
	"log/slog"

	"github.com/dapdevsoftware/phantomfill/internal/fillmodel"
	"github.com/dapdevsoftware/phantomfill/internal/strategy"
	"github.com/dapdevsoftware/phantomfill/pkg/types"
)

// Config holds the parameters recorded onto every WindowResult — the bid
// price and share count a strategy was configured with for this run. The
// strategy itself decides where and whether to actually bid; these values
// are only used for reporting.
type Config struct {
	BidPrice float64
	Shares   float64
}

// DefaultConfig matches the reference bid of 49c for 10 shares used
// throughout the built-in strategies' defaults.
func DefaultConfig() Config {
	return Config{BidPrice: 0.49, Shares: 10.0}
}

// Engine runs strategies against historical snapshots using a fill model
// to simulate realistic order execution.
type Engine struct {
	fillModel fillmodel.FillModel
	config    Config
	logger    *slog.Logger
}

func New(fillModel fillmodel.FillModel, config Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{fillModel: fillModel, config: config, logger: logger.With("component", "replay")}
}

// SnapshotLoader fetches the snapshot history for a market ID.
type SnapshotLoader func(marketID string) ([]types.BookSnapshot, error)

// StrategyFactory builds a fresh strategy instance for one window.
type StrategyFactory func() strategy.Strategy

// RunWindow simulates one strategy against one market's full snapshot
// history and returns the resulting WindowResult, or nil if the market has
// no resolved outcome or no snapshots to replay.
//
// The fill model processes each tick BEFORE the strategy's actions for that
// tick are applied: this lets an adverse fill land on the same tick as a
// cancel rather than being pre-empted by it, and guarantees an order placed
// on tick N is never eligible to fill until tick N+1 (it does not exist yet
// when process_tick runs for tick N).
func (e *Engine) RunWindow(market types.Market, snapshots []types.BookSnapshot, strat strategy.Strategy) *types.WindowResult {
	if len(snapshots) == 0 {
		return nil
	}
	if market.Outcome == nil {
		return nil
	}
	outcome := *market.Outcome

	strat.Reset()
	strat.OnMarketOpen(snapshots[0])

	var orders []types.SimOrder
	var cancelled []bool

	prevOffsetMS := snapshots[0].OffsetMS
	var signalOffsetMS *int64

	for _, snap := range snapshots {
		e.fillModel.ProcessTick(snap, orders, prevOffsetMS)
		prevOffsetMS = snap.OffsetMS

		actions := strat.OnTick(snap)

		for _, action := range actions {
			switch action.Kind {
			case types.ActionPlaceBid:
				if sideHasActiveOrder(orders, cancelled, action.Side) {
					continue
				}
				if sideWasCancelled(orders, cancelled, action.Side) {
					continue
				}

				order := e.fillModel.CreateOrder(action.Side, action.Price, action.Shares, snap, snap.OffsetMS)
				if signalOffsetMS == nil {
					ms := snap.OffsetMS
					signalOffsetMS = &ms
				}
				orders = append(orders, order)
				cancelled = append(cancelled, false)

			case types.ActionCancel:
				for idx := range orders {
					if orders[idx].Side == action.Side && !orders[idx].Filled && !cancelled[idx] {
						orders[idx].Filled = true
						cancelled[idx] = true
						break
					}
				}
			}
		}
	}

	naivePnl := 0.0
	for idx, order := range orders {
		if cancelled[idx] {
			continue
		}
		if outcome.MatchesSide(order.Side) {
			naivePnl += order.Shares * (1.0 - order.Price)
		} else {
			naivePnl -= order.Shares * order.Price
		}
	}

	realisticPnl := 0.0
	for idx, order := range orders {
		if cancelled[idx] {
			continue
		}
		if !order.Filled || order.FilledAtMS == nil {
			continue
		}
		isWinner := outcome.MatchesSide(order.Side)
		if !e.fillModel.AdverseSelectionFilter(order, isWinner) {
			continue
		}
		if isWinner {
			realisticPnl += order.Shares * (1.0 - order.Price)
		} else {
			realisticPnl -= order.Shares * order.Price
		}
	}

	var predicted *types.Side
	for idx, order := range orders {
		if !cancelled[idx] {
			side := order.Side
			predicted = &side
			break
		}
	}

	correct := false
	for idx, order := range orders {
		if !cancelled[idx] && outcome.MatchesSide(order.Side) {
			correct = true
			break
		}
	}

	var filled bool
	var queueAheadAtPlace float64
	var fillTimeMS *int64
	primaryFound := false
	for idx, order := range orders {
		if !cancelled[idx] && order.Filled && order.FilledAtMS != nil {
			filled = true
			queueAheadAtPlace = order.QueueAhead
			fillTimeMS = order.FilledAtMS
			primaryFound = true
			break
		}
	}
	if !primaryFound {
		for idx, order := range orders {
			if !cancelled[idx] {
				queueAheadAtPlace = order.QueueAhead
				break
			}
		}
	}

	var refPriceOpen, refPriceClose *float64
	if len(snapshots) > 0 {
		refPriceOpen = snapshots[0].ReferencePrice
		refPriceClose = snapshots[len(snapshots)-1].ReferencePrice
	}

	var predictedStr, bidSideStr *string
	if predicted != nil {
		s := predicted.String()
		predictedStr = &s
		bidSideStr = &s
	}

	result := &types.WindowResult{
		MarketID:          market.ID,
		Platform:          string(market.Platform),
		Category:          market.Category,
		OpenTS:            market.OpenTS,
		CloseTS:            market.CloseTS,
		Outcome:           outcome.String(),
		Predicted:         predictedStr,
		SignalOffsetMS:    signalOffsetMS,
		BidSide:           bidSideStr,
		BidPrice:          e.config.BidPrice,
		Shares:            e.config.Shares,
		Filled:            filled,
		QueueAheadAtPlace: queueAheadAtPlace,
		FillTimeMS:        fillTimeMS,
		Correct:           correct,
		RealisticPnl:      realisticPnl,
		NaivePnl:          naivePnl,
		RefPriceOpen:      refPriceOpen,
		RefPriceClose:     refPriceClose,
	}

	e.logger.Debug("window complete",
		"market_id", market.ID,
		"outcome", outcome.String(),
		"correct", correct,
		"naive_pnl", naivePnl,
		"realistic_pnl", realisticPnl,
		"filled", filled,
	)

	return result
}

func sideHasActiveOrder(orders []types.SimOrder, cancelled []bool, side types.Side) bool {
	for idx, order := range orders {
		if order.Side == side && !cancelled[idx] {
			return true
		}
	}
	return false
}

func sideWasCancelled(orders []types.SimOrder, cancelled []bool, side types.Side) bool {
	for idx, order := range orders {
		if order.Side == side && cancelled[idx] {
			return true
		}
	}
	return false
}

// RunAll runs every market with a resolved outcome through RunWindow,
// constructing a fresh strategy instance for each window so state never
// leaks across markets.
func (e *Engine) RunAll(markets []types.Market, load SnapshotLoader, newStrategy StrategyFactory) []types.WindowResult {
	results := make([]types.WindowResult, 0, len(markets))
	total := len(markets)

	for i, market := range markets {
		if (i+1)%100 == 0 || i+1 == total {
			e.logger.Info("processing market", "index", i+1, "total", total, "market_id", market.ID)
		}

		snapshots, err := load(market.ID)
		if err != nil {
			e.logger.Debug("failed to load snapshots, skipping", "market_id", market.ID, "error", err)
			continue
		}

		strat := newStrategy()
		if result := e.RunWindow(market, snapshots, strat); result != nil {
			results = append(results, *result)
		}
	}

	e.logger.Info("replay complete", "results", len(results), "markets", total)
	return results
}
