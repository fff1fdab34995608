// Package strategy implements the trading strategies the replay engine can
// run against historical order book data: the built-in strategies from
// §4.4/§4.5, plus a registry used by the CLI and the Monte Carlo runner to
// construct a fresh strategy instance per window.
package strategy

import "github.com/dapdevsoftware/phantomfill/pkg/types"

// Strategy observes order book snapshots for a single market window and
// emits actions. Instances are stateful across a window but are always
// reset (or reconstructed) between windows — on_market_open is called once
// on the first snapshot, on_tick on every snapshot, reset between windows.
type Strategy interface {
	Name() string
	Description() string

	// OnMarketOpen is called once with the first snapshot of a window.
	// The default no-op is fine for strategies that don't need open-of-
	// window context.
	OnMarketOpen(snap types.BookSnapshot)

	// OnTick is called on every snapshot and returns the actions (if any)
	// the strategy wants the replay engine to take.
	OnTick(snap types.BookSnapshot) []types.Action

	// Reset clears internal state so the same instance (or a fresh one)
	// can be replayed against the next window.
	Reset()
}

// Factory builds a fresh Strategy instance. The replay engine calls this
// once per window so strategies never leak state across markets.
type Factory func() Strategy

// Descriptor pairs a strategy's registry name with a human description,
// used by the `strategies` CLI command.
type Descriptor struct {
	Name        string
	Description string
}

// Params bundles the configuration shared by the built-in strategies.
type Params struct {
	BidPrice       float64
	Shares         float64
	MinBps         float64
	SignalOffsetMS int64
	MaxCombined    float64
	MinBid         float64
	WindowDurationMS int64
}

// registry associates a strategy name with a factory that only needs
// Params to construct (the built-ins; fade and scripted strategies are
// constructed separately since they need extra context).
var registry = map[string]func(Params) Strategy{
	"spread_arb": func(p Params) Strategy {
		return NewNaiveSpreadArb(p.BidPrice, p.Shares)
	},
	"momentum": func(p Params) Strategy {
		return NewMomentumSignal(p.BidPrice, p.Shares, p.MinBps, p.SignalOffsetMS)
	},
	"post_cancel": func(p Params) Strategy {
		return NewPostBothCancelLoser(p.BidPrice, p.Shares, p.MinBps, p.SignalOffsetMS)
	},
	"depth": func(p Params) Strategy {
		return NewDepthMomentum(p.BidPrice, p.Shares, p.MinBps, p.SignalOffsetMS)
	},
	"gabagool": func(p Params) Strategy {
		maxCombined := p.MaxCombined
		if maxCombined == 0 {
			maxCombined = 0.99
		}
		return NewGabagool(p.Shares, maxCombined)
	},
	"last_15s": func(p Params) Strategy {
		minBid := p.MinBid
		if minBid == 0 {
			minBid = 0.98
		}
		windowDuration := p.WindowDurationMS
		if windowDuration == 0 {
			windowDuration = 900_000
		}
		return NewLast15Seconds(p.Shares, minBid, windowDuration)
	},
}

// Create builds a strategy instance by registry name. Returns false if the
// name is unknown (fade and scripted strategies need extra wiring and are
// constructed by their own packages, not through this registry).
func Create(name string, p Params) (Strategy, bool) {
	factory, ok := registry[name]
	if !ok {
		return nil, false
	}
	return factory(p), true
}

// List returns all built-in strategy names and descriptions, constructing a
// throwaway instance of each to read its Description().
func List() []Descriptor {
	names := []string{"spread_arb", "momentum", "post_cancel", "depth", "gabagool", "last_15s"}
	descs := make([]Descriptor, 0, len(names))
	for _, n := range names {
		s, _ := Create(n, Params{BidPrice: 0.49, Shares: 1, MinBps: 1, SignalOffsetMS: 90_000})
		descs = append(descs, Descriptor{Name: s.Name(), Description: s.Description()})
	}
	return descs
}
