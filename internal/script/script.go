// Package script loads a Strategy from a JavaScript file, giving backtest
// authors a way to iterate on a strategy without recompiling the binary.
//
// A script must define on_tick(snap) and on_reset() top-level functions; an
// optional on_market_open(snap) is called once per window if present. The
// runtime injects SHARES and BID_PRICE globals and bid()/cancel() helper
// functions that build the same action shape the built-in strategies emit.
package script

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dop251/goja"

	"github.com/dapdevsoftware/phantomfill/pkg/types"
)

// Host runs a single loaded script as a Strategy.
type Host struct {
	vm          *goja.Runtime
	onTick      goja.Callable
	onReset     goja.Callable
	onOpen      goja.Callable
	hasOnOpen   bool
	name        string
	scriptPath  string
	logger      *slog.Logger
	currentSnap types.BookSnapshot
}

// FromFile loads a strategy from a .js file on disk.
func FromFile(path string, shares, bidPrice float64, logger *slog.Logger) (*Host, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script %s: %w", path, err)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	h, err := FromSource(name, string(source), shares, bidPrice, logger)
	if err != nil {
		return nil, fmt.Errorf("load script %s: %w", path, err)
	}
	h.scriptPath = path
	return h, nil
}

// FromSource loads a strategy from script source, for tests and inline use.
func FromSource(name, source string, shares, bidPrice float64, logger *slog.Logger) (*Host, error) {
	if logger == nil {
		logger = slog.Default()
	}

	vm := goja.New()
	vm.SetFieldNameMapper(goja.TagFieldNameMapper("json", true))

	h := &Host{
		vm:         vm,
		name:       name,
		scriptPath: name,
		logger:     logger.With("script", name),
	}

	vm.Set("bid", jsBid)
	vm.Set("cancel", jsCancel)
	vm.Set("yes_depth_at", func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(depthAt(call, h.currentSnap.Yes))
	})
	vm.Set("no_depth_at", func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(depthAt(call, h.currentSnap.No))
	})
	vm.Set("SHARES", shares)
	vm.Set("BID_PRICE", bidPrice)

	program, err := goja.Compile(name, source, false)
	if err != nil {
		return nil, fmt.Errorf("compile error: %w", err)
	}

	if _, err := vm.RunProgram(program); err != nil {
		return nil, fmt.Errorf("initialization error: %w", err)
	}

	onTick, ok := goja.AssertFunction(vm.Get("on_tick"))
	if !ok {
		return nil, fmt.Errorf("script must define an on_tick(snap) function")
	}
	onReset, ok := goja.AssertFunction(vm.Get("on_reset"))
	if !ok {
		return nil, fmt.Errorf("script must define an on_reset() function")
	}
	onOpen, hasOnOpen := goja.AssertFunction(vm.Get("on_market_open"))

	h.onTick = onTick
	h.onReset = onReset
	h.onOpen = onOpen
	h.hasOnOpen = hasOnOpen
	return h, nil
}

func (h *Host) Name() string        { return h.name }
func (h *Host) Description() string { return h.scriptPath }

func (h *Host) OnMarketOpen(snap types.BookSnapshot) {
	h.currentSnap = snap
	if !h.hasOnOpen {
		return
	}
	if _, err := h.onOpen(goja.Undefined(), h.vm.ToValue(snapToObject(snap))); err != nil {
		h.logger.Warn("on_market_open error", "error", err)
	}
}

func (h *Host) OnTick(snap types.BookSnapshot) []types.Action {
	h.currentSnap = snap
	result, err := h.onTick(goja.Undefined(), h.vm.ToValue(snapToObject(snap)))
	if err != nil {
		h.logger.Warn("on_tick error", "error", err)
		return nil
	}
	return parseActions(result)
}

func (h *Host) Reset() {
	if _, err := h.onReset(goja.Undefined()); err != nil {
		h.logger.Warn("on_reset error", "error", err)
	}
}

func jsBid(side string, price, shares float64) map[string]interface{} {
	return map[string]interface{}{
		"type":   "bid",
		"side":   side,
		"price":  price,
		"shares": shares,
	}
}

func jsCancel(side string) map[string]interface{} {
	return map[string]interface{}{
		"type": "cancel",
		"side": side,
	}
}

func depthLevels(levels []types.PriceLevel) []interface{} {
	out := make([]interface{}, 0, len(levels))
	for _, l := range levels {
		out = append(out, map[string]interface{}{"price": l.Price, "size": l.CumulativeSize})
	}
	return out
}

func floatOr(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func snapToObject(snap types.BookSnapshot) map[string]interface{} {
	return map[string]interface{}{
		"yes_bid":              floatOr(snap.Yes.BestBid),
		"yes_ask":              floatOr(snap.Yes.BestAsk),
		"yes_bid_size":         floatOr(snap.Yes.BestBidSize),
		"yes_ask_size":         floatOr(snap.Yes.BestAskSize),
		"yes_total_bid_depth":  snap.Yes.TotalBidDepth,
		"yes_total_ask_depth":  snap.Yes.TotalAskDepth,
		"yes_depth":            depthLevels(snap.Yes.Depth),
		"no_bid":               floatOr(snap.No.BestBid),
		"no_ask":               floatOr(snap.No.BestAsk),
		"no_bid_size":          floatOr(snap.No.BestBidSize),
		"no_ask_size":          floatOr(snap.No.BestAskSize),
		"no_total_bid_depth":   snap.No.TotalBidDepth,
		"no_total_ask_depth":   snap.No.TotalAskDepth,
		"no_depth":             depthLevels(snap.No.Depth),
		"offset_ms":            snap.OffsetMS,
		"timestamp_ms":         snap.TimestampMS,
		"oracle_price":         floatOr(snap.OraclePrice),
	}
}

// depthAt calls straight into SideState.BidDepthAt against the side's state
// as of the current tick, so scripted strategies see exactly the same depth
// a built-in strategy would read from the same snapshot. Called as
// yes_depth_at(snap, price) / no_depth_at(snap, price) from script; the snap
// argument is accepted for call-site readability but the lookup always
// applies to the side state for the tick currently in progress.
func depthAt(call goja.FunctionCall, side types.SideState) float64 {
	if len(call.Arguments) < 2 {
		return 0
	}
	price := toFloat64(call.Argument(1).Export())
	return side.BidDepthAt(price)
}

// toFloat64 normalizes a value exported from goja, which represents whole
// numbers as int64 and fractional ones as float64.
func toFloat64(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	default:
		return 0
	}
}

func parseActions(result goja.Value) []types.Action {
	if result == nil || goja.IsUndefined(result) || goja.IsNull(result) {
		return nil
	}
	exported := result.Export()
	arr, ok := exported.([]interface{})
	if !ok {
		return nil
	}

	actions := make([]types.Action, 0, len(arr))
	for _, item := range arr {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		action, ok := parseOneAction(m)
		if ok {
			actions = append(actions, action)
		}
	}
	return actions
}

func parseOneAction(m map[string]interface{}) (types.Action, bool) {
	kind, _ := m["type"].(string)
	sideStr, _ := m["side"].(string)

	var side types.Side
	switch strings.ToLower(sideStr) {
	case "yes":
		side = types.SideYes
	case "no":
		side = types.SideNo
	default:
		return types.Action{}, false
	}

	switch kind {
	case "bid":
		price, okP := m["price"]
		shares, okS := m["shares"]
		if !okP || !okS {
			return types.Action{}, false
		}
		return types.PlaceBid(side, toFloat64(price), toFloat64(shares)), true
	case "cancel":
		return types.Cancel(side), true
	default:
		return types.Action{}, false
	}
}
