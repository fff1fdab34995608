// Package report summarizes a batch of WindowResult rows into aggregate
// backtest statistics and renders them as text or CSV.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dapdevsoftware/phantomfill/pkg/types"
)

// Report is the aggregate outcome of one backtest run: one strategy against
// one fill model across every window it was replayed over.
type Report struct {
	StrategyName  string
	FillModelName string

	TotalWindows int
	TradesTaken  int
	Fills        int
	Correct      int
	Skipped      int

	FillRate          float64
	NaiveWinRate      float64
	RealisticWinRate  float64

	NaiveTotalPnl     float64
	RealisticTotalPnl float64
	PhantomFillGap    float64
	AvgNaivePnl       float64
	AvgRealisticPnl   float64

	AvgQueueAhead  float64
	AvgFillTimeMS  float64
}

// FromResults builds a Report from the raw per-window results of a backtest.
//
// "Correct" in the aggregate report means filled AND correct — a strategy
// that only ever predicts the right side but never actually gets filled
// earns nothing real, so the headline correct count is the realistic one.
// NaiveWinRate separately reports the prediction-only rate.
func FromResults(results []types.WindowResult, strategyName, fillModelName string) Report {
	totalWindows := len(results)

	var traded []types.WindowResult
	for _, r := range results {
		if r.BidSide != nil {
			traded = append(traded, r)
		}
	}
	tradesTaken := len(traded)
	skipped := totalWindows - tradesTaken

	fills := 0
	naiveCorrect := 0
	realisticCorrect := 0
	for _, r := range traded {
		if r.Filled {
			fills++
		}
		if r.Correct {
			naiveCorrect++
		}
		if r.Filled && r.Correct {
			realisticCorrect++
		}
	}

	fillRate := ratio(fills, tradesTaken)
	naiveWinRate := ratio(naiveCorrect, tradesTaken)
	realisticWinRate := ratio(realisticCorrect, fills)

	var naiveTotalPnl, realisticTotalPnl, queueAheadSum float64
	var fillTimeSum float64
	fillTimeCount := 0
	for _, r := range traded {
		naiveTotalPnl += r.NaivePnl
		realisticTotalPnl += r.RealisticPnl
		queueAheadSum += r.QueueAheadAtPlace
		if r.FillTimeMS != nil {
			fillTimeSum += float64(*r.FillTimeMS)
			fillTimeCount++
		}
	}

	phantomFillGap := naiveTotalPnl - realisticTotalPnl
	avgNaivePnl := 0.0
	avgRealisticPnl := 0.0
	avgQueueAhead := 0.0
	if tradesTaken > 0 {
		avgNaivePnl = naiveTotalPnl / float64(tradesTaken)
		avgRealisticPnl = realisticTotalPnl / float64(tradesTaken)
		avgQueueAhead = queueAheadSum / float64(tradesTaken)
	}
	avgFillTimeMS := 0.0
	if fillTimeCount > 0 {
		avgFillTimeMS = fillTimeSum / float64(fillTimeCount)
	}

	return Report{
		StrategyName:      strategyName,
		FillModelName:     fillModelName,
		TotalWindows:      totalWindows,
		TradesTaken:       tradesTaken,
		Fills:             fills,
		Correct:           realisticCorrect,
		Skipped:           skipped,
		FillRate:          fillRate,
		NaiveWinRate:      naiveWinRate,
		RealisticWinRate:  realisticWinRate,
		NaiveTotalPnl:     naiveTotalPnl,
		RealisticTotalPnl: realisticTotalPnl,
		PhantomFillGap:    phantomFillGap,
		AvgNaivePnl:       avgNaivePnl,
		AvgRealisticPnl:   avgRealisticPnl,
		AvgQueueAhead:     avgQueueAhead,
		AvgFillTimeMS:     avgFillTimeMS,
	}
}

func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}

func pct(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d) * 100.0
}

// Print writes a formatted text report to stdout.
func (r Report) Print() { r.Fprint(os.Stdout) }

// Fprint writes the formatted report to an arbitrary writer, primarily so
// tests can capture it without touching stdout.
func (r Report) Fprint(w io.Writer) {
	bar := strings.Repeat("=", 55)

	fmt.Fprintln(w)
	fmt.Fprintln(w, bar)
	fmt.Fprintf(w, "  PhantomFill Report: %s + %s\n", r.StrategyName, r.FillModelName)
	fmt.Fprintln(w, bar)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Windows:      %d\n", r.TotalWindows)
	fmt.Fprintf(w, "  Trades taken: %d    (%.1f%%)\n", r.TradesTaken, pct(r.TradesTaken, r.TotalWindows))
	fmt.Fprintf(w, "  Fills:        %d    (%.1f%% fill rate)\n", r.Fills, r.FillRate*100.0)
	fmt.Fprintf(w, "  Correct:      %d    (%.1f%% WR)\n", r.Correct, r.RealisticWinRate*100.0)
	fmt.Fprintf(w, "  Skipped:      %d    (%.1f%%)\n", r.Skipped, pct(r.Skipped, r.TotalWindows))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "  --- PnL %s\n", strings.Repeat("-", 45))
	fmt.Fprintf(w, "  Naive paper:     %+.2f\n", r.NaiveTotalPnl)
	fmt.Fprintf(w, "  Realistic:       %+.2f\n", r.RealisticTotalPnl)
	fmt.Fprintf(w, "  Phantom gap:      %.2f  <- \"what you THOUGHT you'd make\"\n", r.PhantomFillGap)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Avg naive/trade:    %+.2f\n", r.AvgNaivePnl)
	fmt.Fprintf(w, "  Avg real/trade:     %+.2f\n", r.AvgRealisticPnl)

	fmt.Fprintln(w)
	fmt.Fprintf(w, "  --- Queue Stats %s\n", strings.Repeat("-", 37))
	fmt.Fprintf(w, "  Avg queue ahead:   %.1f shares\n", r.AvgQueueAhead)
	fmt.Fprintf(w, "  Avg fill time:    %.0f ms\n", r.AvgFillTimeMS)

	fmt.Fprintln(w)
	fmt.Fprintln(w, bar)
	fmt.Fprintln(w)
}

var csvHeader = []string{
	"market_id", "platform", "category", "open_ts", "close_ts", "outcome",
	"predicted", "signal_offset_ms", "bid_side", "bid_price", "shares",
	"filled", "queue_ahead_at_place", "fill_time_ms", "correct",
	"realistic_pnl", "naive_pnl", "ref_price_open", "ref_price_close",
}

// WriteCSV exports every window result to path, one row per window, in the
// same column order as csvHeader. Go's stdlib encoding/csv has no struct-tag
// marshalling of its own, so rows are built by hand rather than pulled in an
// extra dependency for a format this simple.
func WriteCSV(results []types.WindowResult, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create CSV at %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("write CSV header: %w", err)
	}

	for _, r := range results {
		if err := w.Write(resultToRow(r)); err != nil {
			return fmt.Errorf("write CSV row for %s: %w", r.MarketID, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush CSV: %w", err)
	}
	return nil
}

func resultToRow(r types.WindowResult) []string {
	return []string{
		r.MarketID,
		r.Platform,
		r.Category,
		strconv.FormatInt(r.OpenTS, 10),
		strconv.FormatInt(r.CloseTS, 10),
		r.Outcome,
		strPtrOr(r.Predicted, ""),
		int64PtrOr(r.SignalOffsetMS),
		strPtrOr(r.BidSide, ""),
		strconv.FormatFloat(r.BidPrice, 'f', -1, 64),
		strconv.FormatFloat(r.Shares, 'f', -1, 64),
		strconv.FormatBool(r.Filled),
		strconv.FormatFloat(r.QueueAheadAtPlace, 'f', -1, 64),
		int64PtrOr(r.FillTimeMS),
		strconv.FormatBool(r.Correct),
		strconv.FormatFloat(r.RealisticPnl, 'f', -1, 64),
		strconv.FormatFloat(r.NaivePnl, 'f', -1, 64),
		float64PtrOr(r.RefPriceOpen),
		float64PtrOr(r.RefPriceClose),
	}
}

func strPtrOr(p *string, def string) string {
	if p == nil {
		return def
	}
	return *p
}

func int64PtrOr(p *int64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatInt(*p, 10)
}

func float64PtrOr(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}
