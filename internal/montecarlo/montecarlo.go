// Package montecarlo runs a backtest multiple times under independent RNG
// seeds and summarizes how much of the result is seed noise versus signal.
// A single DeLise fill model run tells you what happened under one random
// draw of ambient fill behavior; running it N times with different seeds
// shows the spread.
package montecarlo

import (
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/dapdevsoftware/phantomfill/internal/report"
)

// RunFunc executes one full backtest under the given RNG seed and returns
// its aggregate report. Callers close over the strategy factory, data
// source, and replay configuration; only the seed varies per call.
type RunFunc func(seed int64) report.Report

// Run executes runs independent backtests in parallel, one goroutine per
// run, each seeded deterministically from baseSeed+i (or a random seed per
// run if baseSeed is nil). Results are collected into a slice indexed by
// run number, not streamed, so ordering is deterministic regardless of
// goroutine completion order.
func Run(runs int, baseSeed *int64, fn RunFunc) []report.Report {
	reports := make([]report.Report, runs)
	var wg sync.WaitGroup
	wg.Add(runs)

	for i := 0; i < runs; i++ {
		runSeed := resolveSeed(baseSeed, i)
		go func(idx int, seed int64) {
			defer wg.Done()
			reports[idx] = fn(seed)
		}(i, runSeed)
	}

	wg.Wait()
	return reports
}

func resolveSeed(baseSeed *int64, i int) int64 {
	if baseSeed != nil {
		return *baseSeed + int64(i)
	}
	return rand.Int63()
}

// Summary aggregates a set of per-run reports into distributional
// statistics over realistic PnL, the metric actually exposed to risk: mean,
// standard deviation, min/max, and the 5th/50th/95th percentiles.
type Summary struct {
	Runs int
	Seed *int64

	MeanRealisticPnl   float64
	StdDevRealisticPnl float64
	MinRealisticPnl    float64
	MaxRealisticPnl    float64
	P5RealisticPnl     float64
	MedianRealisticPnl float64
	P95RealisticPnl    float64

	MeanNaivePnl       float64
	MeanPhantomGap     float64
	MeanFillRate       float64
	MeanRealisticWinRate float64
}

// FromReports builds a Summary from the reports of independent runs.
// Passing an empty slice returns a zero-value Summary with Runs=0.
func FromReports(reports []report.Report, seed *int64) Summary {
	n := len(reports)
	if n == 0 {
		return Summary{Runs: 0, Seed: seed}
	}

	realisticPnls := make([]float64, n)
	var sumRealistic, sumNaive, sumGap, sumFillRate, sumWinRate float64
	for i, r := range reports {
		realisticPnls[i] = r.RealisticTotalPnl
		sumRealistic += r.RealisticTotalPnl
		sumNaive += r.NaiveTotalPnl
		sumGap += r.PhantomFillGap
		sumFillRate += r.FillRate
		sumWinRate += r.RealisticWinRate
	}

	mean := sumRealistic / float64(n)

	var sumSqDiff float64
	for _, v := range realisticPnls {
		d := v - mean
		sumSqDiff += d * d
	}
	stdDev := 0.0
	if n > 1 {
		stdDev = math.Sqrt(sumSqDiff / float64(n))
	}

	sorted := append([]float64(nil), realisticPnls...)
	sort.Float64s(sorted)

	return Summary{
		Runs:                 n,
		Seed:                 seed,
		MeanRealisticPnl:     mean,
		StdDevRealisticPnl:   stdDev,
		MinRealisticPnl:      sorted[0],
		MaxRealisticPnl:      sorted[n-1],
		P5RealisticPnl:       percentile(sorted, 0.05),
		MedianRealisticPnl:   percentile(sorted, 0.50),
		P95RealisticPnl:      percentile(sorted, 0.95),
		MeanNaivePnl:         sumNaive / float64(n),
		MeanPhantomGap:       sumGap / float64(n),
		MeanFillRate:         sumFillRate / float64(n),
		MeanRealisticWinRate: sumWinRate / float64(n),
	}
}

// percentile does nearest-rank interpolation over an already-sorted slice.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	idx := p * float64(len(sorted)-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= len(sorted) {
		return sorted[lo]
	}
	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// Print writes a formatted Monte Carlo summary to stdout.
func (s Summary) Print() { s.Fprint(os.Stdout) }

func (s Summary) Fprint(w io.Writer) {
	bar := strings.Repeat("=", 55)

	fmt.Fprintln(w)
	fmt.Fprintln(w, bar)
	fmt.Fprintf(w, "  Monte Carlo Summary: %d runs\n", s.Runs)
	if s.Seed != nil {
		fmt.Fprintf(w, "  Base seed: %d\n", *s.Seed)
	}
	fmt.Fprintln(w, bar)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Realistic PnL   mean=%+.2f  stddev=%.2f\n", s.MeanRealisticPnl, s.StdDevRealisticPnl)
	fmt.Fprintf(w, "                  min=%+.2f  p5=%+.2f  median=%+.2f  p95=%+.2f  max=%+.2f\n",
		s.MinRealisticPnl, s.P5RealisticPnl, s.MedianRealisticPnl, s.P95RealisticPnl, s.MaxRealisticPnl)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Mean naive PnL:      %+.2f\n", s.MeanNaivePnl)
	fmt.Fprintf(w, "  Mean phantom gap:     %.2f\n", s.MeanPhantomGap)
	fmt.Fprintf(w, "  Mean fill rate:      %.1f%%\n", s.MeanFillRate*100.0)
	fmt.Fprintf(w, "  Mean realistic WR:   %.1f%%\n", s.MeanRealisticWinRate*100.0)
	fmt.Fprintln(w)
	fmt.Fprintln(w, bar)
	fmt.Fprintln(w)
}
