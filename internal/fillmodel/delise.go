package fillmodel

import (
	"math"
	"math/rand"

	"github.com/dapdevsoftware/phantomfill/internal/book"
	"github.com/dapdevsoftware/phantomfill/pkg/types"
)

// DeLiseConfig configures the DeLise three-rule fill model:
//
//   - Rule 1: an adverse tick (best ask drops to or below our bid) sweeps
//     the queue; once accumulated sweep volume clears our queue position we
//     fill with probability AdverseFillProb.
//   - Rule 2: on a non-adverse tick, a small per-second probability Rf of
//     filling from ambient retail flow, compounding with elapsed time.
//   - Rule 3: prices move in discrete increments (the book itself already
//     reflects this; the model does not need to round).
//
// Adaptations for prediction markets: queue position is estimated from bid
// depth at the order price, taker volume from depth decreases between
// snapshots, and an adverse-selection filter downweights suspiciously
// well-timed winner fills placed after a signal became public.
type DeLiseConfig struct {
	// Rf is the non-adverse fill probability per second (default 0.02).
	Rf float64
	// AdverseFillProb is the fill probability on a sweep-clearing adverse
	// tick (default 0.99).
	AdverseFillProb float64
	// WinnerQueueThreshold is the max remaining queue_ahead for a
	// post-signal winner fill to still be considered realistic (default 50
	// shares).
	WinnerQueueThreshold float64
	// SignalOffsetMS is when, relative to market open, information driving
	// the strategy's bet becomes public (default 90_000 ms).
	SignalOffsetMS int64
	// PostSignalTakerMult multiplies Rf once the market passes
	// SignalOffsetMS, modeling increased taker flow once information is
	// public (default 1.8).
	PostSignalTakerMult float64
}

// DefaultDeLiseConfig returns the model's published default tuning.
func DefaultDeLiseConfig() DeLiseConfig {
	return DeLiseConfig{
		Rf:                   0.02,
		AdverseFillProb:      0.99,
		WinnerQueueThreshold: 50.0,
		SignalOffsetMS:       90_000,
		PostSignalTakerMult:  1.8,
	}
}

// uniformSampler is satisfied by *rand.Rand and by the fixed-value stub
// tests use to make fill decisions deterministic.
type uniformSampler interface {
	Float64() float64
}

// DeLiseFillModel implements FillModel using the DeLise three-rule model.
type DeLiseFillModel struct {
	config DeLiseConfig
	rng    uniformSampler
}

// NewDeLiseFillModel creates a model seeded for deterministic reproducible
// runs. Two models constructed with the same seed and fed the same tick
// sequence in the same order produce identical fill decisions.
func NewDeLiseFillModel(config DeLiseConfig, seed int64) *DeLiseFillModel {
	return &DeLiseFillModel{
		config: config,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// fixedSampler always returns the same value; used to make tests of the
// rule-1/rule-2 branches deterministic without faking the RNG interface.
type fixedSampler float64

func (f fixedSampler) Float64() float64 { return float64(f) }

// NewDeLiseFillModelDeterministic creates a model whose every uniform draw
// returns randVal, for testing the fill/no-fill branches directly.
func NewDeLiseFillModelDeterministic(config DeLiseConfig, randVal float64) *DeLiseFillModel {
	return &DeLiseFillModel{config: config, rng: fixedSampler(randVal)}
}

func (m *DeLiseFillModel) Name() string { return "delise-3rule" }

func (m *DeLiseFillModel) sampleUniform() float64 {
	return m.rng.Float64()
}

// rfFillProbability computes P(fill within dtMs) = 1 - (1 - rf)^dtSecs,
// scaling Rf up by PostSignalTakerMult once the signal is public.
func (m *DeLiseFillModel) rfFillProbability(dtMS int64, isPostSignal bool) float64 {
	dtSecs := float64(dtMS) / 1000.0
	if dtSecs <= 0 {
		return 0.0
	}
	rf := m.config.Rf
	if isPostSignal {
		rf *= m.config.PostSignalTakerMult
	}
	return 1.0 - math.Pow(1.0-rf, dtSecs)
}

func (m *DeLiseFillModel) CreateOrder(side types.Side, price, shares float64, snap types.BookSnapshot, offsetMS int64) types.SimOrder {
	queueAhead := book.QueuePosition(snap, side, price)
	return types.SimOrder{
		Side:          side,
		Price:         price,
		Shares:        shares,
		PlacedAtMS:    offsetMS,
		QueueAhead:    queueAhead,
		QueueConsumed: 0,
		Filled:        false,
		FilledAtMS:    nil,
	}
}

func (m *DeLiseFillModel) ProcessTick(snap types.BookSnapshot, orders []types.SimOrder, prevOffsetMS int64) []int {
	dtMS := snap.OffsetMS - prevOffsetMS
	var filledIdx []int

	isPostSignal := snap.OffsetMS >= m.config.SignalOffsetMS

	for i := range orders {
		order := &orders[i]
		if order.Filled {
			continue
		}

		if book.IsAdverseTick(snap, order.Side, order.Price) {
			state := snap.Side(order.Side)
			sweepVolume := 0.0
			if state.BestAskSize != nil {
				sweepVolume = *state.BestAskSize
			}

			order.QueueConsumed += sweepVolume

			if order.QueueConsumed >= order.QueueAhead {
				if m.sampleUniform() < m.config.AdverseFillProb {
					order.Filled = true
					ms := snap.OffsetMS
					order.FilledAtMS = &ms
					filledIdx = append(filledIdx, i)
				}
			}
			continue
		}

		fillProb := m.rfFillProbability(dtMS, isPostSignal)
		if m.sampleUniform() < fillProb {
			order.Filled = true
			ms := snap.OffsetMS
			order.FilledAtMS = &ms
			filledIdx = append(filledIdx, i)
		}
	}

	return filledIdx
}

func (m *DeLiseFillModel) AdverseSelectionFilter(order types.SimOrder, isWinner bool) bool {
	if order.FilledAtMS == nil {
		return false
	}
	fillOffset := *order.FilledAtMS

	if fillOffset < m.config.SignalOffsetMS {
		return true
	}

	if isWinner {
		remaining := order.QueueAhead - order.QueueConsumed
		if remaining < 0 {
			remaining = 0
		}
		return remaining < m.config.WinnerQueueThreshold
	}
	return true
}
