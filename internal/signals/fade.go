// Package signals precomputes cross-window signals that a single market's
// snapshots can't derive on their own — currently the fade-momentum streak
// signal, which needs to see a whole chronological run of resolved markets
// in a category before it can tell the replay engine what the next window
// should bet on.
package signals

import (
	"sort"

	"github.com/dapdevsoftware/phantomfill/pkg/types"
)

type candleDir int

const (
	dirUp candleDir = iota
	dirDown
)

type historyEntry struct {
	ts  int64
	dir candleDir
}

// ComputeFadeSignals groups resolved markets by (category, duration) and
// walks each group in open-time order. Whenever a streak of
// minStreak..maxStreak consecutive same-direction outcomes is found, the
// NEXT window in the group is flagged to bet the opposite direction.
//
// A gap larger than duration+60s between consecutive windows resets the
// streak — this prevents a stale run from bleeding across a break in the
// data (the market pausing, a feed gap, etc).
func ComputeFadeSignals(markets []types.Market, minStreak, maxStreak int) map[string]types.Side {
	signals := make(map[string]types.Side)

	type groupKey struct {
		category string
		duration int64
	}
	groups := make(map[groupKey][]types.Market)
	for _, m := range markets {
		if m.Outcome == nil {
			continue
		}
		key := groupKey{category: m.Category, duration: m.DurationSecs}
		groups[key] = append(groups[key], m)
	}

	maxHistory := maxStreak + 5

	for _, group := range groups {
		sort.Slice(group, func(i, j int) bool { return group[i].OpenTS < group[j].OpenTS })

		var history []historyEntry

		for i, market := range group {
			var dir candleDir
			switch *market.Outcome {
			case types.OutcomeYes:
				dir = dirUp
			case types.OutcomeNo:
				dir = dirDown
			default:
				continue
			}

			history = append(history, historyEntry{ts: market.OpenTS, dir: dir})
			if len(history) > maxHistory {
				history = history[len(history)-maxHistory:]
			}

			streak := 0
			var prevTS *int64
			for j := len(history) - 1; j >= 0; j-- {
				entry := history[j]
				if entry.dir != dir {
					break
				}
				if prevTS != nil {
					gap := *prevTS - entry.ts
					if gap > market.DurationSecs+60 {
						break
					}
				}
				ts := entry.ts
				prevTS = &ts
				streak++
			}

			if streak >= minStreak && streak <= maxStreak && i+1 < len(group) {
				next := group[i+1]
				fadeSide := types.SideYes
				if dir == dirUp {
					fadeSide = types.SideNo
				}
				signals[next.ID] = fadeSide
			}
		}
	}

	return signals
}
