// Package storage persists markets and book snapshots to SQLite via GORM,
// the on-disk mirror import writes to and replay reads from.
package storage

import "github.com/dapdevsoftware/phantomfill/pkg/types"

// marketRow mirrors pkg/types.Market, one row per tradeable window.
type marketRow struct {
	ID           string `gorm:"primaryKey"`
	Platform     string `gorm:"index"`
	Description  string
	Category     string `gorm:"index"`
	OpenTS       int64  `gorm:"index"`
	CloseTS      int64
	DurationSecs int64
	Outcome      string // "" when unresolved
}

func (marketRow) TableName() string { return "pf_markets" }

func marketToRow(m types.Market) marketRow {
	outcome := ""
	if m.Outcome != nil {
		outcome = string(*m.Outcome)
	}
	return marketRow{
		ID:           m.ID,
		Platform:     string(m.Platform),
		Description:  m.Description,
		Category:     m.Category,
		OpenTS:       m.OpenTS,
		CloseTS:      m.CloseTS,
		DurationSecs: m.DurationSecs,
		Outcome:      outcome,
	}
}

func rowToMarket(r marketRow) types.Market {
	m := types.Market{
		ID:           r.ID,
		Platform:     types.Platform(r.Platform),
		Description:  r.Description,
		Category:     r.Category,
		OpenTS:       r.OpenTS,
		CloseTS:      r.CloseTS,
		DurationSecs: r.DurationSecs,
	}
	if r.Outcome != "" {
		o := types.Outcome(r.Outcome)
		m.Outcome = &o
	}
	return m
}

// tickRow mirrors one side's state at one offset of a market, the
// flattened form of BookSnapshot's Yes/No SideState pair — one tickRow per
// side per offset, the same way pf_ticks stores YES and NO as separate
// rows joined back together on load.
type tickRow struct {
	ID             uint   `gorm:"primaryKey;autoIncrement"`
	MarketID       string `gorm:"column:market_id;index:idx_market_offset,priority:1"`
	Side           string `gorm:"column:side"`
	TimestampMS    int64  `gorm:"column:timestamp_ms"`
	OffsetMS       int64  `gorm:"column:offset_ms;index:idx_market_offset,priority:2"`
	BestBid        *float64
	BestBidSize    *float64
	BestAsk        *float64
	BestAskSize    *float64
	TotalBidDepth  float64
	TotalAskDepth  float64
	ReferencePrice *float64
	OraclePrice    *float64

	DepthLevels []depthLevelRow `gorm:"foreignKey:TickID"`
}

func (tickRow) TableName() string { return "pf_ticks" }

// depthLevelRow is one rung of a tickRow's cumulative bid ladder.
type depthLevelRow struct {
	ID             uint `gorm:"primaryKey;autoIncrement"`
	TickID         uint `gorm:"column:tick_id;index"`
	Price          float64
	CumulativeSize float64
}

func (depthLevelRow) TableName() string { return "pf_depth_levels" }

func sideStateToRow(marketID string, offsetMS, timestampMS int64, side types.Side, state types.SideState, refPrice, oraclePrice *float64) tickRow {
	row := tickRow{
		MarketID:       marketID,
		Side:           string(side),
		TimestampMS:    timestampMS,
		OffsetMS:       offsetMS,
		BestBid:        state.BestBid,
		BestBidSize:    state.BestBidSize,
		BestAsk:        state.BestAsk,
		BestAskSize:    state.BestAskSize,
		TotalBidDepth:  state.TotalBidDepth,
		TotalAskDepth:  state.TotalAskDepth,
		ReferencePrice: refPrice,
		OraclePrice:    oraclePrice,
	}
	for _, lvl := range state.Depth {
		row.DepthLevels = append(row.DepthLevels, depthLevelRow{Price: lvl.Price, CumulativeSize: lvl.CumulativeSize})
	}
	return row
}

func rowToSideState(r tickRow) types.SideState {
	state := types.SideState{
		BestBid:       r.BestBid,
		BestBidSize:   r.BestBidSize,
		BestAsk:       r.BestAsk,
		BestAskSize:   r.BestAskSize,
		TotalBidDepth: r.TotalBidDepth,
		TotalAskDepth: r.TotalAskDepth,
	}
	for _, lvl := range r.DepthLevels {
		state.Depth = append(state.Depth, types.PriceLevel{Price: lvl.Price, CumulativeSize: lvl.CumulativeSize})
	}
	return state
}
