package types

// WirePriceLevel is a single bid or ask level as the upstream capture
// format encodes it. Price and Size are strings because the source CLOB
// API returns them as strings to preserve decimal precision.
type WirePriceLevel struct {
	Price string `json:"price"`
	Size  string `json:"size"`
}

// RawTick is one capture record in the upstream wire format, before
// normalization into a BookSnapshot. Both the NDJSON and native loaders
// produce this shape so Normalize only has to know one format.
type RawTick struct {
	MarketID       string           `json:"market_id"`
	OffsetMS       int64            `json:"offset_ms"`
	TimestampMS    int64            `json:"timestamp_ms"`
	YesBids        []WirePriceLevel `json:"yes_bids,omitempty"`
	YesAsks        []WirePriceLevel `json:"yes_asks,omitempty"`
	NoBids         []WirePriceLevel `json:"no_bids,omitempty"`
	NoAsks         []WirePriceLevel `json:"no_asks,omitempty"`
	ReferencePrice *float64         `json:"reference_price,omitempty"`
	OraclePrice    *float64         `json:"oracle_price,omitempty"`
}
