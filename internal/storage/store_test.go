package storage

import (
	"testing"

	"github.com/dapdevsoftware/phantomfill/pkg/types"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleMarket(id string) types.Market {
	return types.Market{
		ID: id, Platform: types.Polymarket, Description: "BTC up/down",
		Category: "btc", OpenTS: 1000, CloseTS: 1900, DurationSecs: 900,
	}
}

func sampleSnapshot(offsetMS int64) types.BookSnapshot {
	bestBid := 0.49
	bestBidSize := 100.0
	return types.BookSnapshot{
		OffsetMS: offsetMS, TimestampMS: 1000 + offsetMS,
		Yes: types.SideState{
			BestBid: &bestBid, BestBidSize: &bestBidSize,
			Depth:         []types.PriceLevel{{Price: 0.49, CumulativeSize: 100}},
			TotalBidDepth: 100,
		},
		No:             types.SideState{},
		ReferencePrice: types.Float64Ptr(66000.0),
	}
}

func TestSaveAndLoadMarket(t *testing.T) {
	t.Parallel()

	s := testStore(t)
	m := sampleMarket("m1")
	yes := types.OutcomeYes
	m.Outcome = &yes

	if err := s.SaveMarket(m); err != nil {
		t.Fatalf("SaveMarket: %v", err)
	}

	markets, err := s.Markets(MarketFilter{})
	if err != nil {
		t.Fatalf("Markets: %v", err)
	}
	if len(markets) != 1 {
		t.Fatalf("len(markets) = %d, want 1", len(markets))
	}
	if markets[0].ID != "m1" || markets[0].Outcome == nil || *markets[0].Outcome != types.OutcomeYes {
		t.Errorf("markets[0] = %+v", markets[0])
	}
}

func TestSaveMarketUpsert(t *testing.T) {
	t.Parallel()

	s := testStore(t)
	m := sampleMarket("m1")
	if err := s.SaveMarket(m); err != nil {
		t.Fatalf("SaveMarket: %v", err)
	}
	m.Description = "updated"
	if err := s.SaveMarket(m); err != nil {
		t.Fatalf("SaveMarket (update): %v", err)
	}

	markets, err := s.Markets(MarketFilter{})
	if err != nil {
		t.Fatalf("Markets: %v", err)
	}
	if len(markets) != 1 {
		t.Fatalf("expected upsert not insert, got %d rows", len(markets))
	}
	if markets[0].Description != "updated" {
		t.Errorf("Description = %q, want updated", markets[0].Description)
	}
}

func TestSaveAndLoadSnapshotsRoundtrip(t *testing.T) {
	t.Parallel()

	s := testStore(t)
	snaps := []types.BookSnapshot{sampleSnapshot(0), sampleSnapshot(1000)}

	if err := s.SaveSnapshots("m1", snaps); err != nil {
		t.Fatalf("SaveSnapshots: %v", err)
	}

	loaded, err := s.LoadSnapshots("m1")
	if err != nil {
		t.Fatalf("LoadSnapshots: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("len(loaded) = %d, want 2", len(loaded))
	}
	if loaded[0].OffsetMS != 0 || loaded[1].OffsetMS != 1000 {
		t.Errorf("offsets out of order: %+v", loaded)
	}
	if loaded[0].Yes.BestBid == nil || *loaded[0].Yes.BestBid != 0.49 {
		t.Errorf("Yes.BestBid = %v, want 0.49", loaded[0].Yes.BestBid)
	}
	if len(loaded[0].Yes.Depth) != 1 || loaded[0].Yes.Depth[0].CumulativeSize != 100 {
		t.Errorf("Depth = %+v", loaded[0].Yes.Depth)
	}
	if loaded[0].ReferencePrice == nil || *loaded[0].ReferencePrice != 66000.0 {
		t.Errorf("ReferencePrice = %v, want 66000.0", loaded[0].ReferencePrice)
	}
}

func TestLoadSnapshotsEmptyMarket(t *testing.T) {
	t.Parallel()

	s := testStore(t)
	loaded, err := s.LoadSnapshots("nonexistent")
	if err != nil {
		t.Fatalf("LoadSnapshots: %v", err)
	}
	if len(loaded) != 0 {
		t.Errorf("len(loaded) = %d, want 0", len(loaded))
	}
}

func TestMarketsFilterByCategory(t *testing.T) {
	t.Parallel()

	s := testStore(t)
	btc := sampleMarket("btc1")
	btc.Category = "btc"
	eth := sampleMarket("eth1")
	eth.Category = "eth"

	if err := s.SaveMarket(btc); err != nil {
		t.Fatalf("SaveMarket btc: %v", err)
	}
	if err := s.SaveMarket(eth); err != nil {
		t.Fatalf("SaveMarket eth: %v", err)
	}

	markets, err := s.Markets(MarketFilter{Category: "btc"})
	if err != nil {
		t.Fatalf("Markets: %v", err)
	}
	if len(markets) != 1 || markets[0].ID != "btc1" {
		t.Fatalf("filtered markets = %+v", markets)
	}
}

func TestMarketsFilterByPlatform(t *testing.T) {
	t.Parallel()

	s := testStore(t)
	poly := sampleMarket("poly1")
	poly.Platform = types.Polymarket
	kalshi := sampleMarket("kalshi1")
	kalshi.Platform = types.Kalshi

	if err := s.SaveMarket(poly); err != nil {
		t.Fatalf("SaveMarket poly: %v", err)
	}
	if err := s.SaveMarket(kalshi); err != nil {
		t.Fatalf("SaveMarket kalshi: %v", err)
	}

	kalshiPlatform := types.Kalshi
	markets, err := s.Markets(MarketFilter{Platform: &kalshiPlatform})
	if err != nil {
		t.Fatalf("Markets: %v", err)
	}
	if len(markets) != 1 || markets[0].ID != "kalshi1" {
		t.Fatalf("filtered markets = %+v", markets)
	}
}

func TestSaveSnapshotsEmptyIsNoop(t *testing.T) {
	t.Parallel()

	s := testStore(t)
	if err := s.SaveSnapshots("m1", nil); err != nil {
		t.Fatalf("SaveSnapshots(nil): %v", err)
	}
	loaded, err := s.LoadSnapshots("m1")
	if err != nil {
		t.Fatalf("LoadSnapshots: %v", err)
	}
	if len(loaded) != 0 {
		t.Errorf("expected no snapshots, got %d", len(loaded))
	}
}

func TestSetOraclePriceStampsAllTicks(t *testing.T) {
	t.Parallel()

	s := testStore(t)
	snaps := []types.BookSnapshot{sampleSnapshot(0), sampleSnapshot(1000)}
	if err := s.SaveSnapshots("m1", snaps); err != nil {
		t.Fatalf("SaveSnapshots: %v", err)
	}

	if err := s.SetOraclePrice("m1", 67000.0); err != nil {
		t.Fatalf("SetOraclePrice: %v", err)
	}

	loaded, err := s.LoadSnapshots("m1")
	if err != nil {
		t.Fatalf("LoadSnapshots: %v", err)
	}
	for _, snap := range loaded {
		if snap.OraclePrice == nil || *snap.OraclePrice != 67000.0 {
			t.Errorf("OraclePrice = %v, want 67000.0", snap.OraclePrice)
		}
	}
}
