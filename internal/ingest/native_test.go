package ingest

import "testing"

func TestLoadNativeGroupsSidesByOffset(t *testing.T) {
	t.Parallel()

	contents := `{"market_id":"m1","offset_ms":0,"timestamp_ms":1000,"outcome":"YES","bids":[{"price":"0.49","size":"100"}],"asks":[{"price":"0.51","size":"80"}]}
{"market_id":"m1","offset_ms":0,"timestamp_ms":1000,"outcome":"NO","bids":[{"price":"0.48","size":"60"}],"asks":[{"price":"0.52","size":"40"}]}
{"market_id":"m1","offset_ms":1000,"timestamp_ms":2000,"outcome":"YES","bids":[{"price":"0.50","size":"120"}]}
`
	path := writeTempFile(t, contents)

	ticks, err := LoadNative(path)
	if err != nil {
		t.Fatalf("LoadNative: %v", err)
	}
	if len(ticks) != 2 {
		t.Fatalf("len(ticks) = %d, want 2", len(ticks))
	}

	first := ticks[0]
	if len(first.YesBids) != 1 || first.YesBids[0].Price != "0.49" {
		t.Errorf("first.YesBids = %+v", first.YesBids)
	}
	if len(first.NoBids) != 1 || first.NoBids[0].Price != "0.48" {
		t.Errorf("first.NoBids = %+v", first.NoBids)
	}

	second := ticks[1]
	if len(second.YesBids) != 1 || second.YesBids[0].Price != "0.50" {
		t.Errorf("second.YesBids = %+v", second.YesBids)
	}
	if len(second.NoBids) != 0 {
		t.Errorf("second.NoBids should be empty, got %+v", second.NoBids)
	}
}

func TestLoadNativePreservesFirstSeenOrder(t *testing.T) {
	t.Parallel()

	contents := `{"market_id":"m1","offset_ms":2000,"outcome":"YES","bids":[{"price":"0.49","size":"1"}]}
{"market_id":"m1","offset_ms":1000,"outcome":"YES","bids":[{"price":"0.48","size":"1"}]}
`
	path := writeTempFile(t, contents)

	ticks, err := LoadNative(path)
	if err != nil {
		t.Fatalf("LoadNative: %v", err)
	}
	if len(ticks) != 2 {
		t.Fatalf("len(ticks) = %d, want 2", len(ticks))
	}
	if ticks[0].OffsetMS != 2000 || ticks[1].OffsetMS != 1000 {
		t.Errorf("order not preserved: %+v", ticks)
	}
}

func TestLoadNativeReferencePriceTakesFirstNonNil(t *testing.T) {
	t.Parallel()

	contents := `{"market_id":"m1","offset_ms":0,"outcome":"YES","reference_price":66000.5,"bids":[{"price":"0.49","size":"1"}]}
{"market_id":"m1","offset_ms":0,"outcome":"NO","bids":[{"price":"0.48","size":"1"}]}
`
	path := writeTempFile(t, contents)

	ticks, err := LoadNative(path)
	if err != nil {
		t.Fatalf("LoadNative: %v", err)
	}
	if ticks[0].ReferencePrice == nil || *ticks[0].ReferencePrice != 66000.5 {
		t.Errorf("ReferencePrice = %v, want 66000.5", ticks[0].ReferencePrice)
	}
}
