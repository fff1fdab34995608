package ingest

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFetchCaptureReturnsBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"market_id":"m1","offset_ms":0}`))
	}))
	defer srv.Close()

	f := &Fetcher{http: NewFetcher().http, bucket: newFetchBucket(5, 5)}

	body, err := f.FetchCapture(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("FetchCapture: %v", err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(data) != `{"market_id":"m1","offset_ms":0}` {
		t.Errorf("body = %q", data)
	}
}

func TestFetchCaptureNon200Errors(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := &Fetcher{http: NewFetcher().http, bucket: newFetchBucket(5, 5)}

	if _, err := f.FetchCapture(context.Background(), srv.URL); err == nil {
		t.Fatal("expected error for 404 response, got nil")
	}
}
