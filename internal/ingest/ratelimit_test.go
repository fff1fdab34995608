package ingest

import (
	"context"
	"testing"
	"time"
)

func TestFetchBucketAllowsBurstUpToCapacity(t *testing.T) {
	t.Parallel()

	b := newFetchBucket(3, 1)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		start := time.Now()
		if err := b.wait(ctx); err != nil {
			t.Fatalf("wait %d: %v", i, err)
		}
		if time.Since(start) > 50*time.Millisecond {
			t.Errorf("wait %d blocked unexpectedly, took %v", i, time.Since(start))
		}
	}
}

func TestFetchBucketBlocksPastCapacity(t *testing.T) {
	t.Parallel()

	b := newFetchBucket(1, 10) // 1 token, refills at 10/sec → ~100ms per token
	ctx := context.Background()

	if err := b.wait(ctx); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	start := time.Now()
	if err := b.wait(ctx); err != nil {
		t.Fatalf("second wait: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("second wait returned too quickly: %v", elapsed)
	}
}

func TestFetchBucketRespectsContextCancellation(t *testing.T) {
	t.Parallel()

	b := newFetchBucket(1, 0.001) // effectively never refills within the test window
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := b.wait(ctx); err != nil {
		t.Fatalf("first wait should succeed immediately: %v", err)
	}
	if err := b.wait(ctx); err == nil {
		t.Fatal("expected context deadline error, got nil")
	}
}
