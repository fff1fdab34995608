package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// defaultFetchBucket limits repeated import runs against a capture host to
// a modest burst so re-running `import --source` doesn't hammer it.
var defaultFetchBucket = newFetchBucket(20, 2)

// Fetcher fetches capture files over HTTP, rate-limited so repeated import
// runs don't hammer the capture host.
type Fetcher struct {
	http   *resty.Client
	bucket *fetchBucket
}

// NewFetcher builds a Fetcher with sane retry and timeout defaults.
func NewFetcher() *Fetcher {
	client := resty.New().
		SetTimeout(30 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() >= 500
		})

	return &Fetcher{http: client, bucket: defaultFetchBucket}
}

// FetchCapture downloads the capture file at url, blocking on the rate
// limiter first. The caller owns the returned body and must close it.
func (f *Fetcher) FetchCapture(ctx context.Context, url string) (io.ReadCloser, error) {
	if err := f.bucket.wait(ctx); err != nil {
		return nil, err
	}

	resp, err := f.http.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetch capture %s: %w", url, err)
	}
	if resp.StatusCode() != http.StatusOK {
		resp.RawBody().Close()
		return nil, fmt.Errorf("fetch capture %s: status %d", url, resp.StatusCode())
	}

	return resp.RawBody(), nil
}
