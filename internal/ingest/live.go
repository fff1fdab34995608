package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dapdevsoftware/phantomfill/pkg/types"
)

const (
	liveReadTimeout      = 90 * time.Second
	liveMaxReconnectWait = 30 * time.Second
	liveSnapshotBuffer   = 256
)

// wsBookEvent is a full order book snapshot from the market WS channel,
// same shape the upstream feed sends: one row per asset (YES or NO token).
type wsBookEvent struct {
	EventType string                 `json:"event_type"`
	AssetID   string                 `json:"asset_id"`
	Market    string                 `json:"market"`
	Timestamp string                 `json:"timestamp"`
	Buys      []types.WirePriceLevel `json:"buys"`
	Sells     []types.WirePriceLevel `json:"sells"`
}

// liveBook tracks the running YES/NO book state for one market as live
// events arrive, so each event can be turned into a combined BookSnapshot
// without waiting for both sides to refresh.
type liveBook struct {
	marketID string
	yesToken string
	noToken  string
	openedAt time.Time

	mu  sync.Mutex
	yes types.SideState
	no  types.SideState
}

func newLiveBook(marketID, yesToken, noToken string) *liveBook {
	return &liveBook{marketID: marketID, yesToken: yesToken, noToken: noToken, openedAt: time.Now()}
}

// apply folds a book event into the running state and returns the combined
// snapshot. The side not addressed by this event carries forward unchanged.
func (b *liveBook) apply(event wsBookEvent) types.BookSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	state := buildSideState(event.Buys, event.Sells)
	switch event.AssetID {
	case b.yesToken:
		b.yes = state
	case b.noToken:
		b.no = state
	}

	return types.BookSnapshot{
		MarketID:    b.marketID,
		OffsetMS:    time.Since(b.openedAt).Milliseconds(),
		TimestampMS: time.Now().UnixMilli(),
		Yes:         b.yes,
		No:          b.no,
	}
}

// TailNative streams live book updates for marketID from the native
// WebSocket feed, translating "book" events into BookSnapshots on a
// channel. It reconnects with exponential backoff (1s up to 30s) on any
// disconnect, matching the trading client's reconnect shape, and closes
// the channel when ctx is cancelled.
func TailNative(ctx context.Context, wsURL, marketID, yesToken, noToken string, logger *slog.Logger) (<-chan types.BookSnapshot, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "ingest_live", "market", marketID)

	out := make(chan types.BookSnapshot, liveSnapshotBuffer)
	book := newLiveBook(marketID, yesToken, noToken)

	go func() {
		defer close(out)
		backoff := time.Second

		for {
			err := tailOnce(ctx, wsURL, marketID, book, out, logger)
			if ctx.Err() != nil {
				return
			}

			logger.Warn("live feed disconnected, reconnecting", "error", err, "backoff", backoff)
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}

			backoff *= 2
			if backoff > liveMaxReconnectWait {
				backoff = liveMaxReconnectWait
			}
		}
	}()

	return out, nil
}

func tailOnce(ctx context.Context, wsURL, marketID string, book *liveBook, out chan<- types.BookSnapshot, logger *slog.Logger) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", wsURL, err)
	}
	defer conn.Close()

	sub := struct {
		Operation string   `json:"operation"`
		Markets   []string `json:"markets"`
	}{Operation: "subscribe", Markets: []string{marketID}}
	if err := conn.WriteJSON(sub); err != nil {
		return fmt.Errorf("subscribe %s: %w", marketID, err)
	}

	conn.SetReadDeadline(time.Now().Add(liveReadTimeout))

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		_, raw, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		conn.SetReadDeadline(time.Now().Add(liveReadTimeout))

		var event wsBookEvent
		if err := json.Unmarshal(raw, &event); err != nil {
			logger.Warn("unparseable live message, skipping", "error", err)
			continue
		}
		if event.EventType != "book" {
			continue
		}

		snap := book.apply(event)
		select {
		case out <- snap:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
