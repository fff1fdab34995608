package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync/atomic"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dapdevsoftware/phantomfill/pkg/types"
)

// Store is a GORM-backed SQLite store for markets and book snapshots.
type Store struct {
	db *gorm.DB
}

// Open opens (creating if necessary) a SQLite-backed store at path and
// migrates its schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory %s: %w", dir, err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite store at %s: %w", path, err)
	}

	if err := db.AutoMigrate(&marketRow{}, &tickRow{}, &depthLevelRow{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return &Store{db: db}, nil
}

// memStoreSeq numbers in-memory databases so each OpenInMemory call gets
// its own.
var memStoreSeq atomic.Int64

// OpenInMemory opens a fresh in-memory store, useful for tests. Each call
// gets its own database, isolated from every other in-memory store.
func OpenInMemory() (*Store, error) {
	return Open(fmt.Sprintf("file:phantomfill-mem-%d?mode=memory&cache=shared", memStoreSeq.Add(1)))
}

// SaveMarket upserts one market row.
func (s *Store) SaveMarket(m types.Market) error {
	row := marketToRow(m)
	if err := s.db.Save(&row).Error; err != nil {
		return fmt.Errorf("save market %s: %w", m.ID, err)
	}
	return nil
}

// SaveSnapshots writes every BookSnapshot's YES and NO side as a separate
// tickRow in one transaction, mirroring the capture store's per-side
// layout. Existing ticks for the market are not touched; callers that want
// a clean re-import should delete them first.
func (s *Store) SaveSnapshots(marketID string, snapshots []types.BookSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, snap := range snapshots {
			yesRow := sideStateToRow(marketID, snap.OffsetMS, snap.TimestampMS, types.SideYes, snap.Yes, snap.ReferencePrice, snap.OraclePrice)
			if err := tx.Create(&yesRow).Error; err != nil {
				return fmt.Errorf("save yes tick at offset %d: %w", snap.OffsetMS, err)
			}
			noRow := sideStateToRow(marketID, snap.OffsetMS, snap.TimestampMS, types.SideNo, snap.No, snap.ReferencePrice, snap.OraclePrice)
			if err := tx.Create(&noRow).Error; err != nil {
				return fmt.Errorf("save no tick at offset %d: %w", snap.OffsetMS, err)
			}
		}
		return nil
	})
}

// SetOraclePrice stamps price onto every stored tick of marketID, used by
// the oracle backfill pass to retrofit a reference price onto ticks
// imported before the oracle price was known.
func (s *Store) SetOraclePrice(marketID string, price float64) error {
	err := s.db.Model(&tickRow{}).
		Where("market_id = ?", marketID).
		Update("oracle_price", price).Error
	if err != nil {
		return fmt.Errorf("set oracle price for %s: %w", marketID, err)
	}
	return nil
}

// LoadSnapshots loads every tick for marketID and recombines the per-side
// rows into BookSnapshots ordered by offset_ms ascending.
func (s *Store) LoadSnapshots(marketID string) ([]types.BookSnapshot, error) {
	var rows []tickRow
	err := s.db.
		Preload("DepthLevels").
		Where("market_id = ?", marketID).
		Order("offset_ms, side").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load ticks for %s: %w", marketID, err)
	}

	return rowsToSnapshots(marketID, rows), nil
}

func rowsToSnapshots(marketID string, rows []tickRow) []types.BookSnapshot {
	type offsetGroup struct {
		offsetMS    int64
		timestampMS int64
		yes, no     *tickRow
	}

	groups := make(map[int64]*offsetGroup)
	var order []int64
	for i := range rows {
		r := &rows[i]
		g, ok := groups[r.OffsetMS]
		if !ok {
			g = &offsetGroup{offsetMS: r.OffsetMS, timestampMS: r.TimestampMS}
			groups[r.OffsetMS] = g
			order = append(order, r.OffsetMS)
		}
		switch types.Side(r.Side) {
		case types.SideYes:
			g.yes = r
		case types.SideNo:
			g.no = r
		}
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	snapshots := make([]types.BookSnapshot, 0, len(order))
	for _, offset := range order {
		g := groups[offset]
		snap := types.BookSnapshot{MarketID: marketID, OffsetMS: g.offsetMS, TimestampMS: g.timestampMS}
		if g.yes != nil {
			snap.Yes = rowToSideState(*g.yes)
			snap.ReferencePrice = g.yes.ReferencePrice
			snap.OraclePrice = g.yes.OraclePrice
		}
		if g.no != nil {
			snap.No = rowToSideState(*g.no)
			if snap.ReferencePrice == nil {
				snap.ReferencePrice = g.no.ReferencePrice
			}
			if snap.OraclePrice == nil {
				snap.OraclePrice = g.no.OraclePrice
			}
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots
}

// MarketFilter narrows the result of Markets. Zero-valued fields are
// unfiltered.
type MarketFilter struct {
	Platform *types.Platform
	Category string
	MinTS    *int64
	MaxTS    *int64
}

// Markets lists markets matching filter, ordered by open_ts ascending.
func (s *Store) Markets(filter MarketFilter) ([]types.Market, error) {
	q := s.db.Model(&marketRow{})
	if filter.Platform != nil {
		q = q.Where("platform = ?", string(*filter.Platform))
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.MinTS != nil {
		q = q.Where("open_ts >= ?", *filter.MinTS)
	}
	if filter.MaxTS != nil {
		q = q.Where("close_ts <= ?", *filter.MaxTS)
	}

	var rows []marketRow
	if err := q.Order("open_ts").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list markets: %w", err)
	}

	markets := make([]types.Market, len(rows))
	for i, r := range rows {
		markets[i] = rowToMarket(r)
	}
	return markets, nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}
