// Package storage persists trade history and the raw event stream to a
// local SQLite database for later inspection. It is a consumer of the
// event bus and never feeds back into trading state.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"nftmarket_go/internal/event"
)

// TradeRecord is one settled sale, from either a direct buy, an accepted
// offer, or a resulted auction.
type TradeRecord struct {
	ID       uint   `gorm:"primaryKey"`
	Seq      uint64 `gorm:"uniqueIndex"`
	Source   string // "sale" or "auction"
	Contract string `gorm:"index"`
	TokenID  uint64
	Seller   string `gorm:"index"`
	Buyer    string `gorm:"index"`
	PayToken string
	Quantity uint64
	Gross    string
	Fee      string
	Royalty  string
	Proceeds string
	Ts       int64
}

// EventRecord is one raw bus event, payload stored as JSON.
type EventRecord struct {
	ID      uint   `gorm:"primaryKey"`
	Seq     uint64 `gorm:"uniqueIndex"`
	Type    string `gorm:"index"`
	Payload string
	Ts      int64
}

// Store wraps the SQLite database.
type Store struct {
	db *gorm.DB
}

// NewStore opens (or creates) the database at path and migrates the
// schema.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = filepath.Join("data", "market.db")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create DB directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&TradeRecord{}, &EventRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Store{db: db}, nil
}

// Recorder drains a bus subscription into the store.
type Recorder struct {
	store *Store
	wg    sync.WaitGroup
}

// NewRecorder creates a recorder writing into store.
func NewRecorder(store *Store) *Recorder {
	return &Recorder{store: store}
}

// Run consumes events from ch until it is closed or ctx is cancelled.
func (r *Recorder) Run(ctx context.Context, ch <-chan event.Event) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-ch:
				if !ok {
					return
				}
				if err := r.store.Record(ev); err != nil {
					slog.Warn("Failed to persist event",
						slog.String("type", ev.GetType()),
						slog.Any("error", err),
					)
				}
			}
		}
	}()
}

// Wait blocks until the recorder goroutine exits.
func (r *Recorder) Wait() {
	r.wg.Wait()
}

// Record persists a single event, and additionally a trade row for
// settlement events.
func (s *Store) Record(ev event.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	rec := &EventRecord{
		Type:    ev.GetType(),
		Payload: string(payload),
	}

	switch e := ev.(type) {
	case *event.ItemSold:
		rec.Seq, rec.Ts = e.Seq, e.Ts
		if err := s.db.Create(rec).Error; err != nil {
			return err
		}
		return s.db.Create(&TradeRecord{
			Seq:      e.Seq,
			Source:   "sale",
			Contract: e.Contract,
			TokenID:  e.TokenID,
			Seller:   e.Seller,
			Buyer:    e.Buyer,
			PayToken: e.PayToken,
			Quantity: e.Quantity,
			Gross:    e.Gross,
			Fee:      e.Fee,
			Royalty:  e.Royalty,
			Proceeds: e.Proceeds,
			Ts:       e.Ts,
		}).Error
	case *event.AuctionResulted:
		rec.Seq, rec.Ts = e.Seq, e.Ts
		if err := s.db.Create(rec).Error; err != nil {
			return err
		}
		// A no-bid result has no winner and settles no trade.
		if e.Winner == "" {
			return nil
		}
		return s.db.Create(&TradeRecord{
			Seq:      e.Seq,
			Source:   "auction",
			Contract: e.Contract,
			TokenID:  e.TokenID,
			Seller:   e.Seller,
			Buyer:    e.Winner,
			PayToken: e.PayToken,
			Quantity: 1,
			Gross:    e.Amount,
			Fee:      e.Fee,
			Royalty:  e.Royalty,
			Proceeds: e.Proceeds,
			Ts:       e.Ts,
		}).Error
	default:
		rec.Seq, rec.Ts = ev.GetSeq(), ev.GetTs()
		return s.db.Create(rec).Error
	}
}

// TradesByContract lists settled trades for a collection contract, most
// recent first.
func (s *Store) TradesByContract(contract string, limit int) ([]TradeRecord, error) {
	var trades []TradeRecord
	q := s.db.Where("contract = ?", contract).Order("seq DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&trades).Error; err != nil {
		return nil, err
	}
	return trades, nil
}

// TradesBySeller lists settled trades for a seller, most recent first.
func (s *Store) TradesBySeller(seller string, limit int) ([]TradeRecord, error) {
	var trades []TradeRecord
	q := s.db.Where("seller = ?", seller).Order("seq DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&trades).Error; err != nil {
		return nil, err
	}
	return trades, nil
}

// EventsSince returns events with sequence greater than seq, in order.
func (s *Store) EventsSince(seq uint64, limit int) ([]EventRecord, error) {
	var events []EventRecord
	q := s.db.Where("seq > ?", seq).Order("seq ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
