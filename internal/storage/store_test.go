package storage

import (
	"os"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"nftmarket_go/internal/event"
)

func setupTestStore(t *testing.T) *Store {
	dbName := "test.db"
	db, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	if err := db.AutoMigrate(&TradeRecord{}, &EventRecord{}); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbName)
	})

	return &Store{db: db}
}

func TestRecordSale(t *testing.T) {
	s := setupTestStore(t)

	sold := &event.ItemSold{
		Contract:     "nft1",
		TokenID:      1,
		Seller:       "alice",
		Buyer:        "bob",
		Quantity:     1,
		PayToken:     "pay1",
		PricePerItem: "1000000000000000000",
		Gross:        "1000000000000000000",
		Fee:          "3000000000000000",
		Royalty:      "0",
		Proceeds:     "997000000000000000",
	}
	sold.Meta = event.Meta{Seq: 7, Ts: 1700000000}

	if err := s.Record(sold); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	trades, err := s.TradesByContract("nft1", 0)
	if err != nil {
		t.Fatalf("TradesByContract failed: %v", err)
	}
	if len(trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(trades))
	}
	if trades[0].Buyer != "bob" || trades[0].Gross != "1000000000000000000" {
		t.Errorf("unexpected trade row: %+v", trades[0])
	}

	events, err := s.EventsSince(0, 0)
	if err != nil {
		t.Fatalf("EventsSince failed: %v", err)
	}
	if len(events) != 1 || events[0].Type != "item_sold" {
		t.Fatalf("expected one item_sold event, got %+v", events)
	}
}

func TestRecordAuctionResult(t *testing.T) {
	s := setupTestStore(t)

	res := &event.AuctionResulted{
		Contract: "nft1",
		TokenID:  4,
		Seller:   "alice",
		Winner:   "carol",
		PayToken: "pay1",
		Amount:   "500",
		Fee:      "15",
		Royalty:  "0",
		Proceeds: "485",
	}
	res.Meta = event.Meta{Seq: 12, Ts: 1700000500}

	if err := s.Record(res); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	trades, err := s.TradesBySeller("alice", 10)
	if err != nil {
		t.Fatalf("TradesBySeller failed: %v", err)
	}
	if len(trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(trades))
	}
	if trades[0].Source != "auction" || trades[0].Buyer != "carol" {
		t.Errorf("unexpected trade row: %+v", trades[0])
	}
}

func TestRecordNoBidResultSkipsTrade(t *testing.T) {
	s := setupTestStore(t)

	res := &event.AuctionResulted{Contract: "nft1", TokenID: 9, Seller: "alice"}
	res.Meta = event.Meta{Seq: 3, Ts: 1700000100}

	if err := s.Record(res); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	trades, _ := s.TradesByContract("nft1", 0)
	if len(trades) != 0 {
		t.Fatalf("expected no trades, got %d", len(trades))
	}
	events, _ := s.EventsSince(0, 0)
	if len(events) != 1 {
		t.Fatalf("expected event row to remain, got %d", len(events))
	}
}

func TestEventsSinceOrdering(t *testing.T) {
	s := setupTestStore(t)

	for i := uint64(1); i <= 5; i++ {
		ev := &event.ItemCanceled{Contract: "nft1", TokenID: i, Seller: "alice"}
		ev.Meta = event.Meta{Seq: i, Ts: int64(i)}
		if err := s.Record(ev); err != nil {
			t.Fatalf("Record %d failed: %v", i, err)
		}
	}

	events, err := s.EventsSince(2, 2)
	if err != nil {
		t.Fatalf("EventsSince failed: %v", err)
	}
	if len(events) != 2 || events[0].Seq != 3 || events[1].Seq != 4 {
		t.Fatalf("unexpected page: %+v", events)
	}
}
