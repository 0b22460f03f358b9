package infra

import (
	"sync/atomic"
	"time"
)

// Metrics provides lightweight observability without external dependencies.
// Uses atomic operations for thread-safety.
type Metrics struct {
	// Counters
	itemsListed      atomic.Uint64
	salesSettled     atomic.Uint64
	bidsPlaced       atomic.Uint64
	auctionsResulted atomic.Uint64
	transferFailures atomic.Uint64
	errorsTotal      atomic.Uint64

	// Gauges
	feedClients atomic.Int32
}

// GlobalMetrics is the singleton metrics instance.
var GlobalMetrics = &Metrics{}

// RecordListing counts a new marketplace listing.
func (m *Metrics) RecordListing() {
	m.itemsListed.Add(1)
}

// RecordSale counts a settled sale, direct buy or accepted offer.
func (m *Metrics) RecordSale() {
	m.salesSettled.Add(1)
}

// RecordBid counts an accepted auction bid.
func (m *Metrics) RecordBid() {
	m.bidsPlaced.Add(1)
}

// RecordAuctionResulted counts a settled auction.
func (m *Metrics) RecordAuctionResulted() {
	m.auctionsResulted.Add(1)
}

// RecordTransferFailure counts a settlement aborted by a collaborator.
func (m *Metrics) RecordTransferFailure() {
	m.transferFailures.Add(1)
	m.errorsTotal.Add(1)
}

// RecordError counts a generic error occurrence.
func (m *Metrics) RecordError() {
	m.errorsTotal.Add(1)
}

// IncrementFeedClients increments connected event-feed clients by 1.
func (m *Metrics) IncrementFeedClients() {
	m.feedClients.Add(1)
}

// DecrementFeedClients decrements connected event-feed clients by 1.
func (m *Metrics) DecrementFeedClients() {
	m.feedClients.Add(-1)
}

// MetricsSnapshot is a point-in-time view of all metrics.
type MetricsSnapshot struct {
	ItemsListed      uint64
	SalesSettled     uint64
	BidsPlaced       uint64
	AuctionsResulted uint64
	TransferFailures uint64
	ErrorsTotal      uint64
	FeedClients      int32
	Timestamp        time.Time
}

// Snapshot returns current metrics as a snapshot.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		ItemsListed:      m.itemsListed.Load(),
		SalesSettled:     m.salesSettled.Load(),
		BidsPlaced:       m.bidsPlaced.Load(),
		AuctionsResulted: m.auctionsResulted.Load(),
		TransferFailures: m.transferFailures.Load(),
		ErrorsTotal:      m.errorsTotal.Load(),
		FeedClients:      m.feedClients.Load(),
		Timestamp:        time.Now(),
	}
}
