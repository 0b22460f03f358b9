package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// quoteResponse represents one token quote from the external quote API.
type quoteResponse struct {
	Token string  `json:"token"`
	Price float64 `json:"price"`
	Time  int64   `json:"time"`
}

// PriceOracle polls an external quote API and forwards fresh quotes to
// the advisory price feed through the onUpdate callback.
type PriceOracle struct {
	onUpdate     func(token string, price decimal.Decimal)
	last         map[string]decimal.Decimal
	mu           sync.RWMutex
	pollInterval time.Duration
	apiURL       string
	httpClient   *http.Client
	cancel       context.CancelFunc
	wg           sync.WaitGroup
}

// NewPriceOracle creates an oracle polling apiURL every pollIntervalSec
// seconds.
func NewPriceOracle(onUpdate func(token string, price decimal.Decimal), apiURL string, pollIntervalSec int) *PriceOracle {
	interval := 60 * time.Second
	if pollIntervalSec > 0 {
		interval = time.Duration(pollIntervalSec) * time.Second
	}
	return &PriceOracle{
		onUpdate:     onUpdate,
		last:         make(map[string]decimal.Decimal),
		pollInterval: interval,
		apiURL:       apiURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Start begins polling for quote updates
func (o *PriceOracle) Start(ctx context.Context) error {
	ctx, o.cancel = context.WithCancel(ctx)

	// Fetch immediately on start
	if err := o.fetchQuotes(ctx); err != nil {
		slog.Warn("Initial quote fetch failed", slog.Any("error", err))
		// Continue anyway - will retry on next tick
	}

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				slog.Error("Quote polling panic recovered", slog.Any("panic", r))
			}
		}()

		ticker := time.NewTicker(o.pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				slog.Info("Quote polling stopped")
				return
			case <-ticker.C:
				if err := o.fetchQuotes(ctx); err != nil {
					slog.Warn("Quote fetch failed", slog.Any("error", err))
				}
			}
		}
	}()

	return nil
}

// fetchQuotes fetches current quotes with retry logic
func (o *PriceOracle) fetchQuotes(ctx context.Context) error {
	var lastErr error
	for i := 0; i < 3; i++ {
		if i > 0 {
			// Exponential backoff: 1s, 2s, 4s
			delay := time.Duration(1<<uint(i-1)) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		err := o.doFetch(ctx)
		if err == nil {
			return nil
		}
		lastErr = err
		slog.Warn("Quote fetch attempt failed", slog.Int("attempt", i+1), slog.Any("error", err))
	}
	return lastErr
}

func (o *PriceOracle) doFetch(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.apiURL, nil)
	if err != nil {
		return err
	}

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var data []quoteResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return err
	}

	if len(data) == 0 {
		return fmt.Errorf("empty response from quote API")
	}

	for _, q := range data {
		if q.Token == "" {
			continue
		}
		newPrice := decimal.NewFromFloat(q.Price)

		o.mu.Lock()
		oldPrice := o.last[q.Token]
		o.last[q.Token] = newPrice
		o.mu.Unlock()

		if !oldPrice.Equal(newPrice) && o.onUpdate != nil {
			slog.Info("Token quote updated",
				slog.String("token", q.Token),
				slog.String("price", newPrice.String()),
				slog.String("old_price", oldPrice.String()),
			)
			o.onUpdate(q.Token, newPrice)
		}
	}

	return nil
}

// Stop stops the polling
func (o *PriceOracle) Stop() {
	if o.cancel != nil {
		o.cancel()
		o.wg.Wait()
	}
}

// LastQuote returns the most recently fetched quote for a token.
func (o *PriceOracle) LastQuote(token string) decimal.Decimal {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.last[token]
}
