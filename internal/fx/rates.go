// Package fx provides USD to INR conversion for cost reporting.
package fx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"cost-optimizer/internal/common/httpclient"
	"cost-optimizer/internal/common/logger"

	"github.com/shopspring/decimal"
)

// Converter converts USD amounts to INR. The rate starts from the
// configured default and can be refreshed from an exchange rate endpoint.
type Converter struct {
	mu   sync.RWMutex
	rate decimal.Decimal

	sourceURL string
	client    *httpclient.Client
	logger    logger.Logger
}

// NewConverter creates a converter seeded with the configured rate.
func NewConverter(defaultRate float64, sourceURL string, timeout time.Duration, log logger.Logger) *Converter {
	return &Converter{
		rate:      decimal.NewFromFloat(defaultRate),
		sourceURL: sourceURL,
		client:    httpclient.NewClient(timeout),
		logger:    log.WithFields(map[string]interface{}{"component": "fx"}),
	}
}

// Rate returns the current USD/INR rate.
func (c *Converter) Rate() decimal.Decimal {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.rate
}

// USDToINR converts a USD amount to INR.
func (c *Converter) USDToINR(usd decimal.Decimal) decimal.Decimal {
	return usd.Mul(c.Rate())
}

// rateResponse is the expected payload of the exchange rate endpoint.
type rateResponse struct {
	Rates map[string]float64 `json:"rates"`
}

// Refresh fetches a fresh USD/INR rate. The previous rate is kept on any
// failure so cost reporting never stalls on the rate source.
func (c *Converter) Refresh(ctx context.Context) error {
	if c.sourceURL == "" {
		return nil
	}

	req, err := http.NewRequest(http.MethodGet, c.sourceURL, nil)
	if err != nil {
		return fmt.Errorf("build rate request: %w", err)
	}

	resp, err := c.client.DoWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("fetch exchange rate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("exchange rate endpoint returned %d", resp.StatusCode)
	}

	var payload rateResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return fmt.Errorf("decode exchange rate response: %w", err)
	}

	inr, ok := payload.Rates["INR"]
	if !ok || inr <= 0 {
		return fmt.Errorf("exchange rate response missing INR rate")
	}

	c.mu.Lock()
	c.rate = decimal.NewFromFloat(inr)
	c.mu.Unlock()

	c.logger.Info("exchange rate refreshed", map[string]interface{}{
		"usdToInr": inr,
	})
	return nil
}

// StartRefreshing refreshes the rate on an interval until ctx is done.
func (c *Converter) StartRefreshing(ctx context.Context, interval time.Duration) {
	if c.sourceURL == "" {
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := c.Refresh(ctx); err != nil {
					c.logger.Warn("exchange rate refresh failed", map[string]interface{}{
						"error": err,
					})
				}
			}
		}
	}()
}
