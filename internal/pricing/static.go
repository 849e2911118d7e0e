package pricing

import (
	"context"
	"strings"
	"time"
)

// Source returns USD prices for token symbols. Symbols without a price are absent from the result.
type Source interface {
	Prices(ctx context.Context, symbols []string) (map[string]float64, error)
}

// DefaultDelay simulates the latency of a remote price API.
const DefaultDelay = 100 * time.Millisecond

// DefaultPrices is the fixed table served by Static.
func DefaultPrices() map[string]float64 {
	return map[string]float64{
		"WBTC": 20000,
		"ETH":  1500,
		"USDC": 1,
		"DAI":  1,
	}
}

// Static serves prices from a fixed table after a fixed delay.
type Static struct {
	prices map[string]float64
	delay  time.Duration
}

func NewStatic(prices map[string]float64, delay time.Duration) *Static {
	if prices == nil {
		prices = DefaultPrices()
	}
	normalized := make(map[string]float64, len(prices))
	for symbol, price := range prices {
		normalized[strings.ToUpper(symbol)] = price
	}
	return &Static{prices: normalized, delay: delay}
}

// Prices looks symbols up case-insensitively; the result is keyed by the symbol as requested.
func (s *Static) Prices(ctx context.Context, symbols []string) (map[string]float64, error) {
	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	out := make(map[string]float64, len(symbols))
	for _, symbol := range symbols {
		if price, ok := s.prices[strings.ToUpper(symbol)]; ok {
			out[symbol] = price
		}
	}
	return out, nil
}
