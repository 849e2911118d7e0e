package history

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"aaveLens/internal/model"
)

// Source produces a daily rate series for an asset, oldest point first.
type Source interface {
	Rates(ctx context.Context, chainID uint64, asset string, days int) ([]model.RatePoint, error)
}

// DefaultDelay simulates the latency of a remote history backend.
const DefaultDelay = 150 * time.Millisecond

// Synthetic generates placeholder rates: supply APY in [1,6) and variable
// borrow APY in [2,9), rounded to two decimals, one point per day.
type Synthetic struct {
	delay time.Duration
	now   func() time.Time

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewSynthetic(delay time.Duration, seed int64) *Synthetic {
	return &Synthetic{
		delay: delay,
		now:   time.Now,
		rnd:   rand.New(rand.NewSource(seed)),
	}
}

func (s *Synthetic) Rates(ctx context.Context, chainID uint64, asset string, days int) ([]model.RatePoint, error) {
	now := s.now().Unix()

	s.mu.Lock()
	points := make([]model.RatePoint, days)
	for i := 0; i < days; i++ {
		// index 0 is the oldest day
		points[days-1-i] = model.RatePoint{
			Timestamp:         now - int64(i)*24*60*60,
			SupplyAPY:         round2(s.rnd.Float64()*5 + 1),
			VariableBorrowAPY: round2(s.rnd.Float64()*7 + 2),
		}
	}
	s.mu.Unlock()

	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	return points, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// DailyRateReader reads aggregated daily rates from recorded snapshots.
type DailyRateReader interface {
	DailyRates(ctx context.Context, chainID uint64, symbol string, days int) ([]model.RatePoint, error)
}

// Recorded serves rates averaged from snapshots written by the snapshot command.
type Recorded struct {
	reader DailyRateReader
}

func NewRecorded(reader DailyRateReader) *Recorded {
	return &Recorded{reader: reader}
}

func (r *Recorded) Rates(ctx context.Context, chainID uint64, asset string, days int) ([]model.RatePoint, error) {
	points, err := r.reader.DailyRates(ctx, chainID, strings.ToUpper(asset), days)
	if err != nil {
		return nil, fmt.Errorf("recorded rates for %s: %w", asset, err)
	}
	if points == nil {
		points = []model.RatePoint{}
	}
	return points, nil
}
