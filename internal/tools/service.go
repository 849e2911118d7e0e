package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"aaveLens/internal/aave"
	"aaveLens/internal/cache"
	"aaveLens/internal/history"
	"aaveLens/internal/pricing"
	"aaveLens/internal/registry"
)

// timestampLayout renders UTC instants with millisecond precision, e.g. 2024-05-01T12:00:00.000Z.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// MarketReader fetches raw market state from a chain.
type MarketReader interface {
	ReservesHumanized(ctx context.Context, chainID uint64, market registry.MarketAddresses) (aave.ReservesResponse, error)
	UserReservesHumanized(ctx context.Context, chainID uint64, market registry.MarketAddresses, user common.Address) (aave.UserReservesResponse, error)
}

// Deps are the collaborators of a Service. Logger may be nil.
type Deps struct {
	Registry *registry.Registry
	Market   MarketReader
	Prices   pricing.Source
	History  history.Source
	Cache    *cache.Store
	Logger   *zap.Logger
}

// Service implements the query tools.
type Service struct {
	registry *registry.Registry
	market   MarketReader
	prices   pricing.Source
	history  history.Source
	cache    *cache.Store
	logger   *zap.Logger
	now      func() time.Time
}

func NewService(deps Deps) (*Service, error) {
	switch {
	case deps.Registry == nil:
		return nil, fmt.Errorf("registry is required")
	case deps.Market == nil:
		return nil, fmt.Errorf("market reader is required")
	case deps.Prices == nil:
		return nil, fmt.Errorf("price source is required")
	case deps.History == nil:
		return nil, fmt.Errorf("history source is required")
	}
	store := deps.Cache
	if store == nil {
		store = cache.New(cache.DefaultTTL)
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		registry: deps.Registry,
		market:   deps.Market,
		prices:   deps.Prices,
		history:  deps.History,
		cache:    store,
		logger:   logger,
		now:      time.Now,
	}, nil
}

func (s *Service) timestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}
