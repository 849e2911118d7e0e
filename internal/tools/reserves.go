package tools

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"aaveLens/internal/format"
	"aaveLens/internal/model"
)

// DefaultVersion is the market version assumed when a call names none.
const DefaultVersion = "v3"

// ReserveDataParams are the arguments of get_reserve_data.
type ReserveDataParams struct {
	ChainID uint64   `json:"chain_id"`
	Assets  []string `json:"assets"`
	Version string   `json:"version"`
}

// ReserveDataKey names the cache entry holding a chain's full, price-enriched reserve set.
func ReserveDataKey(chainID uint64, version string) string {
	return fmt.Sprintf("reserveData_%d_%s_extPrice", chainID, version)
}

// ReserveData returns the reserves of a market, served from cache while fresh.
// The cache always holds the unfiltered set; the asset filter applies to the response only.
func (s *Service) ReserveData(ctx context.Context, params ReserveDataParams) (model.ReserveDataResult, error) {
	version := params.Version
	if version == "" {
		version = DefaultVersion
	}
	key := ReserveDataKey(params.ChainID, version)

	if cached, ok := s.cache.Get(key); ok {
		if set, ok := cached.(model.ReserveSet); ok {
			s.logger.Debug("reserve data served from cache",
				zap.Uint64("chain_id", params.ChainID),
				zap.String("version", version),
			)
			return reserveResult(set, params.Assets, true), nil
		}
	}

	set, err := s.FetchReserveSet(ctx, params.ChainID, version)
	if err != nil {
		return model.ReserveDataResult{}, fmt.Errorf("failed to fetch Aave reserve data for chain %d, version %s: %w", params.ChainID, version, err)
	}
	s.cache.Set(key, set)
	return reserveResult(set, params.Assets, false), nil
}

// FetchReserveSet reads, formats and price-enriches every reserve of a market, bypassing the cache.
func (s *Service) FetchReserveSet(ctx context.Context, chainID uint64, version string) (model.ReserveSet, error) {
	addresses, err := s.registry.MarketAddresses(chainID)
	if err != nil {
		return model.ReserveSet{}, err
	}

	resp, err := s.market.ReservesHumanized(ctx, chainID, addresses)
	if err != nil {
		return model.ReserveSet{}, err
	}

	now := s.now()
	reserves := format.Reserves(resp, now.Unix(), addresses.PoolAddressesProvider)

	symbols := make([]string, 0, len(reserves))
	for _, reserve := range reserves {
		symbols = append(symbols, reserve.Symbol)
	}
	if len(symbols) > 0 {
		prices, err := s.prices.Prices(ctx, symbols)
		if err != nil {
			return model.ReserveSet{}, fmt.Errorf("fetch external prices: %w", err)
		}
		for i := range reserves {
			price, ok := prices[reserves[i].Symbol]
			if !ok {
				price, ok = prices[strings.ToUpper(reserves[i].Symbol)]
			}
			if ok {
				p := price
				reserves[i].PriceUSD = &p
			}
		}
	}

	s.logger.Info("reserve data fetched",
		zap.Uint64("chain_id", chainID),
		zap.String("version", version),
		zap.Int("reserves", len(reserves)),
	)
	return model.ReserveSet{
		ChainID:   chainID,
		Timestamp: s.timestamp(now),
		Reserves:  reserves,
		Version:   version,
	}, nil
}

// FilterReserves keeps reserves whose symbol matches one of assets, ignoring case.
// An empty asset list keeps everything. The result never shares memory with
// reserves, so callers may modify it without touching cached sets.
func FilterReserves(reserves []model.Reserve, assets []string) []model.Reserve {
	wanted := make(map[string]struct{}, len(assets))
	for _, asset := range assets {
		wanted[strings.ToUpper(asset)] = struct{}{}
	}
	out := make([]model.Reserve, 0, len(reserves))
	for _, reserve := range reserves {
		if len(wanted) > 0 {
			if _, ok := wanted[strings.ToUpper(reserve.Symbol)]; !ok {
				continue
			}
		}
		out = append(out, cloneReserve(reserve))
	}
	return out
}

func cloneReserve(r model.Reserve) model.Reserve {
	if r.PriceUSD != nil {
		price := *r.PriceUSD
		r.PriceUSD = &price
	}
	return r
}

func reserveResult(set model.ReserveSet, assets []string, fromCache bool) model.ReserveDataResult {
	return model.ReserveDataResult{
		ChainID:   set.ChainID,
		Timestamp: set.Timestamp,
		Reserves:  FilterReserves(set.Reserves, assets),
		Version:   set.Version,
		FromCache: fromCache,
	}
}
