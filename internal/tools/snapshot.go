package tools

import (
	"context"
	"fmt"

	"aaveLens/internal/model"
)

// RateSnapshots reads the market fresh and returns the current rates of the
// requested assets (all when empty). The reserve cache is neither read nor written.
func (s *Service) RateSnapshots(ctx context.Context, chainID uint64, assets []string) ([]model.RateSnapshot, error) {
	capturedAt := s.now().UTC()
	set, err := s.FetchReserveSet(ctx, chainID, DefaultVersion)
	if err != nil {
		return nil, fmt.Errorf("snapshot rates for chain %d: %w", chainID, err)
	}

	reserves := FilterReserves(set.Reserves, assets)
	out := make([]model.RateSnapshot, 0, len(reserves))
	for _, reserve := range reserves {
		out = append(out, model.RateSnapshot{
			ChainID:           chainID,
			Symbol:            reserve.Symbol,
			UnderlyingAsset:   reserve.UnderlyingAsset,
			SupplyAPY:         reserve.SupplyAPY,
			VariableBorrowAPY: reserve.VariableBorrowAPY,
			StableBorrowAPY:   reserve.StableBorrowAPY,
			PriceInUSD:        reserve.PriceInUSD,
			TotalLiquidityUSD: reserve.TotalLiquidityUSD,
			CapturedAt:        capturedAt,
		})
	}
	return out, nil
}
