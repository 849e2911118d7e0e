package tools

import (
	"context"
	"fmt"

	"aaveLens/internal/model"
)

// MaxHistoryDays bounds the window of get_historical_rates.
const MaxHistoryDays = 365

// HistoricalRatesParams are the arguments of get_historical_rates.
type HistoricalRatesParams struct {
	ChainID uint64 `json:"chain_id"`
	Asset   string `json:"asset"`
	Days    int    `json:"days"`
}

// HistoricalRates returns one rate point per day for the asset, oldest first.
func (s *Service) HistoricalRates(ctx context.Context, params HistoricalRatesParams) (model.HistoricalRatesResult, error) {
	if params.Asset == "" {
		return model.HistoricalRatesResult{}, fmt.Errorf("%w: asset is required", ErrInvalidInput)
	}
	if params.Days < 1 || params.Days > MaxHistoryDays {
		return model.HistoricalRatesResult{}, fmt.Errorf("%w: days must be between 1 and %d, got %d", ErrInvalidInput, MaxHistoryDays, params.Days)
	}
	if _, err := s.registry.Market(params.ChainID); err != nil {
		return model.HistoricalRatesResult{}, fmt.Errorf("failed to fetch historical rates for %s on chain %d: %w", params.Asset, params.ChainID, err)
	}

	rates, err := s.history.Rates(ctx, params.ChainID, params.Asset, params.Days)
	if err != nil {
		return model.HistoricalRatesResult{}, fmt.Errorf("failed to fetch historical rates for %s on chain %d: %w", params.Asset, params.ChainID, err)
	}

	return model.HistoricalRatesResult{
		ChainID:   params.ChainID,
		Asset:     params.Asset,
		Days:      params.Days,
		Timestamp: s.timestamp(s.now()),
		Rates:     rates,
	}, nil
}
