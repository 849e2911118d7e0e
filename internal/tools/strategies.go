package tools

import (
	"context"
	"fmt"
	"strings"

	"aaveLens/internal/model"
)

// StrategiesParams are the arguments of get_interest_rate_strategies.
type StrategiesParams struct {
	ChainID uint64 `json:"chain_id"`
	Asset   string `json:"asset"`
}

// InterestRateStrategies returns the strategy of one asset when params.Asset is set
// (a model.StrategyResult), otherwise every strategy of the market (a model.StrategiesResult).
func (s *Service) InterestRateStrategies(ctx context.Context, params StrategiesParams) (any, error) {
	var (
		result any
		err    error
	)
	if params.Asset != "" {
		result, err = s.assetStrategy(params.ChainID, params.Asset)
	} else {
		result, err = s.allStrategies(params.ChainID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch interest rate strategies for chain %d: %w", params.ChainID, err)
	}
	return result, nil
}

func (s *Service) assetStrategy(chainID uint64, symbol string) (model.StrategyResult, error) {
	market, err := s.registry.Market(chainID)
	if err != nil {
		return model.StrategyResult{}, err
	}
	upper := strings.ToUpper(symbol)
	asset, ok := market.Asset(upper)
	if !ok || asset.InterestRateStrategy == "" {
		return model.StrategyResult{}, fmt.Errorf("asset %s or its interest rate strategy not found for chain %d", symbol, chainID)
	}
	strategy, ok := market.Strategy(asset.InterestRateStrategy)
	if !ok {
		return model.StrategyResult{}, fmt.Errorf("interest rate strategy details not found for address %s on chain %d", asset.InterestRateStrategy, chainID)
	}

	details := make(map[string]string, len(strategy.Params)+1)
	for name, value := range strategy.Params {
		details[name] = value
	}
	details["address"] = asset.InterestRateStrategy

	return model.StrategyResult{
		ChainID:   chainID,
		Asset:     upper,
		Timestamp: s.timestamp(s.now()),
		Strategy:  details,
	}, nil
}

func (s *Service) allStrategies(chainID uint64) (model.StrategiesResult, error) {
	market, err := s.registry.Market(chainID)
	if err != nil {
		return model.StrategiesResult{}, err
	}

	strategies := make(map[string]map[string]any, len(market.Strategies))
	for _, strategy := range market.Strategies {
		details := make(map[string]any, len(strategy.Params)+1)
		for name, value := range strategy.Params {
			details[name] = value
		}
		details["assets"] = market.AssetsUsing(strategy.Address)
		strategies[strategy.Address] = details
	}

	return model.StrategiesResult{
		ChainID:    chainID,
		Timestamp:  s.timestamp(s.now()),
		Strategies: strategies,
	}, nil
}
