package tools

import (
	"context"
	"fmt"
	"strings"

	"aaveLens/internal/model"
	"aaveLens/internal/registry"
)

// TokenInfoParams are the arguments of get_token_info.
type TokenInfoParams struct {
	ChainID uint64   `json:"chain_id"`
	Tokens  []string `json:"tokens"`
}

// TokenInfo describes the requested assets of a market from the address book.
// Unknown symbols are skipped; without a list every asset is returned in book order.
func (s *Service) TokenInfo(ctx context.Context, params TokenInfoParams) (model.TokenInfoResult, error) {
	market, err := s.registry.Market(params.ChainID)
	if err != nil {
		return model.TokenInfoResult{}, fmt.Errorf("failed to fetch token info for chain %d: %w", params.ChainID, err)
	}

	tokens := make([]model.TokenInfo, 0)
	if len(params.Tokens) == 0 {
		for _, asset := range market.Assets {
			tokens = append(tokens, tokenInfo(asset))
		}
	} else {
		for _, symbol := range params.Tokens {
			if asset, ok := market.Asset(strings.ToUpper(symbol)); ok {
				tokens = append(tokens, tokenInfo(asset))
			}
		}
	}

	return model.TokenInfoResult{
		ChainID:   params.ChainID,
		Timestamp: s.timestamp(s.now()),
		Tokens:    tokens,
	}, nil
}

func tokenInfo(asset registry.Asset) model.TokenInfo {
	return model.TokenInfo{
		Symbol:               asset.Symbol,
		Underlying:           asset.Underlying,
		AToken:               asset.AToken,
		VariableDebtToken:    asset.VariableDebtToken,
		StableDebtToken:      asset.StableDebtToken,
		Decimals:             asset.Decimals,
		InterestRateStrategy: asset.InterestRateStrategy,
	}
}
