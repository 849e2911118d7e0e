package model

// ReserveDataResult is returned by get_reserve_data. FromCache is always present.
type ReserveDataResult struct {
	ChainID   uint64    `json:"chain_id"`
	Timestamp string    `json:"timestamp"`
	Reserves  []Reserve `json:"reserves"`
	Version   string    `json:"version"`
	FromCache bool      `json:"fromCache"`
}

// UserDataResult is returned by get_user_data.
type UserDataResult struct {
	ChainID      uint64                `json:"chain_id"`
	UserAddress  string                `json:"user_address"`
	Timestamp    string                `json:"timestamp"`
	Summary      UserSummary           `json:"summary"`
	UserReserves []UserReservePosition `json:"user_reserves"`
}

// TokenInfoResult is returned by get_token_info.
type TokenInfoResult struct {
	ChainID   uint64      `json:"chain_id"`
	Timestamp string      `json:"timestamp"`
	Tokens    []TokenInfo `json:"tokens"`
}

// StrategyResult is returned by get_interest_rate_strategies when an asset is named.
// Strategy holds the parameter set plus the contract "address".
type StrategyResult struct {
	ChainID   uint64            `json:"chain_id"`
	Asset     string            `json:"asset"`
	Timestamp string            `json:"timestamp"`
	Strategy  map[string]string `json:"strategy"`
}

// StrategiesResult is returned by get_interest_rate_strategies without an asset.
// Each strategy holds its parameters plus the "assets" that use it.
type StrategiesResult struct {
	ChainID    uint64                    `json:"chain_id"`
	Timestamp  string                    `json:"timestamp"`
	Strategies map[string]map[string]any `json:"strategies"`
}

// HistoricalRatesResult is returned by get_historical_rates.
type HistoricalRatesResult struct {
	ChainID   uint64      `json:"chain_id"`
	Asset     string      `json:"asset"`
	Days      int         `json:"days"`
	Timestamp string      `json:"timestamp"`
	Rates     []RatePoint `json:"rates"`
}
