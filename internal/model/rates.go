package model

import "time"

// RatePoint is one day of a historical rate series. APYs are percentages.
type RatePoint struct {
	Timestamp         int64   `json:"timestamp"`
	SupplyAPY         float64 `json:"supplyAPY"`
	VariableBorrowAPY float64 `json:"variableBorrowAPY"`
}

// RateSnapshot records the rates of one reserve as observed at CapturedAt.
type RateSnapshot struct {
	ChainID           uint64    `json:"chain_id"`
	Symbol            string    `json:"symbol"`
	UnderlyingAsset   string    `json:"underlying_asset"`
	SupplyAPY         string    `json:"supply_apy"`
	VariableBorrowAPY string    `json:"variable_borrow_apy"`
	StableBorrowAPY   string    `json:"stable_borrow_apy"`
	PriceInUSD        string    `json:"price_in_usd"`
	TotalLiquidityUSD string    `json:"total_liquidity_usd"`
	CapturedAt        time.Time `json:"captured_at"`
}
