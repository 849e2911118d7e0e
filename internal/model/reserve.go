package model

// Reserve is a formatted reserve of a lending market.
// PriceUSD is attached from an external price source after formatting and sits
// next to the oracle-derived PriceInUSD; USD totals always use the oracle price.
type Reserve struct {
	ID                          string `json:"id"`
	UnderlyingAsset             string `json:"underlyingAsset"`
	Name                        string `json:"name"`
	Symbol                      string `json:"symbol"`
	Decimals                    int64  `json:"decimals"`
	IsActive                    bool   `json:"isActive"`
	IsFrozen                    bool   `json:"isFrozen"`
	IsPaused                    bool   `json:"isPaused"`
	IsSiloedBorrowing           bool   `json:"isSiloedBorrowing"`
	UsageAsCollateralEnabled    bool   `json:"usageAsCollateralEnabled"`
	BorrowingEnabled            bool   `json:"borrowingEnabled"`
	StableBorrowRateEnabled     bool   `json:"stableBorrowRateEnabled"`
	FlashLoanEnabled            bool   `json:"flashLoanEnabled"`
	BorrowableInIsolation       bool   `json:"borrowableInIsolation"`
	ATokenAddress               string `json:"aTokenAddress"`
	StableDebtTokenAddress      string `json:"stableDebtTokenAddress"`
	VariableDebtTokenAddress    string `json:"variableDebtTokenAddress"`
	InterestRateStrategyAddress string `json:"interestRateStrategyAddress"`
	LastUpdateTimestamp         int64  `json:"lastUpdateTimestamp"`

	BaseLTVasCollateral                  string `json:"baseLTVasCollateral"`
	ReserveLiquidationThreshold          string `json:"reserveLiquidationThreshold"`
	ReserveLiquidationBonus              string `json:"reserveLiquidationBonus"`
	FormattedBaseLTVasCollateral         string `json:"formattedBaseLTVasCollateral"`
	FormattedReserveLiquidationThreshold string `json:"formattedReserveLiquidationThreshold"`
	FormattedReserveLiquidationBonus     string `json:"formattedReserveLiquidationBonus"`
	ReserveFactor                        string `json:"reserveFactor"`

	SupplyAPR         string `json:"supplyAPR"`
	SupplyAPY         string `json:"supplyAPY"`
	VariableBorrowAPR string `json:"variableBorrowAPR"`
	VariableBorrowAPY string `json:"variableBorrowAPY"`
	StableBorrowAPR   string `json:"stableBorrowAPR"`
	StableBorrowAPY   string `json:"stableBorrowAPY"`

	AvailableLiquidity string `json:"availableLiquidity"`
	TotalVariableDebt  string `json:"totalVariableDebt"`
	TotalStableDebt    string `json:"totalStableDebt"`
	TotalDebt          string `json:"totalDebt"`
	TotalLiquidity     string `json:"totalLiquidity"`
	BorrowUsageRatio   string `json:"borrowUsageRatio"`
	SupplyCap          string `json:"supplyCap"`
	BorrowCap          string `json:"borrowCap"`
	DebtCeiling        string `json:"debtCeiling"`

	PriceInMarketReferenceCurrency          string `json:"priceInMarketReferenceCurrency"`
	FormattedPriceInMarketReferenceCurrency string `json:"formattedPriceInMarketReferenceCurrency"`
	PriceInUSD                              string `json:"priceInUSD"`
	AvailableLiquidityUSD                   string `json:"availableLiquidityUSD"`
	TotalDebtUSD                            string `json:"totalDebtUSD"`
	TotalLiquidityUSD                       string `json:"totalLiquidityUSD"`

	EModeCategoryID            uint8  `json:"eModeCategoryId"`
	EModeLabel                 string `json:"eModeLabel"`
	FormattedEModeLtv          string `json:"formattedEModeLtv"`
	FormattedEModeLiqThreshold string `json:"formattedEModeLiquidationThreshold"`

	PriceUSD *float64 `json:"priceUSD,omitempty"`
}

// ReserveSet is the complete reserve list of one market at a point in time.
type ReserveSet struct {
	ChainID   uint64    `json:"chain_id"`
	Timestamp string    `json:"timestamp"`
	Reserves  []Reserve `json:"reserves"`
	Version   string    `json:"version"`
}
