package model

// UserReservePosition is a user's raw position in one reserve, with integers rendered as decimal strings.
type UserReservePosition struct {
	UnderlyingAsset                 string `json:"underlyingAsset"`
	ScaledATokenBalance             string `json:"scaledATokenBalance"`
	UsageAsCollateralEnabledOnUser  bool   `json:"usageAsCollateralEnabledOnUser"`
	StableBorrowRate                string `json:"stableBorrowRate"`
	ScaledVariableDebt              string `json:"scaledVariableDebt"`
	PrincipalStableDebt             string `json:"principalStableDebt"`
	StableBorrowLastUpdateTimestamp int64  `json:"stableBorrowLastUpdateTimestamp"`
}

// UserReserveSummary is a valued user position in one reserve.
type UserReserveSummary struct {
	UnderlyingAsset                string `json:"underlyingAsset"`
	Symbol                         string `json:"symbol"`
	UsageAsCollateralEnabledOnUser bool   `json:"usageAsCollateralEnabledOnUser"`
	UnderlyingBalance              string `json:"underlyingBalance"`
	UnderlyingBalanceUSD           string `json:"underlyingBalanceUSD"`
	VariableBorrows                string `json:"variableBorrows"`
	VariableBorrowsUSD             string `json:"variableBorrowsUSD"`
	StableBorrows                  string `json:"stableBorrows"`
	StableBorrowsUSD               string `json:"stableBorrowsUSD"`
	TotalBorrows                   string `json:"totalBorrows"`
	TotalBorrowsUSD                string `json:"totalBorrowsUSD"`
}

// UserSummary aggregates a user's collateral, debt and health.
type UserSummary struct {
	UserReservesData                       []UserReserveSummary `json:"userReservesData"`
	TotalLiquidityUSD                      string               `json:"totalLiquidityUSD"`
	TotalCollateralUSD                     string               `json:"totalCollateralUSD"`
	TotalBorrowsUSD                        string               `json:"totalBorrowsUSD"`
	NetWorthUSD                            string               `json:"netWorthUSD"`
	AvailableBorrowsUSD                    string               `json:"availableBorrowsUSD"`
	TotalCollateralMarketReferenceCurrency string               `json:"totalCollateralMarketReferenceCurrency"`
	TotalBorrowsMarketReferenceCurrency    string               `json:"totalBorrowsMarketReferenceCurrency"`
	CurrentLoanToValue                     string               `json:"currentLoanToValue"`
	CurrentLiquidationThreshold            string               `json:"currentLiquidationThreshold"`
	HealthFactor                           string               `json:"healthFactor"`
	UserEmodeCategoryID                    uint8                `json:"userEmodeCategoryId"`
}
