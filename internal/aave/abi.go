package aave

import (
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

const uiPoolDataProviderABIJSON = `[
  {
    "inputs": [{"name": "provider", "type": "address"}],
    "name": "getReservesData",
    "outputs": [
      {
        "name": "",
        "type": "tuple[]",
        "components": [
          {"name": "underlyingAsset", "type": "address"},
          {"name": "name", "type": "string"},
          {"name": "symbol", "type": "string"},
          {"name": "decimals", "type": "uint256"},
          {"name": "baseLTVasCollateral", "type": "uint256"},
          {"name": "reserveLiquidationThreshold", "type": "uint256"},
          {"name": "reserveLiquidationBonus", "type": "uint256"},
          {"name": "reserveFactor", "type": "uint256"},
          {"name": "usageAsCollateralEnabled", "type": "bool"},
          {"name": "borrowingEnabled", "type": "bool"},
          {"name": "stableBorrowRateEnabled", "type": "bool"},
          {"name": "isActive", "type": "bool"},
          {"name": "isFrozen", "type": "bool"},
          {"name": "liquidityIndex", "type": "uint128"},
          {"name": "variableBorrowIndex", "type": "uint128"},
          {"name": "liquidityRate", "type": "uint128"},
          {"name": "variableBorrowRate", "type": "uint128"},
          {"name": "stableBorrowRate", "type": "uint128"},
          {"name": "lastUpdateTimestamp", "type": "uint40"},
          {"name": "aTokenAddress", "type": "address"},
          {"name": "stableDebtTokenAddress", "type": "address"},
          {"name": "variableDebtTokenAddress", "type": "address"},
          {"name": "interestRateStrategyAddress", "type": "address"},
          {"name": "availableLiquidity", "type": "uint256"},
          {"name": "totalPrincipalStableDebt", "type": "uint256"},
          {"name": "averageStableRate", "type": "uint256"},
          {"name": "stableDebtLastUpdateTimestamp", "type": "uint256"},
          {"name": "totalScaledVariableDebt", "type": "uint256"},
          {"name": "priceInMarketReferenceCurrency", "type": "uint256"},
          {"name": "priceOracle", "type": "address"},
          {"name": "variableRateSlope1", "type": "uint256"},
          {"name": "variableRateSlope2", "type": "uint256"},
          {"name": "stableRateSlope1", "type": "uint256"},
          {"name": "stableRateSlope2", "type": "uint256"},
          {"name": "baseStableBorrowRate", "type": "uint256"},
          {"name": "baseVariableBorrowRate", "type": "uint256"},
          {"name": "optimalUsageRatio", "type": "uint256"},
          {"name": "isPaused", "type": "bool"},
          {"name": "isSiloedBorrowing", "type": "bool"},
          {"name": "accruedToTreasury", "type": "uint128"},
          {"name": "unbacked", "type": "uint128"},
          {"name": "isolationModeTotalDebt", "type": "uint128"},
          {"name": "flashLoanEnabled", "type": "bool"},
          {"name": "debtCeiling", "type": "uint256"},
          {"name": "debtCeilingDecimals", "type": "uint256"},
          {"name": "eModeCategoryId", "type": "uint8"},
          {"name": "borrowCap", "type": "uint256"},
          {"name": "supplyCap", "type": "uint256"},
          {"name": "eModeLtv", "type": "uint16"},
          {"name": "eModeLiquidationThreshold", "type": "uint16"},
          {"name": "eModeLiquidationBonus", "type": "uint16"},
          {"name": "eModePriceSource", "type": "address"},
          {"name": "eModeLabel", "type": "string"},
          {"name": "borrowableInIsolation", "type": "bool"}
        ]
      },
      {
        "name": "",
        "type": "tuple",
        "components": [
          {"name": "marketReferenceCurrencyUnit", "type": "uint256"},
          {"name": "marketReferenceCurrencyPriceInUsd", "type": "int256"},
          {"name": "networkBaseTokenPriceInUsd", "type": "int256"},
          {"name": "networkBaseTokenPriceDecimals", "type": "uint8"}
        ]
      }
    ],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [
      {"name": "provider", "type": "address"},
      {"name": "user", "type": "address"}
    ],
    "name": "getUserReservesData",
    "outputs": [
      {
        "name": "",
        "type": "tuple[]",
        "components": [
          {"name": "underlyingAsset", "type": "address"},
          {"name": "scaledATokenBalance", "type": "uint256"},
          {"name": "usageAsCollateralEnabledOnUser", "type": "bool"},
          {"name": "stableBorrowRate", "type": "uint256"},
          {"name": "scaledVariableDebt", "type": "uint256"},
          {"name": "principalStableDebt", "type": "uint256"},
          {"name": "stableBorrowLastUpdateTimestamp", "type": "uint256"}
        ]
      },
      {"name": "", "type": "uint8"}
    ],
    "stateMutability": "view",
    "type": "function"
  }
]`

var (
	uiPoolDataProviderABI     abi.ABI
	uiPoolDataProviderABIOnce sync.Once
	uiPoolDataProviderABIErr  error
)

// UIPoolDataProviderABI returns the parsed UiPoolDataProviderV3 ABI.
func UIPoolDataProviderABI() (abi.ABI, error) {
	uiPoolDataProviderABIOnce.Do(func() {
		uiPoolDataProviderABI, uiPoolDataProviderABIErr = abi.JSON(strings.NewReader(uiPoolDataProviderABIJSON))
	})
	return uiPoolDataProviderABI, uiPoolDataProviderABIErr
}

// ReserveData mirrors the AggregatedReserveData tuple returned by getReservesData.
type ReserveData struct {
	UnderlyingAsset                common.Address
	Name                           string
	Symbol                         string
	Decimals                       *big.Int
	BaseLTVasCollateral            *big.Int
	ReserveLiquidationThreshold    *big.Int
	ReserveLiquidationBonus        *big.Int
	ReserveFactor                  *big.Int
	UsageAsCollateralEnabled       bool
	BorrowingEnabled               bool
	StableBorrowRateEnabled        bool
	IsActive                       bool
	IsFrozen                       bool
	LiquidityIndex                 *big.Int
	VariableBorrowIndex            *big.Int
	LiquidityRate                  *big.Int
	VariableBorrowRate             *big.Int
	StableBorrowRate               *big.Int
	LastUpdateTimestamp            *big.Int
	ATokenAddress                  common.Address
	StableDebtTokenAddress         common.Address
	VariableDebtTokenAddress       common.Address
	InterestRateStrategyAddress    common.Address
	AvailableLiquidity             *big.Int
	TotalPrincipalStableDebt       *big.Int
	AverageStableRate              *big.Int
	StableDebtLastUpdateTimestamp  *big.Int
	TotalScaledVariableDebt        *big.Int
	PriceInMarketReferenceCurrency *big.Int
	PriceOracle                    common.Address
	VariableRateSlope1             *big.Int
	VariableRateSlope2             *big.Int
	StableRateSlope1               *big.Int
	StableRateSlope2               *big.Int
	BaseStableBorrowRate           *big.Int
	BaseVariableBorrowRate         *big.Int
	OptimalUsageRatio              *big.Int
	IsPaused                       bool
	IsSiloedBorrowing              bool
	AccruedToTreasury              *big.Int
	Unbacked                       *big.Int
	IsolationModeTotalDebt         *big.Int
	FlashLoanEnabled               bool
	DebtCeiling                    *big.Int
	DebtCeilingDecimals            *big.Int
	EModeCategoryId                uint8
	BorrowCap                      *big.Int
	SupplyCap                      *big.Int
	EModeLtv                       uint16
	EModeLiquidationThreshold      uint16
	EModeLiquidationBonus          uint16
	EModePriceSource               common.Address
	EModeLabel                     string
	BorrowableInIsolation          bool
}

// BaseCurrencyInfo mirrors the market reference currency tuple.
type BaseCurrencyInfo struct {
	MarketReferenceCurrencyUnit       *big.Int
	MarketReferenceCurrencyPriceInUsd *big.Int
	NetworkBaseTokenPriceInUsd        *big.Int
	NetworkBaseTokenPriceDecimals     uint8
}

// UserReserveData mirrors one entry of getUserReservesData.
type UserReserveData struct {
	UnderlyingAsset                 common.Address
	ScaledATokenBalance             *big.Int
	UsageAsCollateralEnabledOnUser  bool
	StableBorrowRate                *big.Int
	ScaledVariableDebt              *big.Int
	PrincipalStableDebt             *big.Int
	StableBorrowLastUpdateTimestamp *big.Int
}
