package format

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"aaveLens/internal/aave"
)

const now = int64(1700000000)

var (
	wethAddress = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	daiAddress  = common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F")
)

func pow10(n int64) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(n), nil)
}

func tokens(amount int64, decimals int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(amount), pow10(decimals))
}

func testReserve(asset common.Address, symbol string, priceUSD int64) aave.ReserveData {
	return aave.ReserveData{
		UnderlyingAsset:                asset,
		Symbol:                         symbol,
		Decimals:                       big.NewInt(18),
		BaseLTVasCollateral:            big.NewInt(7500),
		ReserveLiquidationThreshold:    big.NewInt(8000),
		ReserveLiquidationBonus:        big.NewInt(10500),
		ReserveFactor:                  big.NewInt(1000),
		LiquidityIndex:                 pow10(27),
		VariableBorrowIndex:            pow10(27),
		LiquidityRate:                  big.NewInt(0),
		VariableBorrowRate:             big.NewInt(0),
		StableBorrowRate:               big.NewInt(0),
		LastUpdateTimestamp:            big.NewInt(now),
		AvailableLiquidity:             tokens(1000, 18),
		TotalScaledVariableDebt:        tokens(500, 18),
		TotalPrincipalStableDebt:       big.NewInt(0),
		AverageStableRate:              big.NewInt(0),
		StableDebtLastUpdateTimestamp:  big.NewInt(now),
		PriceInMarketReferenceCurrency: tokens(priceUSD, 8),
		SupplyCap:                      big.NewInt(2000000),
		BorrowCap:                      big.NewInt(1000000),
		IsActive:                       true,
	}
}

func testBase() aave.BaseCurrencyInfo {
	return aave.BaseCurrencyInfo{
		MarketReferenceCurrencyUnit:       pow10(8),
		MarketReferenceCurrencyPriceInUsd: pow10(8),
		NetworkBaseTokenPriceInUsd:        tokens(2000, 8),
		NetworkBaseTokenPriceDecimals:     8,
	}
}

func TestReservesTotalsAndPercentages(t *testing.T) {
	resp := aave.ReservesResponse{
		Reserves:     []aave.ReserveData{testReserve(daiAddress, "DAI", 1)},
		BaseCurrency: testBase(),
	}
	reserves := Reserves(resp, now, "0x2f39d218133AFaB8F2B819B1066c7E434Ad94E9e")
	if len(reserves) != 1 {
		t.Fatalf("expected one reserve, got %d", len(reserves))
	}
	got := reserves[0]

	checks := map[string][2]string{
		"availableLiquidity":  {got.AvailableLiquidity, "1000"},
		"totalVariableDebt":   {got.TotalVariableDebt, "500"},
		"totalDebt":           {got.TotalDebt, "500"},
		"totalLiquidity":      {got.TotalLiquidity, "1500"},
		"priceInUSD":          {got.PriceInUSD, "1"},
		"totalLiquidityUSD":   {got.TotalLiquidityUSD, "1500"},
		"formattedLTV":        {got.FormattedBaseLTVasCollateral, "0.75"},
		"formattedThreshold":  {got.FormattedReserveLiquidationThreshold, "0.8"},
		"formattedBonus":      {got.FormattedReserveLiquidationBonus, "0.05"},
		"reserveFactor":       {got.ReserveFactor, "0.1"},
		"supplyAPY":           {got.SupplyAPY, "0"},
		"supplyCap":           {got.SupplyCap, "2000000"},
		"rawLiquidationBonus": {got.ReserveLiquidationBonus, "10500"},
	}
	for name, pair := range checks {
		if pair[0] != pair[1] {
			t.Fatalf("%s: got %s want %s", name, pair[0], pair[1])
		}
	}

	usage := decimal.RequireFromString(got.BorrowUsageRatio)
	if usage.Sub(decimal.RequireFromString("0.3333")).Abs().GreaterThan(decimal.RequireFromString("0.0001")) {
		t.Fatalf("usage ratio mismatch: %s", got.BorrowUsageRatio)
	}
	if got.UnderlyingAsset != "0x6b175474e89094c44da98b954eedeac495271d0f" {
		t.Fatalf("underlying not lowercased: %s", got.UnderlyingAsset)
	}
	if got.PriceUSD != nil {
		t.Fatalf("formatting must not set an external price")
	}
}

func TestReservesCompoundsSupplyRate(t *testing.T) {
	reserve := testReserve(daiAddress, "DAI", 1)
	reserve.LiquidityRate = new(big.Int).Mul(big.NewInt(5), pow10(25))

	got := Reserves(aave.ReservesResponse{Reserves: []aave.ReserveData{reserve}, BaseCurrency: testBase()}, now, "")[0]
	if got.SupplyAPR != "0.05" {
		t.Fatalf("supply apr mismatch: %s", got.SupplyAPR)
	}
	supplyAPY := decimal.RequireFromString(got.SupplyAPY)
	if supplyAPY.LessThan(decimal.RequireFromString("0.0512")) || supplyAPY.GreaterThan(decimal.RequireFromString("0.0513")) {
		t.Fatalf("supply apy out of range: %s", got.SupplyAPY)
	}
}

func TestUserSummaryHealthFactor(t *testing.T) {
	reserves := aave.ReservesResponse{
		Reserves: []aave.ReserveData{
			testReserve(wethAddress, "WETH", 2000),
			testReserve(daiAddress, "DAI", 1),
		},
		BaseCurrency: testBase(),
	}
	user := aave.UserReservesResponse{
		UserReserves: []aave.UserReserveData{
			{
				UnderlyingAsset:                 wethAddress,
				ScaledATokenBalance:             tokens(10, 18),
				UsageAsCollateralEnabledOnUser:  true,
				StableBorrowRate:                big.NewInt(0),
				ScaledVariableDebt:              big.NewInt(0),
				PrincipalStableDebt:             big.NewInt(0),
				StableBorrowLastUpdateTimestamp: big.NewInt(0),
			},
			{
				UnderlyingAsset:                 daiAddress,
				ScaledATokenBalance:             big.NewInt(0),
				StableBorrowRate:                big.NewInt(0),
				ScaledVariableDebt:              tokens(5000, 18),
				PrincipalStableDebt:             big.NewInt(0),
				StableBorrowLastUpdateTimestamp: big.NewInt(0),
			},
		},
	}

	summary := UserSummary(reserves, user, now)
	checks := map[string][2]string{
		"totalCollateralUSD":  {summary.TotalCollateralUSD, "20000"},
		"totalBorrowsUSD":     {summary.TotalBorrowsUSD, "5000"},
		"availableBorrowsUSD": {summary.AvailableBorrowsUSD, "10000"},
		"currentLoanToValue":  {summary.CurrentLoanToValue, "0.75"},
		"liquidationThresh":   {summary.CurrentLiquidationThreshold, "0.8"},
		"healthFactor":        {summary.HealthFactor, "3.2"},
		"netWorthUSD":         {summary.NetWorthUSD, "15000"},
	}
	for name, pair := range checks {
		if pair[0] != pair[1] {
			t.Fatalf("%s: got %s want %s", name, pair[0], pair[1])
		}
	}
	if len(summary.UserReservesData) != 2 || summary.UserReservesData[1].Symbol != "DAI" {
		t.Fatalf("user reserves mismatch: %+v", summary.UserReservesData)
	}
}

func TestUserSummaryWithoutDebt(t *testing.T) {
	reserves := aave.ReservesResponse{
		Reserves:     []aave.ReserveData{testReserve(wethAddress, "WETH", 2000)},
		BaseCurrency: testBase(),
	}
	user := aave.UserReservesResponse{
		UserReserves: []aave.UserReserveData{{
			UnderlyingAsset:                 wethAddress,
			ScaledATokenBalance:             tokens(1, 18),
			UsageAsCollateralEnabledOnUser:  false,
			StableBorrowRate:                big.NewInt(0),
			ScaledVariableDebt:              big.NewInt(0),
			PrincipalStableDebt:             big.NewInt(0),
			StableBorrowLastUpdateTimestamp: big.NewInt(0),
		}},
	}

	summary := UserSummary(reserves, user, now)
	if summary.HealthFactor != "-1" {
		t.Fatalf("expected -1 health factor, got %s", summary.HealthFactor)
	}
	if summary.TotalCollateralUSD != "0" {
		t.Fatalf("collateral disabled by user must not count: %s", summary.TotalCollateralUSD)
	}
	if summary.TotalLiquidityUSD != "2000" {
		t.Fatalf("liquidity mismatch: %s", summary.TotalLiquidityUSD)
	}
}

func TestPositionsRendersIntegers(t *testing.T) {
	positions := Positions(aave.UserReservesResponse{UserReserves: []aave.UserReserveData{{
		UnderlyingAsset:                 daiAddress,
		ScaledATokenBalance:             tokens(3, 18),
		StableBorrowLastUpdateTimestamp: big.NewInt(42),
	}}})
	if len(positions) != 1 {
		t.Fatalf("expected one position")
	}
	if positions[0].ScaledATokenBalance != "3000000000000000000" || positions[0].ScaledVariableDebt != "0" {
		t.Fatalf("position mismatch: %+v", positions[0])
	}
	if positions[0].StableBorrowLastUpdateTimestamp != 42 {
		t.Fatalf("timestamp mismatch: %d", positions[0].StableBorrowLastUpdateTimestamp)
	}
}
