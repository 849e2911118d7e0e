package format

import (
	"strings"

	"github.com/shopspring/decimal"

	"aaveLens/internal/aave"
	"aaveLens/internal/model"
)

// computed holds the intermediate figures shared by reserve and user formatting.
type computed struct {
	decimals         int32
	normalizedIncome decimal.Decimal
	normalizedDebt   decimal.Decimal
	priceInRef       decimal.Decimal
	priceInUSD       decimal.Decimal
}

// Reserves formats every reserve of a getReservesData response as of currentTimestamp (unix seconds).
func Reserves(resp aave.ReservesResponse, currentTimestamp int64, poolAddressesProvider string) []model.Reserve {
	out := make([]model.Reserve, 0, len(resp.Reserves))
	for _, reserve := range resp.Reserves {
		out = append(out, formatReserve(reserve, resp.BaseCurrency, currentTimestamp, poolAddressesProvider))
	}
	return out
}

func compute(reserve aave.ReserveData, base aave.BaseCurrencyInfo, now int64) computed {
	c := computed{decimals: int32(int64Of(reserve.Decimals))}

	elapsed := now - int64Of(reserve.LastUpdateTimestamp)
	c.normalizedIncome = rayToDecimal(reserve.LiquidityIndex).Mul(linearInterest(rayToDecimal(reserve.LiquidityRate), elapsed))
	c.normalizedDebt = rayToDecimal(reserve.VariableBorrowIndex).Mul(compoundedInterest(rayToDecimal(reserve.VariableBorrowRate), elapsed))

	unit := decimal.NewFromInt(1)
	if base.MarketReferenceCurrencyUnit != nil && base.MarketReferenceCurrencyUnit.Sign() > 0 {
		unit = decimal.NewFromBigInt(base.MarketReferenceCurrencyUnit, 0)
	}
	c.priceInRef = units(reserve.PriceInMarketReferenceCurrency, 0).Div(unit)
	c.priceInUSD = c.priceInRef.Mul(units(base.MarketReferenceCurrencyPriceInUsd, 0)).Div(usdDivisor)
	return c
}

func formatReserve(reserve aave.ReserveData, base aave.BaseCurrencyInfo, now int64, poolAddressesProvider string) model.Reserve {
	c := compute(reserve, base, now)

	availableLiquidity := units(reserve.AvailableLiquidity, c.decimals)
	totalVariableDebt := units(reserve.TotalScaledVariableDebt, c.decimals).Mul(c.normalizedDebt)
	stableElapsed := now - int64Of(reserve.StableDebtLastUpdateTimestamp)
	totalStableDebt := units(reserve.TotalPrincipalStableDebt, c.decimals).
		Mul(compoundedInterest(rayToDecimal(reserve.AverageStableRate), stableElapsed))
	totalDebt := totalVariableDebt.Add(totalStableDebt)
	totalLiquidity := availableLiquidity.Add(totalDebt)

	usage := decimal.Zero
	if totalLiquidity.IsPositive() {
		usage = totalDebt.Div(totalLiquidity)
	}

	supplyAPR := rayToDecimal(reserve.LiquidityRate)
	variableAPR := rayToDecimal(reserve.VariableBorrowRate)
	stableAPR := rayToDecimal(reserve.StableBorrowRate)

	bonus := decimal.Zero
	if reserve.ReserveLiquidationBonus != nil && reserve.ReserveLiquidationBonus.Sign() > 0 {
		bonus = percent(reserve.ReserveLiquidationBonus).Sub(decimal.NewFromInt(1))
	}

	underlying := strings.ToLower(reserve.UnderlyingAsset.Hex())
	return model.Reserve{
		ID:                          underlying + strings.ToLower(poolAddressesProvider),
		UnderlyingAsset:             underlying,
		Name:                        reserve.Name,
		Symbol:                      reserve.Symbol,
		Decimals:                    int64(c.decimals),
		IsActive:                    reserve.IsActive,
		IsFrozen:                    reserve.IsFrozen,
		IsPaused:                    reserve.IsPaused,
		IsSiloedBorrowing:           reserve.IsSiloedBorrowing,
		UsageAsCollateralEnabled:    reserve.UsageAsCollateralEnabled,
		BorrowingEnabled:            reserve.BorrowingEnabled,
		StableBorrowRateEnabled:     reserve.StableBorrowRateEnabled,
		FlashLoanEnabled:            reserve.FlashLoanEnabled,
		BorrowableInIsolation:       reserve.BorrowableInIsolation,
		ATokenAddress:               reserve.ATokenAddress.Hex(),
		StableDebtTokenAddress:      reserve.StableDebtTokenAddress.Hex(),
		VariableDebtTokenAddress:    reserve.VariableDebtTokenAddress.Hex(),
		InterestRateStrategyAddress: reserve.InterestRateStrategyAddress.Hex(),
		LastUpdateTimestamp:         int64Of(reserve.LastUpdateTimestamp),

		BaseLTVasCollateral:                  units(reserve.BaseLTVasCollateral, 0).String(),
		ReserveLiquidationThreshold:          units(reserve.ReserveLiquidationThreshold, 0).String(),
		ReserveLiquidationBonus:              units(reserve.ReserveLiquidationBonus, 0).String(),
		FormattedBaseLTVasCollateral:         percent(reserve.BaseLTVasCollateral).String(),
		FormattedReserveLiquidationThreshold: percent(reserve.ReserveLiquidationThreshold).String(),
		FormattedReserveLiquidationBonus:     bonus.String(),
		ReserveFactor:                        percent(reserve.ReserveFactor).String(),

		SupplyAPR:         supplyAPR.String(),
		SupplyAPY:         apy(supplyAPR).String(),
		VariableBorrowAPR: variableAPR.String(),
		VariableBorrowAPY: apy(variableAPR).String(),
		StableBorrowAPR:   stableAPR.String(),
		StableBorrowAPY:   apy(stableAPR).String(),

		AvailableLiquidity: availableLiquidity.String(),
		TotalVariableDebt:  totalVariableDebt.String(),
		TotalStableDebt:    totalStableDebt.String(),
		TotalDebt:          totalDebt.String(),
		TotalLiquidity:     totalLiquidity.String(),
		BorrowUsageRatio:   usage.String(),
		SupplyCap:          units(reserve.SupplyCap, 0).String(),
		BorrowCap:          units(reserve.BorrowCap, 0).String(),
		DebtCeiling:        units(reserve.DebtCeiling, int32(int64Of(reserve.DebtCeilingDecimals))).String(),

		PriceInMarketReferenceCurrency:          units(reserve.PriceInMarketReferenceCurrency, 0).String(),
		FormattedPriceInMarketReferenceCurrency: c.priceInRef.String(),
		PriceInUSD:                              c.priceInUSD.String(),
		AvailableLiquidityUSD:                   availableLiquidity.Mul(c.priceInUSD).String(),
		TotalDebtUSD:                            totalDebt.Mul(c.priceInUSD).String(),
		TotalLiquidityUSD:                       totalLiquidity.Mul(c.priceInUSD).String(),

		EModeCategoryID:            reserve.EModeCategoryId,
		EModeLabel:                 reserve.EModeLabel,
		FormattedEModeLtv:          decimal.NewFromInt(int64(reserve.EModeLtv)).Div(bps).String(),
		FormattedEModeLiqThreshold: decimal.NewFromInt(int64(reserve.EModeLiquidationThreshold)).Div(bps).String(),
	}
}
