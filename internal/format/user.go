package format

import (
	"strings"

	"github.com/shopspring/decimal"

	"aaveLens/internal/aave"
	"aaveLens/internal/model"
)

// Positions renders raw user positions with integers as decimal strings.
func Positions(resp aave.UserReservesResponse) []model.UserReservePosition {
	out := make([]model.UserReservePosition, 0, len(resp.UserReserves))
	for _, pos := range resp.UserReserves {
		out = append(out, model.UserReservePosition{
			UnderlyingAsset:                 strings.ToLower(pos.UnderlyingAsset.Hex()),
			ScaledATokenBalance:             units(pos.ScaledATokenBalance, 0).String(),
			UsageAsCollateralEnabledOnUser:  pos.UsageAsCollateralEnabledOnUser,
			StableBorrowRate:                units(pos.StableBorrowRate, 0).String(),
			ScaledVariableDebt:              units(pos.ScaledVariableDebt, 0).String(),
			PrincipalStableDebt:             units(pos.PrincipalStableDebt, 0).String(),
			StableBorrowLastUpdateTimestamp: int64Of(pos.StableBorrowLastUpdateTimestamp),
		})
	}
	return out
}

// UserSummary values a user's positions against the market's reserves.
// The health factor is "-1" when the user has no debt.
func UserSummary(reserves aave.ReservesResponse, user aave.UserReservesResponse, currentTimestamp int64) model.UserSummary {
	byAsset := make(map[string]aave.ReserveData, len(reserves.Reserves))
	for _, reserve := range reserves.Reserves {
		byAsset[strings.ToLower(reserve.UnderlyingAsset.Hex())] = reserve
	}

	var (
		totalLiquidityUSD    = decimal.Zero
		totalCollateralUSD   = decimal.Zero
		totalCollateralRef   = decimal.Zero
		totalBorrowsUSD      = decimal.Zero
		totalBorrowsRef      = decimal.Zero
		weightedLTV          = decimal.Zero
		weightedLiqThreshold = decimal.Zero
	)

	summary := model.UserSummary{
		UserReservesData:    make([]model.UserReserveSummary, 0, len(user.UserReserves)),
		UserEmodeCategoryID: user.UserEmodeCategoryID,
	}

	for _, pos := range user.UserReserves {
		asset := strings.ToLower(pos.UnderlyingAsset.Hex())
		reserve, ok := byAsset[asset]
		if !ok {
			continue
		}
		c := compute(reserve, reserves.BaseCurrency, currentTimestamp)

		balance := units(pos.ScaledATokenBalance, c.decimals).Mul(c.normalizedIncome)
		variable := units(pos.ScaledVariableDebt, c.decimals).Mul(c.normalizedDebt)
		stableElapsed := currentTimestamp - int64Of(pos.StableBorrowLastUpdateTimestamp)
		stable := units(pos.PrincipalStableDebt, c.decimals).
			Mul(compoundedInterest(rayToDecimal(pos.StableBorrowRate), stableElapsed))
		borrows := variable.Add(stable)

		balanceUSD := balance.Mul(c.priceInUSD)
		borrowsUSD := borrows.Mul(c.priceInUSD)

		totalLiquidityUSD = totalLiquidityUSD.Add(balanceUSD)
		totalBorrowsUSD = totalBorrowsUSD.Add(borrowsUSD)
		totalBorrowsRef = totalBorrowsRef.Add(borrows.Mul(c.priceInRef))

		ltv := percent(reserve.BaseLTVasCollateral)
		liqThreshold := percent(reserve.ReserveLiquidationThreshold)
		if user.UserEmodeCategoryID != 0 && reserve.EModeCategoryId == user.UserEmodeCategoryID {
			ltv = decimal.NewFromInt(int64(reserve.EModeLtv)).Div(bps)
			liqThreshold = decimal.NewFromInt(int64(reserve.EModeLiquidationThreshold)).Div(bps)
		}
		if pos.UsageAsCollateralEnabledOnUser && reserve.ReserveLiquidationThreshold != nil && reserve.ReserveLiquidationThreshold.Sign() != 0 {
			totalCollateralUSD = totalCollateralUSD.Add(balanceUSD)
			totalCollateralRef = totalCollateralRef.Add(balance.Mul(c.priceInRef))
			weightedLTV = weightedLTV.Add(balanceUSD.Mul(ltv))
			weightedLiqThreshold = weightedLiqThreshold.Add(balanceUSD.Mul(liqThreshold))
		}

		summary.UserReservesData = append(summary.UserReservesData, model.UserReserveSummary{
			UnderlyingAsset:                asset,
			Symbol:                         reserve.Symbol,
			UsageAsCollateralEnabledOnUser: pos.UsageAsCollateralEnabledOnUser,
			UnderlyingBalance:              balance.String(),
			UnderlyingBalanceUSD:           balanceUSD.String(),
			VariableBorrows:                variable.String(),
			VariableBorrowsUSD:             variable.Mul(c.priceInUSD).String(),
			StableBorrows:                  stable.String(),
			StableBorrowsUSD:               stable.Mul(c.priceInUSD).String(),
			TotalBorrows:                   borrows.String(),
			TotalBorrowsUSD:                borrowsUSD.String(),
		})
	}

	currentLTV := decimal.Zero
	currentLiqThreshold := decimal.Zero
	if totalCollateralUSD.IsPositive() {
		currentLTV = weightedLTV.Div(totalCollateralUSD)
		currentLiqThreshold = weightedLiqThreshold.Div(totalCollateralUSD)
	}

	available := weightedLTV.Sub(totalBorrowsUSD)
	if available.IsNegative() {
		available = decimal.Zero
	}

	healthFactor := "-1"
	if totalBorrowsUSD.IsPositive() {
		healthFactor = weightedLiqThreshold.Div(totalBorrowsUSD).String()
	}

	summary.TotalLiquidityUSD = totalLiquidityUSD.String()
	summary.TotalCollateralUSD = totalCollateralUSD.String()
	summary.TotalBorrowsUSD = totalBorrowsUSD.String()
	summary.NetWorthUSD = totalLiquidityUSD.Sub(totalBorrowsUSD).String()
	summary.AvailableBorrowsUSD = available.String()
	summary.TotalCollateralMarketReferenceCurrency = totalCollateralRef.String()
	summary.TotalBorrowsMarketReferenceCurrency = totalBorrowsRef.String()
	summary.CurrentLoanToValue = currentLTV.String()
	summary.CurrentLiquidationThreshold = currentLiqThreshold.String()
	summary.HealthFactor = healthFactor
	return summary
}
