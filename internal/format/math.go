package format

import (
	"math"
	"math/big"

	"github.com/shopspring/decimal"
)

const secondsPerYear = 31536000

var (
	usdDivisor = decimal.New(1, 8)
	bps        = decimal.NewFromInt(10000)
)

// units scales a raw integer amount by its token decimals.
func units(value *big.Int, decimals int32) decimal.Decimal {
	if value == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(value, -decimals)
}

// rayToDecimal turns a 27-decimal fixed point value into a plain fraction.
func rayToDecimal(value *big.Int) decimal.Decimal {
	return units(value, 27)
}

// apy compounds a per-year rate expressed as a fraction once per second.
func apy(apr decimal.Decimal) decimal.Decimal {
	rate := apr.InexactFloat64()
	if rate == 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(math.Pow(1+rate/secondsPerYear, secondsPerYear) - 1)
}

// linearInterest is the accrual factor of supply balances over elapsed seconds.
func linearInterest(apr decimal.Decimal, elapsed int64) decimal.Decimal {
	if elapsed <= 0 {
		return decimal.NewFromInt(1)
	}
	return decimal.NewFromInt(1).Add(apr.Mul(decimal.NewFromInt(elapsed)).Div(decimal.NewFromInt(secondsPerYear)))
}

// compoundedInterest is the accrual factor of borrow balances over elapsed seconds.
func compoundedInterest(apr decimal.Decimal, elapsed int64) decimal.Decimal {
	if elapsed <= 0 {
		return decimal.NewFromInt(1)
	}
	rate := apr.InexactFloat64()
	return decimal.NewFromFloat(math.Pow(1+rate/secondsPerYear, float64(elapsed)))
}

func int64Of(value *big.Int) int64 {
	if value == nil {
		return 0
	}
	return value.Int64()
}

// percent renders a basis point value as a fraction.
func percent(value *big.Int) decimal.Decimal {
	if value == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(value, 0).Div(bps)
}
