package services

import (
	"github.com/shopspring/decimal"

	"github.com/Zoemateus324/sosmecanicos-sub000/internal/config"
)

// FeeBreakdown is the money split stored on every proposal. All three
// values are rounded to 2 decimal places; Total is always Original+Fee.
type FeeBreakdown struct {
	Original float64
	Fee      float64
	Total    float64
}

// PlatformFeeRate returns the configured marketplace fee rate. Every
// call site that needs the rate goes through here; nothing else may
// hard-code it.
func PlatformFeeRate() float64 {
	return config.GetConfig().Payment.PlatformFeeRate
}

// ComputeFee derives the platform fee and client total from a provider's
// asking price. Decimal arithmetic avoids float drift on sums like
// 19.90 * 0.15.
func ComputeFee(originalValue float64) FeeBreakdown {
	return computeFeeAt(originalValue, PlatformFeeRate())
}

func computeFeeAt(originalValue, rate float64) FeeBreakdown {
	original := decimal.NewFromFloat(originalValue).Round(2)
	fee := original.Mul(decimal.NewFromFloat(rate)).Round(2)
	total := original.Add(fee)

	return FeeBreakdown{
		Original: original.InexactFloat64(),
		Fee:      fee.InexactFloat64(),
		Total:    total.InexactFloat64(),
	}
}

// ProviderSplitPercent is the share of every charge routed to the
// provider's wallet at the gateway. With a 0.15 rate the provider
// receives 100/115 of the total, i.e. ~86.96%.
func ProviderSplitPercent() float64 {
	rate := decimal.NewFromFloat(PlatformFeeRate())
	one := decimal.NewFromInt(1)
	share := one.Div(one.Add(rate)).Mul(decimal.NewFromInt(100)).Round(2)
	return share.InexactFloat64()
}
