package domain

import (
	"context"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

const (
	// BaseRisk is the risk factor of a quiet (kp=0) geomagnetic field.
	BaseRisk = 0.005

	kpScaleSquared = 81.0
	kpRiskWeight   = 0.1
)

var (
	riskMarginRate     = decimal.RequireFromString("0.2")
	expenseLoadingRate = decimal.RequireFromString("0.05")

	// AdministrativeFloor is the fixed portion of every expense loading.
	AdministrativeFloor = decimal.NewFromInt(10000)
)

// PremiumQuote is the breakdown of a single premium computation.
// Total always equals PremiumPart + RiskMargin + ExpenseLoading.
type PremiumQuote struct {
	PremiumPart    decimal.Decimal `json:"premium_part"`
	RiskMargin     decimal.Decimal `json:"risk_margin"`
	ExpenseLoading decimal.Decimal `json:"expense_loading"`
	Total          decimal.Decimal `json:"total"`
}

// RiskFactor maps a Kp index and asset class to a fractional risk factor.
// It is total over kp and increases monotonically for kp >= 0.
func RiskFactor(kp float64, class AssetClass) float64 {
	return BaseRisk + (kp*kp/kpScaleSquared)*class.Multiplier()*kpRiskWeight
}

// CalculatePremium prices a replacement cost at the given risk factor.
func CalculatePremium(replacementCost decimal.Decimal, riskFactor float64) (PremiumQuote, error) {
	if !replacementCost.IsPositive() {
		return PremiumQuote{}, fmt.Errorf("calculate premium: cost %s: %w", replacementCost, ErrNonPositiveCost)
	}
	if math.IsNaN(riskFactor) || math.IsInf(riskFactor, 0) || riskFactor < 0 {
		return PremiumQuote{}, fmt.Errorf("calculate premium: risk factor %v: %w", riskFactor, ErrInvalidRiskFactor)
	}

	premiumPart := replacementCost.Mul(decimal.NewFromFloat(riskFactor))
	riskMargin := premiumPart.Mul(riskMarginRate)
	expenseLoading := AdministrativeFloor.Add(premiumPart.Add(riskMargin).Mul(expenseLoadingRate))

	return PremiumQuote{
		PremiumPart:    premiumPart,
		RiskMargin:     riskMargin,
		ExpenseLoading: expenseLoading,
		Total:          premiumPart.Add(riskMargin).Add(expenseLoading),
	}, nil
}

// PriceAsset is CalculatePremium(asset.ReplacementCost, RiskFactor(kp, asset.Class)).
func PriceAsset(asset InsurableAsset, kp float64) (PremiumQuote, error) {
	if !asset.Class.Valid() {
		return PremiumQuote{}, fmt.Errorf("price asset: %w", ErrUnknownAssetClass)
	}
	return CalculatePremium(asset.ReplacementCost, RiskFactor(kp, asset.Class))
}

// Pricer quotes an asset at a given Kp. Implementations may cache.
type Pricer interface {
	Price(ctx context.Context, asset InsurableAsset, kp float64) (PremiumQuote, error)
}

// FormulaPricer evaluates the premium formula directly.
type FormulaPricer struct{}

// Price implements Pricer.
func (FormulaPricer) Price(_ context.Context, asset InsurableAsset, kp float64) (PremiumQuote, error) {
	return PriceAsset(asset, kp)
}

// QuoteKey is the cache key for a quote on asset at kp. Equal inputs always
// produce the same key.
func QuoteKey(asset InsurableAsset, kp float64) string {
	return fmt.Sprintf("%s|%s|%g", asset.Class, asset.ReplacementCost.String(), kp)
}
