package domain

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRiskFactor(t *testing.T) {
	tests := []struct {
		name  string
		kp    float64
		class AssetClass
		want  float64
	}{
		{"quiet field is base risk", 0, AssetSatellite, BaseRisk},
		{"satellite kp 8", 8, AssetSatellite, 0.005 + (64.0/81.0)*5*0.1},
		{"power grid kp 9", 9, AssetPowerGrid, 0.005 + 4*0.1},
		{"aviation kp 4.5", 4.5, AssetAviation, 0.005 + (20.25/81.0)*2*0.1},
		{"other kp 3", 3, AssetOther, 0.005 + (9.0/81.0)*0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, RiskFactor(tt.kp, tt.class), 1e-12)
		})
	}
}

func TestRiskFactor_Monotonic(t *testing.T) {
	for _, class := range []AssetClass{AssetOther, AssetAviation, AssetPowerGrid, AssetSatellite} {
		prev := RiskFactor(0, class)
		for kp := 0.25; kp <= 9; kp += 0.25 {
			rf := RiskFactor(kp, class)
			assert.Greater(t, rf, prev, "class %s kp %v", class, kp)
			prev = rf
		}
	}
}

func TestRiskFactor_ClassOrdering(t *testing.T) {
	kp := 6.0
	assert.Greater(t, RiskFactor(kp, AssetSatellite), RiskFactor(kp, AssetPowerGrid))
	assert.Greater(t, RiskFactor(kp, AssetPowerGrid), RiskFactor(kp, AssetAviation))
	assert.Greater(t, RiskFactor(kp, AssetAviation), RiskFactor(kp, AssetOther))
}

func TestCalculatePremium(t *testing.T) {
	t.Run("zero risk leaves only the administrative floor", func(t *testing.T) {
		q, err := CalculatePremium(decimal.NewFromInt(1_000_000), 0)
		require.NoError(t, err)
		assert.True(t, q.PremiumPart.IsZero())
		assert.True(t, q.RiskMargin.IsZero())
		assert.True(t, q.Total.Equal(decimal.NewFromInt(10000)), "total = %s", q.Total)
	})

	t.Run("satellite at kp 8", func(t *testing.T) {
		rf := RiskFactor(8, AssetSatellite)
		q, err := CalculatePremium(decimal.NewFromInt(5_250_000), rf)
		require.NoError(t, err)

		pp := 5_250_000 * rf
		rm := 0.2 * pp
		el := 10000 + 0.05*(pp+rm)
		assert.InDelta(t, pp, q.PremiumPart.InexactFloat64(), 1e-6)
		assert.InDelta(t, rm, q.RiskMargin.InexactFloat64(), 1e-6)
		assert.InDelta(t, el, q.ExpenseLoading.InexactFloat64(), 1e-6)
		assert.InDelta(t, pp+rm+el, q.Total.InexactFloat64(), 1e-6)
		assert.InDelta(t, 2_656_408.33, q.Total.InexactFloat64(), 0.01)
	})

	t.Run("total is the sum of its parts", func(t *testing.T) {
		q, err := CalculatePremium(decimal.RequireFromString("123456.78"), 0.0371)
		require.NoError(t, err)
		sum := q.PremiumPart.Add(q.RiskMargin).Add(q.ExpenseLoading)
		assert.True(t, q.Total.Equal(sum))
		assert.True(t, q.RiskMargin.Equal(q.PremiumPart.Mul(decimal.RequireFromString("0.2"))))
	})

	t.Run("floor holds for every positive cost", func(t *testing.T) {
		for _, cost := range []string{"0.01", "1", "999999999"} {
			q, err := CalculatePremium(decimal.RequireFromString(cost), 0.2)
			require.NoError(t, err)
			assert.True(t, q.Total.GreaterThanOrEqual(AdministrativeFloor), "cost %s", cost)
		}
	})

	t.Run("non-positive cost", func(t *testing.T) {
		for _, cost := range []int64{0, -1, -500000} {
			_, err := CalculatePremium(decimal.NewFromInt(cost), 0.1)
			require.ErrorIs(t, err, ErrNonPositiveCost)
		}
	})

	t.Run("negative risk factor", func(t *testing.T) {
		_, err := CalculatePremium(decimal.NewFromInt(100), -0.1)
		require.ErrorIs(t, err, ErrInvalidRiskFactor)
	})
}

func TestCalculatePremium_MonotonicInCost(t *testing.T) {
	rf := RiskFactor(5, AssetPowerGrid)
	prev, err := CalculatePremium(decimal.NewFromInt(1000), rf)
	require.NoError(t, err)
	for _, cost := range []int64{10_000, 100_000, 1_000_000, 10_000_000} {
		q, err := CalculatePremium(decimal.NewFromInt(cost), rf)
		require.NoError(t, err)
		assert.True(t, q.Total.GreaterThan(prev.Total))
		prev = q
	}
}

func TestFormulaPricer(t *testing.T) {
	asset, err := NewInsurableAsset(AssetAviation, decimal.NewFromInt(2_000_000))
	require.NoError(t, err)

	got, err := FormulaPricer{}.Price(context.Background(), asset, 6)
	require.NoError(t, err)
	want, err := CalculatePremium(asset.ReplacementCost, RiskFactor(6, AssetAviation))
	require.NoError(t, err)
	assert.True(t, got.Total.Equal(want.Total))

	_, err = PriceAsset(InsurableAsset{Class: AssetClass(42), ReplacementCost: decimal.NewFromInt(1)}, 3)
	require.ErrorIs(t, err, ErrUnknownAssetClass)
}

func TestQuoteKey(t *testing.T) {
	a := InsurableAsset{Class: AssetSatellite, ReplacementCost: decimal.NewFromInt(500)}
	b := InsurableAsset{Class: AssetPowerGrid, ReplacementCost: decimal.NewFromInt(500)}

	assert.Equal(t, "satellite|500|7.33", QuoteKey(a, 7.33))
	assert.Equal(t, QuoteKey(a, 3), QuoteKey(a, 3))
	assert.NotEqual(t, QuoteKey(a, 3), QuoteKey(b, 3))
	assert.NotEqual(t, QuoteKey(a, 3), QuoteKey(a, 3.33))
}
