package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// AssetClass is the category of an insured asset. Each class carries a fixed
// exposure multiplier used by [RiskFactor].
type AssetClass uint8

const (
	AssetOther AssetClass = iota
	AssetSatellite
	AssetPowerGrid
	AssetAviation
)

var assetClassNames = map[AssetClass]string{
	AssetOther:     "other",
	AssetSatellite: "satellite",
	AssetPowerGrid: "power_grid",
	AssetAviation:  "aviation",
}

// Multiplier returns the exposure multiplier for the class, or 0 for a value
// outside the enumeration.
func (c AssetClass) Multiplier() float64 {
	switch c {
	case AssetSatellite:
		return 5
	case AssetPowerGrid:
		return 4
	case AssetAviation:
		return 2
	case AssetOther:
		return 1
	default:
		return 0
	}
}

// Valid reports whether c is one of the enumerated classes.
func (c AssetClass) Valid() bool {
	_, ok := assetClassNames[c]
	return ok
}

func (c AssetClass) String() string {
	if name, ok := assetClassNames[c]; ok {
		return name
	}
	return fmt.Sprintf("AssetClass(%d)", uint8(c))
}

// MarshalText implements encoding.TextMarshaler.
func (c AssetClass) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("marshal asset class %d: %w", uint8(c), ErrUnknownAssetClass)
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *AssetClass) UnmarshalText(text []byte) error {
	parsed, err := ParseAssetClass(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseAssetClass accepts the canonical names plus the spellings used by the
// dashboard ("Satellite", "Power Grid", "power-grid").
func ParseAssetClass(s string) (AssetClass, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	switch key {
	case "satellite":
		return AssetSatellite, nil
	case "power_grid", "powergrid", "grid":
		return AssetPowerGrid, nil
	case "aviation", "airline":
		return AssetAviation, nil
	case "other":
		return AssetOther, nil
	}
	return 0, fmt.Errorf("parse asset class %q: %w", s, ErrUnknownAssetClass)
}

// InsurableAsset is a priced exposure: a class and its replacement cost.
type InsurableAsset struct {
	Class           AssetClass      `json:"asset_class"`
	ReplacementCost decimal.Decimal `json:"replacement_cost"`
}

// NewInsurableAsset validates its inputs and returns the asset.
func NewInsurableAsset(class AssetClass, cost decimal.Decimal) (InsurableAsset, error) {
	if !class.Valid() {
		return InsurableAsset{}, fmt.Errorf("new asset: %w", ErrUnknownAssetClass)
	}
	if !cost.IsPositive() {
		return InsurableAsset{}, fmt.Errorf("new asset: cost %s: %w", cost, ErrNonPositiveCost)
	}
	return InsurableAsset{Class: class, ReplacementCost: cost}, nil
}
