package domain

import "errors"

var (
	// ErrNonPositiveCost is returned when a replacement cost is zero or negative.
	ErrNonPositiveCost = errors.New("domain: replacement cost must be positive")

	// ErrInvalidRiskFactor is returned for negative or non-finite risk factors.
	ErrInvalidRiskFactor = errors.New("domain: risk factor must be finite and non-negative")

	ErrUnknownAssetClass = errors.New("domain: unknown asset class")

	// ErrInvalidTargetTime is returned when a target instant cannot be parsed.
	ErrInvalidTargetTime = errors.New("domain: invalid target time")

	ErrInvalidBounds = errors.New("domain: invalid bounding box")
)
