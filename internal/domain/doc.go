// Package domain models the space-weather insurance core: Kp forecast
// normalization, premium pricing, aurora-oval geometry and region matching.
//
// Everything in this package is synchronous and free of I/O. Callers own the
// clock, the network and any scheduling; the current instant and the forecast
// payload are always passed in as arguments.
//
// # Data Source
//
// Kp forecasts come from the NOAA SWPC planetary K-index products, e.g.
// https://services.swpc.noaa.gov/products/noaa-planetary-k-index-forecast.json.
// Two payload shapes are seen in the wild:
//
//	Headered table:  [["time_tag","kp","observed","noaa_scale"],
//	                  ["2025-01-01 00:00:00","2.67","observed",null], ...]
//	Records:         [{"time_tag":"2025-01-01T00:00:00","kp":2.67,"observed":"observed"}, ...]
//
// The shape is chosen by a structural check on the first element (array vs
// object), never by guessing at field names. See [Normalize].
//
// # Kp Conventions
//
// Timestamps without a zone designator are UTC; "Z" is appended before parsing.
// Kp may arrive as a JSON string or a number. The "observed" column takes the
// values "observed", "estimated" and "predicted"; only "observed" maps to
// [KindObserved], everything else (including a missing column) is a forecast.
//
// Official notation splits each Kp unit into thirds ("5-", "5o", "5+"). See
// [KpLabel]. The NOAA G-scale maps Kp 5..9 to G1..G5. See [StormScale].
//
// # Pricing
//
//	riskFactor     = 0.005 + (kp²/81) · assetMultiplier · 0.1
//	premiumPart    = replacementCost · riskFactor
//	riskMargin     = 0.2 · premiumPart
//	expenseLoading = 10000 + 0.05 · (premiumPart + riskMargin)
//	total          = premiumPart + riskMargin + expenseLoading
//
// Monetary amounts are carried as [decimal.Decimal] so the published quote is
// stable across platforms.
//
// # Geometry
//
// The aurora oval is a circle of constant geomagnetic latitude rotated into
// geographic coordinates about the geomagnetic north pole (80.37°N, 72.62°W).
// Points are kept when they fall more than 90° of longitude from the subsolar
// meridian. Country bounding boxes with west > east straddle the antimeridian.
package domain
