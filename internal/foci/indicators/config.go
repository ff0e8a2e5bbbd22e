package indicators

import "github.com/shopspring/decimal"

// Config holds the named thresholds the built-in evaluators apply. Treat as
// immutable after construction; the evaluators never modify it.
type Config struct {
	// Total-foreign-ownership severity thresholds (percent).
	OwnershipModerate decimal.Decimal // monitoring
	OwnershipMajor    decimal.Decimal // mitigation
	OwnershipCritical decimal.Decimal // may preclude clearance

	// Single foreign owner direct-stake thresholds (percent).
	ConcentratedOwnership decimal.Decimal // moderate indicator
	ConcentratedCritical  decimal.Decimal // upgrades to mitigation-required

	// Control-candidate severity thresholds (percent).
	ControlCritical decimal.Decimal
	ControlMajor    decimal.Decimal

	// CoordinatedInfluenceCount is the number of distinct foreign ownership
	// relationships that suggests coordinated influence.
	CoordinatedInfluenceCount int

	// HighTechCodePrefixes are classification code prefixes that flag
	// potential technology transfer exposure.
	HighTechCodePrefixes []string
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		OwnershipModerate:         decimal.NewFromInt(5),
		OwnershipMajor:            decimal.NewFromInt(10),
		OwnershipCritical:         decimal.NewFromInt(25),
		ConcentratedOwnership:     decimal.NewFromInt(10),
		ConcentratedCritical:      decimal.NewFromInt(25),
		ControlCritical:           decimal.NewFromInt(50),
		ControlMajor:              decimal.NewFromInt(25),
		CoordinatedInfluenceCount: 3,
		HighTechCodePrefixes:      []string{"334", "335", "336", "541"},
	}
}
