package constants

import (
	"strings"
)

type Platform string

const (
	Airbnb  Platform = "Airbnb"
	Booking Platform = "Booking.com"
	VRBO    Platform = "VRBO"
	Direct  Platform = "Direct"
	Other   Platform = "Other"
)

var allPlatforms = []Platform{
	Airbnb,
	Booking,
	VRBO,
	Direct,
	Other,
}

// platformFeeRates are fractions of the reservation total kept by the channel.
var platformFeeRates = map[Platform]float64{
	Airbnb:  0.14,
	Booking: 0.15,
	VRBO:    0.12,
	Direct:  0,
}

// AsStringSlice lists the platform names in display order.
func AsStringSlice() []string {
	result := make([]string, len(allPlatforms))
	for i, p := range allPlatforms {
		result[i] = string(p)
	}
	return result
}

// NormalizePlatform maps a free-text channel label onto the closed platform set.
// Empty input is a direct booking; anything unrecognised is Other.
func NormalizePlatform(input string) Platform {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return Direct
	}

	// substring synonyms, checked in order
	synonyms := []struct {
		needle   string
		platform Platform
	}{
		{"airbnb", Airbnb},
		{"air bnb", Airbnb},
		{"booking", Booking},
		{"vrbo", VRBO},
		{"homeaway", VRBO},
		{"direct", Direct},
		{"directo", Direct},
		{"particular", Direct},
	}
	for _, s := range synonyms {
		if strings.Contains(normalized, s.needle) {
			return s.platform
		}
	}

	for _, p := range allPlatforms {
		if normalized == strings.ToLower(string(p)) {
			return p
		}
	}
	return Other
}

// CanonicalizePlatform is NormalizePlatform restricted to the billable set:
// Other folds into Direct.
func CanonicalizePlatform(input string) Platform {
	p := NormalizePlatform(input)
	if p == Other {
		return Direct
	}
	return p
}

// PlatformFeeRate returns the commission rate charged by the channel.
func PlatformFeeRate(p Platform) float64 {
	return platformFeeRates[CanonicalizePlatform(string(p))]
}
