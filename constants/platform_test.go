package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePlatform(t *testing.T) {
	tests := []struct {
		in   string
		want Platform
	}{
		{"Airbnb", Airbnb},
		{"  AIRBNB.com ", Airbnb},
		{"Booking", Booking},
		{"booking.com", Booking},
		{"VRBO / HomeAway", VRBO},
		{"Direct", Direct},
		{"", Direct},
		{"Reserva directa", Direct},
		{"Expedia", Other},
		{"other", Other},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePlatform(tt.in))
		})
	}
}

func TestCanonicalizePlatformFoldsOtherIntoDirect(t *testing.T) {
	assert.Equal(t, Direct, CanonicalizePlatform("Expedia"))
	assert.Equal(t, Direct, CanonicalizePlatform(""))
	assert.Equal(t, Booking, CanonicalizePlatform("Booking.com"))
}

func TestPlatformFeeRate(t *testing.T) {
	assert.InDelta(t, 0.14, PlatformFeeRate(Airbnb), 1e-9)
	assert.InDelta(t, 0.15, PlatformFeeRate(Booking), 1e-9)
	assert.InDelta(t, 0.12, PlatformFeeRate(VRBO), 1e-9)
	assert.InDelta(t, 0.0, PlatformFeeRate(Direct), 1e-9)
	assert.InDelta(t, 0.0, PlatformFeeRate(Other), 1e-9)
}
