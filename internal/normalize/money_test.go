package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMoney(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		flagged bool
	}{
		{"1.234,56", "1234.56", false},
		{"1234,56", "1234.56", false},
		{"1,234.56", "1234.56", false},
		{"-12", "12.00", false},
		{"abc", "0.00", false},
		{"", "0.00", false},
		{"€ 450", "450.00", false},
		{"450.5", "450.50", false},
		{"1.234.567", "1.23", false},
		{"250000", "250000.00", true},
		{"100000", "100000.00", false},
		{"100.000,01", "100000.01", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, flagged := Money(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.flagged, flagged)
		})
	}
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 63.0, Round2(63.0000001))
	assert.Equal(t, 0.13, Round2(0.125))
	assert.Equal(t, 1234.57, Round2(1234.5678))
}
