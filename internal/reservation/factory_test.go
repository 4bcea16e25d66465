package reservation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/rental-ledger/constants"
	"github.com/joseph-ayodele/rental-ledger/internal/common"
	"github.com/joseph-ayodele/rental-ledger/internal/entity"
)

var aroeira = &entity.Property{
	ID:                7,
	Name:              "Aroeira I",
	CleaningFee:       45,
	CheckInFee:        20,
	CommissionPercent: 20,
	TeamPayment:       30,
}

func record(platform, total string) entity.NormalizedReservation {
	return entity.NormalizedReservation{
		Row:         1,
		PropertyID:  7,
		GuestName:   "Ana Silva",
		CheckIn:     "2025-06-01",
		CheckOut:    "2025-06-05",
		Guests:      "3",
		TotalAmount: total,
		Platform:    platform,
		Contact:     "ana@example.com",
	}
}

func TestBuildFees(t *testing.T) {
	tests := []struct {
		platform     string
		wantPlatform constants.Platform
		wantFee      float64
		wantNet      float64
	}{
		{"Airbnb", constants.Airbnb, 140, 815},
		{"Booking.com", constants.Booking, 150, 805},
		{"VRBO", constants.VRBO, 120, 835},
		{"Direct", constants.Direct, 0, 955},
		{"Other", constants.Direct, 0, 955},
		{"", constants.Direct, 0, 955},
	}
	for _, tt := range tests {
		t.Run(tt.platform, func(t *testing.T) {
			r, err := Build(record(tt.platform, "1000.00"), aroeira, "run-1")
			require.NoError(t, err)
			assert.Equal(t, string(tt.wantPlatform), r.Platform)
			assert.Equal(t, 1000.0, r.TotalAmount)
			assert.Equal(t, tt.wantFee, r.PlatformFee)
			assert.Equal(t, 45.0, r.CleaningFee)
			assert.Equal(t, 20.0, r.CheckInFee)
			assert.Equal(t, 200.0, r.CommissionFee)
			assert.Equal(t, 30.0, r.TeamPayment)
			assert.Equal(t, tt.wantNet, r.NetAmount)
		})
	}
}

func TestBuildCopiesRecord(t *testing.T) {
	rec := record("Airbnb", "333.33")
	rec.NeedsReview = true
	r, err := Build(rec, aroeira, "run-1")
	require.NoError(t, err)

	assert.Equal(t, 7, r.PropertyID)
	assert.Equal(t, "Ana Silva", r.GuestName)
	assert.Equal(t, "2025-06-01", r.CheckIn)
	assert.Equal(t, "2025-06-05", r.CheckOut)
	assert.Equal(t, 3, r.Guests)
	assert.Equal(t, 46.67, r.PlatformFee)
	assert.Equal(t, 66.67, r.CommissionFee)
	assert.Equal(t, 241.66, r.NetAmount)
	assert.True(t, r.NeedsReview)
	assert.Equal(t, constants.ReservationSourceControlFile, r.Source)
	require.NotNil(t, r.ImportRunID)
	assert.Equal(t, "run-1", *r.ImportRunID)

	r, err = Build(rec, aroeira, "")
	require.NoError(t, err)
	assert.Nil(t, r.ImportRunID)
}

func TestBuildRejects(t *testing.T) {
	_, err := Build(record("Airbnb", "100.00"), nil, "")
	assert.True(t, errors.Is(err, common.ErrInvalidInput))

	_, err = Build(record("Airbnb", "100.00"), &entity.Property{ID: 8}, "")
	assert.True(t, errors.Is(err, common.ErrInvalidInput))

	rec := record("Airbnb", "100.00")
	rec.Guests = "2.5"
	_, err = Build(rec, aroeira, "")
	assert.True(t, errors.Is(err, common.ErrInvalidInput))

	_, err = Build(record("Airbnb", ""), aroeira, "")
	assert.True(t, errors.Is(err, common.ErrInvalidInput))
}
