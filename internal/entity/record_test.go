package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRawReservationAcceptsMixedScalars(t *testing.T) {
	var rows []RawReservation
	err := json.Unmarshal([]byte(`[
		{"guestName":" Ana Silva ","checkInDate":"01/02/2025","checkOutDate":"05/02/2025","guests":2,"totalAmount":"1.234,56","platform":"Airbnb"},
		{"guestName":"Bob","guests":"3","totalAmount":450.5,"platform":null,"notes":true}
	]`), &rows)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, Loose("Ana Silva"), rows[0].GuestName)
	assert.Equal(t, Loose("2"), rows[0].Guests)
	assert.Equal(t, Loose("1.234,56"), rows[0].TotalAmount)
	assert.Equal(t, Loose("450.5"), rows[1].TotalAmount)
	assert.Equal(t, Loose(""), rows[1].Platform)
	assert.Equal(t, Loose("true"), rows[1].Notes)
	assert.Equal(t, Loose(""), rows[1].CheckIn)
}

func TestLooseNumbersUsePlainDecimals(t *testing.T) {
	var row RawReservation
	require.NoError(t, json.Unmarshal([]byte(`{"totalAmount":1.5e3,"guests":2E0,"notes":-4.25e-1}`), &row))
	assert.Equal(t, Loose("1500"), row.TotalAmount)
	assert.Equal(t, Loose("2"), row.Guests)
	assert.Equal(t, Loose("-0.425"), row.Notes)
}

func TestReservationOverlapsIsInclusive(t *testing.T) {
	existing := &Reservation{CheckIn: "2025-03-10", CheckOut: "2025-03-15"}

	assert.True(t, existing.Overlaps("2025-03-15", "2025-03-18"), "check-in on existing check-out")
	assert.True(t, existing.Overlaps("2025-03-05", "2025-03-10"), "check-out on existing check-in")
	assert.True(t, existing.Overlaps("2025-03-11", "2025-03-12"), "contained")
	assert.True(t, existing.Overlaps("2025-03-01", "2025-03-31"), "containing")
	assert.False(t, existing.Overlaps("2025-03-16", "2025-03-20"), "after")
	assert.False(t, existing.Overlaps("2025-03-01", "2025-03-09"), "before")
}

func TestOutcomeAccepted(t *testing.T) {
	assert.True(t, ValidationOutcome{IsValid: true}.Accepted())
	assert.False(t, ValidationOutcome{IsValid: true, IsDuplicate: true}.Accepted())
	assert.False(t, ValidationOutcome{IsValid: false}.Accepted())
}
