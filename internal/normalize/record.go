package normalize

import (
	"strings"

	"github.com/joseph-ayodele/rental-ledger/constants"
	"github.com/joseph-ayodele/rental-ledger/internal/entity"
)

// Normalizer turns untrusted extracted rows into NormalizedReservations.
type Normalizer struct {
	reviewThreshold float64
}

// New returns a Normalizer; a non-positive threshold uses DefaultReviewThreshold.
func New(reviewThreshold float64) *Normalizer {
	if reviewThreshold <= 0 {
		reviewThreshold = DefaultReviewThreshold
	}
	return &Normalizer{reviewThreshold: reviewThreshold}
}

// Reservation normalizes one raw row. row is the 1-based position in the
// extracted list and is carried through for reporting.
func (n *Normalizer) Reservation(row int, raw entity.RawReservation, propertyID int) entity.NormalizedReservation {
	amount := Amount(raw.TotalAmount.String())
	rec := entity.NormalizedReservation{
		Row:         row,
		PropertyID:  propertyID,
		GuestName:   strings.TrimSpace(raw.GuestName.String()),
		CheckIn:     Date(raw.CheckIn.String()),
		CheckOut:    Date(raw.CheckOut.String()),
		RawCheckIn:  raw.CheckIn.String(),
		RawCheckOut: raw.CheckOut.String(),
		Guests:      strings.TrimSpace(raw.Guests.String()),
		Platform:    string(constants.NormalizePlatform(raw.Platform.String())),
		Contact:     strings.TrimSpace(raw.Contact.String()),
		Notes:       strings.TrimSpace(raw.Notes.String()),
		NeedsReview: amount > n.reviewThreshold,
	}
	if strings.TrimSpace(raw.TotalAmount.String()) != "" {
		rec.TotalAmount = FormatAmount(amount)
	}
	return rec
}

// Reservations normalizes every row, numbering from 1.
func (n *Normalizer) Reservations(raws []entity.RawReservation, propertyID int) []entity.NormalizedReservation {
	out := make([]entity.NormalizedReservation, 0, len(raws))
	for i, raw := range raws {
		out = append(out, n.Reservation(i+1, raw, propertyID))
	}
	return out
}
