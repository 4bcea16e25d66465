package entity

import "time"

// Reservation is a persisted booking. CheckIn/CheckOut are YYYY-MM-DD.
type Reservation struct {
	ID            int       `json:"id"`
	PropertyID    int       `json:"propertyId"`
	GuestName     string    `json:"guestName"`
	CheckIn       string    `json:"checkInDate"`
	CheckOut      string    `json:"checkOutDate"`
	Guests        int       `json:"guests"`
	Platform      string    `json:"platform"`
	TotalAmount   float64   `json:"totalAmount"`
	PlatformFee   float64   `json:"platformFee"`
	CleaningFee   float64   `json:"cleaningFee"`
	CheckInFee    float64   `json:"checkInFee"`
	CommissionFee float64   `json:"commissionFee"`
	TeamPayment   float64   `json:"teamPayment"`
	NetAmount     float64   `json:"netAmount"`
	Contact       string    `json:"contact,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	NeedsReview   bool      `json:"needsReview"`
	Source        string    `json:"source"`
	ImportRunID   *string   `json:"importRunId,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Overlaps reports whether r and the [checkIn, checkOut] range share a day.
// Endpoints are inclusive and dates compare as YYYY-MM-DD strings.
func (r *Reservation) Overlaps(checkIn, checkOut string) bool {
	return r.CheckIn <= checkOut && r.CheckOut >= checkIn
}
