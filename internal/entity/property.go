package entity

import "time"

// Property is a catalog row. Fee fields are the per-property defaults applied
// to imported reservations.
type Property struct {
	ID                int       `json:"id" yaml:"id"`
	Name              string    `json:"name" yaml:"name"`
	CleaningFee       float64   `json:"cleaningFee" yaml:"cleaning_fee"`
	CheckInFee        float64   `json:"checkInFee" yaml:"check_in_fee"`
	CommissionPercent float64   `json:"commissionPercent" yaml:"commission_percent"`
	TeamPayment       float64   `json:"teamPayment" yaml:"team_payment"`
	CreatedAt         time.Time `json:"createdAt" yaml:"-"`
}
