package reservation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/rental-ledger/constants"
	"github.com/joseph-ayodele/rental-ledger/internal/common"
	"github.com/joseph-ayodele/rental-ledger/internal/entity"
	"github.com/joseph-ayodele/rental-ledger/internal/normalize"
)

// Build assembles a persistable reservation from an accepted record and its
// property. Fees:
//
//	platformFee   = total × rate(platform)
//	cleaningFee   = property.CleaningFee
//	checkInFee    = property.CheckInFee
//	commissionFee = total × property.CommissionPercent / 100
//	teamPayment   = property.TeamPayment
//	netAmount     = total − platformFee − cleaningFee
//
// Commission and team payment are settled with the owner and stay out of net.
func Build(rec entity.NormalizedReservation, prop *entity.Property, runID string) (*entity.Reservation, error) {
	if prop == nil || prop.ID <= 0 {
		return nil, fmt.Errorf("%w: record %d has no resolved property", common.ErrInvalidInput, rec.Row)
	}
	if rec.PropertyID != 0 && rec.PropertyID != prop.ID {
		return nil, fmt.Errorf("%w: record %d belongs to property %d, not %d", common.ErrInvalidInput, rec.Row, rec.PropertyID, prop.ID)
	}

	total, err := strconv.ParseFloat(strings.TrimSpace(rec.TotalAmount), 64)
	if err != nil {
		return nil, fmt.Errorf("%w: total amount %q: %v", common.ErrInvalidInput, rec.TotalAmount, err)
	}
	guests, err := parseGuests(rec.Guests)
	if err != nil {
		return nil, fmt.Errorf("%w: guests %q: %v", common.ErrInvalidInput, rec.Guests, err)
	}

	platform := constants.CanonicalizePlatform(rec.Platform)
	platformFee := normalize.Round2(total * constants.PlatformFeeRate(platform))
	cleaningFee := normalize.Round2(prop.CleaningFee)

	r := &entity.Reservation{
		PropertyID:    prop.ID,
		GuestName:     strings.TrimSpace(rec.GuestName),
		CheckIn:       rec.CheckIn,
		CheckOut:      rec.CheckOut,
		Guests:        guests,
		Platform:      string(platform),
		TotalAmount:   normalize.Round2(total),
		PlatformFee:   platformFee,
		CleaningFee:   cleaningFee,
		CheckInFee:    normalize.Round2(prop.CheckInFee),
		CommissionFee: normalize.Round2(total * prop.CommissionPercent / 100),
		TeamPayment:   normalize.Round2(prop.TeamPayment),
		NetAmount:     normalize.Round2(total - platformFee - cleaningFee),
		Contact:       rec.Contact,
		Notes:         rec.Notes,
		NeedsReview:   rec.NeedsReview,
		Source:        constants.ReservationSourceControlFile,
	}
	if runID != "" {
		id := runID
		r.ImportRunID = &id
	}
	return r, nil
}

// parseGuests accepts integral values written as "3" or "3.0".
func parseGuests(s string) (int, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	n := int(f)
	if float64(n) != f {
		return 0, fmt.Errorf("not a whole number")
	}
	return n, nil
}
