package validation

import (
	"github.com/joseph-ayodele/rental-ledger/internal/entity"
)

// MarkIntraBatchDuplicates flags a row that overlaps an earlier accepted row
// of the same batch for the same property. The earlier row is reported as the
// conflict with ID 0. The input is not modified.
func MarkIntraBatchDuplicates(outcomes []entity.ValidationOutcome) []entity.ValidationOutcome {
	out := make([]entity.ValidationOutcome, len(outcomes))
	copy(out, outcomes)

	var accepted []entity.NormalizedReservation
	for i, o := range out {
		if o.IsDuplicate || o.Record.CheckIn == "" || o.Record.CheckOut == "" || o.Record.PropertyID <= 0 {
			continue
		}
		if prev := overlapping(accepted, o.Record); prev != nil {
			out[i].IsDuplicate = true
			out[i].Conflict = &entity.Reservation{
				PropertyID: prev.PropertyID,
				GuestName:  prev.GuestName,
				CheckIn:    prev.CheckIn,
				CheckOut:   prev.CheckOut,
				Platform:   prev.Platform,
			}
			continue
		}
		if o.IsValid {
			accepted = append(accepted, o.Record)
		}
	}
	return out
}

func overlapping(accepted []entity.NormalizedReservation, rec entity.NormalizedReservation) *entity.NormalizedReservation {
	for i := range accepted {
		a := &accepted[i]
		if a.PropertyID == rec.PropertyID && a.CheckIn <= rec.CheckOut && a.CheckOut >= rec.CheckIn {
			return a
		}
	}
	return nil
}

// Summarize tallies outcomes. Duplicates are counted on their own even when
// they also fail other checks.
func Summarize(outcomes []entity.ValidationOutcome) entity.Summary {
	s := entity.Summary{Total: len(outcomes)}
	for _, o := range outcomes {
		switch {
		case o.IsDuplicate:
			s.Duplicates++
		case o.IsValid:
			s.Valid++
		default:
			s.Invalid++
		}
	}
	return s
}

// Split partitions outcomes into the valid, duplicate and invalid buckets.
func Split(outcomes []entity.ValidationOutcome) (valid, duplicates, invalid []entity.ValidationOutcome) {
	for _, o := range outcomes {
		switch {
		case o.IsDuplicate:
			duplicates = append(duplicates, o)
		case o.IsValid:
			valid = append(valid, o)
		default:
			invalid = append(invalid, o)
		}
	}
	return valid, duplicates, invalid
}
