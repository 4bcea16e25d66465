package validation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/rental-ledger/internal/common"
	"github.com/joseph-ayodele/rental-ledger/internal/entity"
)

const (
	DefaultMaxStayDays = 30
	DefaultMaxGuests   = 20
	DefaultWorkers     = 8

	// MaxGuestNameLength rejects table lines the extractor swallowed into a name.
	MaxGuestNameLength = 120

	dateLayout = "2006-01-02"
)

// Field labels used in messages.
const (
	FieldGuestName = "guest name"
	FieldCheckIn   = "check-in date"
	FieldCheckOut  = "check-out date"
	FieldGuests    = "guests"
	FieldAmount    = "total amount"
	FieldProperty  = "property"
)

// Store is the read side the validator needs. GetProperty returns an error
// wrapping common.ErrNotFound for unknown ids. FindOverlapping returns the
// reservations of propertyID whose inclusive range intersects
// [checkIn, checkOut], oldest check-in first.
type Store interface {
	GetProperty(ctx context.Context, id int) (*entity.Property, error)
	FindOverlapping(ctx context.Context, propertyID int, checkIn, checkOut string) ([]*entity.Reservation, error)
}

// Validator checks normalized records and detects overlaps with stored
// reservations.
type Validator struct {
	store       Store
	maxStayDays int
	maxGuests   int
	workers     int
	logger      *slog.Logger
}

type Option func(*Validator)

func WithMaxStayDays(days int) Option {
	return func(v *Validator) { v.maxStayDays = days }
}

func WithMaxGuests(n int) Option {
	return func(v *Validator) { v.maxGuests = n }
}

// WithWorkers bounds how many records are validated concurrently.
func WithWorkers(n int) Option {
	return func(v *Validator) { v.workers = n }
}

func WithLogger(logger *slog.Logger) Option {
	return func(v *Validator) { v.logger = logger }
}

func New(store Store, opts ...Option) *Validator {
	v := &Validator{
		store:       store,
		maxStayDays: DefaultMaxStayDays,
		maxGuests:   DefaultMaxGuests,
		workers:     DefaultWorkers,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.workers < 1 {
		v.workers = 1
	}
	return v
}

// Validate runs every check on rec and collects all failures. A long stay is
// reported but does not make the record invalid. Only store failures other
// than not-found are returned as errors.
func (v *Validator) Validate(ctx context.Context, rec entity.NormalizedReservation) (entity.ValidationOutcome, error) {
	hard := common.NewValidator()
	var soft []string

	hard.Field(FieldGuestName, rec.GuestName, common.Required, common.MinLength(3), common.MaxLength(MaxGuestNameLength))

	in, inOK := v.checkDate(hard, FieldCheckIn, rec.CheckIn, rec.RawCheckIn)
	out, outOK := v.checkDate(hard, FieldCheckOut, rec.CheckOut, rec.RawCheckOut)
	if inOK && outOK {
		if in.After(out) {
			hard.Add(FieldCheckIn, rec.CheckIn, "must not be after the check-out date")
		} else if days := int(out.Sub(in).Hours() / 24); days > v.maxStayDays {
			soft = append(soft, fmt.Sprintf("stay of %d days exceeds %d days", days, v.maxStayDays))
		}
	}

	hard.Field(FieldGuests, rec.Guests,
		common.Required, common.Numeric, common.RangeExclusiveMin(0, float64(v.maxGuests)))
	hard.Field(FieldAmount, rec.TotalAmount, common.Required, common.Numeric, common.Positive)

	propertyOK := false
	if rec.PropertyID <= 0 {
		hard.Add(FieldProperty, rec.PropertyID, "is required")
	} else if _, err := v.store.GetProperty(ctx, rec.PropertyID); err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			return entity.ValidationOutcome{}, common.NewAppError(common.CodeStore, "property lookup failed", err)
		}
		hard.Add(FieldProperty, rec.PropertyID, "not found")
	} else {
		propertyOK = true
	}

	outcome := entity.ValidationOutcome{
		Row:     rec.Row,
		Record:  rec,
		IsValid: !hard.HasErrors(),
		Errors:  append(hard.Messages(), soft...),
	}

	if propertyOK && inOK && outOK {
		conflict, err := v.firstOverlap(ctx, rec.PropertyID, rec.CheckIn, rec.CheckOut)
		if err != nil {
			return entity.ValidationOutcome{}, common.NewAppError(common.CodeStore, "duplicate check failed", err)
		}
		if conflict != nil {
			outcome.IsDuplicate = true
			outcome.Conflict = conflict
		}
	}
	return outcome, nil
}

// ValidateBatch validates records concurrently and returns outcomes in input
// order. The first store failure cancels the rest.
func (v *Validator) ValidateBatch(ctx context.Context, recs []entity.NormalizedReservation) ([]entity.ValidationOutcome, error) {
	start := time.Now()
	outcomes := make([]entity.ValidationOutcome, len(recs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.workers)
	for i := range recs {
		g.Go(func() error {
			o, err := v.Validate(gctx, recs[i])
			if err != nil {
				return fmt.Errorf("row %d: %w", recs[i].Row, err)
			}
			outcomes[i] = o
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		v.logger.Error("validation.batch.error", "records", len(recs), "error", err)
		return nil, err
	}

	s := Summarize(outcomes)
	v.logger.Info("validation.batch.ok",
		"total", s.Total, "valid", s.Valid, "duplicates", s.Duplicates, "invalid", s.Invalid,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return outcomes, nil
}

func (v *Validator) checkDate(val *common.Validator, field, normalized, raw string) (time.Time, bool) {
	if normalized == "" {
		if raw == "" {
			val.Add(field, raw, "is required")
		} else {
			val.Add(field, raw, "is not a valid date")
		}
		return time.Time{}, false
	}
	t, err := time.Parse(dateLayout, normalized)
	if err != nil {
		val.Add(field, normalized, "is not a valid date")
		return time.Time{}, false
	}
	return t, true
}

func (v *Validator) firstOverlap(ctx context.Context, propertyID int, checkIn, checkOut string) (*entity.Reservation, error) {
	existing, err := v.store.FindOverlapping(ctx, propertyID, checkIn, checkOut)
	if err != nil {
		return nil, err
	}
	for _, r := range existing {
		if r != nil && r.PropertyID == propertyID && r.Overlaps(checkIn, checkOut) {
			return r, nil
		}
	}
	return nil, nil
}
