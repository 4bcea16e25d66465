package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/joseph-ayodele/rental-ledger/internal/common"
	"github.com/joseph-ayodele/rental-ledger/internal/entity"
)

var reservationColumns = []string{
	"id", "property_id", "guest_name", "check_in", "check_out", "guests", "platform",
	"total_amount", "platform_fee", "cleaning_fee", "check_in_fee", "commission_fee",
	"team_payment", "net_amount", "contact", "notes", "needs_review", "source",
	"import_run_id", "created_at",
}

// ReservationFilter narrows List. Zero values are ignored; From/To select
// reservations overlapping [From, To].
type ReservationFilter struct {
	PropertyID  int
	From        string
	To          string
	ImportRunID string
	Limit       int
}

type ReservationRepository interface {
	GetByID(ctx context.Context, id int) (*entity.Reservation, error)
	Create(ctx context.Context, r *entity.Reservation) (*entity.Reservation, error)
	FindOverlapping(ctx context.Context, propertyID int, checkIn, checkOut string) ([]*entity.Reservation, error)
	List(ctx context.Context, f ReservationFilter) ([]*entity.Reservation, error)
}

type reservationRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewReservationRepository(db *DB, logger *slog.Logger) ReservationRepository {
	return &reservationRepository{
		db:     db,
		logger: logger,
	}
}

func (r *reservationRepository) GetByID(ctx context.Context, id int) (*entity.Reservation, error) {
	query, args := r.db.builder().
		Select(reservationColumns...).
		From(entsql.Table(ReservationsTable.Name)).
		Where(entsql.EQ("id", id)).
		Query()

	res, err := scanReservation(r.db.SQL.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("reservation %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("failed to get reservation", "reservation_id", id, "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	return res, nil
}

func (r *reservationRepository) Create(ctx context.Context, in *entity.Reservation) (*entity.Reservation, error) {
	out := *in
	out.CreatedAt = time.Now().UTC()

	var runID any
	if out.ImportRunID != nil {
		runID = *out.ImportRunID
	}

	query, args := r.db.builder().
		Insert(ReservationsTable.Name).
		Columns(
			"property_id", "guest_name", "check_in", "check_out", "guests", "platform",
			"total_amount", "platform_fee", "cleaning_fee", "check_in_fee", "commission_fee",
			"team_payment", "net_amount", "contact", "notes", "needs_review", "source",
			"import_run_id", "created_at",
		).
		Values(
			out.PropertyID, out.GuestName, out.CheckIn, out.CheckOut, out.Guests, out.Platform,
			out.TotalAmount, out.PlatformFee, out.CleaningFee, out.CheckInFee, out.CommissionFee,
			out.TeamPayment, out.NetAmount, out.Contact, out.Notes, out.NeedsReview, out.Source,
			runID, out.CreatedAt,
		).
		Returning("id").
		Query()

	if err := r.db.SQL.QueryRowContext(ctx, query, args...).Scan(&out.ID); err != nil {
		r.logger.Error("failed to create reservation",
			"property_id", out.PropertyID, "guest", out.GuestName,
			"check_in", out.CheckIn, "check_out", out.CheckOut, "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	return &out, nil
}

// FindOverlapping uses the inclusive test existing.check_in <= checkOut AND
// existing.check_out >= checkIn on YYYY-MM-DD strings.
func (r *reservationRepository) FindOverlapping(ctx context.Context, propertyID int, checkIn, checkOut string) ([]*entity.Reservation, error) {
	return r.List(ctx, ReservationFilter{PropertyID: propertyID, From: checkIn, To: checkOut})
}

func (r *reservationRepository) List(ctx context.Context, f ReservationFilter) ([]*entity.Reservation, error) {
	var preds []*entsql.Predicate
	if f.PropertyID > 0 {
		preds = append(preds, entsql.EQ("property_id", f.PropertyID))
	}
	if f.To != "" {
		preds = append(preds, entsql.LTE("check_in", f.To))
	}
	if f.From != "" {
		preds = append(preds, entsql.GTE("check_out", f.From))
	}
	if f.ImportRunID != "" {
		preds = append(preds, entsql.EQ("import_run_id", f.ImportRunID))
	}

	sel := r.db.builder().
		Select(reservationColumns...).
		From(entsql.Table(ReservationsTable.Name)).
		OrderBy("check_in", "id")
	if len(preds) > 0 {
		sel = sel.Where(entsql.And(preds...))
	}
	if f.Limit > 0 {
		sel = sel.Limit(f.Limit)
	}
	query, args := sel.Query()

	rows, err := r.db.SQL.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to list reservations", "property_id", f.PropertyID, "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	defer rows.Close()

	var out []*entity.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	return out, nil
}

func scanReservation(row rowScanner) (*entity.Reservation, error) {
	var (
		res   entity.Reservation
		runID sql.NullString
	)
	err := row.Scan(
		&res.ID, &res.PropertyID, &res.GuestName, &res.CheckIn, &res.CheckOut, &res.Guests, &res.Platform,
		&res.TotalAmount, &res.PlatformFee, &res.CleaningFee, &res.CheckInFee, &res.CommissionFee,
		&res.TeamPayment, &res.NetAmount, &res.Contact, &res.Notes, &res.NeedsReview, &res.Source,
		&runID, &res.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if runID.Valid {
		id := runID.String
		res.ImportRunID = &id
	}
	return &res, nil
}
