package repository

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/rental-ledger/internal/entity"
)

// Store bundles the repositories behind the narrow interfaces the import
// pipeline depends on.
type Store struct {
	Properties   PropertyRepository
	Reservations ReservationRepository
	ImportRuns   ImportRunRepository
}

func NewStore(db *DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		Properties:   NewPropertyRepository(db, logger),
		Reservations: NewReservationRepository(db, logger),
		ImportRuns:   NewImportRunRepository(db, logger),
	}
}

func (s *Store) GetProperty(ctx context.Context, id int) (*entity.Property, error) {
	return s.Properties.GetByID(ctx, id)
}

func (s *Store) ListProperties(ctx context.Context) ([]*entity.Property, error) {
	return s.Properties.ListProperties(ctx)
}

func (s *Store) FindOverlapping(ctx context.Context, propertyID int, checkIn, checkOut string) ([]*entity.Reservation, error) {
	return s.Reservations.FindOverlapping(ctx, propertyID, checkIn, checkOut)
}

func (s *Store) CreateReservation(ctx context.Context, r *entity.Reservation) (*entity.Reservation, error) {
	return s.Reservations.Create(ctx, r)
}
