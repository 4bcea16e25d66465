package importer

import (
	"context"

	"github.com/joseph-ayodele/rental-ledger/internal/entity"
)

//go:generate mockgen -destination=mocks/mock_store.go -package=mocks -source=interface.go

// Store is the slice of the persistence layer a run needs.
type Store interface {
	GetProperty(ctx context.Context, id int) (*entity.Property, error)
	ListProperties(ctx context.Context) ([]*entity.Property, error)
	FindOverlapping(ctx context.Context, propertyID int, checkIn, checkOut string) ([]*entity.Reservation, error)
	CreateReservation(ctx context.Context, r *entity.Reservation) (*entity.Reservation, error)
}

// RunRecorder keeps the audit trail of runs.
type RunRecorder interface {
	Start(ctx context.Context, run *entity.ImportRun) error
	Finish(ctx context.Context, run *entity.ImportRun) error
}
