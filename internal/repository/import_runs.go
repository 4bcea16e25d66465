package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/joseph-ayodele/rental-ledger/constants"
	"github.com/joseph-ayodele/rental-ledger/internal/common"
	"github.com/joseph-ayodele/rental-ledger/internal/entity"
)

var importRunColumns = []string{
	"id", "file_name", "content_hash", "status", "is_control_file", "property_name", "property_id",
	"valid_count", "duplicate_count", "invalid_count", "total_count", "created_count", "failed_count",
	"error", "started_at", "finished_at",
}

// ImportRunRepository keeps the audit trail of processed control files.
type ImportRunRepository interface {
	Start(ctx context.Context, run *entity.ImportRun) error
	Finish(ctx context.Context, run *entity.ImportRun) error
	GetByID(ctx context.Context, id string) (*entity.ImportRun, error)
	FindCompletedByHash(ctx context.Context, hash string) (*entity.ImportRun, error)
}

type importRunRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewImportRunRepository(db *DB, logger *slog.Logger) ImportRunRepository {
	return &importRunRepository{
		db:     db,
		logger: logger,
	}
}

func (r *importRunRepository) Start(ctx context.Context, run *entity.ImportRun) error {
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	if run.Status == "" {
		run.Status = string(constants.RunStatusRunning)
	}

	query, args := r.db.builder().
		Insert(ImportRunsTable.Name).
		Columns("id", "file_name", "content_hash", "status", "started_at").
		Values(run.ID, run.FileName, run.ContentHash, run.Status, run.StartedAt).
		Query()

	if _, err := r.db.SQL.ExecContext(ctx, query, args...); err != nil {
		r.logger.Error("failed to create import run", "run_id", run.ID, "file", run.FileName, "error", err)
		return fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	return nil
}

func (r *importRunRepository) Finish(ctx context.Context, run *entity.ImportRun) error {
	if run.FinishedAt == nil {
		now := time.Now().UTC()
		run.FinishedAt = &now
	}
	var propertyID any
	if run.PropertyID != nil {
		propertyID = *run.PropertyID
	}

	query, args := r.db.builder().
		Update(ImportRunsTable.Name).
		Set("status", run.Status).
		Set("is_control_file", run.IsControlFile).
		Set("property_name", run.PropertyName).
		Set("property_id", propertyID).
		Set("valid_count", run.Summary.Valid).
		Set("duplicate_count", run.Summary.Duplicates).
		Set("invalid_count", run.Summary.Invalid).
		Set("total_count", run.Summary.Total).
		Set("created_count", run.Created).
		Set("failed_count", run.Failed).
		Set("error", run.Error).
		Set("finished_at", *run.FinishedAt).
		Where(entsql.EQ("id", run.ID)).
		Query()

	res, err := r.db.SQL.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to finish import run", "run_id", run.ID, "error", err)
		return fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("import run %s: %w", run.ID, common.ErrNotFound)
	}
	return nil
}

func (r *importRunRepository) GetByID(ctx context.Context, id string) (*entity.ImportRun, error) {
	return r.getOne(ctx, entsql.EQ("id", id), "import run "+id)
}

// FindCompletedByHash returns the latest finished run of a file with the
// same content, or an ErrNotFound error.
func (r *importRunRepository) FindCompletedByHash(ctx context.Context, hash string) (*entity.ImportRun, error) {
	return r.getOne(ctx, entsql.And(
		entsql.EQ("content_hash", hash),
		entsql.EQ("status", string(constants.RunStatusCompleted)),
	), "import run with hash "+hash)
}

func (r *importRunRepository) getOne(ctx context.Context, where *entsql.Predicate, what string) (*entity.ImportRun, error) {
	query, args := r.db.builder().
		Select(importRunColumns...).
		From(entsql.Table(ImportRunsTable.Name)).
		Where(where).
		OrderBy(entsql.Desc("started_at")).
		Limit(1).
		Query()

	run, err := scanImportRun(r.db.SQL.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", what, common.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("failed to get import run", "lookup", what, "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	return run, nil
}

func scanImportRun(row rowScanner) (*entity.ImportRun, error) {
	var (
		run        entity.ImportRun
		propertyID sql.NullInt64
		finishedAt sql.NullTime
	)
	err := row.Scan(
		&run.ID, &run.FileName, &run.ContentHash, &run.Status, &run.IsControlFile, &run.PropertyName, &propertyID,
		&run.Summary.Valid, &run.Summary.Duplicates, &run.Summary.Invalid, &run.Summary.Total, &run.Created, &run.Failed,
		&run.Error, &run.StartedAt, &finishedAt,
	)
	if err != nil {
		return nil, err
	}
	if propertyID.Valid {
		id := int(propertyID.Int64)
		run.PropertyID = &id
	}
	if finishedAt.Valid {
		t := finishedAt.Time
		run.FinishedAt = &t
	}
	return &run, nil
}
