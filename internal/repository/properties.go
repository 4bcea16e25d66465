package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/joseph-ayodele/rental-ledger/internal/common"
	"github.com/joseph-ayodele/rental-ledger/internal/entity"
)

var propertyColumns = []string{"id", "name", "cleaning_fee", "check_in_fee", "commission_percent", "team_payment", "created_at"}

type PropertyRepository interface {
	GetByID(ctx context.Context, id int) (*entity.Property, error)
	GetByName(ctx context.Context, name string) (*entity.Property, error)
	ListProperties(ctx context.Context) ([]*entity.Property, error)
	Create(ctx context.Context, p *entity.Property) (*entity.Property, error)
}

type propertyRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewPropertyRepository(db *DB, logger *slog.Logger) PropertyRepository {
	return &propertyRepository{
		db:     db,
		logger: logger,
	}
}

func (r *propertyRepository) GetByID(ctx context.Context, id int) (*entity.Property, error) {
	return r.getOne(ctx, entsql.EQ("id", id), fmt.Sprintf("property %d", id))
}

func (r *propertyRepository) GetByName(ctx context.Context, name string) (*entity.Property, error) {
	return r.getOne(ctx, entsql.EQ("name", strings.TrimSpace(name)), fmt.Sprintf("property %q", name))
}

func (r *propertyRepository) getOne(ctx context.Context, where *entsql.Predicate, what string) (*entity.Property, error) {
	query, args := r.db.builder().
		Select(propertyColumns...).
		From(entsql.Table(PropertiesTable.Name)).
		Where(where).
		Limit(1).
		Query()

	p, err := scanProperty(r.db.SQL.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", what, common.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("failed to get property", "lookup", what, "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	return p, nil
}

func (r *propertyRepository) ListProperties(ctx context.Context) ([]*entity.Property, error) {
	query, args := r.db.builder().
		Select(propertyColumns...).
		From(entsql.Table(PropertiesTable.Name)).
		OrderBy("id").
		Query()

	rows, err := r.db.SQL.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to list properties", "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	defer rows.Close()

	var out []*entity.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	return out, nil
}

func (r *propertyRepository) Create(ctx context.Context, p *entity.Property) (*entity.Property, error) {
	out := *p
	out.Name = strings.TrimSpace(out.Name)
	out.CreatedAt = time.Now().UTC()

	query, args := r.db.builder().
		Insert(PropertiesTable.Name).
		Columns("name", "cleaning_fee", "check_in_fee", "commission_percent", "team_payment", "created_at").
		Values(out.Name, out.CleaningFee, out.CheckInFee, out.CommissionPercent, out.TeamPayment, out.CreatedAt).
		Returning("id").
		Query()

	if err := r.db.SQL.QueryRowContext(ctx, query, args...).Scan(&out.ID); err != nil {
		r.logger.Error("failed to create property", "name", out.Name, "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	return &out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProperty(row rowScanner) (*entity.Property, error) {
	var p entity.Property
	if err := row.Scan(&p.ID, &p.Name, &p.CleaningFee, &p.CheckInFee, &p.CommissionPercent, &p.TeamPayment, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}
