package repository

import (
	"context"
	"fmt"
	"log/slog"

	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

var (
	// PropertiesColumns holds the columns for the "properties" table.
	PropertiesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "name", Type: field.TypeString, Unique: true, Size: 255},
		{Name: "cleaning_fee", Type: field.TypeFloat64, Default: 0},
		{Name: "check_in_fee", Type: field.TypeFloat64, Default: 0},
		{Name: "commission_percent", Type: field.TypeFloat64, Default: 0},
		{Name: "team_payment", Type: field.TypeFloat64, Default: 0},
		{Name: "created_at", Type: field.TypeTime},
	}
	// PropertiesTable holds the schema information for the "properties" table.
	PropertiesTable = &schema.Table{
		Name:       "properties",
		Columns:    PropertiesColumns,
		PrimaryKey: []*schema.Column{PropertiesColumns[0]},
	}

	// ImportRunsColumns holds the columns for the "import_runs" table.
	ImportRunsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 36},
		{Name: "file_name", Type: field.TypeString, Size: 512},
		{Name: "content_hash", Type: field.TypeString, Size: 64},
		{Name: "status", Type: field.TypeString, Size: 32},
		{Name: "is_control_file", Type: field.TypeBool, Default: false},
		{Name: "property_name", Type: field.TypeString, Size: 255, Default: ""},
		{Name: "property_id", Type: field.TypeInt, Nullable: true},
		{Name: "valid_count", Type: field.TypeInt, Default: 0},
		{Name: "duplicate_count", Type: field.TypeInt, Default: 0},
		{Name: "invalid_count", Type: field.TypeInt, Default: 0},
		{Name: "total_count", Type: field.TypeInt, Default: 0},
		{Name: "created_count", Type: field.TypeInt, Default: 0},
		{Name: "failed_count", Type: field.TypeInt, Default: 0},
		{Name: "error", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "started_at", Type: field.TypeTime},
		{Name: "finished_at", Type: field.TypeTime, Nullable: true},
	}
	// ImportRunsTable holds the schema information for the "import_runs" table.
	ImportRunsTable = &schema.Table{
		Name:       "import_runs",
		Columns:    ImportRunsColumns,
		PrimaryKey: []*schema.Column{ImportRunsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "importrun_content_hash",
				Unique:  false,
				Columns: []*schema.Column{ImportRunsColumns[2]},
			},
		},
	}

	// ReservationsColumns holds the columns for the "reservations" table.
	ReservationsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "guest_name", Type: field.TypeString, Size: 255},
		{Name: "check_in", Type: field.TypeString, Size: 10},
		{Name: "check_out", Type: field.TypeString, Size: 10},
		{Name: "guests", Type: field.TypeInt},
		{Name: "platform", Type: field.TypeString, Size: 32},
		{Name: "total_amount", Type: field.TypeFloat64},
		{Name: "platform_fee", Type: field.TypeFloat64},
		{Name: "cleaning_fee", Type: field.TypeFloat64},
		{Name: "check_in_fee", Type: field.TypeFloat64},
		{Name: "commission_fee", Type: field.TypeFloat64},
		{Name: "team_payment", Type: field.TypeFloat64},
		{Name: "net_amount", Type: field.TypeFloat64},
		{Name: "contact", Type: field.TypeString, Size: 255, Default: ""},
		{Name: "notes", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "needs_review", Type: field.TypeBool, Default: false},
		{Name: "source", Type: field.TypeString, Size: 32},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "property_id", Type: field.TypeInt},
		{Name: "import_run_id", Type: field.TypeString, Size: 36, Nullable: true},
	}
	// ReservationsTable holds the schema information for the "reservations" table.
	ReservationsTable = &schema.Table{
		Name:       "reservations",
		Columns:    ReservationsColumns,
		PrimaryKey: []*schema.Column{ReservationsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "reservations_properties_reservations",
				Columns:    []*schema.Column{ReservationsColumns[18]},
				RefColumns: []*schema.Column{PropertiesColumns[0]},
				OnDelete:   schema.Cascade,
			},
			{
				Symbol:     "reservations_import_runs_reservations",
				Columns:    []*schema.Column{ReservationsColumns[19]},
				RefColumns: []*schema.Column{ImportRunsColumns[0]},
				OnDelete:   schema.SetNull,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "reservation_property_id_check_in_check_out",
				Unique:  false,
				Columns: []*schema.Column{ReservationsColumns[18], ReservationsColumns[2], ReservationsColumns[3]},
			},
		},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		PropertiesTable,
		ImportRunsTable,
		ReservationsTable,
	}
)

func init() {
	ReservationsTable.ForeignKeys[0].RefTable = PropertiesTable
	ReservationsTable.ForeignKeys[1].RefTable = ImportRunsTable
}

// Migrate creates or updates the store tables.
func Migrate(ctx context.Context, db *DB, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	drv := entsql.OpenDB(db.dialect, db.SQL)
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	if err := m.Create(ctx, Tables...); err != nil {
		logger.Error("schema migration failed", "error", err)
		return fmt.Errorf("migrate: %w", err)
	}
	logger.Info("schema migration complete", "tables", len(Tables))
	return nil
}
