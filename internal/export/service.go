package export

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/rental-ledger/internal/entity"
	"github.com/joseph-ayodele/rental-ledger/internal/importer"
	"github.com/joseph-ayodele/rental-ledger/internal/normalize"
	"github.com/joseph-ayodele/rental-ledger/internal/repository"
)

// ReservationLister is the read side export needs.
type ReservationLister interface {
	List(ctx context.Context, f repository.ReservationFilter) ([]*entity.Reservation, error)
}

// PropertyLister resolves property names for the workbook.
type PropertyLister interface {
	ListProperties(ctx context.Context) ([]*entity.Property, error)
}

// Service produces XLSX bytes for stored reservations and import reports.
type Service struct {
	reservations ReservationLister
	properties   PropertyLister
	logger       *slog.Logger
}

func NewService(reservations ReservationLister, properties PropertyLister, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{reservations: reservations, properties: properties, logger: logger}
}

var reservationHeaders = []string{
	"Property",
	"Guest",
	"Check-in",
	"Check-out",
	"Guests",
	"Platform",
	"Total",
	"Platform Fee",
	"Cleaning Fee",
	"Check-in Fee",
	"Commission",
	"Team Payment",
	"Net",
	"Needs Review",
	"Contact",
	"Notes",
}

// ReservationsXLSX returns a workbook of the reservations matching f.
// An empty filter exports everything.
func (s *Service) ReservationsXLSX(ctx context.Context, f repository.ReservationFilter) ([]byte, error) {
	start := time.Now()

	recs, err := s.reservations.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("query reservations: %w", err)
	}
	names := map[int]string{}
	if s.properties != nil {
		props, err := s.properties.ListProperties(ctx)
		if err != nil {
			return nil, fmt.Errorf("query properties: %w", err)
		}
		for _, p := range props {
			names[p.ID] = p.Name
		}
	}

	x := excelize.NewFile()
	defer x.Close()
	const sheet = "Reservations"
	if err := useSheet(x, sheet); err != nil {
		return nil, err
	}
	writeRow(x, sheet, 1, toAny(reservationHeaders))

	for i, r := range recs {
		name := names[r.PropertyID]
		if name == "" {
			name = fmt.Sprintf("#%d", r.PropertyID)
		}
		writeRow(x, sheet, i+2, []any{
			name,
			r.GuestName,
			normalize.DisplayDate(r.CheckIn),
			normalize.DisplayDate(r.CheckOut),
			r.Guests,
			r.Platform,
			r.TotalAmount,
			r.PlatformFee,
			r.CleaningFee,
			r.CheckInFee,
			r.CommissionFee,
			r.TeamPayment,
			r.NetAmount,
			yesNo(r.NeedsReview),
			r.Contact,
			truncate(r.Notes, 140),
		})
	}

	_ = x.SetColWidth(sheet, "A", "A", 18) // property
	_ = x.SetColWidth(sheet, "B", "B", 28) // guest
	_ = x.SetColWidth(sheet, "C", "D", 12) // dates
	_ = x.SetColWidth(sheet, "G", "M", 13) // amounts
	_ = x.SetColWidth(sheet, "P", "P", 48) // notes

	buf, err := x.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"property_id", f.PropertyID,
		"rows", len(recs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// ReportsXLSX renders import reports: one summary row per file on "Runs" and
// one row per extracted record on "Rows".
func ReportsXLSX(reports []*importer.Report) ([]byte, error) {
	x := excelize.NewFile()
	defer x.Close()

	const runs, rows = "Runs", "Rows"
	if err := useSheet(x, runs); err != nil {
		return nil, err
	}
	if _, err := x.NewSheet(rows); err != nil {
		return nil, err
	}

	writeRow(x, runs, 1, []any{"File", "Run", "Control File", "Property", "Matched", "Found", "Valid", "Duplicates", "Invalid", "Created", "Error"})
	writeRow(x, rows, 1, []any{"File", "Row", "Status", "Guest", "Check-in", "Check-out", "Guests", "Total", "Platform", "Details"})

	next := 2
	for i, rep := range reports {
		if rep == nil {
			continue
		}
		writeRow(x, runs, i+2, []any{
			rep.FileName, rep.RunID, yesNo(rep.IsControlFile), rep.PropertyName, rep.MatchedProperty,
			rep.TotalFound, rep.Summary.Valid, rep.Summary.Duplicates, rep.Summary.Invalid, rep.Created, rep.Error,
		})
		for _, group := range []struct {
			status   string
			outcomes []entity.ValidationOutcome
		}{
			{"valid", rep.Valid},
			{"duplicate", rep.Duplicates},
			{"invalid", rep.Invalid},
		} {
			for _, o := range group.outcomes {
				rec := o.Record
				writeRow(x, rows, next, []any{
					rep.FileName, o.Row, group.status, rec.GuestName,
					displayOrRaw(rec.CheckIn, rec.RawCheckIn), displayOrRaw(rec.CheckOut, rec.RawCheckOut),
					rec.Guests, rec.TotalAmount, rec.Platform, details(o),
				})
				next++
			}
		}
	}
	_ = x.SetColWidth(runs, "A", "B", 36)
	_ = x.SetColWidth(rows, "A", "A", 36)
	_ = x.SetColWidth(rows, "J", "J", 60)

	buf, err := x.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func details(o entity.ValidationOutcome) string {
	if o.IsDuplicate && o.Conflict != nil {
		c := o.Conflict
		msg := fmt.Sprintf("overlaps %s %s-%s", c.GuestName, normalize.DisplayDate(c.CheckIn), normalize.DisplayDate(c.CheckOut))
		if c.ID > 0 {
			msg += fmt.Sprintf(" (#%d)", c.ID)
		}
		return msg
	}
	return strings.Join(o.Errors, "; ")
}

func useSheet(x *excelize.File, sheet string) error {
	if index, _ := x.GetSheetIndex(sheet); index == -1 {
		if _, err := x.NewSheet(sheet); err != nil {
			return err
		}
	}
	// drop the default sheet so the workbook opens on ours
	if sheet != "Sheet1" {
		_ = x.DeleteSheet("Sheet1")
	}
	activeIndex, _ := x.GetSheetIndex(sheet)
	x.SetActiveSheet(activeIndex)
	return nil
}

func writeRow(x *excelize.File, sheet string, row int, values []any) {
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		_ = x.SetCellValue(sheet, cell, v)
	}
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func displayOrRaw(ymd, raw string) string {
	if ymd == "" {
		return raw
	}
	return normalize.DisplayDate(ymd)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
