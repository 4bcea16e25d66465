package export

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/rental-ledger/internal/entity"
	"github.com/joseph-ayodele/rental-ledger/internal/importer"
	"github.com/joseph-ayodele/rental-ledger/internal/repository"
)

type fakeReservations struct {
	got  repository.ReservationFilter
	rows []*entity.Reservation
}

func (f *fakeReservations) List(_ context.Context, filter repository.ReservationFilter) ([]*entity.Reservation, error) {
	f.got = filter
	return f.rows, nil
}

type fakeProperties []*entity.Property

func (f fakeProperties) ListProperties(context.Context) ([]*entity.Property, error) { return f, nil }

func open(t *testing.T, b []byte) *excelize.File {
	t.Helper()
	x, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	t.Cleanup(func() { _ = x.Close() })
	return x
}

func TestReservationsXLSX(t *testing.T) {
	res := &fakeReservations{rows: []*entity.Reservation{
		{ID: 1, PropertyID: 2, GuestName: "Ana Silva", CheckIn: "2024-03-01", CheckOut: "2024-03-03", Guests: 2, Platform: "Airbnb", TotalAmount: 300, NetAmount: 218},
	}}
	svc := NewService(res, fakeProperties{{ID: 2, Name: "Aroeira II"}}, nil)

	b, err := svc.ReservationsXLSX(context.Background(), repository.ReservationFilter{PropertyID: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, res.got.PropertyID)

	x := open(t, b)
	assert.Equal(t, []string{"Reservations"}, x.GetSheetList())
	rows, err := x.GetRows("Reservations")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Property", rows[0][0])
	assert.Equal(t, []string{"Aroeira II", "Ana Silva", "01/03/2024", "03/03/2024", "2", "Airbnb", "300"}, rows[1][:7])
}

func TestReportsXLSX(t *testing.T) {
	reports := []*importer.Report{
		{
			RunID: "run-1", FileName: "aroeira.pdf", IsControlFile: true, PropertyName: "Aroeira I",
			TotalFound: 2, Summary: entity.Summary{Valid: 1, Invalid: 1, Total: 2}, Created: 1,
			Valid: []entity.ValidationOutcome{{Row: 1, IsValid: true, Record: entity.NormalizedReservation{GuestName: "Ana", CheckIn: "2024-03-01", CheckOut: "2024-03-02"}}},
			Invalid: []entity.ValidationOutcome{{Row: 2, Record: entity.NormalizedReservation{GuestName: "Bo", RawCheckIn: "31/02"}, Errors: []string{"guest name must be at least 3 characters", "check-in date is not a valid date"}}},
		},
		{RunID: "run-2", FileName: "invoice.pdf"},
	}

	b, err := ReportsXLSX(reports)
	require.NoError(t, err)

	x := open(t, b)
	assert.Equal(t, []string{"Runs", "Rows"}, x.GetSheetList())

	runs, err := x.GetRows("Runs")
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "aroeira.pdf", runs[1][0])
	assert.Equal(t, "no", runs[2][2])

	rows, err := x.GetRows("Rows")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"aroeira.pdf", "1", "valid", "Ana", "01/03/2024", "02/03/2024"}, rows[1][:6])
	assert.Equal(t, "invalid", rows[2][2])
	assert.Equal(t, "31/02", rows[2][4])
	assert.Equal(t, "guest name must be at least 3 characters; check-in date is not a valid date", rows[2][9])
}
