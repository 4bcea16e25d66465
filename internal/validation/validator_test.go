package validation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/rental-ledger/internal/common"
	"github.com/joseph-ayodele/rental-ledger/internal/entity"
)

type fakeStore struct {
	mu           sync.Mutex
	properties   map[int]*entity.Property
	reservations []*entity.Reservation
	lookupErr    error
	overlapCalls int
}

func (f *fakeStore) GetProperty(_ context.Context, id int) (*entity.Property, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	p, ok := f.properties[id]
	if !ok {
		return nil, fmt.Errorf("property %d: %w", id, common.ErrNotFound)
	}
	return p, nil
}

func (f *fakeStore) FindOverlapping(_ context.Context, propertyID int, in, out string) ([]*entity.Reservation, error) {
	f.mu.Lock()
	f.overlapCalls++
	f.mu.Unlock()
	var res []*entity.Reservation
	for _, r := range f.reservations {
		if r.PropertyID == propertyID && r.Overlaps(in, out) {
			res = append(res, r)
		}
	}
	return res, nil
}

func newStore() *fakeStore {
	return &fakeStore{
		properties: map[int]*entity.Property{1: {ID: 1, Name: "Aroeira I"}},
		reservations: []*entity.Reservation{
			{ID: 10, PropertyID: 1, GuestName: "Existing", CheckIn: "2025-03-10", CheckOut: "2025-03-15"},
		},
	}
}

func good() entity.NormalizedReservation {
	return entity.NormalizedReservation{
		Row:         1,
		PropertyID:  1,
		GuestName:   "Ana Silva",
		CheckIn:     "2025-04-01",
		CheckOut:    "2025-04-05",
		RawCheckIn:  "01/04/2025",
		RawCheckOut: "05/04/2025",
		Guests:      "2",
		TotalAmount: "400.00",
		Platform:    "Airbnb",
	}
}

func TestValidateValidRecord(t *testing.T) {
	o, err := New(newStore()).Validate(context.Background(), good())
	require.NoError(t, err)
	assert.True(t, o.IsValid)
	assert.False(t, o.IsDuplicate)
	assert.Nil(t, o.Conflict)
	assert.Empty(t, o.Errors)
	assert.True(t, o.Accepted())
}

func TestValidateCollectsAllErrors(t *testing.T) {
	rec := entity.NormalizedReservation{
		Row:         2,
		PropertyID:  99,
		GuestName:   "Al",
		RawCheckIn:  "soon",
		Guests:      "25",
		TotalAmount: "0.00",
	}
	o, err := New(newStore()).Validate(context.Background(), rec)
	require.NoError(t, err)
	assert.False(t, o.IsValid)
	assert.Equal(t, []string{
		"guest name must be at least 3 characters",
		"check-in date is not a valid date",
		"check-out date is required",
		"guests must be greater than 0 and at most 20",
		"total amount must be greater than 0",
		"property not found",
	}, o.Errors)
}

func TestValidateGuestNameLength(t *testing.T) {
	rec := good()
	rec.GuestName = strings.Repeat("Ana Silva ", 13)
	o, err := New(newStore()).Validate(context.Background(), rec)
	require.NoError(t, err)
	assert.False(t, o.IsValid)
	assert.Equal(t, []string{"guest name must be at most 120 characters"}, o.Errors)

	rec.GuestName = strings.Repeat("a", MaxGuestNameLength)
	o, err = New(newStore()).Validate(context.Background(), rec)
	require.NoError(t, err)
	assert.True(t, o.IsValid)
}

func TestValidateDates(t *testing.T) {
	v := New(newStore())

	t.Run("check-in after check-out is a hard error", func(t *testing.T) {
		rec := good()
		rec.CheckIn, rec.CheckOut = "2025-04-06", "2025-04-05"
		o, err := v.Validate(context.Background(), rec)
		require.NoError(t, err)
		assert.False(t, o.IsValid)
		assert.Contains(t, o.Errors, "check-in date must not be after the check-out date")
	})

	t.Run("same day is accepted", func(t *testing.T) {
		rec := good()
		rec.CheckOut = rec.CheckIn
		o, err := v.Validate(context.Background(), rec)
		require.NoError(t, err)
		assert.True(t, o.IsValid)
	})

	t.Run("long stay is advisory", func(t *testing.T) {
		rec := good()
		rec.CheckIn, rec.CheckOut = "2025-04-01", "2025-05-15"
		o, err := v.Validate(context.Background(), rec)
		require.NoError(t, err)
		assert.True(t, o.IsValid)
		assert.Equal(t, []string{"stay of 44 days exceeds 30 days"}, o.Errors)
	})

	t.Run("out of calendar", func(t *testing.T) {
		rec := good()
		rec.CheckIn = "2025-02-30"
		o, err := v.Validate(context.Background(), rec)
		require.NoError(t, err)
		assert.False(t, o.IsValid)
		assert.Contains(t, o.Errors, "check-in date is not a valid date")
	})
}

func TestValidateDuplicates(t *testing.T) {
	v := New(newStore())
	tests := []struct {
		name     string
		in, out  string
		wantDupe bool
	}{
		{"starts on existing check-out", "2025-03-15", "2025-03-18", true},
		{"ends on existing check-in", "2025-03-05", "2025-03-10", true},
		{"inside", "2025-03-11", "2025-03-12", true},
		{"before", "2025-03-01", "2025-03-09", false},
		{"after", "2025-03-16", "2025-03-20", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := good()
			rec.CheckIn, rec.CheckOut = tt.in, tt.out
			o, err := v.Validate(context.Background(), rec)
			require.NoError(t, err)
			assert.Equal(t, tt.wantDupe, o.IsDuplicate)
			if tt.wantDupe {
				require.NotNil(t, o.Conflict)
				assert.Equal(t, 10, o.Conflict.ID)
			}
		})
	}

	t.Run("invalid duplicate is still flagged", func(t *testing.T) {
		rec := good()
		rec.CheckIn, rec.CheckOut = "2025-03-11", "2025-03-12"
		rec.GuestName = ""
		o, err := v.Validate(context.Background(), rec)
		require.NoError(t, err)
		assert.False(t, o.IsValid)
		assert.True(t, o.IsDuplicate)
	})
}

func TestValidateStoreFailure(t *testing.T) {
	s := newStore()
	s.lookupErr = errors.New("connection reset")
	_, err := New(s).Validate(context.Background(), good())
	require.Error(t, err)
	assert.Equal(t, common.CodeStore, common.CodeOf(err))
}

func TestValidateBatchKeepsOrder(t *testing.T) {
	s := newStore()
	recs := make([]entity.NormalizedReservation, 0, 20)
	for i := 0; i < 20; i++ {
		rec := good()
		rec.Row = i + 1
		if i%2 == 1 {
			rec.GuestName = "X"
		}
		recs = append(recs, rec)
	}

	outcomes, err := New(s, WithWorkers(4)).ValidateBatch(context.Background(), recs)
	require.NoError(t, err)
	require.Len(t, outcomes, 20)
	for i, o := range outcomes {
		assert.Equal(t, i+1, o.Row)
		assert.Equal(t, i%2 == 0, o.IsValid)
	}
	assert.Equal(t, 20, s.overlapCalls)
}

func TestValidateBatchStopsOnStoreError(t *testing.T) {
	s := newStore()
	s.lookupErr = errors.New("down")
	_, err := New(s).ValidateBatch(context.Background(), []entity.NormalizedReservation{good(), good()})
	require.Error(t, err)
	assert.Equal(t, common.CodeStore, common.CodeOf(err))
}
