package cmd

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/cashcast/internal/calendar"
	"github.com/theirongolddev/cashcast/internal/model"
	"github.com/theirongolddev/cashcast/internal/store"
)

func ptr(s string) *string { return &s }

func seededStore(t *testing.T) (*store.Store, model.Dataset) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "cashcast.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	ds, _, err := st.LoadOrSeed(time.Date(2024, time.May, 10, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("LoadOrSeed: %v", err)
	}
	return st, ds
}

func recurringIndex(t *testing.T, ds model.Dataset, label string) int {
	t.Helper()
	for i, p := range ds.Recurring {
		if p.Label == label {
			return i
		}
	}
	t.Fatalf("no recurring pattern labelled %q", label)
	return -1
}

func TestEditRecurringReplacesInPlace(t *testing.T) {
	st, before := seededStore(t)
	i := recurringIndex(t, before, "Rent")
	rent := before.Recurring[i]

	_, err := st.Update(func(ds *model.Dataset) error {
		_, err := editRecurring(ds, rent.ID, recurringEdit{Amount: ptr("1600"), End: ptr("2024-12-01")})
		return err
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	after, _, err := st.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(after.Recurring) != len(before.Recurring) {
		t.Fatalf("recurring len = %d, want %d", len(after.Recurring), len(before.Recurring))
	}
	got := after.Recurring[i]
	if got.ID != rent.ID || got.Label != "Rent" || got.Scenario != rent.Scenario {
		t.Fatalf("recurring[%d] = %+v, want Rent with id %s", i, got, rent.ID)
	}
	if !got.Amount.Equal(decimal.NewFromInt(-1600)) || got.Type != model.Expense {
		t.Fatalf("amount = %s %s, want -1600 expense", got.Amount, got.Type)
	}
	if got.End == nil || calendar.Format(*got.End) != "2024-12-01" {
		t.Fatalf("end = %v, want 2024-12-01", got.End)
	}
	if !got.Start.Equal(rent.Start) || got.Cadence != rent.Cadence || got.Category != rent.Category {
		t.Fatalf("untouched fields changed: %+v", got)
	}

	_, err = st.Update(func(ds *model.Dataset) error {
		_, err := editRecurring(ds, rent.ID, recurringEdit{End: ptr("none"), Type: ptr("income")})
		return err
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	after, _, _ = st.Load()
	if got := after.Recurring[i]; got.End != nil || !got.Amount.Equal(decimal.NewFromInt(1600)) || got.Type != model.Income {
		t.Fatalf("after clearing end = %+v, want open-ended +1600 income", got)
	}
}

func TestEditRecurringErrorsLeaveStoreUnchanged(t *testing.T) {
	st, before := seededStore(t)
	rent := before.Recurring[recurringIndex(t, before, "Rent")]

	tests := []struct {
		name string
		id   string
		edit recurringEdit
		want error
	}{
		{"unknown id", "nope", recurringEdit{Label: ptr("X")}, model.ErrNotFound},
		{"end before start", rent.ID, recurringEdit{End: ptr("2000-01-01")}, model.ErrInvalidDateRange},
	}
	for _, tt := range tests {
		_, err := st.Update(func(ds *model.Dataset) error {
			_, err := editRecurring(ds, tt.id, tt.edit)
			return err
		})
		if !errors.Is(err, tt.want) {
			t.Fatalf("%s: err = %v, want %v", tt.name, err, tt.want)
		}
	}
	for _, edit := range []recurringEdit{{Label: ptr("  ")}, {Need: ptr("maybe")}, {Cadence: ptr("daily")}} {
		if _, err := edit.apply(rent); err == nil {
			t.Fatalf("apply(%+v) = nil error, want rejection", edit)
		}
	}

	after, _, err := st.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got := after.Recurring[recurringIndex(t, after, "Rent")]
	if got.End != nil || !got.Amount.Equal(rent.Amount) {
		t.Fatalf("rent = %+v, want unchanged", got)
	}
}

func TestRecurringEditEmpty(t *testing.T) {
	if !(recurringEdit{}).empty() {
		t.Fatal("zero edit should be empty")
	}
	if (recurringEdit{Need: ptr("required")}).empty() {
		t.Fatal("edit with a field should not be empty")
	}
}
