package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestRouter_RoutesByRecordType(t *testing.T) {
	store := newMemStore(testCategories...)
	r := NewRouter(store, time.Second)
	ctx := context.Background()

	recs := []Record{
		&TripRecord{ID: "t1", TripID: "TR-1"},
		&EarningRecord{ID: "e1", Amount: decimal.NewFromInt(5)},
		&MaintenanceRecord{ID: "m1"},
		&ExpenseRecord{ID: "x1", CategoryID: testCategories[0].ID},
	}
	for _, rec := range recs {
		if err := r.Route(ctx, rec); err != nil {
			t.Fatalf("Route(%T) error: %v", rec, err)
		}
	}

	for _, c := range []Collection{CollectionTrips, CollectionEarnings, CollectionMaintenance, CollectionExpenses} {
		if got := store.count(c); got != 1 {
			t.Errorf("count(%s) = %d, want 1", c, got)
		}
	}
}

func TestRouter_ResolvesExpenseCategory(t *testing.T) {
	tests := []struct {
		name       string
		categories []Category
		category   string
		wantID     string
		wantName   string
	}{
		{name: "named category", categories: testCategories, category: "fuel", wantID: testCategories[0].ID, wantName: "Fuel"},
		{name: "unknown falls back to Other", categories: testCategories, category: "Toys", wantID: testCategories[2].ID, wantName: "Other"},
		{name: "blank falls back to Other", categories: testCategories, category: "", wantID: testCategories[2].ID, wantName: "Other"},
		{name: "no default stores uncategorized", categories: testCategories[:1], category: "Toys", wantID: "", wantName: "Toys"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore(tt.categories...)
			exp := &ExpenseRecord{ID: "x1", Category: tt.category}

			if err := NewRouter(store, time.Second).Route(context.Background(), exp); err != nil {
				t.Fatalf("Route() error: %v", err)
			}
			if exp.CategoryID != tt.wantID || exp.Category != tt.wantName {
				t.Errorf("category = %q/%q, want %q/%q", exp.CategoryID, exp.Category, tt.wantID, tt.wantName)
			}
			if got := store.count(CollectionExpenses); got != 1 {
				t.Errorf("count = %d, want 1", got)
			}
		})
	}
}

func TestRouter_CategoryLookupFailure(t *testing.T) {
	store := newMemStore(testCategories...)
	store.categoryErr = errors.New("connection refused")

	err := NewRouter(store, time.Second).Route(context.Background(), &ExpenseRecord{ID: "x1", Category: "Fuel"})

	var se *StorageError
	if !errors.As(err, &se) {
		t.Fatalf("Route() error = %v, want *StorageError", err)
	}
	if se.Op != "resolve category" {
		t.Errorf("Op = %q, want resolve category", se.Op)
	}
	if store.count(CollectionExpenses) != 0 {
		t.Error("record stored despite failed lookup")
	}
}

func TestRouter_Timeout(t *testing.T) {
	store := newMemStore()
	store.insertDelay = 500 * time.Millisecond

	start := time.Now()
	err := NewRouter(store, 20*time.Millisecond).Route(context.Background(), &TripRecord{ID: "t1"})

	var se *StorageError
	if !errors.As(err, &se) {
		t.Fatalf("Route() error = %v, want *StorageError", err)
	}
	if se.Collection != CollectionTrips {
		t.Errorf("Collection = %q, want trips", se.Collection)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Route() error = %v, want it to wrap context.DeadlineExceeded", err)
	}
	if elapsed := time.Since(start); elapsed > 250*time.Millisecond {
		t.Errorf("Route() took %v, want it bounded by the timeout", elapsed)
	}
}

func TestRouter_RouteBatch(t *testing.T) {
	store := newMemStore()
	r := NewRouter(store, time.Second)

	if err := r.RouteBatch(context.Background(), CollectionEarnings, nil); err != nil {
		t.Fatalf("RouteBatch(empty) error: %v", err)
	}

	recs := []Record{&EarningRecord{ID: "a"}, &EarningRecord{ID: "b"}}
	if err := r.RouteBatch(context.Background(), CollectionEarnings, recs); err != nil {
		t.Fatalf("RouteBatch() error: %v", err)
	}
	if got := store.count(CollectionEarnings); got != 2 {
		t.Errorf("count = %d, want 2", got)
	}

	store.batchErr = errors.New("deadlock detected")
	err := r.RouteBatch(context.Background(), CollectionEarnings, recs)
	if !IsStorage(err) {
		t.Errorf("RouteBatch() error = %v, want *StorageError", err)
	}
}
