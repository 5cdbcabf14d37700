package core

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// DefaultCategory is assigned to email expenses that carry no usable category.
const DefaultCategory = "Other"

// DefaultStoreTimeout bounds a single write when no timeout is configured.
const DefaultStoreTimeout = 10 * time.Second

// Router writes normalized records to the collection their type belongs to.
// Writes are not retried.
type Router struct {
	store   Store
	timeout time.Duration
}

// NewRouter creates a router. A non-positive timeout uses DefaultStoreTimeout.
func NewRouter(store Store, timeout time.Duration) *Router {
	if timeout <= 0 {
		timeout = DefaultStoreTimeout
	}
	return &Router{store: store, timeout: timeout}
}

// Route inserts one record. Expenses without a resolved category get one first.
// Failures are returned as *StorageError.
func (r *Router) Route(ctx context.Context, rec Record) error {
	if exp, ok := rec.(*ExpenseRecord); ok && exp.CategoryID == "" {
		if err := r.resolveCategory(ctx, exp); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if err := r.store.Insert(ctx, rec); err != nil {
		return &StorageError{Collection: rec.Collection(), Op: "insert", Err: err}
	}
	return nil
}

// RouteBatch inserts records of one collection in a single transaction.
// An empty batch is a no-op.
func (r *Router) RouteBatch(ctx context.Context, collection Collection, recs []Record) error {
	if len(recs) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if err := r.store.InsertBatch(ctx, collection, recs); err != nil {
		return &StorageError{Collection: collection, Op: "insert batch", Err: err}
	}
	return nil
}

// resolveCategory looks up the expense's category by name, falling back to
// DefaultCategory. When even the default is missing the record is stored
// uncategorized.
func (r *Router) resolveCategory(ctx context.Context, exp *ExpenseRecord) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	names := []string{DefaultCategory}
	if exp.Category != "" && exp.Category != DefaultCategory {
		names = []string{exp.Category, DefaultCategory}
	}

	for _, name := range names {
		cat, err := r.store.CategoryByName(ctx, name)
		if err == nil {
			exp.CategoryID = cat.ID
			exp.Category = cat.Name
			return nil
		}
		if !errors.Is(err, ErrCategoryNotFound) {
			return &StorageError{Collection: CollectionExpenses, Op: "resolve category", Err: err}
		}
	}

	slog.Warn("expense category not found, storing uncategorized",
		"category", exp.Category,
		"default", DefaultCategory,
	)
	return nil
}
