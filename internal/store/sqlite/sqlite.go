// Package sqlite is a single-file store for the offline CLI. It creates its
// own schema and seeds the default expense categories on first open.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/JonMunkholm/hostledger/internal/core"
	"github.com/google/uuid"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// DefaultCategories seeds the expense_categories table of a new database.
var DefaultCategories = []string{
	"Fuel", "Insurance", "Maintenance", "Cleaning", "Parking", "Tolls", "Supplies", "Other",
}

const schema = `
CREATE TABLE IF NOT EXISTS trips (
	id TEXT PRIMARY KEY,
	trip_id TEXT,
	guest_name TEXT,
	vehicle TEXT,
	start_date TIMESTAMP,
	end_date TIMESTAMP,
	total_amount TEXT,
	source TEXT,
	status TEXT,
	created_at TIMESTAMP
);
CREATE TABLE IF NOT EXISTS earnings (
	id TEXT PRIMARY KEY,
	payment_id TEXT,
	date TIMESTAMP,
	amount TEXT,
	source TEXT,
	description TEXT,
	notes TEXT,
	created_at TIMESTAMP
);
CREATE TABLE IF NOT EXISTS maintenance_records (
	id TEXT PRIMARY KEY,
	vehicle TEXT,
	service_type TEXT,
	service_date TIMESTAMP,
	cost TEXT,
	mileage INTEGER,
	vendor TEXT,
	notes TEXT,
	created_at TIMESTAMP
);
CREATE TABLE IF NOT EXISTS expense_categories (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL UNIQUE COLLATE NOCASE
);
CREATE TABLE IF NOT EXISTS expenses (
	id TEXT PRIMARY KEY,
	reference TEXT,
	date TIMESTAMP,
	amount TEXT,
	recipient TEXT,
	category_id TEXT REFERENCES expense_categories(id),
	category TEXT,
	description TEXT,
	notes TEXT,
	created_at TIMESTAMP
);
CREATE TABLE IF NOT EXISTS import_logs (
	id TEXT PRIMARY KEY,
	import_type TEXT NOT NULL,
	filename TEXT,
	total_records INTEGER NOT NULL,
	successful_records INTEGER NOT NULL,
	failed_records INTEGER NOT NULL,
	errors TEXT NOT NULL DEFAULT '[]',
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_import_logs_created ON import_logs(created_at);
`

// Store implements core.Store, core.AuditStore, and core.Pinger.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("database path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM expense_categories`).Scan(&n); err != nil {
		return fmt.Errorf("failed to count categories: %w", err)
	}
	if n > 0 {
		return nil
	}
	for _, name := range DefaultCategories {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO expense_categories (id, name) VALUES (?, ?)`, uuid.NewString(), name,
		); err != nil {
			return fmt.Errorf("failed to seed category %s: %w", name, err)
		}
	}
	return nil
}

// Insert writes one record to its collection's table.
func (s *Store) Insert(ctx context.Context, rec core.Record) error {
	def, ok := core.Get(rec.Collection())
	if !ok {
		return fmt.Errorf("collection not registered: %s", rec.Collection())
	}
	values, err := def.Row(rec)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, insertSQL(def), values...); err != nil {
		return fmt.Errorf("insert %s: %w", def.Name, err)
	}
	return nil
}

// InsertBatch writes records of one collection in a single transaction.
func (s *Store) InsertBatch(ctx context.Context, collection core.Collection, recs []core.Record) error {
	if len(recs) == 0 {
		return nil
	}
	def, ok := core.Get(collection)
	if !ok {
		return fmt.Errorf("collection not registered: %s", collection)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, insertSQL(def))
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range recs {
		values, err := def.Row(rec)
		if err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		if _, err := stmt.ExecContext(ctx, values...); err != nil {
			return fmt.Errorf("insert %s record %d: %w", def.Name, i, err)
		}
	}
	return tx.Commit()
}

// Categories returns the expense categories ordered by name.
func (s *Store) Categories(ctx context.Context) ([]core.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM expense_categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CategoryByName finds a category by case-insensitive name.
func (s *Store) CategoryByName(ctx context.Context, name string) (core.Category, error) {
	var c core.Category
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name FROM expense_categories WHERE name = ? COLLATE NOCASE`, strings.TrimSpace(name),
	).Scan(&c.ID, &c.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, core.ErrCategoryNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("failed to get category %q: %w", name, err)
	}
	return c, nil
}

// AddCategory inserts a category, returning the existing one when the name is taken.
func (s *Store) AddCategory(ctx context.Context, name string) (core.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return core.Category{}, errors.New("category name is required")
	}
	if c, err := s.CategoryByName(ctx, name); err == nil {
		return c, nil
	} else if !errors.Is(err, core.ErrCategoryNotFound) {
		return core.Category{}, err
	}

	c := core.Category{ID: uuid.NewString(), Name: name}
	if _, err := s.db.ExecContext(ctx, `INSERT INTO expense_categories (id, name) VALUES (?, ?)`, c.ID, c.Name); err != nil {
		return core.Category{}, fmt.Errorf("failed to add category: %w", err)
	}
	return c, nil
}

// Count returns the number of rows stored in a collection.
func (s *Store) Count(ctx context.Context, collection core.Collection) (int, error) {
	def, ok := core.Get(collection)
	if !ok {
		return 0, fmt.Errorf("collection not registered: %s", collection)
	}
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+quote(string(def.Name))).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", def.Name, err)
	}
	return n, nil
}

// InsertImportLog writes one audit entry.
func (s *Store) InsertImportLog(ctx context.Context, e core.AuditEntry) error {
	errs, err := json.Marshal(e.Errors)
	if err != nil {
		return fmt.Errorf("failed to marshal errors: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO import_logs
			(id, import_type, filename, total_records, successful_records, failed_records, errors, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, string(e.ImportType), e.FileName,
		e.TotalRecords, e.SuccessfulRecords, e.FailedRecords,
		string(errs), e.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert import log: %w", err)
	}
	return nil
}

// ListImportLogs returns entries newest first.
func (s *Store) ListImportLogs(ctx context.Context, filter core.AuditFilter) ([]core.AuditEntry, error) {
	filter = filter.Normalize()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, import_type, filename, total_records, successful_records, failed_records, errors, created_at
		FROM import_logs
		WHERE ? = '' OR import_type = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`,
		string(filter.ImportType), string(filter.ImportType), filter.Limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query import logs: %w", err)
	}
	defer rows.Close()

	var out []core.AuditEntry
	for rows.Next() {
		var (
			e          core.AuditEntry
			importType string
			fileName   sql.NullString
			errs       string
		)
		if err := rows.Scan(&e.ID, &importType, &fileName, &e.TotalRecords, &e.SuccessfulRecords, &e.FailedRecords, &errs, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan import log: %w", err)
		}
		e.ImportType = core.ImportType(importType)
		e.FileName = fileName.String
		e.Errors = []core.AuditError{}
		if errs != "" {
			if err := json.Unmarshal([]byte(errs), &e.Errors); err != nil {
				return nil, fmt.Errorf("failed to decode import log errors: %w", err)
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// PurgeImportLogs deletes entries created before the cutoff.
func (s *Store) PurgeImportLogs(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM import_logs WHERE created_at < ?`, before.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to purge import logs: %w", err)
	}
	return res.RowsAffected()
}

// insertSQL builds a parameterized insert for def.
func insertSQL(def core.CollectionDefinition) string {
	cols := make([]string, len(def.Columns))
	for i, c := range def.Columns {
		cols[i] = quote(c)
	}
	params := strings.TrimSuffix(strings.Repeat("?, ", len(def.Columns)), ", ")
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", quote(string(def.Name)), strings.Join(cols, ", "), params)
}

func quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}
