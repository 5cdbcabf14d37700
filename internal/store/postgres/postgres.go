// Package postgres stores ledger records, expense categories, and the import
// log in PostgreSQL.
//
// Record tables are described by the collection registry in internal/core, so
// this package holds no per-collection SQL. It expects these tables to exist:
//
//	trips, earnings, maintenance_records, expenses
//	expense_categories (id uuid, name text)
//	import_logs (id, import_type, filename, total_records, successful_records,
//	             failed_records, errors jsonb, created_at)
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/JonMunkholm/hostledger/internal/core"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn, and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store implements core.Store, core.AuditStore, and core.Pinger.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a store on an open pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Insert writes one record to its collection's table.
func (s *Store) Insert(ctx context.Context, rec core.Record) error {
	def, err := definition(rec.Collection())
	if err != nil {
		return err
	}
	values, err := def.Row(rec)
	if err != nil {
		return err
	}
	return insertRow(ctx, s.pool, def, values)
}

// InsertBatch writes records of one collection in a single transaction using
// the COPY protocol. Either every record is stored or none is.
func (s *Store) InsertBatch(ctx context.Context, collection core.Collection, recs []core.Record) error {
	if len(recs) == 0 {
		return nil
	}
	def, err := definition(collection)
	if err != nil {
		return err
	}

	rows := make([][]any, len(recs))
	for i, rec := range recs {
		if rows[i], err = def.Row(rec); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	n, err := tx.CopyFrom(ctx, pgx.Identifier{string(def.Name)}, def.Columns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("copy into %s: %w", def.Name, err)
	}
	if n != int64(len(rows)) {
		return fmt.Errorf("copy into %s: wrote %d of %d rows", def.Name, n, len(rows))
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Categories returns the expense category reference set ordered by name.
func (s *Store) Categories(ctx context.Context) ([]core.Category, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name FROM expense_categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var (
			id   pgtype.UUID
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, core.Category{ID: core.PgUUIDToString(id), Name: name})
	}
	return out, rows.Err()
}

// CategoryByName finds a category by case-insensitive name.
func (s *Store) CategoryByName(ctx context.Context, name string) (core.Category, error) {
	var (
		id  pgtype.UUID
		got string
	)
	err := s.pool.QueryRow(ctx,
		`SELECT id, name FROM expense_categories WHERE lower(name) = lower($1) LIMIT 1`,
		strings.TrimSpace(name),
	).Scan(&id, &got)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Category{}, core.ErrCategoryNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category %q: %w", name, err)
	}
	return core.Category{ID: core.PgUUIDToString(id), Name: got}, nil
}

// InsertImportLog writes one audit entry.
func (s *Store) InsertImportLog(ctx context.Context, e core.AuditEntry) error {
	errs, err := json.Marshal(e.Errors)
	if err != nil {
		return fmt.Errorf("marshal errors: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO import_logs
			(id, import_type, filename, total_records, successful_records, failed_records, errors, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		core.ToPgUUID(e.ID),
		string(e.ImportType),
		core.ToPgText(e.FileName),
		e.TotalRecords,
		e.SuccessfulRecords,
		e.FailedRecords,
		errs,
		core.ToPgTimestamptz(e.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert import log: %w", err)
	}
	return nil
}

// ListImportLogs returns entries newest first.
func (s *Store) ListImportLogs(ctx context.Context, filter core.AuditFilter) ([]core.AuditEntry, error) {
	filter = filter.Normalize()

	rows, err := s.pool.Query(ctx, `
		SELECT id, import_type, filename, total_records, successful_records, failed_records, errors, created_at
		FROM import_logs
		WHERE $1 = '' OR import_type = $1
		ORDER BY created_at DESC
		LIMIT $2`,
		string(filter.ImportType), filter.Limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query import logs: %w", err)
	}
	defer rows.Close()

	var out []core.AuditEntry
	for rows.Next() {
		var (
			e          core.AuditEntry
			id         pgtype.UUID
			importType string
			fileName   pgtype.Text
			errs       []byte
			createdAt  pgtype.Timestamptz
		)
		if err := rows.Scan(&id, &importType, &fileName, &e.TotalRecords, &e.SuccessfulRecords, &e.FailedRecords, &errs, &createdAt); err != nil {
			return nil, fmt.Errorf("scan import log: %w", err)
		}
		e.ID = core.PgUUIDToString(id)
		e.ImportType = core.ImportType(importType)
		e.FileName = fileName.String
		e.CreatedAt = createdAt.Time
		if err := decodeErrors(errs, &e); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// PurgeImportLogs deletes entries created before the cutoff.
func (s *Store) PurgeImportLogs(ctx context.Context, before time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM import_logs WHERE created_at < $1`, core.ToPgTimestamptz(before))
	if err != nil {
		return 0, fmt.Errorf("purge import logs: %w", err)
	}
	return tag.RowsAffected(), nil
}

// insertRow executes a single-row insert for def.
func insertRow(ctx context.Context, db DBTX, def core.CollectionDefinition, values []any) error {
	if len(values) != len(def.Columns) {
		return fmt.Errorf("%s: %d values for %d columns", def.Name, len(values), len(def.Columns))
	}
	if _, err := db.Exec(ctx, insertSQL(def), values...); err != nil {
		return describe(err)
	}
	return nil
}

// insertSQL builds a parameterized insert for def with quoted identifiers.
func insertSQL(def core.CollectionDefinition) string {
	cols := make([]string, len(def.Columns))
	params := make([]string, len(def.Columns))
	for i, c := range def.Columns {
		cols[i] = pgx.Identifier{c}.Sanitize()
		params[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		pgx.Identifier{string(def.Name)}.Sanitize(),
		strings.Join(cols, ", "),
		strings.Join(params, ", "),
	)
}

func definition(c core.Collection) (core.CollectionDefinition, error) {
	def, ok := core.Get(c)
	if !ok {
		return core.CollectionDefinition{}, fmt.Errorf("collection not registered: %s", c)
	}
	return def, nil
}

// describe adds the violated constraint to PostgreSQL errors.
func describe(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.ConstraintName != "" {
		return fmt.Errorf("%w (constraint %s)", err, pgErr.ConstraintName)
	}
	return err
}

func decodeErrors(data []byte, e *core.AuditEntry) error {
	e.Errors = []core.AuditError{}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, &e.Errors); err != nil {
		return fmt.Errorf("decode import log errors: %w", err)
	}
	return nil
}
