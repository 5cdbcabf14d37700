// Package core provides the ingestion pipeline for host ledger records.
//
// This package contains all domain logic independent of any transport or
// storage layer. It can be used by web handlers, the CLI, or tests without
// modification.
//
// # Architecture
//
// Two front-ends feed the same downstream stages:
//
//   - Email: a [RawMessage] is matched against an ordered rule table by the
//     [Classifier], which extracts named fields with regular expressions.
//     The [Normalizer] turns those fields into a typed [Record].
//   - Tabular: CSV text is checked by the [TabularValidator], which resolves
//     columns once per batch and validates every row independently,
//     partitioning the batch into accepted and rejected rows.
//
// Accepted records are written by the [Router] to the collection their type
// belongs to, and every attempt is recorded exactly once by the
// [AuditService].
//
// # Collection Registry
//
// Storage collections are registered at init time using [Register]. Each
// [CollectionDefinition] lists the columns of its table and converts a
// [Record] into a row of values in that column order:
//
//	core.Register(core.CollectionDefinition{
//	    Name:    core.CollectionTrips,
//	    Label:   "Trips",
//	    Columns: []string{"id", "trip_id", "guest_name"},
//	    Row:     tripRow,
//	})
//
// # Error Handling
//
// Attempt-level failures are typed: [*StructuralError] for batches that
// cannot be parsed at all and [*StorageError] for failed writes. Technical
// errors are mapped to user-friendly messages using [MapError]. Each error
// category has a code for support reference:
//
//   - DB001-DB007: Database errors (duplicates, constraints, connections)
//   - VAL001-VAL006: Validation errors (formats, missing columns)
//   - FILE001-FILE005: File errors (size, encoding, format)
//   - CLS001-CLS002: Classification errors
//   - IMP001-IMP003: Import errors (busy, unknown type)
package core
