// Package sqlite archives the chat transcript in a local SQLite database.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. Citations are stored as a MessagePack blob
// (github.com/vmihailenco/msgpack/v5) next to the message row.
//
// # Schema
//
// The schema is managed through versioned migrations embedded from the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql
// files; applied versions are recorded in schema_migrations.
//
// # Data Location
//
// By default, the database is stored at ~/.policydesk/data/history.db
//
// # Thread Safety
//
// All operations are safe for concurrent use. The store relies on SQLite's
// own locking in WAL mode.
package sqlite
