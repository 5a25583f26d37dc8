// Package index persists scene fingerprints and the files they belong to.
//
// The Store wraps a database/sql handle on either SQLite (modernc.org/sqlite)
// or PostgreSQL (pgx). Both backends share one set of queries; placeholders
// are written with '?' and rebound for PostgreSQL. The schema is created by
// Init and carries a version row; every other operation refuses to run against
// an uninitialized or mismatched database.
//
// A Store is meant to be owned by exactly one process for the lifetime of a
// command. Open takes an exclusive advisory lock next to the database and
// fails fast with ErrLocked when another vidup holds it. No operation wraps
// more than one statement in a transaction, so an interrupted analysis can
// leave a file Unanalyzed with a partial scene list; re-analysing the name
// replaces it.
package index
