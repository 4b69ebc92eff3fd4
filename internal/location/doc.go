// Package location keeps a relational projection of the administrative
// hierarchy in SQLite.
//
// Every province, district, sector, cell and village becomes one row of the
// locations table keyed by its code, with a parent_code reference and a
// pre-order position that preserves dataset order. Seeding is idempotent:
// codes are derived from names, so re-running Seed against the same dataset
// inserts nothing.
//
// WriteSQL emits the same rows as a portable SQL script for loading into
// other databases.
//
// # Thread Safety
//
// SQLiteRepository is safe for concurrent use from multiple goroutines.
package location
