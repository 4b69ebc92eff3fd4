// Package api implements the HTTP API of the Rwanda lookup service.
//
// This package provides:
//   - Per-level name listings narrowed by province, district, sector and cell
//   - Location lookups by code, child listings and name search
//   - Paged level listings sorted by dataset position or name
//   - Dataset statistics and Prometheus metrics
//   - Middleware stack (request ID, logging, recovery, CORS, body limit)
//
// # Unresolved filters
//
// A filter value that matches nothing is not the same as a branch with no
// children. The former answers 404 with code "unresolved_filter"; the latter
// answers 200 with an empty names list.
//
// # Storage
//
// Filtered name listings always come from the in-memory table. Code
// lookups, child listings, level pages and search use the SQLite location
// repository when one is configured and fall back to the table otherwise.
package api
