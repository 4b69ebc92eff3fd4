package location

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/nerrad567/rwanda"
)

// Repository defines the read operations served from the locations table.
type Repository interface {
	GetByCode(ctx context.Context, code string) (*Location, error)
	ListChildren(ctx context.Context, parentCode string) ([]Location, error)
	ListByLevel(ctx context.Context, level rwanda.Level, opts ListOptions) ([]Location, error)
	SearchByName(ctx context.Context, query string, level rwanda.Level, limit int) ([]Location, error)
	CountByLevel(ctx context.Context) (map[rwanda.Level]int, error)
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed location repository.
// The locations table must already exist (see the migrations package).
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const selectColumns = `SELECT code, parent_code, level, name, position FROM locations`

// Seed writes every entry of t in one transaction and returns the number of
// rows inserted. Rows whose code already exists are left untouched.
func (r *SQLiteRepository) Seed(ctx context.Context, t *rwanda.Table) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("starting seed transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback is no-op after commit

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO locations
		(code, parent_code, level, name, name_lower, position)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(code) DO NOTHING`)
	if err != nil {
		return 0, fmt.Errorf("preparing seed statement: %w", err)
	}
	defer stmt.Close()

	var inserted int64
	var walkErr error
	position := 0
	t.Walk(func(l rwanda.Location) bool {
		if err := ctx.Err(); err != nil {
			walkErr = err
			return false
		}
		loc := FromTable(l, position)
		position++

		res, err := stmt.ExecContext(ctx,
			loc.Code, nullStr(loc.ParentCode), loc.Level.String(),
			loc.Name, strings.ToLower(loc.Name), loc.Position)
		if err != nil {
			walkErr = fmt.Errorf("inserting location %s: %w", loc.Code, err)
			return false
		}
		n, err := res.RowsAffected()
		if err != nil {
			walkErr = fmt.Errorf("counting rows for %s: %w", loc.Code, err)
			return false
		}
		inserted += n
		return true
	})
	if walkErr != nil {
		return 0, walkErr
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing seed: %w", err)
	}
	return inserted, nil
}

// nullStr maps an empty string to SQL NULL.
func nullStr(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// GetByCode returns the location with the given code.
// Returns ErrInvalidCode for malformed codes and ErrLocationNotFound when
// no row matches.
func (r *SQLiteRepository) GetByCode(ctx context.Context, code string) (*Location, error) {
	code, err := NormaliseCode(code)
	if err != nil {
		return nil, err
	}
	row := r.db.QueryRowContext(ctx, selectColumns+` WHERE code = ?`, code)
	loc, err := scanLocation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrLocationNotFound, code)
		}
		return nil, fmt.Errorf("getting location %s: %w", code, err)
	}
	return loc, nil
}

// ListChildren returns the direct subdivisions of parentCode in dataset
// order. An empty parentCode lists the provinces.
func (r *SQLiteRepository) ListChildren(ctx context.Context, parentCode string) ([]Location, error) {
	if parentCode == "" {
		return r.queryLocations(ctx, selectColumns+` WHERE parent_code IS NULL ORDER BY position`)
	}

	parent, err := r.GetByCode(ctx, parentCode)
	if err != nil {
		return nil, err
	}
	return r.queryLocations(ctx, selectColumns+` WHERE parent_code = ? ORDER BY position`, parent.Code)
}

// ListByLevel returns one page of the locations at level, ordered by opts.
func (r *SQLiteRepository) ListByLevel(ctx context.Context, level rwanda.Level, opts ListOptions) ([]Location, error) {
	if !level.Valid() {
		return nil, fmt.Errorf("%w: %d", rwanda.ErrUnknownLevel, int(level))
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	dir := "ASC"
	if opts.Desc {
		dir = "DESC"
	}
	order := "position " + dir
	if opts.Sort == SortByName {
		order = "name_lower " + dir + ", position " + dir
	}

	limit := -1 // no limit in SQLite
	if opts.Limit > 0 {
		limit = opts.Limit
	}
	return r.queryLocations(ctx,
		selectColumns+` WHERE level = ? ORDER BY `+order+` LIMIT ? OFFSET ?`,
		level.String(), limit, opts.Offset)
}

// SearchByName returns locations whose name contains query, ignoring case.
// A zero level searches all levels; a positive limit caps the result.
func (r *SQLiteRepository) SearchByName(ctx context.Context, query string, level rwanda.Level, limit int) ([]Location, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil, nil
	}

	var b strings.Builder
	b.WriteString(selectColumns)
	b.WriteString(` WHERE name_lower LIKE ? ESCAPE '\'`)
	args := []any{"%" + escapeLike(q) + "%"}

	if level != 0 {
		if !level.Valid() {
			return nil, fmt.Errorf("%w: %d", rwanda.ErrUnknownLevel, int(level))
		}
		b.WriteString(` AND level = ?`)
		args = append(args, level.String())
	}
	b.WriteString(` ORDER BY position`)
	if limit > 0 {
		b.WriteString(` LIMIT ?`)
		args = append(args, limit)
	}

	return r.queryLocations(ctx, b.String(), args...)
}

// escapeLike escapes LIKE wildcards so they match literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// CountByLevel returns the number of rows at each level. Levels without rows
// are reported as zero.
func (r *SQLiteRepository) CountByLevel(ctx context.Context) (map[rwanda.Level]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT level, COUNT(*) FROM locations GROUP BY level`)
	if err != nil {
		return nil, fmt.Errorf("counting locations: %w", err)
	}
	defer rows.Close()

	counts := make(map[rwanda.Level]int, len(rwanda.Levels))
	for _, l := range rwanda.Levels {
		counts[l] = 0
	}
	for rows.Next() {
		var levelName string
		var n int
		if err := rows.Scan(&levelName, &n); err != nil {
			return nil, fmt.Errorf("scanning count row: %w", err)
		}
		level, err := rwanda.ParseLevel(levelName)
		if err != nil {
			return nil, fmt.Errorf("scanning count row: %w", err)
		}
		counts[level] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating count rows: %w", err)
	}
	return counts, nil
}

func (r *SQLiteRepository) queryLocations(ctx context.Context, query string, args ...any) ([]Location, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying locations: %w", err)
	}
	defer rows.Close()

	locations := []Location{}
	for rows.Next() {
		loc, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning location row: %w", err)
		}
		locations = append(locations, *loc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating location rows: %w", err)
	}
	return locations, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanLocation(s scanner) (*Location, error) {
	var loc Location
	var parent sql.NullString
	var levelName string
	if err := s.Scan(&loc.Code, &parent, &levelName, &loc.Name, &loc.Position); err != nil {
		return nil, err
	}
	level, err := rwanda.ParseLevel(levelName)
	if err != nil {
		return nil, err
	}
	loc.Level = level
	loc.ParentCode = parent.String
	return &loc, nil
}
