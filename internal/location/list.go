package location

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/nerrad567/rwanda"
)

// Sort keys for level listings.
const (
	// SortByPosition keeps dataset order.
	SortByPosition = "position"
	SortByName     = "name"
)

// ListOptions orders and pages a level listing. The zero value lists
// everything in dataset order.
type ListOptions struct {
	Sort   string // SortByPosition (default) or SortByName
	Desc   bool
	Offset int
	Limit  int // 0 means no limit
}

// Validate reports ErrInvalidListOptions for an unknown sort key or a
// negative offset or limit.
func (o ListOptions) Validate() error {
	switch o.Sort {
	case "", SortByPosition, SortByName:
	default:
		return fmt.Errorf("%w: unknown sort %q", ErrInvalidListOptions, o.Sort)
	}
	if o.Offset < 0 || o.Limit < 0 {
		return fmt.Errorf("%w: offset and limit must not be negative", ErrInvalidListOptions)
	}
	return nil
}

// ListTable pages the locations at level straight from t, ordered the same
// way SQLiteRepository.ListByLevel orders rows seeded from t.
func ListTable(t *rwanda.Table, level rwanda.Level, opts ListOptions) ([]Location, error) {
	if !level.Valid() {
		return nil, fmt.Errorf("%w: %d", rwanda.ErrUnknownLevel, int(level))
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	all := make([]Location, 0, t.Count(level))
	position := 0
	t.Walk(func(l rwanda.Location) bool {
		if l.Level == level {
			all = append(all, FromTable(l, position))
		}
		position++
		return true
	})

	compare := func(a, b Location) int { return cmp.Compare(a.Position, b.Position) }
	if opts.Sort == SortByName {
		compare = func(a, b Location) int {
			if c := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
				return c
			}
			return cmp.Compare(a.Position, b.Position)
		}
	}
	if opts.Desc {
		asc := compare
		compare = func(a, b Location) int { return asc(b, a) }
	}
	slices.SortFunc(all, compare)

	if opts.Offset >= len(all) {
		return []Location{}, nil
	}
	all = all[opts.Offset:]
	if opts.Limit > 0 && opts.Limit < len(all) {
		all = all[:opts.Limit]
	}
	return all, nil
}
