package location

import "github.com/nerrad567/rwanda"

// Location is one row of the locations table.
type Location struct {
	Code       string       `json:"code"`
	ParentCode string       `json:"parent_code,omitempty"`
	Level      rwanda.Level `json:"level"`
	Name       string       `json:"name"`

	// Position is the pre-order index of the entry in the dataset. Ordering
	// by it reproduces table order at every level.
	Position int `json:"-"`
}

// FromTable converts a location resolved in the lookup table.
func FromTable(l rwanda.Location, position int) Location {
	return Location{
		Code:       l.Code,
		ParentCode: l.ParentCode(),
		Level:      l.Level,
		Name:       l.Name,
		Position:   position,
	}
}
