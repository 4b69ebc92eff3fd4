package rwanda

import (
	"fmt"
	"strings"
)

// Level identifies one tier of the administrative hierarchy.
// The zero value means "any level" where a Level is used as a selector.
type Level int

// Administrative levels, outermost first.
const (
	LevelProvince Level = iota + 1
	LevelDistrict
	LevelSector
	LevelCell
	LevelVillage
)

// Levels lists every level from province down to village.
var Levels = []Level{LevelProvince, LevelDistrict, LevelSector, LevelCell, LevelVillage}

var levelNames = map[Level]string{
	LevelProvince: "province",
	LevelDistrict: "district",
	LevelSector:   "sector",
	LevelCell:     "cell",
	LevelVillage:  "village",
}

// String returns the lowercase singular name of the level.
func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// Valid reports whether l is one of the five administrative levels.
func (l Level) Valid() bool {
	return l >= LevelProvince && l <= LevelVillage
}

// Plural returns the plural name used by HTTP routes and MQTT topics.
func (l Level) Plural() string {
	if !l.Valid() {
		return l.String()
	}
	return l.String() + "s"
}

// ParseLevel converts a singular or plural level name, in any case, to a Level.
func ParseLevel(s string) (Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for l, name := range levelNames {
		if s == name || s == name+"s" {
			return l, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownLevel, s)
}

// MarshalText encodes the level as its name.
func (l Level) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownLevel, int(l))
	}
	return []byte(l.String()), nil
}

// UnmarshalText decodes a level name.
func (l *Level) UnmarshalText(text []byte) error {
	parsed, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
