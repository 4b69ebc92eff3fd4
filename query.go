package rwanda

import "strings"

// Location is a resolved entry of the hierarchy.
type Location struct {
	Level Level    `json:"level"`
	Name  string   `json:"name"`
	Code  string   `json:"code"`
	Path  []string `json:"path"`
}

// ParentCode returns the code of the enclosing location, or "" for a province.
func (l Location) ParentCode() string {
	if i := strings.LastIndexByte(l.Code, '-'); i > len(codePrefix) {
		return l.Code[:i]
	}
	return ""
}

func (n *node) location() Location {
	return Location{
		Level: n.level,
		Name:  n.name,
		Code:  n.code,
		Path:  n.path(),
	}
}

// Locate resolves a path of names, province first, to a single location.
// Names match case-insensitively. An empty path or any unmatched name
// returns false.
func (t *Table) Locate(path ...string) (Location, bool) {
	if len(path) == 0 || len(path) > len(Levels) {
		return Location{}, false
	}
	cur := t.root
	for _, name := range path {
		next, ok := cur.child(normalise(name))
		if !ok {
			return Location{}, false
		}
		cur = next
	}
	return cur.location(), true
}

// LocateCode returns the location with the given code. Codes match
// case-insensitively.
func (t *Table) LocateCode(code string) (Location, bool) {
	n, ok := t.byCode[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return Location{}, false
	}
	return n.location(), true
}

// Children returns the direct subdivisions of loc in table order.
// It returns nil when loc is not part of t.
func (t *Table) Children(loc Location) []Location {
	n, ok := t.byCode[loc.Code]
	if !ok {
		return nil
	}
	out := make([]Location, 0, len(n.children))
	for _, c := range n.children {
		out = append(out, c.location())
	}
	return out
}

// Walk visits every location in pre-order, provinces first. It stops as
// soon as fn returns false.
func (t *Table) Walk(fn func(Location) bool) {
	walk(t.root, fn)
}

func walk(n *node, fn func(Location) bool) bool {
	for _, c := range n.children {
		if !fn(c.location()) {
			return false
		}
		if !walk(c, fn) {
			return false
		}
	}
	return true
}

// Search returns locations whose name contains query, ignoring case.
// A zero level searches every level. Results follow table order and are
// capped at limit when limit is positive. An empty query matches nothing.
func (t *Table) Search(query string, level Level, limit int) []Location {
	q := normalise(query)
	if q == "" {
		return nil
	}
	var out []Location
	searchNodes(t.root, q, level, limit, &out)
	return out
}

func searchNodes(n *node, q string, level Level, limit int, out *[]Location) bool {
	for _, c := range n.children {
		if (level == 0 || c.level == level) && strings.Contains(c.lower, q) {
			*out = append(*out, c.location())
			if limit > 0 && len(*out) >= limit {
				return false
			}
		}
		if level != 0 && c.level >= level {
			continue
		}
		if !searchNodes(c, q, level, limit, out) {
			return false
		}
	}
	return true
}
