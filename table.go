package rwanda

import "strings"

// Filter names ancestor levels to narrow a query to one branch of the
// hierarchy. Empty fields are not used for narrowing. Fields at or below
// the queried level are ignored.
type Filter struct {
	Province string `json:"province,omitempty" yaml:"province,omitempty"`
	District string `json:"district,omitempty" yaml:"district,omitempty"`
	Sector   string `json:"sector,omitempty" yaml:"sector,omitempty"`
	Cell     string `json:"cell,omitempty" yaml:"cell,omitempty"`
}

// value returns the normalised filter value for an ancestor level.
func (f *Filter) value(l Level) string {
	if f == nil {
		return ""
	}
	var v string
	switch l {
	case LevelProvince:
		v = f.Province
	case LevelDistrict:
		v = f.District
	case LevelSector:
		v = f.Sector
	case LevelCell:
		v = f.Cell
	}
	return normalise(v)
}

// normalise trims and lowercases a name for case-insensitive comparison.
func normalise(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// node is one entry of the hierarchy. The root node has level 0 and holds
// the provinces.
type node struct {
	name     string
	lower    string
	code     string
	level    Level
	parent   *node
	children []*node
	index    map[string]int // lowercase child name -> position in children

	// recorded is false when the dataset lists n without its subdivisions.
	// An empty children slice then means "unknown", not "none".
	recorded bool
}

// path returns the names from the province down to n.
func (n *node) path() []string {
	var names []string
	for cur := n; cur != nil && cur.level != 0; cur = cur.parent {
		names = append(names, cur.name)
	}
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return names
}

// child returns the child whose lowercase name equals lower.
func (n *node) child(lower string) (*node, bool) {
	i, ok := n.index[lower]
	if !ok {
		return nil, false
	}
	return n.children[i], true
}

// Table is an immutable administrative hierarchy.
//
// A Table is safe for concurrent use; none of its methods modify it.
type Table struct {
	root   *node
	byCode map[string]*node
	counts map[Level]int

	// unrecorded counts, per child level, the parents whose children the
	// dataset does not list.
	unrecorded map[Level]int
}

// Result is the outcome of a level query.
type Result struct {
	Names []string

	// Resolved is false when a filter value matched nothing.
	Resolved bool

	// Complete is false when at least one matched parent is listed in the
	// dataset without its subdivisions, so Names may be missing entries.
	Complete bool
}

// Provinces returns every province name in table order.
func (t *Table) Provinces() []string {
	names, _ := t.Names(LevelProvince, nil)
	return names
}

// Districts returns district names, optionally narrowed by province.
func (t *Table) Districts(f *Filter) ([]string, bool) {
	return t.Names(LevelDistrict, f)
}

// Sectors returns sector names, optionally narrowed by province and district.
func (t *Table) Sectors(f *Filter) ([]string, bool) {
	return t.Names(LevelSector, f)
}

// Cells returns cell names, optionally narrowed by province, district and sector.
func (t *Table) Cells(f *Filter) ([]string, bool) {
	return t.Names(LevelCell, f)
}

// Villages returns village names, optionally narrowed by any ancestor.
func (t *Table) Villages(f *Filter) ([]string, bool) {
	return t.Names(LevelVillage, f)
}

// Names returns the names at level whose ancestors match f.
//
// ok is false when a non-empty filter value has no case-insensitive match
// among its candidates, or when level is not a valid Level. A resolved
// branch without children yields an empty, non-nil slice; use Lookup to
// tell a branch with no subdivisions from one the dataset does not cover.
func (t *Table) Names(level Level, f *Filter) ([]string, bool) {
	r := t.Lookup(level, f)
	return r.Names, r.Resolved
}

// Lookup is Names with the coverage of the answer attached.
func (t *Table) Lookup(level Level, f *Filter) Result {
	parents, complete, ok := t.resolve(level, f)
	if !ok {
		return Result{}
	}
	size := 0
	for _, p := range parents {
		size += len(p.children)
		if !p.recorded {
			complete = false
		}
	}
	names := make([]string, 0, size)
	for _, p := range parents {
		for _, c := range p.children {
			names = append(names, c.name)
		}
	}
	return Result{Names: names, Resolved: true, Complete: complete}
}

// resolve walks the filter top-down and returns the nodes one level above
// level that satisfy every provided ancestor value. complete is false when
// an unrecorded node was among the candidates on the way down.
func (t *Table) resolve(level Level, f *Filter) (parents []*node, complete, ok bool) {
	if !level.Valid() {
		return nil, false, false
	}
	complete = true
	candidates := []*node{t.root}
	for l := LevelProvince; l < level; l++ {
		want := f.value(l)
		var next []*node
		for _, c := range candidates {
			if !c.recorded {
				complete = false
			}
			if want == "" {
				next = append(next, c.children...)
				continue
			}
			if match, ok := c.child(want); ok {
				next = append(next, match)
			}
		}
		if want != "" && len(next) == 0 {
			return nil, false, false
		}
		candidates = next
	}
	return candidates, complete, true
}

// Count returns the number of entries at level.
func (t *Table) Count(level Level) int {
	return t.counts[level]
}

// Complete reports whether the dataset lists the children of every entry
// one level above level.
func (t *Table) Complete(level Level) bool {
	return level.Valid() && t.unrecorded[level] == 0
}

// Counts returns the number of entries at every level.
func (t *Table) Counts() map[Level]int {
	out := make(map[Level]int, len(t.counts))
	for l, n := range t.counts {
		out[l] = n
	}
	return out
}

// Provinces returns every province name from the default table.
func Provinces() []string { return Default().Provinces() }

// Districts queries the default table. See Table.Districts.
func Districts(f *Filter) ([]string, bool) { return Default().Districts(f) }

// Sectors queries the default table. See Table.Sectors.
func Sectors(f *Filter) ([]string, bool) { return Default().Sectors(f) }

// Cells queries the default table. See Table.Cells.
func Cells(f *Filter) ([]string, bool) { return Default().Cells(f) }

// Villages queries the default table. See Table.Villages.
func Villages(f *Filter) ([]string, bool) { return Default().Villages(f) }
