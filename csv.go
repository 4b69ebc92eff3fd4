package rwanda

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ParseCSV builds a Table from a flat CSV export with one row per path.
//
// The first row is a header naming the level columns (province, district,
// sector, cell, village, in any case and order, singular or plural).
// Columns for deeper levels may be omitted and other columns are ignored.
// Rows repeat their ancestors; a row whose deeper fields are blank adds
// only the levels it fills in. An entry's subdivisions count as recorded
// once a row lists one of them, so entries never named as a parent are
// treated like a YAML sequence item. A village repeated under the same
// cell is rejected; repeated ancestors are merged case-insensitively.
func ParseCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty csv", ErrInvalidDataset)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidDataset, err)
	}

	columns, err := levelColumns(header)
	if err != nil {
		return nil, err
	}

	t := newTable()
	line := 1
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidDataset, err)
		}
		if err := t.addRow(record, columns, line); err != nil {
			return nil, err
		}
	}
	t.finish()
	return t, nil
}

// levelColumns maps each level to its column index in header. Levels must
// form an unbroken run starting at province.
func levelColumns(header []string) ([]int, error) {
	index := make(map[Level]int, len(Levels))
	for i, h := range header {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if l, err := ParseLevel(name); err == nil {
			if _, dup := index[l]; dup {
				return nil, fmt.Errorf("%w: csv header repeats %s", ErrInvalidDataset, l)
			}
			index[l] = i
		}
	}

	var columns []int
	for _, l := range Levels {
		i, ok := index[l]
		if !ok {
			break
		}
		columns = append(columns, i)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: csv header has no province column", ErrInvalidDataset)
	}
	if len(columns) != len(index) {
		return nil, fmt.Errorf("%w: csv header skips a level", ErrInvalidDataset)
	}
	return columns, nil
}

// addRow attaches the path in record below the root, creating missing
// entries along the way.
func (t *Table) addRow(record []string, columns []int, line int) error {
	cur := t.root
	for depth, col := range columns {
		level := Levels[depth]
		var name string
		if col < len(record) {
			name = strings.TrimSpace(record[col])
		}
		if name == "" {
			for _, rest := range columns[depth+1:] {
				if rest < len(record) && strings.TrimSpace(record[rest]) != "" {
					return fmt.Errorf("%w: line %d: %s is blank but a deeper level is set", ErrInvalidDataset, line, level)
				}
			}
			if depth == 0 {
				return fmt.Errorf("%w: line %d: empty province name", ErrInvalidDataset, line)
			}
			return nil
		}

		cur.recorded = true
		if next, ok := cur.child(strings.ToLower(name)); ok && level < LevelVillage {
			cur = next
			continue
		}
		next, err := t.attach(cur, name, line, level)
		if err != nil {
			return err
		}
		cur = next
	}
	return nil
}
