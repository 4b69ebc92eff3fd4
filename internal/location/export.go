package location

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/nerrad567/rwanda"
)

// DefaultTableName is the table WriteSQL targets when none is given.
const DefaultTableName = "locations"

var identRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// TableName checks that name is usable as a bare SQL identifier. An empty
// name becomes DefaultTableName.
func TableName(name string) (string, error) {
	if name == "" {
		return DefaultTableName, nil
	}
	if !identRegex.MatchString(name) {
		return "", fmt.Errorf("%w: table name %q", ErrInvalidIdentifier, name)
	}
	return name, nil
}

// WriteSQL writes a SQL script that creates tableName and inserts every
// entry of t, grouped by level so parents always precede their children.
// The script is idempotent: re-running it inserts nothing new.
func WriteSQL(w io.Writer, t *rwanda.Table, tableName string) error {
	tableName, err := TableName(tableName)
	if err != nil {
		return err
	}

	byLevel := make(map[rwanda.Level][]Location, len(rwanda.Levels))
	position := 0
	t.Walk(func(l rwanda.Location) bool {
		byLevel[l.Level] = append(byLevel[l.Level], FromTable(l, position))
		position++
		return true
	})

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "-- Rwanda administrative divisions: %d locations\n\n", position)
	fmt.Fprintf(bw, `CREATE TABLE IF NOT EXISTS %[1]s (
    code        TEXT PRIMARY KEY,
    parent_code TEXT REFERENCES %[1]s(code),
    level       TEXT NOT NULL,
    name        TEXT NOT NULL,
    name_lower  TEXT NOT NULL,
    position    INTEGER NOT NULL
);
`, tableName)

	for _, level := range rwanda.Levels {
		rows := byLevel[level]
		if len(rows) == 0 {
			continue
		}
		fmt.Fprintf(bw, "\n-- %s (%d)\n", titleCase(level.Plural()), len(rows))
		for _, loc := range rows {
			parent := "NULL"
			if loc.ParentCode != "" {
				parent = quote(loc.ParentCode)
			}
			fmt.Fprintf(bw,
				"INSERT INTO %s (code, parent_code, level, name, name_lower, position) VALUES (%s, %s, %s, %s, %s, %d) ON CONFLICT (code) DO NOTHING;\n",
				tableName, quote(loc.Code), parent, quote(level.String()),
				quote(loc.Name), quote(strings.ToLower(loc.Name)), loc.Position)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing sql script: %w", err)
	}
	return nil
}

// quote renders s as a SQL string literal.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
