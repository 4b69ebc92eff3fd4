package rwanda

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed data/rwanda.yaml
var embeddedDataset []byte

// defaultTable is built on first use. The embedded file is validated by the
// package tests, so a parse failure here is a build defect.
var defaultTable = sync.OnceValue(func() *Table {
	t, err := Parse(bytes.NewReader(embeddedDataset))
	if err != nil {
		panic(fmt.Sprintf("rwanda: embedded dataset: %v", err))
	}
	return t
})

// Default returns the process-wide table built from the embedded dataset.
func Default() *Table {
	return defaultTable()
}

// LoadFile reads a dataset from path. Files ending in .csv are read with
// ParseCSV, anything else as YAML.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()

	parse := Parse
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		parse = ParseCSV
	}
	t, err := parse(f)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return t, nil
}

// Parse builds a Table from a YAML dataset.
//
// The document must be a mapping of provinces to districts to sectors to
// cells to village lists. At any level above villages a sequence may
// replace the mapping to list children whose own subdivisions are not
// recorded, and a null value marks a single entry the same way. An empty
// sequence or mapping records an entry that has no subdivisions. Empty
// names and case-insensitive duplicates under one parent are rejected.
func Parse(r io.Reader) (*Table, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidDataset)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidDataset, err)
	}

	t := newTable()

	content := &doc
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		content = doc.Content[0]
	}
	if content.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: line %d: provinces must be a mapping", ErrInvalidDataset, content.Line)
	}
	if err := t.addChildren(t.root, content, LevelProvince); err != nil {
		return nil, err
	}
	t.finish()
	return t, nil
}

func newTable() *Table {
	return &Table{
		root:       &node{index: map[string]int{}, recorded: true},
		byCode:     make(map[string]*node),
		counts:     make(map[Level]int, len(Levels)),
		unrecorded: make(map[Level]int, len(Levels)),
	}
}

// finish counts the entries whose subdivisions are not recorded.
func (t *Table) finish() {
	var visit func(n *node)
	visit = func(n *node) {
		if n.level < LevelVillage && !n.recorded {
			t.unrecorded[n.level+1]++
		}
		for _, c := range n.children {
			visit(c)
		}
	}
	visit(t.root)
}

// addChildren attaches the entries of y to parent as nodes at level.
func (t *Table) addChildren(parent *node, y *yaml.Node, level Level) error {
	if y.Kind == yaml.AliasNode && y.Alias != nil {
		y = y.Alias
	}

	switch {
	case isNull(y):
		return nil

	case y.Kind == yaml.SequenceNode:
		parent.recorded = true
		for _, item := range y.Content {
			if item.Kind != yaml.ScalarNode {
				return fmt.Errorf("%w: line %d: %s entries must be names", ErrInvalidDataset, item.Line, level)
			}
			if _, err := t.attach(parent, item.Value, item.Line, level); err != nil {
				return err
			}
		}
		return nil

	case y.Kind == yaml.MappingNode && level < LevelVillage:
		parent.recorded = true
		for i := 0; i+1 < len(y.Content); i += 2 {
			key, value := y.Content[i], y.Content[i+1]
			if key.Kind != yaml.ScalarNode {
				return fmt.Errorf("%w: line %d: %s keys must be names", ErrInvalidDataset, key.Line, level)
			}
			child, err := t.attach(parent, key.Value, key.Line, level)
			if err != nil {
				return err
			}
			if err := t.addChildren(child, value, level+1); err != nil {
				return err
			}
		}
		return nil

	default:
		return fmt.Errorf("%w: line %d: unexpected content for %s entries", ErrInvalidDataset, y.Line, level)
	}
}

// attach creates a named child of parent and registers its code. line is
// the source position reported in errors.
func (t *Table) attach(parent *node, raw string, line int, level Level) (*node, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return nil, fmt.Errorf("%w: line %d: empty %s name", ErrInvalidDataset, line, level)
	}
	lower := strings.ToLower(name)
	if _, dup := parent.index[lower]; dup {
		return nil, fmt.Errorf("%w: line %d: duplicate %s %q under %q",
			ErrInvalidDataset, line, level, name, strings.Join(parent.path(), "/"))
	}

	n := &node{
		name:   name,
		lower:  lower,
		level:  level,
		parent: parent,
		index:  map[string]int{},
	}
	n.code = codeFor(n)
	if other, clash := t.byCode[n.code]; clash {
		return nil, fmt.Errorf("%w: line %d: %q and %q share code %s",
			ErrInvalidDataset, line, strings.Join(n.path(), "/"), strings.Join(other.path(), "/"), n.code)
	}

	parent.index[lower] = len(parent.children)
	parent.children = append(parent.children, n)
	t.byCode[n.code] = n
	t.counts[level]++
	return n, nil
}

// isNull reports whether y is an explicit or implicit YAML null.
func isNull(y *yaml.Node) bool {
	return y.Kind == yaml.ScalarNode && y.ShortTag() == "!!null"
}
