package rwanda

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// WriteYAML writes t in the format Parse reads. Parsing the output yields
// an equal table, including which entries have recorded subdivisions.
func (t *Table) WriteYAML(w io.Writer) error {
	doc := &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{childrenNode(t.root)}}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding dataset: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encoding dataset: %w", err)
	}
	return nil
}

// childrenNode renders the value stored under n's key.
func childrenNode(n *node) *yaml.Node {
	if !n.recorded {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "~"}
	}

	// A flow sequence is only safe when no child needs a value of its own.
	flat := true
	for _, c := range n.children {
		if c.level < LevelVillage && c.recorded {
			flat = false
			break
		}
	}
	if flat && n.level > 0 {
		seq := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
		for _, c := range n.children {
			seq.Content = append(seq.Content, nameNode(c.name))
		}
		return seq
	}

	m := &yaml.Node{Kind: yaml.MappingNode}
	for _, c := range n.children {
		m.Content = append(m.Content, nameNode(c.name), childrenNode(c))
	}
	return m
}

func nameNode(name string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name}
}
