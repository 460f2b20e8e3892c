package grounding

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"influencer-scout-be/pkg/transform"
)

// Renderer turns a normalized dataset into the grounding text a grounded
// session answers against. YAML keeps the per-record structure readable to
// the model while staying compact.
type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render produces the YAML grounding context and a whitespace token count
// callers can use to judge whether the context fits a model window.
func (r *Renderer) Render(dataset *transform.Dataset) (string, int, error) {
	if dataset == nil || len(dataset.Rows) == 0 {
		return "", 0, nil
	}

	doc := &yaml.Node{Kind: yaml.SequenceNode}
	for _, row := range dataset.Rows {
		rec := &yaml.Node{Kind: yaml.MappingNode}
		// Column order is preserved; yaml.Marshal on a map would sort keys.
		for _, col := range dataset.Columns {
			keyNode := &yaml.Node{Kind: yaml.ScalarNode, Value: col}
			valNode := &yaml.Node{Kind: yaml.ScalarNode, Value: transform.CellString(row[col])}
			rec.Content = append(rec.Content, keyNode, valNode)
		}
		doc.Content = append(doc.Content, rec)
	}

	out, err := yaml.Marshal(doc)
	if err != nil {
		return "", 0, fmt.Errorf("marshal grounding yaml: %w", err)
	}

	text := string(out)
	return text, len(strings.Fields(text)), nil
}
