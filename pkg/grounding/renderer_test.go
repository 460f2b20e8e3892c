package grounding

import (
	"strings"
	"testing"

	"influencer-scout-be/pkg/transform"
)

func TestRenderPreservesColumnOrder(t *testing.T) {
	r := NewRenderer()
	ds := &transform.Dataset{
		Columns: []string{"post_id", "user_name", "user_fans"},
		Rows: []map[string]any{
			{"post_id": "1", "user_name": "alice", "user_fans": float64(52000)},
			{"post_id": "2", "user_name": "bob", "user_fans": float64(1200)},
		},
	}

	text, tokens, err := r.Render(ds)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if tokens != len(strings.Fields(text)) {
		t.Errorf("token count = %d, want whitespace field count %d", tokens, len(strings.Fields(text)))
	}

	// yaml.Marshal on a plain map would sort keys; the renderer must not.
	idxID := strings.Index(text, "post_id:")
	idxName := strings.Index(text, "user_name: alice")
	idxFans := strings.Index(text, "user_fans:")
	if idxID < 0 || idxName < 0 || idxFans < 0 {
		t.Fatalf("rendered text missing expected keys:\n%s", text)
	}
	if !(idxID < idxName && idxName < idxFans) {
		t.Errorf("keys out of column order:\n%s", text)
	}
	if !strings.Contains(text, "user_name: bob") {
		t.Errorf("second record missing:\n%s", text)
	}
}

func TestRenderMissingCellsBecomeEmpty(t *testing.T) {
	r := NewRenderer()
	ds := &transform.Dataset{
		Columns: []string{"post_id", "user_biolink"},
		Rows:    []map[string]any{{"post_id": "1"}},
	}

	text, _, err := r.Render(ds)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if !strings.Contains(text, "user_biolink:") {
		t.Errorf("absent cell should still render its key:\n%s", text)
	}
}

func TestRenderEmptyDataset(t *testing.T) {
	r := NewRenderer()

	for _, ds := range []*transform.Dataset{nil, {Columns: []string{"post_id"}}} {
		text, tokens, err := r.Render(ds)
		if err != nil {
			t.Fatalf("Render() error: %v", err)
		}
		if text != "" || tokens != 0 {
			t.Errorf("empty dataset rendered text=%q tokens=%d", text, tokens)
		}
	}
}
