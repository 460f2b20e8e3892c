package pipeline

import (
	"context"
	"errors"
	"io"
	"log"
	"reflect"
	"testing"

	"influencer-scout-be/pkg/transform"
)

type stubExtractor struct {
	terms []string
}

func (s *stubExtractor) Extract(ctx context.Context, summary string) []string {
	return s.terms
}

type stubRetriever struct {
	records []transform.RawRecord
	err     error
	got     []string
}

func (s *stubRetriever) Retrieve(ctx context.Context, searchKeywords []string) ([]transform.RawRecord, error) {
	s.got = searchKeywords
	return s.records, s.err
}

type stubRenderer struct {
	text   string
	tokens int
	err    error
}

func (s *stubRenderer) Render(dataset *transform.Dataset) (string, int, error) {
	return s.text, s.tokens, s.err
}

func newTestOrchestrator(e Extractor, r Retriever, rd Renderer) *Orchestrator {
	return NewOrchestrator(e, r, transform.NewEngine(transform.DefaultConfig()), rd, log.New(io.Discard, "", 0))
}

func TestProcessNoKeywordsShortCircuits(t *testing.T) {
	retr := &stubRetriever{}
	o := newTestOrchestrator(&stubExtractor{}, retr, &stubRenderer{})

	res := o.Process(context.Background(), "a summary no model could mine")

	if res.Status != StatusNoKeywords {
		t.Fatalf("Status = %s, want %s", res.Status, StatusNoKeywords)
	}
	if retr.got != nil {
		t.Error("retriever must not run when no keywords were extracted")
	}
	if res.Dataset != nil || res.Grounding != "" {
		t.Error("no_keywords result must carry no dataset")
	}
}

func TestProcessRetrievalFailureIsNoData(t *testing.T) {
	o := newTestOrchestrator(
		&stubExtractor{terms: []string{"tech", "US"}},
		&stubRetriever{err: errors.New("actor timed out")},
		&stubRenderer{},
	)

	res := o.Process(context.Background(), "summary")

	if res.Status != StatusNoData {
		t.Fatalf("Status = %s, want %s", res.Status, StatusNoData)
	}
	if !reflect.DeepEqual(res.Keywords, []string{"tech", "US"}) {
		t.Errorf("Keywords = %v, keywords should survive a failed retrieval", res.Keywords)
	}
}

func TestProcessEmptyRetrievalIsNoData(t *testing.T) {
	o := newTestOrchestrator(
		&stubExtractor{terms: []string{"tech"}},
		&stubRetriever{records: []transform.RawRecord{}},
		&stubRenderer{},
	)

	res := o.Process(context.Background(), "summary")

	if res.Status != StatusNoData {
		t.Fatalf("Status = %s, want %s", res.Status, StatusNoData)
	}
}

func TestProcessHappyPath(t *testing.T) {
	retr := &stubRetriever{records: []transform.RawRecord{
		{"id": "1", "text": "post one"},
		{"id": "2", "text": "post two"},
	}}
	o := newTestOrchestrator(
		&stubExtractor{terms: []string{"beauty", "UK"}},
		retr,
		&stubRenderer{text: "- post_id: \"1\"\n", tokens: 3},
	)

	res := o.Process(context.Background(), "summary")

	if res.Status != StatusOK {
		t.Fatalf("Status = %s, want %s", res.Status, StatusOK)
	}
	if !reflect.DeepEqual(retr.got, []string{"beauty", "UK"}) {
		t.Errorf("retriever got %v", retr.got)
	}
	if len(res.Dataset.Rows) != 2 {
		t.Errorf("dataset rows = %d, want 2", len(res.Dataset.Rows))
	}
	if res.Grounding == "" || res.TokenCount != 3 {
		t.Errorf("grounding = %q tokens = %d", res.Grounding, res.TokenCount)
	}
}

func TestProcessRenderFailureKeepsDataset(t *testing.T) {
	o := newTestOrchestrator(
		&stubExtractor{terms: []string{"tech"}},
		&stubRetriever{records: []transform.RawRecord{{"id": "1"}}},
		&stubRenderer{err: errors.New("yaml blew up")},
	)

	res := o.Process(context.Background(), "summary")

	if res.Status != StatusOK {
		t.Fatalf("Status = %s, a render failure must not fail the run", res.Status)
	}
	if res.Dataset == nil {
		t.Fatal("dataset dropped on render failure")
	}
	if res.Grounding != "" || res.TokenCount != 0 {
		t.Errorf("grounding should be empty on render failure, got %q/%d", res.Grounding, res.TokenCount)
	}
}
