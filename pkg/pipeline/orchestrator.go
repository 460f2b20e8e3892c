package pipeline

import (
	"context"
	"log"

	"influencer-scout-be/pkg/transform"
)

// Status is the outcome of one pipeline run.
type Status string

const (
	StatusOK         Status = "ok"
	StatusNoKeywords Status = "no_keywords"
	StatusNoData     Status = "no_data"
)

// Result carries everything a run produced. Dataset and Grounding are set
// only on StatusOK.
type Result struct {
	Status     Status
	Keywords   []string
	Dataset    *transform.Dataset
	Grounding  string
	TokenCount int
}

// Extractor yields search keywords for a qualification summary. An empty
// result means "nothing to search for", not an error.
type Extractor interface {
	Extract(ctx context.Context, summary string) []string
}

// Retriever fetches raw creator records for a keyword set. An error or an
// empty result both mean "no data".
type Retriever interface {
	Retrieve(ctx context.Context, searchKeywords []string) ([]transform.RawRecord, error)
}

// Renderer turns a dataset into grounding text.
type Renderer interface {
	Render(dataset *transform.Dataset) (string, int, error)
}

// Orchestrator wires extraction, retrieval, normalization and grounding
// into one linear, blocking run. Every failure collapses into a structured
// outcome; nothing here raises past the orchestrator boundary.
type Orchestrator struct {
	extractor Extractor
	retriever Retriever
	engine    *transform.Engine
	renderer  Renderer
	logger    *log.Logger
}

func NewOrchestrator(
	extractor Extractor,
	retriever Retriever,
	engine *transform.Engine,
	renderer Renderer,
	logger *log.Logger,
) *Orchestrator {
	return &Orchestrator{
		extractor: extractor,
		retriever: retriever,
		engine:    engine,
		renderer:  renderer,
		logger:    logger,
	}
}

// Process runs the full summary → dataset pipeline. It stops at the first
// empty stage: no keywords or no records short-circuit without touching
// downstream steps.
func (o *Orchestrator) Process(ctx context.Context, summary string) *Result {
	terms := o.extractor.Extract(ctx, summary)
	if len(terms) == 0 {
		o.logger.Printf("[PIPELINE] No keywords extracted, stopping")
		return &Result{Status: StatusNoKeywords}
	}
	o.logger.Printf("[PIPELINE] Extracted keywords: %v", terms)

	records, err := o.retriever.Retrieve(ctx, terms)
	if err != nil {
		o.logger.Printf("[PIPELINE] Retrieval failed: %v", err)
		return &Result{Status: StatusNoData, Keywords: terms}
	}
	if len(records) == 0 {
		o.logger.Printf("[PIPELINE] Retrieval returned no records")
		return &Result{Status: StatusNoData, Keywords: terms}
	}

	dataset := o.engine.Normalize(records)
	o.logger.Printf("[PIPELINE] Normalized %d records into %d columns", len(dataset.Rows), len(dataset.Columns))

	groundingText, tokens, err := o.renderer.Render(dataset)
	if err != nil {
		// The dataset is still good; grounded mode just stays unavailable.
		o.logger.Printf("[PIPELINE] Grounding render failed: %v", err)
		groundingText, tokens = "", 0
	}

	return &Result{
		Status:     StatusOK,
		Keywords:   terms,
		Dataset:    dataset,
		Grounding:  groundingText,
		TokenCount: tokens,
	}
}
