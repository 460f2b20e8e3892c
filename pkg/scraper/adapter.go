package scraper

import (
	"context"
	"fmt"
	"log"

	"influencer-scout-be/pkg/transform"
)

// RunInput is the fixed-shape query the TikTok search actor accepts. All
// media downloads stay off except subtitle text.
type RunInput struct {
	ExcludePinnedPosts           bool     `json:"excludePinnedPosts"`
	MaxProfilesPerQuery          int      `json:"maxProfilesPerQuery"`
	ResultsPerPage               int      `json:"resultsPerPage"`
	SearchQueries                []string `json:"searchQueries,omitempty"`
	Profiles                     []string `json:"profiles,omitempty"`
	ShouldDownloadCovers         bool     `json:"shouldDownloadCovers"`
	ShouldDownloadSlideshowImages bool    `json:"shouldDownloadSlideshowImages"`
	ShouldDownloadSubtitles      bool     `json:"shouldDownloadSubtitles"`
	ShouldDownloadVideos         bool     `json:"shouldDownloadVideos"`
}

// Config selects the actor and bounds the result volume per run.
type Config struct {
	ActorID             string
	MaxProfilesPerQuery int
	ResultsPerPage      int
}

func DefaultConfig() Config {
	return Config{
		ActorID:             "clockworks/free-tiktok-scraper",
		MaxProfilesPerQuery: 1,
		ResultsPerPage:      3,
	}
}

// Adapter wraps the actor client behind the retrieval contract the
// pipeline consumes: keywords in, raw records (or nothing) out.
type Adapter struct {
	client *Client
	cfg    Config
	logger *log.Logger
}

func NewAdapter(client *Client, cfg Config, logger *log.Logger) *Adapter {
	return &Adapter{
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

// Retrieve runs one scrape over the keyword set and blocks until the remote
// job completes. A missing run or transport failure is returned as an
// error; callers must treat it as "no data", never as fatal.
func (a *Adapter) Retrieve(ctx context.Context, searchKeywords []string) ([]transform.RawRecord, error) {
	if len(searchKeywords) == 0 {
		return nil, nil
	}

	input := RunInput{
		ExcludePinnedPosts:            false,
		MaxProfilesPerQuery:           a.cfg.MaxProfilesPerQuery,
		ResultsPerPage:                a.cfg.ResultsPerPage,
		SearchQueries:                 searchKeywords,
		ShouldDownloadCovers:          false,
		ShouldDownloadSlideshowImages: false,
		ShouldDownloadSubtitles:       true,
		ShouldDownloadVideos:          false,
	}

	return a.execute(ctx, input)
}

// RetrieveByUsername scrapes a single creator's recent posts instead of a
// keyword search.
func (a *Adapter) RetrieveByUsername(ctx context.Context, username string, maxVideos int) ([]transform.RawRecord, error) {
	if username == "" {
		return nil, nil
	}

	input := RunInput{
		ExcludePinnedPosts:            false,
		MaxProfilesPerQuery:           1,
		ResultsPerPage:                maxVideos,
		Profiles:                      []string{username},
		ShouldDownloadCovers:          false,
		ShouldDownloadSlideshowImages: false,
		ShouldDownloadSubtitles:       true,
		ShouldDownloadVideos:          false,
	}

	return a.execute(ctx, input)
}

func (a *Adapter) execute(ctx context.Context, input RunInput) ([]transform.RawRecord, error) {
	a.logger.Printf("[SCRAPER] Starting actor run (%s)", a.cfg.ActorID)

	run, err := a.client.RunActor(ctx, a.cfg.ActorID, input)
	if err != nil {
		a.logger.Printf("[SCRAPER] Actor run failed: %v", err)
		return nil, err
	}

	a.logger.Printf("[SCRAPER] Actor run finished. Run ID: %s (status %s)", run.ID, run.Status)

	if run.DefaultDatasetID == "" {
		return nil, fmt.Errorf("%w: run %s has no dataset", ErrNoRun, run.ID)
	}

	items, err := a.client.DatasetItems(ctx, run.DefaultDatasetID)
	if err != nil {
		a.logger.Printf("[SCRAPER] Fetching items failed: %v", err)
		return nil, err
	}

	a.logger.Printf("[SCRAPER] Fetched %d items", len(items))
	return items, nil
}
