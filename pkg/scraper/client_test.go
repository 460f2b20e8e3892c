package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRunActorPathAndWait(t *testing.T) {
	var gotPath, gotQuery string
	var gotInput RunInput

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		json.NewDecoder(r.Body).Decode(&gotInput)
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"id":               "run-1",
				"status":           "SUCCEEDED",
				"defaultDatasetId": "ds-1",
			},
		})
	}))
	defer srv.Close()

	c := NewClient("tok", srv.URL, 120)
	run, err := c.RunActor(context.Background(), "clockworks/free-tiktok-scraper", RunInput{
		SearchQueries:  []string{"tech"},
		ResultsPerPage: 3,
	})
	if err != nil {
		t.Fatalf("RunActor() error: %v", err)
	}

	if gotPath != "/acts/clockworks~free-tiktok-scraper/runs" {
		t.Errorf("path = %q, owner/name must be sent as owner~name", gotPath)
	}
	if gotQuery != "waitForFinish=120&token=tok" {
		t.Errorf("query = %q", gotQuery)
	}
	if len(gotInput.SearchQueries) != 1 || gotInput.SearchQueries[0] != "tech" {
		t.Errorf("input queries = %v", gotInput.SearchQueries)
	}
	if run.ID != "run-1" || run.DefaultDatasetID != "ds-1" {
		t.Errorf("run = %+v", run)
	}
}

func TestRunActorNoRun(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{}})
	}))
	defer srv.Close()

	c := NewClient("tok", srv.URL, 0)
	_, err := c.RunActor(context.Background(), "owner/actor", RunInput{})
	if !errors.Is(err, ErrNoRun) {
		t.Fatalf("err = %v, want ErrNoRun", err)
	}
}

func TestRunActorNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"actor not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient("tok", srv.URL, 0)
	_, err := c.RunActor(context.Background(), "owner/missing", RunInput{})
	if err == nil {
		t.Fatal("expected error on 404")
	}
}

func TestDatasetItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/datasets/ds-1/items" {
			t.Errorf("path = %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode([]map[string]any{
			{"id": "1", "text": "post one"},
			{"id": "2", "text": "post two"},
		})
	}))
	defer srv.Close()

	c := NewClient("tok", srv.URL, 0)
	items, err := c.DatasetItems(context.Background(), "ds-1")
	if err != nil {
		t.Fatalf("DatasetItems() error: %v", err)
	}
	if len(items) != 2 || items[0]["id"] != "1" {
		t.Errorf("items = %v", items)
	}
}

func TestAdapterRetrieve(t *testing.T) {
	var runInput RunInput
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == "POST":
			json.NewDecoder(r.Body).Decode(&runInput)
			json.NewEncoder(w).Encode(map[string]any{
				"data": map[string]any{"id": "run-1", "status": "SUCCEEDED", "defaultDatasetId": "ds-1"},
			})
		default:
			json.NewEncoder(w).Encode([]map[string]any{{"id": "1"}})
		}
	}))
	defer srv.Close()

	a := NewAdapter(NewClient("tok", srv.URL, 0), Config{
		ActorID:             "clockworks/free-tiktok-scraper",
		MaxProfilesPerQuery: 1,
		ResultsPerPage:      3,
	}, log.New(io.Discard, "", 0))

	records, err := a.Retrieve(context.Background(), []string{"tech", "US"})
	if err != nil {
		t.Fatalf("Retrieve() error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}
	if len(runInput.SearchQueries) != 2 {
		t.Errorf("search queries = %v", runInput.SearchQueries)
	}
	if !runInput.ShouldDownloadSubtitles || runInput.ShouldDownloadVideos {
		t.Error("media flags should keep everything off except subtitles")
	}
	if runInput.ResultsPerPage != 3 || runInput.MaxProfilesPerQuery != 1 {
		t.Errorf("volume bounds = %d/%d", runInput.ResultsPerPage, runInput.MaxProfilesPerQuery)
	}
}

func TestAdapterRetrieveByUsername(t *testing.T) {
	var runInput RunInput
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == "POST":
			json.NewDecoder(r.Body).Decode(&runInput)
			json.NewEncoder(w).Encode(map[string]any{
				"data": map[string]any{"id": "run-2", "status": "SUCCEEDED", "defaultDatasetId": "ds-2"},
			})
		default:
			json.NewEncoder(w).Encode([]map[string]any{{"id": "10"}, {"id": "11"}})
		}
	}))
	defer srv.Close()

	a := NewAdapter(NewClient("tok", srv.URL, 0), DefaultConfig(), log.New(io.Discard, "", 0))

	records, err := a.RetrieveByUsername(context.Background(), "alice", 5)
	if err != nil {
		t.Fatalf("RetrieveByUsername() error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	if len(runInput.Profiles) != 1 || runInput.Profiles[0] != "alice" {
		t.Errorf("profiles = %v, want the single username", runInput.Profiles)
	}
	if len(runInput.SearchQueries) != 0 {
		t.Errorf("profile scrape must not carry search queries, got %v", runInput.SearchQueries)
	}
	if runInput.ResultsPerPage != 5 {
		t.Errorf("results per page = %d, want the maxVideos bound", runInput.ResultsPerPage)
	}
}

func TestAdapterRetrieveByUsernameEmpty(t *testing.T) {
	a := NewAdapter(NewClient("tok", "http://127.0.0.1:0", 0), DefaultConfig(), log.New(io.Discard, "", 0))

	records, err := a.RetrieveByUsername(context.Background(), "", 5)
	if err != nil {
		t.Fatalf("RetrieveByUsername() error: %v", err)
	}
	if records != nil {
		t.Errorf("records = %v, want nil without a username", records)
	}
}

func TestAdapterRetrieveEmptyKeywords(t *testing.T) {
	a := NewAdapter(NewClient("tok", "http://127.0.0.1:0", 0), DefaultConfig(), log.New(io.Discard, "", 0))

	records, err := a.Retrieve(context.Background(), nil)
	if err != nil {
		t.Fatalf("Retrieve() error: %v", err)
	}
	if records != nil {
		t.Errorf("records = %v, want nil without any keywords", records)
	}
}

func TestAdapterRetrieveRunWithoutDataset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"id": "run-1", "status": "FAILED"},
		})
	}))
	defer srv.Close()

	a := NewAdapter(NewClient("tok", srv.URL, 0), DefaultConfig(), log.New(io.Discard, "", 0))
	_, err := a.Retrieve(context.Background(), []string{"tech"})
	if !errors.Is(err, ErrNoRun) {
		t.Fatalf("err = %v, want ErrNoRun", err)
	}
}
