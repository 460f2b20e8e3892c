package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"influencer-scout-be/pkg/transform"
)

// ErrNoRun is returned when the actor call yields no run to collect
// results from. Callers treat it as "no data", not a fault.
var ErrNoRun = errors.New("scraper: actor call returned no run")

// Run describes a finished (or failed) actor run.
type Run struct {
	ID               string `json:"id"`
	Status           string `json:"status"`
	DefaultDatasetID string `json:"defaultDatasetId"`
}

// Client speaks the Apify actor API: start a run, block until it finishes,
// then page the default dataset.
type Client struct {
	baseURL string
	token   string
	client  *http.Client

	// Seconds the runs endpoint is asked to block for before returning
	// a still-running run.
	waitForFinish int
}

func NewClient(token, baseURL string, waitForFinish int) *Client {
	if baseURL == "" {
		baseURL = "https://api.apify.com/v2"
	}
	if waitForFinish <= 0 {
		waitForFinish = 300
	}
	return &Client{
		baseURL:       baseURL,
		token:         token,
		waitForFinish: waitForFinish,
		client: &http.Client{
			Timeout: 10 * time.Minute, // scrape jobs are slow; the run call blocks server-side
		},
	}
}

type runEnvelope struct {
	Data Run `json:"data"`
}

// RunActor starts the actor synchronously and returns the finished run.
// The public actor id uses "owner/name"; the API path wants "owner~name".
func (c *Client) RunActor(ctx context.Context, actorID string, input any) (*Run, error) {
	payload, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("marshal run input: %w", err)
	}

	endpoint := fmt.Sprintf("%s/acts/%s/runs?waitForFinish=%d&token=%s",
		c.baseURL,
		strings.ReplaceAll(actorID, "/", "~"),
		c.waitForFinish,
		url.QueryEscape(c.token),
	)

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, strings.NewReader(string(payload)))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("actor run request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read run response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("actor run failed: status %d, body: %s", resp.StatusCode, string(body))
	}

	var env runEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("unmarshal run response: %w", err)
	}
	if env.Data.ID == "" {
		return nil, ErrNoRun
	}
	return &env.Data, nil
}

// DatasetItems fetches every item of a dataset.
func (c *Client) DatasetItems(ctx context.Context, datasetID string) ([]transform.RawRecord, error) {
	endpoint := fmt.Sprintf("%s/datasets/%s/items?token=%s",
		c.baseURL, datasetID, url.QueryEscape(c.token))

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("dataset items request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read items response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("dataset items failed: status %d, body: %s", resp.StatusCode, string(body))
	}

	var items []transform.RawRecord
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("unmarshal items: %w", err)
	}
	return items, nil
}
