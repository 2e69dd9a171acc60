// Package apify implements the external-scraper boundary: starting a TikTok
// scraper actor run, awaiting its completion and draining its dataset.
package apify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/jonesrussell/tikspyder/internal/logger"
)

const (
	// DefaultBaseURL is the Apify API root.
	DefaultBaseURL = "https://api.apify.com/v2"
	// DefaultActorID identifies the TikTok scraper actor.
	DefaultActorID = "0FXVyOXXEmdGcV88a"
	// DefaultPollInterval is the pause between run-status polls.
	DefaultPollInterval = 5 * time.Second
	// DefaultRunTimeout bounds a whole actor run. Actor runs are unbounded
	// upstream; an unsupervised wait is a resource leak.
	DefaultRunTimeout = 15 * time.Minute

	maxErrorBody = 512
)

// ClientConfig configures a Client.
type ClientConfig struct {
	Token        string
	BaseURL      string
	ActorID      string
	HTTPClient   *http.Client
	PollInterval time.Duration
	RunTimeout   time.Duration
	Logger       logger.Logger
}

// Client calls the Apify actor API.
type Client struct {
	token        string
	baseURL      string
	actorID      string
	http         *http.Client
	pollInterval time.Duration
	runTimeout   time.Duration
	log          logger.Logger
}

// NewClient creates a Client with defaults filled in.
func NewClient(cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.ActorID == "" {
		cfg.ActorID = DefaultActorID
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 60 * time.Second}
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = DefaultRunTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNop()
	}

	return &Client{
		token:        cfg.Token,
		baseURL:      cfg.BaseURL,
		actorID:      cfg.ActorID,
		http:         cfg.HTTPClient,
		pollInterval: cfg.PollInterval,
		runTimeout:   cfg.RunTimeout,
		log:          cfg.Logger,
	}
}

type runEnvelope struct {
	Data Run `json:"data"`
}

// RunActor starts an actor run with the given input, waits for it to reach a
// terminal state and returns the run's dataset items. The wait is bounded by
// the configured run timeout and the caller's context. The run is
// all-or-nothing: a failed run ingests nothing.
func (c *Client) RunActor(ctx context.Context, input RunInput) ([]Item, error) {
	ctx, cancel := context.WithTimeout(ctx, c.runTimeout)
	defer cancel()

	run, err := c.startRun(ctx, input)
	if err != nil {
		return nil, err
	}
	c.log.Info("actor run started",
		logger.String("run_id", run.ID),
		logger.String("actor_id", c.actorID))

	run, err = c.awaitRun(ctx, run.ID)
	if err != nil {
		return nil, err
	}
	if run.Status != StatusSucceeded {
		return nil, fmt.Errorf("actor run %s finished with status %s", run.ID, run.Status)
	}

	return c.datasetItems(ctx, run.DefaultDatasetID)
}

func (c *Client) startRun(ctx context.Context, input RunInput) (*Run, error) {
	body, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("encode run input: %w", err)
	}

	endpoint := fmt.Sprintf("%s/acts/%s/runs?token=%s",
		c.baseURL, c.actorID, url.QueryEscape(c.token))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build run request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var envelope runEnvelope
	if err := c.do(req, &envelope); err != nil {
		return nil, fmt.Errorf("start actor run: %w", err)
	}

	return &envelope.Data, nil
}

func (c *Client) awaitRun(ctx context.Context, runID string) (*Run, error) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		run, err := c.runStatus(ctx, runID)
		if err != nil {
			return nil, err
		}

		switch run.Status {
		case StatusSucceeded, StatusFailed, StatusAborted, StatusTimedOut:
			return run, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("await actor run %s: %w", runID, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (c *Client) runStatus(ctx context.Context, runID string) (*Run, error) {
	endpoint := fmt.Sprintf("%s/actor-runs/%s?token=%s",
		c.baseURL, runID, url.QueryEscape(c.token))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build status request: %w", err)
	}

	var envelope runEnvelope
	if err := c.do(req, &envelope); err != nil {
		return nil, fmt.Errorf("poll actor run: %w", err)
	}

	return &envelope.Data, nil
}

func (c *Client) datasetItems(ctx context.Context, datasetID string) ([]Item, error) {
	endpoint := fmt.Sprintf("%s/datasets/%s/items?token=%s&format=json&clean=true",
		c.baseURL, datasetID, url.QueryEscape(c.token))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build dataset request: %w", err)
	}

	var items []Item
	if err := c.do(req, &items); err != nil {
		return nil, fmt.Errorf("fetch dataset items: %w", err)
	}

	return items, nil
}

func (c *Client) do(req *http.Request, out any) error {
	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		return fmt.Errorf("apify returned %d: %s", res.StatusCode, body)
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode apify response: %w", err)
	}

	return nil
}
