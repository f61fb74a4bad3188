// Package api is the HTTP client for the Location Scout backend. It covers
// the two request/response calls the engine issues: submitting a script for
// analysis and starting a location search. Search results do not come back
// on these calls; they arrive over the event stream.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/locationscout/scout-engine/pkg/logging"
	"github.com/locationscout/scout-engine/pkg/models"
)

// Client issues API calls against the backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new API client. The timeout bounds each individual
// request/response call.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger.Named("api-client"),
	}
}

// ScriptAnalysis is the result of submitting a script: the stored script
// record plus the scenes extracted from it.
type ScriptAnalysis struct {
	Script models.Script  `json:"script"`
	Scenes []models.Scene `json:"scenes"`
}

// SearchOptions tune a search start request.
type SearchOptions struct {
	// Sources are the search agents to run, e.g. "airbnb", "google".
	Sources []string
	// MaxResults caps how many candidate locations the search returns.
	MaxResults int
}

// DefaultSearchOptions mirrors the server-side defaults.
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{
		Sources:    []string{"airbnb", "google"},
		MaxResults: 20,
	}
}

// SubmitScript uploads a screenplay for analysis and returns the created
// script together with its extracted scenes.
func (c *Client) SubmitScript(ctx context.Context, title, content string) (*ScriptAnalysis, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	if err := form.WriteField("title", title); err != nil {
		return nil, fmt.Errorf("encode form: %w", err)
	}
	if err := form.WriteField("content", content); err != nil {
		return nil, fmt.Errorf("encode form: %w", err)
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("encode form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/scripts/", &body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	c.logger.Debug("Submitting script",
		zap.String("title", title),
		zap.String("content", logging.SanitizeScriptContent(content)))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("submit script: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError("submit script", resp)
	}

	var result ScriptAnalysis
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if result.Script.ID == "" {
		return nil, fmt.Errorf("response missing script id")
	}

	c.logger.Info("Script analyzed",
		zap.String("script_id", result.Script.ID),
		zap.Int("scene_count", len(result.Scenes)))

	return &result, nil
}

// searchRequest is the wire shape of a search start request.
type searchRequest struct {
	SceneIDs   []string `json:"scene_ids"`
	Location   string   `json:"location"`
	Sources    []string `json:"sources,omitempty"`
	MaxResults int      `json:"max_results,omitempty"`
}

// StartSearch asks the backend to start an asynchronous location search for
// the given scenes. A nil error means the search was accepted; progress and
// results arrive over the event stream.
func (c *Client) StartSearch(ctx context.Context, sceneIDs []string, location string, opts SearchOptions) error {
	if opts.Sources == nil {
		opts.Sources = DefaultSearchOptions().Sources
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = DefaultSearchOptions().MaxResults
	}

	payload, err := json.Marshal(searchRequest{
		SceneIDs:   sceneIDs,
		Location:   location,
		Sources:    opts.Sources,
		MaxResults: opts.MaxResults,
	})
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/search/", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("start search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError("start search", resp)
	}

	c.logger.Info("Search started",
		zap.Strings("scene_ids", sceneIDs),
		zap.String("location", location))

	return nil
}

// statusError builds an error from a non-OK response, including a short
// excerpt of the body when the server sent one.
func statusError(op string, resp *http.Response) error {
	excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
	if len(excerpt) > 0 {
		return fmt.Errorf("%s failed: status %d: %s", op, resp.StatusCode, strings.TrimSpace(string(excerpt)))
	}
	return fmt.Errorf("%s failed: status %d", op, resp.StatusCode)
}
