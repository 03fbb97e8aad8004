// Package oddsapi is a thin client for The Odds API v4 covering the two
// endpoints this system consumes: the spreads snapshot and final scores.
package oddsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.the-odds-api.com"
	sportKey       = "americanfootball_nfl"
)

// UpstreamError is returned when the provider responds with a non-200
// status. The caller aborts the run; retry policy belongs to the
// external scheduler.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("odds api returned %d: %s", e.StatusCode, e.Body)
}

// Config controls how the client reaches the upstream API.
type Config struct {
	BaseURL    string
	APIKey     string
	Bookmakers string
	HTTPClient *http.Client
}

// Client fetches odds and scores for NFL games.
type Client struct {
	baseURL    string
	apiKey     string
	bookmakers string
	httpClient *http.Client
}

// NewClient constructs a client with the provided configuration.
func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     cfg.APIKey,
		bookmakers: cfg.Bookmakers,
		httpClient: httpClient,
	}
}

// FetchOdds retrieves the current spreads snapshot for all NFL games.
func (c *Client) FetchOdds(ctx context.Context) ([]Event, error) {
	params := url.Values{}
	params.Set("apiKey", c.apiKey)
	params.Set("markets", "spreads")
	params.Set("oddsFormat", "american")
	if c.bookmakers != "" {
		params.Set("bookmakers", c.bookmakers)
	}

	var events []Event
	if err := c.get(ctx, fmt.Sprintf("/v4/sports/%s/odds/", sportKey), params, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// FetchScores retrieves scores for games that commenced within the last
// daysFrom days, including completed ones.
func (c *Client) FetchScores(ctx context.Context, daysFrom int) ([]EventScore, error) {
	params := url.Values{}
	params.Set("apiKey", c.apiKey)
	params.Set("daysFrom", strconv.Itoa(daysFrom))

	var scores []EventScore
	if err := c.get(ctx, fmt.Sprintf("/v4/sports/%s/scores/", sportKey), params, &scores); err != nil {
		return nil, err
	}
	return scores, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	reqURL := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("odds api request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &UpstreamError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode odds api response: %w", err)
	}
	return nil
}
