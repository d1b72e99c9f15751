// Package client talks to the leaderboard REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "http://localhost:3000/api"
	DefaultTimeout = 10 * time.Second

	// maxErrorBody bounds how much of an error response is kept in HTTPError.
	maxErrorBody = 4096
)

// Submission is the body of a score submission.
type Submission struct {
	Pseudo string `json:"pseudo"`
	Score  int    `json:"score"`
	Game   string `json:"game"`
}

// Score is a leaderboard row as returned by the API.
type Score struct {
	ID     int64  `json:"pk_score"`
	Score  int    `json:"score"`
	Pseudo string `json:"pseudo"`
	Game   string `json:"game"`
}

// HTTPError is returned for non-2xx responses.
type HTTPError struct {
	Method     string
	URL        string
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("client: %s %s: HTTP %d: %s", e.Method, e.URL, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("client: %s %s: HTTP %d %s", e.Method, e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// IsNotFound reports whether err is an HTTPError with status 404.
func IsNotFound(err error) bool {
	var herr *HTTPError
	return errors.As(err, &herr) && herr.StatusCode == http.StatusNotFound
}

type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the API rooted at baseURL (e.g. http://localhost:3000/api).
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
	}
}

// WithHTTPClient replaces the underlying http.Client.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.http = h
	return c
}

func (c *Client) BaseURL() string { return c.baseURL }

// Submit posts a score. It is not retried on failure.
func (c *Client) Submit(ctx context.Context, s Submission) (*Score, error) {
	b, err := json.Marshal(&s)
	if err != nil {
		return nil, err
	}

	created := &Score{}
	if err = c.do(ctx, http.MethodPost, "/score/addscore", bytes.NewReader(b), created); err != nil {
		return nil, err
	}
	log.Printf("client: submitted %d for '%s' in '%s'\n", s.Score, s.Pseudo, s.Game)
	return created, nil
}

// Top returns the best scores of game, highest first. A game without scores yields an empty list.
func (c *Client) Top(ctx context.Context, game string) ([]Score, error) {
	scores := make([]Score, 0, 10)
	err := c.do(ctx, http.MethodGet, "/score/top/"+url.PathEscape(game), nil, &scores)
	if IsNotFound(err) {
		return []Score{}, nil
	}
	if err != nil {
		return nil, err
	}
	return scores, nil
}

// All returns every score ordered by game then score.
func (c *Client) All(ctx context.Context) ([]Score, error) {
	scores := make([]Score, 0, 64)
	if err := c.do(ctx, http.MethodGet, "/score/allscores", nil, &scores); err != nil {
		return nil, err
	}
	return scores, nil
}

// Games returns the game names known to the API.
func (c *Client) Games(ctx context.Context) ([]string, error) {
	names := make([]string, 0, 4)
	if err := c.do(ctx, http.MethodGet, "/games", nil, &names); err != nil {
		return nil, err
	}
	return names, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out interface{}) error {
	u := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, u, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rsp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, u, err)
	}
	defer rsp.Body.Close()

	if rsp.StatusCode < 200 || rsp.StatusCode > 299 {
		return newHTTPError(method, u, rsp)
	}

	if out == nil {
		return nil
	}
	if err = json.NewDecoder(rsp.Body).Decode(out); err != nil {
		return fmt.Errorf("client: %s %s: decode response: %w", method, u, err)
	}
	return nil
}

func newHTTPError(method, u string, rsp *http.Response) *HTTPError {
	herr := &HTTPError{Method: method, URL: u, StatusCode: rsp.StatusCode}

	b, _ := io.ReadAll(io.LimitReader(rsp.Body, maxErrorBody))
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(b, &e) == nil && e.Error != "" {
		herr.Message = e.Error
	} else {
		herr.Message = strings.TrimSpace(string(b))
	}
	return herr
}
