// Package github provides GitHub API client functionality.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/retry"
)

// DefaultBaseURL is the public GitHub REST API endpoint.
const DefaultBaseURL = "https://api.github.com"

// Client handles all GitHub API interactions.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	token         string
	retryAttempts uint
}

// Config holds configuration for creating a new GitHub client.
type Config struct {
	Token         string // Bearer token, e.g. the workflow's GITHUB_TOKEN
	BaseURL       string // REST API base URL (empty = DefaultBaseURL)
	HTTPTimeout   time.Duration
	RetryAttempts int          // Attempts per request; values below 1 mean a single attempt
	HTTPClient    *http.Client // Optional; overrides HTTPTimeout
}

// New creates a new GitHub API client.
func New(cfg Config) (*Client, error) {
	if cfg.Token == "" {
		return nil, errors.New("no GitHub token provided")
	}

	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.HTTPTimeout}
	}

	return &Client{
		httpClient:    httpClient,
		baseURL:       baseURL,
		token:         cfg.Token,
		retryAttempts: uint(max(cfg.RetryAttempts, 1)),
	}, nil
}

// Token returns the token the client authenticates with (e.g., for sprinkler).
func (c *Client) Token(context.Context) (string, error) {
	return c.token, nil
}

// drainAndCloseBody drains and closes an HTTP response body to prevent resource leaks.
func drainAndCloseBody(body io.ReadCloser) {
	if _, err := io.Copy(io.Discard, body); err != nil {
		slog.Warn("Failed to drain response body", "error", err)
	}
	if err := body.Close(); err != nil {
		slog.Warn("Failed to close response body", "error", err)
	}
}

// doRequest makes an HTTP request to the GitHub API with retry logic.
// The caller owns the response body.
func (c *Client) doRequest(ctx context.Context, method, path string, body any, accept string) (*http.Response, error) {
	apiURL := c.baseURL + path
	slog.Info("HTTP request", "component", "http", "method", method, "url", apiURL)

	var resp *http.Response
	err := c.retryWithBackoff(ctx, method+" "+apiURL, func() error {
		var bodyReader io.Reader
		if body != nil {
			bodyBytes, err := json.Marshal(body)
			if err != nil {
				return fmt.Errorf("failed to marshal request body: %w", err)
			}
			bodyReader = bytes.NewReader(bodyBytes)
		}

		req, err := http.NewRequestWithContext(ctx, method, apiURL, bodyReader)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Accept", accept)
		req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		localResp, err := c.httpClient.Do(req) //nolint:bodyclose // body is closed via drainAndCloseBody or passed to caller
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}

		if localResp.StatusCode == http.StatusTooManyRequests {
			drainAndCloseBody(localResp.Body)
			slog.Warn("Rate limited", "component", "http", "method", method, "url", apiURL, "status", localResp.StatusCode)
			return fmt.Errorf("http %d: rate limited", localResp.StatusCode)
		}

		if localResp.StatusCode >= http.StatusInternalServerError {
			drainAndCloseBody(localResp.Body)
			slog.Warn("Server error", "component", "http", "method", method, "url", apiURL, "status", localResp.StatusCode)
			return fmt.Errorf("http %d: server error", localResp.StatusCode)
		}

		resp = localResp
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("HTTP response", "component", "http", "method", method, "url", apiURL, "status", resp.StatusCode)
	return resp, nil
}

// Retry constants.
const (
	initialRetryDelay = 1 * time.Second
	maxRetryDelay     = 30 * time.Second
)

// retryWithBackoff executes fn with exponential backoff using the codeGROOVE retry library.
// With a single configured attempt, fn runs exactly once.
func (c *Client) retryWithBackoff(ctx context.Context, operation string, fn func() error) error {
	return retry.Do(
		fn,
		retry.Context(ctx),
		retry.Attempts(c.retryAttempts),
		retry.Delay(initialRetryDelay),
		retry.MaxDelay(maxRetryDelay),
		retry.DelayType(retry.CombineDelay(retry.BackOffDelay, retry.RandomDelay)),
		retry.MaxJitter(initialRetryDelay/4),
		retry.OnRetry(func(n uint, err error) {
			slog.Info("Retry attempt", "component", "retry", "operation", operation,
				"attempt", n+1, "max_attempts", c.retryAttempts, "error", err)
		}),
		retry.LastErrorOnly(true),
		retry.RetryIf(retryable),
	)
}

// retryable reports whether a request error is worth another attempt.
func retryable(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "rate limited") ||
		strings.Contains(errStr, "server error") ||
		strings.Contains(errStr, "request failed")
}

// AddReviewers requests reviews from the given users on a pull request.
func (c *Client) AddReviewers(ctx context.Context, owner, repo string, prNumber int, reviewers []string) error {
	path := fmt.Sprintf("/repos/%s/%s/pulls/%d/requested_reviewers", owner, repo, prNumber)
	payload := map[string]any{
		"reviewers": reviewers,
	}

	resp, err := c.doRequest(ctx, http.MethodPost, path, payload, acceptJSON) //nolint:bodyclose // closed via drainAndCloseBody
	if err != nil {
		return fmt.Errorf("failed to add reviewers: %w", err)
	}
	defer drainAndCloseBody(resp.Body)

	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("failed to add reviewers: %w", apiError(resp))
	}

	slog.Info("Added reviewers to PR", "component", "api", "owner", owner, "repo", repo, "pr", prNumber, "reviewers", reviewers)
	return nil
}

// Accept headers.
const (
	acceptJSON = "application/vnd.github+json"
	acceptRaw  = "application/vnd.github.raw+json"
)

// apiError builds an error from a non-success response, preferring GitHub's message field.
func apiError(resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return fmt.Errorf("status %d (could not read body: %w)", resp.StatusCode, err)
	}

	var msg struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &msg) == nil && msg.Message != "" {
		return fmt.Errorf("status %d: %s", resp.StatusCode, msg.Message)
	}
	return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
}
