package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/codeGROOVE-dev/random-reviewer/pkg/types"
)

// maxFileSize bounds the size of repository files fetched through the API.
const maxFileSize = 1 << 20

// PullRequest fetches a single pull request.
func (c *Client) PullRequest(ctx context.Context, owner, repo string, prNumber int) (*types.PullRequest, error) {
	slog.Info("Fetching PR details", "component", "api", "owner", owner, "repo", repo, "pr", prNumber)
	path := fmt.Sprintf("/repos/%s/%s/pulls/%d", owner, repo, prNumber)

	resp, err := c.doRequest(ctx, http.MethodGet, path, nil, acceptJSON) //nolint:bodyclose // closed via drainAndCloseBody
	if err != nil {
		return nil, fmt.Errorf("failed to get PR: %w", err)
	}
	defer drainAndCloseBody(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to get PR: %w", apiError(resp))
	}

	var prData struct {
		Title   string `json:"title"`
		State   string `json:"state"`
		HTMLURL string `json:"html_url"`
		User    struct {
			Login string `json:"login"`
		} `json:"user"`
		RequestedReviewers []struct {
			Login string `json:"login"`
		} `json:"requested_reviewers"`
		Number int  `json:"number"`
		Draft  bool `json:"draft"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&prData); err != nil {
		return nil, fmt.Errorf("failed to decode pull request: %w", err)
	}

	reviewers := make([]string, 0, len(prData.RequestedReviewers))
	for _, r := range prData.RequestedReviewers {
		reviewers = append(reviewers, r.Login)
	}

	return &types.PullRequest{
		Number:     prData.Number,
		Title:      prData.Title,
		State:      prData.State,
		Draft:      prData.Draft,
		Author:     prData.User.Login,
		URL:        prData.HTMLURL,
		Owner:      owner,
		Repository: repo,
		Reviewers:  reviewers,
	}, nil
}

// FileContents fetches the raw contents of a file from a repository's default branch.
func (c *Client) FileContents(ctx context.Context, owner, repo, filePath string) ([]byte, error) {
	escaped := make([]string, 0)
	for _, seg := range strings.Split(strings.TrimPrefix(filePath, "/"), "/") {
		escaped = append(escaped, url.PathEscape(seg))
	}
	path := fmt.Sprintf("/repos/%s/%s/contents/%s", owner, repo, strings.Join(escaped, "/"))

	resp, err := c.doRequest(ctx, http.MethodGet, path, nil, acceptRaw) //nolint:bodyclose // closed via drainAndCloseBody
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", filePath, err)
	}
	defer drainAndCloseBody(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to get %s: %w", filePath, apiError(resp))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFileSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filePath, err)
	}
	return data, nil
}
