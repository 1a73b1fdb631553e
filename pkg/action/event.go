// Package action implements the GitHub Actions runner surface: the event
// payload, step outputs, and workflow-command logging.
package action

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sethvargo/go-githubactions"

	"github.com/codeGROOVE-dev/random-reviewer/pkg/types"
)

// ErrNotPullRequest is returned when the triggering event carries no pull request.
var ErrNotPullRequest = errors.New("event is not a pull request event")

// eventPayload is the subset of a pull_request webhook payload that we use.
type eventPayload struct {
	PullRequest *struct {
		Title   string `json:"title"`
		State   string `json:"state"`
		HTMLURL string `json:"html_url"`
		User    *struct {
			Login string `json:"login"`
		} `json:"user"`
		RequestedReviewers []struct {
			Login string `json:"login"`
		} `json:"requested_reviewers"`
		Number int  `json:"number"`
		Draft  bool `json:"draft"`
	} `json:"pull_request"`
}

// ReadEvent loads the event payload at path (GITHUB_EVENT_PATH) for the
// repository given in owner/repo form (GITHUB_REPOSITORY). The returned PR
// has an empty Author when the payload does not name one.
func ReadEvent(path, repository string) (*types.PullRequest, error) {
	if path == "" {
		return nil, ErrNotPullRequest
	}

	env := map[string]string{
		"GITHUB_EVENT_PATH": path,
		"GITHUB_REPOSITORY": repository,
	}
	gha := githubactions.New(githubactions.WithGetenv(func(key string) string {
		return env[key]
	}))

	ghctx, err := gha.Context()
	if err != nil {
		return nil, fmt.Errorf("failed to read event payload: %w", err)
	}
	return FromContext(ghctx)
}

// FromContext extracts the pull request from a runner context.
func FromContext(ghctx *githubactions.GitHubContext) (*types.PullRequest, error) {
	if ghctx == nil || ghctx.Event == nil {
		return nil, ErrNotPullRequest
	}
	data, err := json.Marshal(ghctx.Event)
	if err != nil {
		return nil, fmt.Errorf("failed to encode event payload: %w", err)
	}
	return ParseEvent(data, ghctx.Repository)
}

// ParseEvent decodes a raw event payload; see ReadEvent.
func ParseEvent(data []byte, repository string) (*types.PullRequest, error) {
	var payload eventPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode event payload: %w", err)
	}
	if payload.PullRequest == nil || payload.PullRequest.Number == 0 {
		return nil, ErrNotPullRequest
	}

	owner, repo, ok := strings.Cut(repository, "/")
	if !ok || owner == "" || repo == "" {
		return nil, fmt.Errorf("invalid repository %q (expected owner/repo)", repository)
	}

	p := payload.PullRequest
	pr := &types.PullRequest{
		Number:     p.Number,
		Title:      p.Title,
		State:      p.State,
		Draft:      p.Draft,
		URL:        p.HTMLURL,
		Owner:      owner,
		Repository: repo,
	}
	if p.User != nil {
		pr.Author = p.User.Login
	}
	for _, r := range p.RequestedReviewers {
		pr.Reviewers = append(pr.Reviewers, r.Login)
	}
	return pr, nil
}
