package github

import (
	"context"

	"github.com/codeGROOVE-dev/random-reviewer/pkg/types"
)

// API defines the GitHub operations needed to assign reviewers.
type API interface {
	Token(ctx context.Context) (string, error)
	PullRequest(ctx context.Context, owner, repo string, number int) (*types.PullRequest, error)
	FileContents(ctx context.Context, owner, repo, path string) ([]byte, error)
	AddReviewers(ctx context.Context, owner, repo string, prNumber int, reviewers []string) error
}

var _ API = (*Client)(nil)
