package testutil

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/codeGROOVE-dev/random-reviewer/pkg/types"
)

// ErrNotFound is returned for pull requests and files that were never set.
var ErrNotFound = errors.New("status 404: Not Found")

// MockGitHubClient is an in-memory stand-in for the GitHub API client.
// It's programmable: set pull requests, files and failures, then inspect calls.
type MockGitHubClient struct {
	pullRequests      map[string]*types.PullRequest
	files             map[string]string
	failures          map[string][]error
	calls             map[string]int
	addReviewersCalls []AddReviewersCall
	mu                sync.Mutex
}

// AddReviewersCall records a call to AddReviewers.
type AddReviewersCall struct {
	Owner     string
	Repo      string
	Reviewers []string
	PRNumber  int
}

// NewMockGitHubClient creates a new MockGitHubClient.
func NewMockGitHubClient() *MockGitHubClient {
	return &MockGitHubClient{
		pullRequests: make(map[string]*types.PullRequest),
		files:        make(map[string]string),
		failures:     make(map[string][]error),
		calls:        make(map[string]int),
	}
}

// Token returns a fixed test token.
func (*MockGitHubClient) Token(context.Context) (string, error) {
	return "test-token", nil
}

// PullRequest returns a copy of the configured pull request.
func (m *MockGitHubClient) PullRequest(_ context.Context, owner, repo string, prNumber int) (*types.PullRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record("PullRequest"); err != nil {
		return nil, err
	}
	pr, ok := m.pullRequests[prKey(owner, repo, prNumber)]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *pr
	return &cp, nil
}

// FileContents returns the configured file.
func (m *MockGitHubClient) FileContents(_ context.Context, owner, repo, path string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record("FileContents"); err != nil {
		return nil, err
	}
	content, ok := m.files[owner+"/"+repo+":"+path]
	if !ok {
		return nil, ErrNotFound
	}
	return []byte(content), nil
}

// AddReviewers records the call and returns success unless a failure is queued.
func (m *MockGitHubClient) AddReviewers(_ context.Context, owner, repo string, prNumber int, reviewers []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record("AddReviewers"); err != nil {
		return err
	}
	m.addReviewersCalls = append(m.addReviewersCalls, AddReviewersCall{
		Owner:     owner,
		Repo:      repo,
		PRNumber:  prNumber,
		Reviewers: append([]string(nil), reviewers...),
	})
	return nil
}

// record counts a call and pops the next queued failure for method. Caller holds mu.
func (m *MockGitHubClient) record(method string) error {
	m.calls[method]++
	queue := m.failures[method]
	if len(queue) == 0 {
		return nil
	}
	m.failures[method] = queue[1:]
	return queue[0]
}

// SetPullRequest configures a pull request; its Owner, Repository and Number form the key.
func (m *MockGitHubClient) SetPullRequest(pr *types.PullRequest) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pullRequests[prKey(pr.Owner, pr.Repository, pr.Number)] = pr
}

// SetFile configures a repository file.
func (m *MockGitHubClient) SetFile(owner, repo, path, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[owner+"/"+repo+":"+path] = content
}

// FailNext makes the next call of method ("PullRequest", "FileContents",
// "AddReviewers") return err. Repeated calls queue further failures.
func (m *MockGitHubClient) FailNext(method string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[method] = append(m.failures[method], err)
}

// Calls returns how many times method was called.
func (m *MockGitHubClient) Calls(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

// AddReviewersCalls returns the recorded AddReviewers calls.
func (m *MockGitHubClient) AddReviewersCalls() []AddReviewersCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]AddReviewersCall(nil), m.addReviewersCalls...)
}

func prKey(owner, repo string, prNumber int) string {
	return fmt.Sprintf("%s/%s#%d", owner, repo, prNumber)
}
