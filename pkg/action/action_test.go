package action

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sethvargo/go-githubactions"
	"github.com/stretchr/testify/require"

	"github.com/codeGROOVE-dev/random-reviewer/pkg/internal/testutil"
)

const prEvent = `{
  "action": "opened",
  "pull_request": {
    "number": 42,
    "title": "Add feature",
    "state": "open",
    "html_url": "https://github.com/test-owner/test-repo/pull/42",
    "user": {"login": "test-author"},
    "requested_reviewers": [{"login": "already"}]
  }
}`

func TestParseEvent(t *testing.T) {
	pr, err := ParseEvent([]byte(prEvent), "test-owner/test-repo")
	require.NoError(t, err)
	require.Equal(t, 42, pr.Number)
	require.Equal(t, "Add feature", pr.Title)
	require.Equal(t, "test-author", pr.Author)
	require.Equal(t, "https://github.com/test-owner/test-repo/pull/42", pr.URL)
	require.Equal(t, "test-owner", pr.Owner)
	require.Equal(t, "test-repo", pr.Repository)
	require.Equal(t, []string{"already"}, pr.Reviewers)
}

func TestParseEvent_NotPullRequest(t *testing.T) {
	for _, payload := range []string{`{"action":"push"}`, `{"pull_request":{"title":"no number"}}`} {
		_, err := ParseEvent([]byte(payload), "o/r")
		require.ErrorIs(t, err, ErrNotPullRequest)
	}
}

func TestParseEvent_MissingAuthor(t *testing.T) {
	pr, err := ParseEvent([]byte(`{"pull_request":{"number":1}}`), "o/r")
	require.NoError(t, err)
	require.Empty(t, pr.Author)
}

func TestParseEvent_BadInput(t *testing.T) {
	_, err := ParseEvent([]byte(`{`), "o/r")
	require.ErrorContains(t, err, "failed to decode event payload")

	_, err = ParseEvent([]byte(prEvent), "no-slash")
	require.ErrorContains(t, err, "invalid repository")
}

func TestReadEvent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "event.json")
	require.NoError(t, os.WriteFile(path, []byte(prEvent), 0o600))

	pr, err := ReadEvent(path, "test-owner/test-repo")
	require.NoError(t, err)
	require.Equal(t, 42, pr.Number)

	_, err = ReadEvent("", "o/r")
	require.True(t, errors.Is(err, ErrNotPullRequest))

	_, err = ReadEvent(filepath.Join(t.TempDir(), "missing.json"), "o/r")
	require.Error(t, err)

	push := filepath.Join(t.TempDir(), "push.json")
	require.NoError(t, os.WriteFile(push, []byte(`{"ref":"refs/heads/main"}`), 0o600))
	_, err = ReadEvent(push, "o/r")
	require.ErrorIs(t, err, ErrNotPullRequest)
}

func TestFromContext(t *testing.T) {
	_, err := FromContext(&githubactions.GitHubContext{Repository: "o/r"})
	require.ErrorIs(t, err, ErrNotPullRequest)

	pr, err := FromContext(&githubactions.GitHubContext{
		Repository: "o/r",
		Event: map[string]any{
			"pull_request": map[string]any{
				"number": 7,
				"draft":  true,
				"user":   map[string]any{"login": "dev"},
			},
		},
	})
	require.NoError(t, err)
	require.Equal(t, 7, pr.Number)
	require.True(t, pr.Draft)
	require.Equal(t, "dev", pr.Author)
	require.Equal(t, "o", pr.Owner)
	require.Equal(t, "r", pr.Repository)
}

func TestOutputs_Set(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output")
	out := NewOutputs(path)

	out.Set("assigned-reviewers", "reviewer1,reviewer2")
	out.Set("notes", "line1\nline2")

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, 7)
	require.True(t, strings.HasPrefix(lines[0], "assigned-reviewers<<"))
	delim := strings.TrimPrefix(lines[0], "assigned-reviewers<<")
	require.Equal(t, []string{"reviewer1,reviewer2", delim}, lines[1:3])
	require.True(t, strings.HasPrefix(lines[3], "notes<<"))
	delim = strings.TrimPrefix(lines[3], "notes<<")
	require.Equal(t, []string{"line1", "line2", delim}, lines[4:])
}

func TestOutputs_Disabled(t *testing.T) {
	logs := testutil.CaptureLogs(t)
	NewOutputs("").Set("a", "b")
	var nilOutputs *Outputs
	nilOutputs.Set("a", "b")
	require.Contains(t, logs.String(), "No output file configured")
}

func TestHandler_WorkflowCommands(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, slog.LevelDebug))

	logger.Debug("details", "n", 1)
	logger.Info("Assigned reviewers: a, b")
	logger.Warn("Could not determine PR creator")
	logger.Error("Failed to load", "error", errors.New("100% broken\nbadly"))

	require.Equal(t, strings.Join([]string{
		"::debug::details n=1",
		"Assigned reviewers: a, b",
		"::warning::Could not determine PR creator",
		"::error::Failed to load error=100%25 broken%0Abadly",
		"",
	}, "\n"), buf.String())
}

func TestHandler_LevelAttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, nil)).With("component", "test").WithGroup("pr")

	logger.Debug("hidden")
	logger.Info("seen", "number", 7, slog.Group("repo", "owner", "o"))

	require.Equal(t, "seen component=test pr.number=7 pr.repo.owner=o\n", buf.String())
}
