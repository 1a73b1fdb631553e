package watch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/retry"

	"github.com/codeGROOVE-dev/random-reviewer/pkg/config"
	"github.com/codeGROOVE-dev/random-reviewer/pkg/reviewer"
	"github.com/codeGROOVE-dev/random-reviewer/pkg/types"
)

// processEvent processes a single PR event with retries.
func (w *Watcher) processEvent(ctx context.Context, prURL string) {
	startTime := time.Now()

	ref, err := parsePRURL(prURL)
	if err != nil {
		slog.Warn("Failed to parse PR URL", "component", "watch", "url", prURL, "error", err)
		return
	}

	slog.Info("Processing PR event", "component", "watch", "owner", ref.owner, "repo", ref.repo, "pr", ref.number)

	err = retry.Do(func() error {
		return w.processPR(ctx, ref)
	},
		retry.Attempts(maxRetries),
		retry.DelayType(retry.CombineDelay(retry.BackOffDelay, retry.RandomDelay)),
		retry.MaxDelay(maxRetryDelay),
		retry.OnRetry(func(n uint, err error) {
			slog.Info("Retrying PR processing", "component", "watch", "attempt", n+1,
				"owner", ref.owner, "repo", ref.repo, "pr", ref.number, "error", err)
		}),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
	)
	if err != nil {
		slog.Error("Failed to process PR after retries",
			"component", "watch",
			"owner", ref.owner,
			"repo", ref.repo,
			"pr", ref.number,
			"elapsed", time.Since(startTime).Round(time.Millisecond),
			"error", err)
		return
	}

	slog.Info("Successfully processed PR",
		"component", "watch",
		"owner", ref.owner,
		"repo", ref.repo,
		"pr", ref.number,
		"elapsed", time.Since(startTime).Round(time.Millisecond))
}

// processPR fetches the PR and assigns reviewers if it is waiting for them.
func (w *Watcher) processPR(ctx context.Context, ref *prRef) error {
	pr, err := w.source.PullRequest(ctx, ref.owner, ref.repo, ref.number)
	if err != nil {
		return fmt.Errorf("failed to fetch PR: %w", err)
	}
	w.stats.RecordPRSeen(pr.Ref())

	if reason := skipReason(pr); reason != "" {
		slog.Debug("Skipping PR", "component", "watch", "pr", pr.Ref(), "reason", reason)
		return nil
	}

	reviewers, err := w.runner.Assign(ctx, pr, w.loadPool(ctx, pr), w.cfg.Count)
	if err != nil {
		return err
	}
	if len(reviewers) > 0 {
		w.stats.RecordPRAssigned(pr.Ref())
	}
	return nil
}

// skipReason explains why pr gets no reviewers, or returns "" if it should.
func skipReason(pr *types.PullRequest) string {
	switch {
	case pr.State != "" && pr.State != "open":
		return "not open"
	case pr.Draft:
		return "draft"
	case len(pr.Reviewers) > 0:
		return "reviewers already requested"
	case pr.Author == "":
		return "unknown author"
	default:
		return ""
	}
}

// loadPool builds the candidate pool for pr from its repository's reviewer
// document. Any failure yields an empty pool. Successfully parsed documents are
// cached briefly; the pool itself is rebuilt for every event.
func (w *Watcher) loadPool(ctx context.Context, pr *types.PullRequest) reviewer.Pool {
	path := w.cfg.ConfigPath
	if path == "" {
		path = config.DefaultReviewersPath
	}

	key := strings.ToLower(pr.Owner + "/" + pr.Repository + ":" + path)
	data, cached := w.documents.Get(key)
	if !cached {
		var err error
		data, err = w.source.FileContents(ctx, pr.Owner, pr.Repository, path)
		if err != nil {
			slog.Error("Failed to load reviewers config", "component", "watch", "pr", pr.Ref(), "path", path, "error", err)
			return reviewer.NewPool(nil, nil)
		}
	}

	pool, err := config.Parse(data)
	if err != nil {
		slog.Error("Failed to load reviewers config", "component", "watch", "pr", pr.Ref(), "path", path, "error", err)
		return reviewer.NewPool(nil, nil)
	}

	if !cached {
		w.documents.Set(key, data)
	}
	return pool
}
