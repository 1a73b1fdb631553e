// Package assign runs one reviewer assignment: load the candidate pool,
// select reviewers, request their reviews, and notify the chat channel.
package assign

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/codeGROOVE-dev/random-reviewer/pkg/action"
	"github.com/codeGROOVE-dev/random-reviewer/pkg/config"
	"github.com/codeGROOVE-dev/random-reviewer/pkg/metrics"
	"github.com/codeGROOVE-dev/random-reviewer/pkg/reviewer"
	"github.com/codeGROOVE-dev/random-reviewer/pkg/types"
)

// OutputAssignedReviewers is the step output holding the comma-joined logins.
const OutputAssignedReviewers = "assigned-reviewers"

// Input validation errors. They are reported as-is, without the generic failure prefix.
var (
	ErrMissingToken = errors.New("GitHub token is required")
	ErrInvalidCount = errors.New("max-reviewers must not be negative")
)

// Inputs are the parameters of a single run.
type Inputs struct {
	Token      string
	WebhookURL string
	ConfigPath string
	EventPath  string
	Repository string
	Count      int
}

// Validate checks the inputs before any work is done.
func Validate(in Inputs) error {
	if in.Token == "" {
		return ErrMissingToken
	}
	if in.Count < 0 {
		return ErrInvalidCount
	}
	return nil
}

// IsInputError reports whether err comes from input validation.
func IsInputError(err error) bool {
	return errors.Is(err, ErrMissingToken) || errors.Is(err, ErrInvalidCount)
}

// FailureMessage renders err as the single terminal failure line of a run.
func FailureMessage(err error) string {
	if IsInputError(err) {
		return err.Error()
	}
	return "Action failed: " + err.Error()
}

// ReviewRequester registers reviewers on a pull request.
type ReviewRequester interface {
	AddReviewers(ctx context.Context, owner, repo string, prNumber int, reviewers []string) error
}

// Notifier announces an assignment. It reports failures through its result only.
type Notifier interface {
	Notify(ctx context.Context, pr *types.PullRequest, reviewers []types.Candidate) bool
}

// OutputSetter records machine-readable results of a run.
type OutputSetter interface {
	Set(name, value string)
}

// Runner wires the selection to its collaborators.
type Runner struct {
	GitHub   ReviewRequester
	Notifier Notifier // Optional; nil skips notifications
	Outputs  OutputSetter
	Selector *reviewer.Selector
}

// Run performs the assignment for the pull request described by the Actions event.
// A run that finds nothing to do (not a PR event, unknown author, no eligible
// reviewers) succeeds.
func (r *Runner) Run(ctx context.Context, in Inputs) error {
	if err := Validate(in); err != nil {
		return err
	}

	pr, err := action.ReadEvent(in.EventPath, in.Repository)
	if errors.Is(err, action.ErrNotPullRequest) {
		slog.Error("This action can only be run on pull request events", "component", "assign")
		return nil
	}
	if err != nil {
		return fmt.Errorf("read event: %w", err)
	}

	if pr.Author == "" {
		slog.Warn("Could not determine PR creator", "component", "assign", "pr", pr.Ref())
		return nil
	}

	pool := config.Load(in.ConfigPath)
	_, err = r.Assign(ctx, pr, pool, in.Count)
	return err
}

// Assign selects reviewers for pr from pool, requests their reviews and sends
// the notification. Assignment errors are returned; notification errors are not.
func (r *Runner) Assign(ctx context.Context, pr *types.PullRequest, pool reviewer.Pool, count int) ([]types.Candidate, error) {
	selector := r.Selector
	if selector == nil {
		selector = reviewer.New()
	}

	result := selector.Select(pool, reviewer.Request{Author: pr.Author, Count: count})
	metrics.RecordSelection(ctx, result.Outcome.String())

	if len(result.Reviewers) == 0 {
		slog.Info("No available reviewers found", "component", "assign", "pr", pr.Ref())
		return nil, nil
	}

	logins := types.Logins(result.Reviewers)
	if err := r.GitHub.AddReviewers(ctx, pr.Owner, pr.Repository, pr.Number, logins); err != nil {
		return nil, fmt.Errorf("assign reviewers: %w", err)
	}
	metrics.RecordAssigned(ctx, len(logins))

	slog.Info("Assigned reviewers: "+strings.Join(logins, ", "), "component", "assign", "pr", pr.Ref())
	if r.Outputs != nil {
		r.Outputs.Set(OutputAssignedReviewers, strings.Join(logins, ","))
	}

	if r.Notifier != nil {
		metrics.RecordNotification(ctx, r.Notifier.Notify(ctx, pr, result.Reviewers))
	}

	return result.Reviewers, nil
}
