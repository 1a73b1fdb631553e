// Package slack posts reviewer assignment notifications to a Slack incoming webhook.
package slack

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	slackapi "github.com/slack-go/slack"

	"github.com/codeGROOVE-dev/random-reviewer/pkg/types"
)

const defaultTimeout = 10 * time.Second

// Notifier sends notifications to a single webhook.
type Notifier struct {
	httpClient *http.Client
	webhookURL string
	language   Language
}

// New creates a Notifier. A nil httpClient gets a client with a default timeout.
func New(webhookURL string, language Language, httpClient *http.Client) *Notifier {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Notifier{
		httpClient: httpClient,
		webhookURL: webhookURL,
		language:   ParseLanguage(string(language)),
	}
}

// Notify posts the assignment message. Failures are logged as warnings and
// reported through the return value; callers must not treat them as fatal.
func (n *Notifier) Notify(ctx context.Context, pr *types.PullRequest, reviewers []types.Candidate) bool {
	msg := n.Compose(pr, reviewers)
	if err := n.send(ctx, msg); err != nil {
		slog.Warn("Failed to send Slack webhook notification", "component", "slack", "error", err)
		return false
	}
	slog.Info("Slack webhook notification sent successfully", "component", "slack")
	return true
}

// Compose builds the notification text: the mentions of reviewers that have
// one, followed by the PR summary.
func (n *Notifier) Compose(pr *types.PullRequest, reviewers []types.Candidate) *slackapi.WebhookMessage {
	t := messageTemplates[n.language]

	var mentions []string
	for _, r := range reviewers {
		if r.SlackMention != "" {
			mentions = append(mentions, r.SlackMention)
		}
	}

	var b strings.Builder
	if len(mentions) > 0 {
		b.WriteString(strings.Join(mentions, " "))
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "%s \n", t.assignmentHeader)
	fmt.Fprintf(&b, "• %s: %s\n", t.prTitleLabel, pr.Title)
	fmt.Fprintf(&b, "• %s: %s\n", t.authorLabel, pr.Author)
	fmt.Fprintf(&b, "• %s: %s\n", t.reviewersLabel, strings.Join(types.Logins(reviewers), ", "))
	fmt.Fprintf(&b, "• %s >> %s", t.reviewLinkLabel, pr.URL)

	return &slackapi.WebhookMessage{Text: b.String()}
}

func (n *Notifier) send(ctx context.Context, msg *slackapi.WebhookMessage) error {
	if err := slackapi.PostWebhookCustomHTTPContext(ctx, n.webhookURL, n.httpClient, msg); err != nil {
		return fmt.Errorf("failed to post webhook: %w", err)
	}
	return nil
}
