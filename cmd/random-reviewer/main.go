// Package main implements the random-reviewer command: a GitHub Action that
// assigns random reviewers to a pull request, and a watch mode that does the
// same for every new pull request in an organization.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/lmittmann/tint"
	"github.com/urfave/cli/v3"

	"github.com/codeGROOVE-dev/random-reviewer/pkg/action"
	"github.com/codeGROOVE-dev/random-reviewer/pkg/assign"
	"github.com/codeGROOVE-dev/random-reviewer/pkg/config"
	"github.com/codeGROOVE-dev/random-reviewer/pkg/github"
	"github.com/codeGROOVE-dev/random-reviewer/pkg/metrics"
	"github.com/codeGROOVE-dev/random-reviewer/pkg/slack"
	"github.com/codeGROOVE-dev/random-reviewer/pkg/watch"
)

func main() {
	bi, _ := debug.ReadBuildInfo()

	cmd := &cli.Command{
		Name:    "random-reviewer",
		Usage:   "Assign random reviewers to GitHub pull requests",
		Version: bi.Main.Version,
		Flags:   append(config.Flags(), config.ActionFlags()...),
		Action:  runAssign,
		Commands: []*cli.Command{
			{
				Name:   "watch",
				Usage:  "Assign reviewers to new pull requests in an organization as they arrive",
				Flags:  config.WatchFlags(),
				Action: runWatch,
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cmd.Run(ctx, os.Args)
	stop()

	if err != nil {
		slog.Error(assign.FailureMessage(err))
		os.Exit(1)
	}
}

// runAssign handles a single pull request event inside GitHub Actions.
func runAssign(ctx context.Context, cmd *cli.Command) error {
	if err := initLog(os.Stdout, cmd.String(config.FlagLogFormat)); err != nil {
		return err
	}
	defer initMetrics(ctx, cmd)()

	in := assign.Inputs{
		Token:      cmd.String(config.FlagGitHubToken),
		WebhookURL: cmd.String(config.FlagSlackWebhookURL),
		ConfigPath: cmd.String(config.FlagReviewersPath),
		EventPath:  cmd.String(config.FlagEventPath),
		Repository: cmd.String(config.FlagRepository),
		Count:      cmd.Int(config.FlagMaxReviewers),
	}
	if err := assign.Validate(in); err != nil {
		return err
	}

	runner, _, err := newRunner(cmd, in)
	if err != nil {
		return err
	}
	runner.Outputs = action.NewOutputs(cmd.String(config.FlagOutputFile))

	return runner.Run(ctx, in)
}

// runWatch assigns reviewers for live pull request events until interrupted.
func runWatch(ctx context.Context, cmd *cli.Command) error {
	if err := initLog(os.Stderr, cmd.String(config.FlagLogFormat)); err != nil {
		return err
	}
	defer initMetrics(ctx, cmd)()

	in := assign.Inputs{
		Token:      cmd.String(config.FlagGitHubToken),
		WebhookURL: cmd.String(config.FlagSlackWebhookURL),
		Count:      cmd.Int(config.FlagMaxReviewers),
	}
	if err := assign.Validate(in); err != nil {
		return err
	}

	runner, client, err := newRunner(cmd, in)
	if err != nil {
		return err
	}

	w := watch.New(watch.Config{
		Org:           cmd.String(config.FlagOrg),
		ConfigPath:    cmd.String(config.FlagReviewersPath),
		Count:         in.Count,
		TokenProvider: client.Token,
	}, client, runner)

	go func() {
		if err := watch.Serve(ctx, cmd.String(config.FlagPort), w.Stats()); err != nil {
			slog.Error("Health server stopped", "component", "server", "error", err)
		}
	}()

	return w.Run(ctx)
}

// newRunner builds the GitHub client and the assignment runner shared by both modes.
func newRunner(cmd *cli.Command, in assign.Inputs) (*assign.Runner, github.API, error) {
	timeout := cmd.Duration(config.FlagHTTPTimeout)

	client, err := github.New(github.Config{
		Token:         in.Token,
		BaseURL:       cmd.String(config.FlagAPIURL),
		HTTPTimeout:   timeout,
		RetryAttempts: cmd.Int(config.FlagRetryAttempts),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create GitHub client: %w", err)
	}

	runner := &assign.Runner{GitHub: client}
	if in.WebhookURL != "" {
		lang := slack.ParseLanguage(cmd.String(config.FlagLanguage))
		runner.Notifier = slack.New(in.WebhookURL, lang, &http.Client{Timeout: timeout})
	}
	return runner, client, nil
}

// initLog installs the default logger for the requested format.
func initLog(w io.Writer, format string) error {
	if format == "auto" {
		format = "pretty"
		if os.Getenv("GITHUB_ACTIONS") == "true" {
			format = "actions"
		}
	}

	var h slog.Handler
	switch format {
	case "actions":
		h = action.NewHandler(w, slog.LevelDebug)
	case "json":
		h = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	case "pretty":
		h = tint.NewHandler(w, &tint.Options{Level: slog.LevelInfo, TimeFormat: "15:04:05.000"})
	default:
		return fmt.Errorf("invalid log format %q", format)
	}

	slog.SetDefault(slog.New(h))
	return nil
}

// initMetrics starts the metrics exporter if one is configured, and returns
// a function that flushes it. Metrics failures never fail the run.
func initMetrics(ctx context.Context, cmd *cli.Command) func() {
	shutdown, err := metrics.Init(ctx, cmd.String(config.FlagOTLPEndpoint))
	if err != nil {
		slog.Warn("Failed to initialize metrics", "component", "metrics", "error", err)
		return func() {}
	}

	return func() {
		if err := shutdown(context.WithoutCancel(ctx)); err != nil {
			slog.Warn("Failed to flush metrics", "component", "metrics", "error", err)
		}
	}
}
