package config

import (
	"time"

	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli-altsrc/v3/toml"
	"github.com/urfave/cli/v3"

	"github.com/tzrikka/xdg"
)

const (
	DirName        = "random-reviewer"
	ConfigFileName = "config.toml"

	DefaultMaxReviewers = 2
	DefaultLanguage     = "ko"
	DefaultAPIURL       = "https://api.github.com"
	DefaultHTTPTimeout  = 30 * time.Second
	DefaultRetries      = 1
	DefaultPort         = "8080"
)

// Flag names shared by the commands and their tests.
const (
	FlagGitHubToken     = "github-token"
	FlagSlackWebhookURL = "slack-webhook-url"
	FlagReviewersPath   = "reviewers-config-path"
	FlagMaxReviewers    = "max-reviewers"
	FlagLanguage        = "language"
	FlagAPIURL          = "github-api-url"
	FlagEventPath       = "event-path"
	FlagRepository      = "repository"
	FlagOutputFile      = "output-file"
	FlagHTTPTimeout     = "http-timeout"
	FlagRetryAttempts   = "retry-attempts"
	FlagLogFormat       = "log-format"
	FlagOTLPEndpoint    = "otlp-endpoint"
	FlagOrg             = "org"
	FlagPort            = "port"
)

// configFile returns the path to the optional configuration file, or an
// empty sourcer when the user has not created one.
func configFile() altsrc.StringSourcer {
	path, _ := xdg.FindConfigFile(DirName, ConfigFileName)
	return altsrc.StringSourcer(path)
}

// sources builds a value source chain from environment variables,
// falling back to a key in the configuration file.
func sources(path altsrc.StringSourcer, key string, envs ...string) cli.ValueSourceChain {
	srcs := make([]cli.ValueSource, 0, len(envs)+1)
	for _, env := range envs {
		srcs = append(srcs, cli.EnvVar(env))
	}
	if path != "" {
		srcs = append(srcs, toml.TOML(key, path))
	}
	return cli.NewValueSourceChain(srcs...)
}

// Flags defines the flags shared by all commands. Inside GitHub Actions they
// are set through the INPUT_* variables derived from the action's inputs.
func Flags() []cli.Flag {
	path := configFile()

	return []cli.Flag{
		&cli.StringFlag{
			Name:    FlagGitHubToken,
			Usage:   "GitHub token used to request reviewers",
			Sources: sources(path, "github.token", "INPUT_GITHUB-TOKEN", "GITHUB_TOKEN"),
		},
		&cli.StringFlag{
			Name:    FlagSlackWebhookURL,
			Usage:   "Optional Slack incoming webhook URL for notifications",
			Sources: sources(path, "slack.webhook_url", "INPUT_SLACK-WEBHOOK-URL", "SLACK_WEBHOOK_URL"),
		},
		&cli.StringFlag{
			Name:    FlagReviewersPath,
			Usage:   "Path to the reviewers YAML document",
			Value:   DefaultReviewersPath,
			Sources: sources(path, "reviewers.config_path", "INPUT_REVIEWERS-CONFIG-PATH"),
		},
		&cli.IntFlag{
			Name:    FlagMaxReviewers,
			Usage:   "Number of reviewers to assign",
			Value:   DefaultMaxReviewers,
			Sources: sources(path, "reviewers.max", "INPUT_MAX-REVIEWERS"),
		},
		&cli.StringFlag{
			Name:    FlagLanguage,
			Usage:   "Notification language (ko, en)",
			Value:   DefaultLanguage,
			Sources: sources(path, "slack.language", "INPUT_LANGUAGE"),
		},
		&cli.StringFlag{
			Name:    FlagAPIURL,
			Usage:   "GitHub REST API base URL",
			Value:   DefaultAPIURL,
			Sources: sources(path, "github.api_url", "GITHUB_API_URL"),
		},
		&cli.DurationFlag{
			Name:  FlagHTTPTimeout,
			Usage: "Timeout for each HTTP request",
			Value: DefaultHTTPTimeout,
		},
		&cli.IntFlag{
			Name:  FlagRetryAttempts,
			Usage: "Attempts per GitHub API request (1 disables retries)",
			Value: DefaultRetries,
		},
		&cli.StringFlag{
			Name:    FlagLogFormat,
			Usage:   "Log format: auto, actions, pretty, json",
			Value:   "auto",
			Sources: sources(path, "log.format", "LOG_FORMAT"),
		},
		&cli.StringFlag{
			Name:    FlagOTLPEndpoint,
			Usage:   "OTLP/HTTP endpoint for metrics (empty disables metrics)",
			Sources: sources(path, "otlp.endpoint", "OTEL_EXPORTER_OTLP_ENDPOINT"),
		},
	}
}

// ActionFlags defines the flags that describe the GitHub Actions run context.
func ActionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    FlagEventPath,
			Usage:   "Path to the webhook event payload",
			Sources: cli.EnvVars("GITHUB_EVENT_PATH"),
		},
		&cli.StringFlag{
			Name:    FlagRepository,
			Usage:   "Repository in owner/repo form",
			Sources: cli.EnvVars("GITHUB_REPOSITORY"),
		},
		&cli.StringFlag{
			Name:    FlagOutputFile,
			Usage:   "File that receives step outputs",
			Sources: cli.EnvVars("GITHUB_OUTPUT"),
		},
	}
}

// WatchFlags defines the flags of the event-driven watch command.
func WatchFlags() []cli.Flag {
	path := configFile()

	return []cli.Flag{
		&cli.StringFlag{
			Name:     FlagOrg,
			Usage:    "GitHub organization to watch for pull request events",
			Required: true,
			Sources:  sources(path, "watch.org", "GITHUB_ORG"),
		},
		&cli.StringFlag{
			Name:    FlagPort,
			Usage:   "Port of the health check server",
			Value:   DefaultPort,
			Sources: sources(path, "watch.port", "PORT"),
		},
	}
}
