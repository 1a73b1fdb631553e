// Package config loads the reviewers document and the command-line configuration.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/codeGROOVE-dev/random-reviewer/pkg/reviewer"
	"github.com/codeGROOVE-dev/random-reviewer/pkg/types"
)

// DefaultReviewersPath is where the reviewers document lives in a repository.
const DefaultReviewersPath = ".github/reviewers.yml"

// document is the on-disk shape of the reviewers file. Lists are kept as raw
// nodes so that malformed fields and entries can be skipped individually.
type document struct {
	Reviewers      yaml.Node `yaml:"reviewers"`
	FixedReviewers yaml.Node `yaml:"fixedReviewers"`
}

// entry is a single reviewer declaration.
type entry struct {
	GitHubName   string `yaml:"githubName" validate:"required,max=39,github_login"`
	SlackMention string `yaml:"slackMention" validate:"omitempty,slack_mention"`
}

var (
	// GitHub logins: alphanumerics and single hyphens, no leading or trailing hyphen.
	githubLogin = regexp.MustCompile(`^[A-Za-z0-9](?:-?[A-Za-z0-9])*$`)
	// Slack mrkdwn mentions: users, user groups and the special broadcasts.
	slackMention = regexp.MustCompile(`^<(?:@[UW][A-Z0-9]+|!subteam\^[A-Z0-9]+|!here|!channel|!everyone)>$`)

	validate = newValidator()
)

func newValidator() *validator.Validate {
	v := validator.New()
	must := func(tag string, re *regexp.Regexp) {
		if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return re.MatchString(fl.Field().String())
		}); err != nil {
			panic(fmt.Sprintf("register %s validation: %v", tag, err))
		}
	}
	must("github_login", githubLogin)
	must("slack_mention", slackMention)
	return v
}

// Load reads the reviewers document at path. It never fails: read and parse
// errors are logged and an empty pool is returned.
func Load(path string) reviewer.Pool {
	pool, err := Read(path)
	if err != nil {
		slog.Error("Failed to load reviewers config", "component", "config", "path", path, "error", err)
		return reviewer.Pool{Regular: []types.Candidate{}, Fixed: []types.Candidate{}}
	}
	return pool
}

// Read reads and parses the reviewers document at path.
func Read(path string) (reviewer.Pool, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is operator-provided configuration
	if err != nil {
		return reviewer.Pool{}, fmt.Errorf("failed to read reviewers config: %w", err)
	}
	return Parse(data)
}

// Parse decodes a reviewers document. Missing or non-list fields yield empty
// lists; entries without a githubName are dropped; duplicates are removed
// case-insensitively, keeping the first occurrence.
func Parse(data []byte) (reviewer.Pool, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return reviewer.Pool{}, fmt.Errorf("failed to parse reviewers config: %w", err)
	}

	regular, err := candidates(&doc.Reviewers)
	if err != nil {
		return reviewer.Pool{}, fmt.Errorf("invalid reviewers list: %w", err)
	}
	fixed, err := candidates(&doc.FixedReviewers)
	if err != nil {
		return reviewer.Pool{}, fmt.Errorf("invalid fixedReviewers list: %w", err)
	}

	pool := reviewer.NewPool(regular, fixed)
	slog.Debug("Loaded reviewers config", "component", "config",
		"reviewers", len(pool.Regular), "fixed_reviewers", len(pool.Fixed))
	return pool, nil
}

// candidates converts a list node into candidates, skipping invalid entries.
func candidates(node *yaml.Node) ([]types.Candidate, error) {
	if node.Kind != yaml.SequenceNode {
		return nil, nil
	}

	out := make([]types.Candidate, 0, len(node.Content))
	for i, item := range node.Content {
		if item.Kind != yaml.MappingNode {
			slog.Debug("Skipping non-mapping reviewer entry", "component", "config", "index", i)
			continue
		}
		var e entry
		if err := item.Decode(&e); err != nil {
			slog.Debug("Skipping undecodable reviewer entry", "component", "config", "index", i, "error", err)
			continue
		}
		if err := validate.Struct(e); err != nil {
			var verrs validator.ValidationErrors
			if !errors.As(err, &verrs) {
				return nil, err
			}
			slog.Warn("Skipping invalid reviewer entry", "component", "config",
				"index", i, "github_name", e.GitHubName, "error", err)
			continue
		}
		out = append(out, types.Candidate{Login: e.GitHubName, SlackMention: e.SlackMention})
	}
	return out, nil
}
