// Package types contains shared data structures used across the reviewer system.
//
//nolint:revive // "types" is a standard Go package name for shared data structures
package types

import (
	"fmt"
	"strings"
)

// Candidate is a person eligible for reviewer assignment.
type Candidate struct {
	Login        string // GitHub handle, compared case-insensitively
	SlackMention string // Optional chat mention token, e.g. "<@U123>"
}

// Key returns the identity key used for deduplication and exclusion.
func (c Candidate) Key() string {
	return strings.ToLower(c.Login)
}

// Logins returns the GitHub handles of the given candidates, in order.
func Logins(candidates []Candidate) []string {
	logins := make([]string, len(candidates))
	for i, c := range candidates {
		logins[i] = c.Login
	}
	return logins
}

// PullRequest represents a GitHub pull request.
type PullRequest struct {
	Title      string
	State      string
	Author     string
	Repository string
	Owner      string
	URL        string
	Reviewers  []string // Currently requested reviewers
	Number     int
	Draft      bool
}

// Ref returns the short owner/repo#number form used in logs.
func (pr *PullRequest) Ref() string {
	return fmt.Sprintf("%s/%s#%d", pr.Owner, pr.Repository, pr.Number)
}
