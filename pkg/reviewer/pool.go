package reviewer

import (
	"github.com/codeGROOVE-dev/random-reviewer/pkg/types"
)

// Pool holds the two candidate lists declared in a reviewers document.
// Fixed members are always part of a selection unless excluded.
type Pool struct {
	Regular []types.Candidate
	Fixed   []types.Candidate
}

// NewPool builds a pool whose lists are deduplicated by case-insensitive login
// (first occurrence wins), with entries lacking a login dropped.
func NewPool(regular, fixed []types.Candidate) Pool {
	return Pool{
		Regular: Dedupe(regular),
		Fixed:   Dedupe(fixed),
	}
}

// Size returns the total number of candidates in both lists.
func (p Pool) Size() int {
	return len(p.Regular) + len(p.Fixed)
}

// Empty reports whether the pool has no candidates at all.
func (p Pool) Empty() bool {
	return p.Size() == 0
}

// Dedupe returns a new slice without empty logins or repeated identities.
func Dedupe(candidates []types.Candidate) []types.Candidate {
	seen := make(map[string]bool, len(candidates))
	out := make([]types.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Login == "" {
			continue
		}
		key := c.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out
}

// Filter removes the author from both lists and the retained fixed members
// from the regular list. The input pool is not modified.
func Filter(pool Pool, author string) Pool {
	fixed := exclude(pool.Fixed, []string{author})

	excluded := make([]string, 0, len(fixed)+1)
	excluded = append(excluded, author)
	excluded = append(excluded, types.Logins(fixed)...)

	return Pool{
		Regular: exclude(pool.Regular, excluded),
		Fixed:   fixed,
	}
}

// exclude returns the candidates whose logins match none of the given names.
func exclude(candidates []types.Candidate, names []string) []types.Candidate {
	skip := make(map[string]bool, len(names))
	for _, name := range names {
		skip[types.Candidate{Login: name}.Key()] = true
	}

	out := make([]types.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Login == "" || skip[c.Key()] {
			continue
		}
		out = append(out, c)
	}
	return out
}
