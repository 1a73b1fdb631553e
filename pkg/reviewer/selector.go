package reviewer

import (
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/codeGROOVE-dev/random-reviewer/pkg/types"
)

// Request describes a single selection.
type Request struct {
	Author string // PR author; never selected
	Count  int    // Requested number of reviewers; negative counts are treated as zero
}

// Result is the outcome of a selection. Fixed reviewers come first,
// followed by the sampled regular reviewers.
type Result struct {
	Reviewers []types.Candidate
	Outcome   Outcome
}

// Selector picks reviewers from a pool. It holds no state between calls other
// than its random source, so it may be reused across independent runs.
type Selector struct {
	rng    *rand.Rand
	logger *slog.Logger
}

// New creates a Selector backed by a randomly seeded generator.
func New() *Selector {
	return NewWithSource(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// NewWithSource creates a Selector that draws from src, for reproducible shuffles.
func NewWithSource(src rand.Source) *Selector {
	return &Selector{rng: rand.New(src)}
}

// WithLogger sets the logger used for selection observations.
func (s *Selector) WithLogger(l *slog.Logger) *Selector {
	s.logger = l
	return s
}

func (s *Selector) log() *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return slog.Default()
}

// Select chooses reviewers for req from pool.
//
// Fixed reviewers are never truncated: when they alone meet the requested
// count, they are returned even if there are more of them than requested,
// including when the count is zero.
func (s *Selector) Select(pool Pool, req Request) Result {
	count := max(req.Count, 0)
	filtered := Filter(pool, req.Author)
	fixed, regular := filtered.Fixed, filtered.Regular
	total := filtered.Size()

	if total == 0 {
		s.log().Warn("No available reviewers after filtering PR creator", "component", "selector", "author", req.Author)
		return Result{Reviewers: []types.Candidate{}, Outcome: OutcomeNone}
	}

	if total <= count {
		s.log().Info(fmt.Sprintf("Only %d reviewers available, selecting all", total),
			"component", "selector", "available", total, "requested", count)
		return Result{Reviewers: concat(fixed, regular), Outcome: OutcomeAll}
	}

	remaining := count - len(fixed)
	if remaining <= 0 {
		s.log().Info(fmt.Sprintf("All %d reviewers are fixed, no random selection needed", len(fixed)),
			"component", "selector", "fixed", len(fixed), "requested", count)
		return Result{Reviewers: concat(fixed, nil), Outcome: OutcomeFixedOnly}
	}

	sampled := s.shuffle(regular)[:remaining]
	s.log().Debug("Sampled regular reviewers", "component", "selector",
		"fixed", len(fixed), "sampled", len(sampled), "pool", len(regular))
	return Result{Reviewers: concat(fixed, sampled), Outcome: OutcomeSampled}
}

// shuffle returns a Fisher-Yates shuffled copy of candidates.
func (s *Selector) shuffle(candidates []types.Candidate) []types.Candidate {
	out := make([]types.Candidate, len(candidates))
	copy(out, candidates)
	for i := len(out) - 1; i > 0; i-- {
		j := s.rng.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

func concat(a, b []types.Candidate) []types.Candidate {
	out := make([]types.Candidate, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}
