package reviewer

import (
	"bytes"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"strings"
	"testing"

	"github.com/codeGROOVE-dev/random-reviewer/pkg/types"
)

func candidates(logins ...string) []types.Candidate {
	out := make([]types.Candidate, len(logins))
	for i, l := range logins {
		out[i] = types.Candidate{Login: l}
	}
	return out
}

// newTestSelector returns a seeded selector and the buffer its observations are logged to.
func newTestSelector(seed uint64) (*Selector, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	return NewWithSource(rand.NewPCG(seed, seed+1)).WithLogger(logger), &buf
}

func TestSelect_ScenarioA_SamplesRequestedCount(t *testing.T) {
	s, _ := newTestSelector(1)
	pool := NewPool(candidates("r1", "r2", "r3", "r4", "r5"), nil)

	got := s.Select(pool, Request{Author: "pr-author", Count: 3})

	if len(got.Reviewers) != 3 {
		t.Fatalf("expected 3 reviewers, got %d", len(got.Reviewers))
	}
	if got.Outcome != OutcomeSampled {
		t.Errorf("expected outcome %v, got %v", OutcomeSampled, got.Outcome)
	}
	seen := make(map[string]bool)
	for _, r := range got.Reviewers {
		if !slices.Contains([]string{"r1", "r2", "r3", "r4", "r5"}, r.Login) {
			t.Errorf("unexpected reviewer %q", r.Login)
		}
		if seen[r.Login] {
			t.Errorf("duplicate reviewer %q", r.Login)
		}
		seen[r.Login] = true
	}
}

func TestSelect_ScenarioB_FewerThanRequested(t *testing.T) {
	s, logs := newTestSelector(1)
	pool := NewPool(candidates("r1", "r2"), nil)

	got := s.Select(pool, Request{Author: "x", Count: 5})

	if want := []string{"r1", "r2"}; !slices.Equal(types.Logins(got.Reviewers), want) {
		t.Errorf("expected %v, got %v", want, types.Logins(got.Reviewers))
	}
	if got.Outcome != OutcomeAll {
		t.Errorf("expected outcome %v, got %v", OutcomeAll, got.Outcome)
	}
	if !strings.Contains(logs.String(), "Only 2 reviewers available, selecting all") {
		t.Errorf("expected over-supply observation, got logs: %s", logs.String())
	}
}

func TestSelect_ScenarioC_OnlyAuthorAvailable(t *testing.T) {
	s, logs := newTestSelector(1)
	pool := NewPool(candidates("a"), nil)

	got := s.Select(pool, Request{Author: "a", Count: 3})

	if len(got.Reviewers) != 0 {
		t.Errorf("expected no reviewers, got %v", types.Logins(got.Reviewers))
	}
	if got.Reviewers == nil {
		t.Error("expected an empty, non-nil slice")
	}
	if got.Outcome != OutcomeNone {
		t.Errorf("expected outcome %v, got %v", OutcomeNone, got.Outcome)
	}
	out := logs.String()
	if !strings.Contains(out, "No available reviewers after filtering PR creator") || !strings.Contains(out, "level=WARN") {
		t.Errorf("expected starvation warning, got logs: %s", out)
	}
}

func TestSelect_ScenarioD_FixedSaturation(t *testing.T) {
	s, logs := newTestSelector(1)
	pool := NewPool(candidates("r1", "r2"), candidates("f1", "f2", "f3"))

	got := s.Select(pool, Request{Author: "someone", Count: 2})

	if want := []string{"f1", "f2", "f3"}; !slices.Equal(types.Logins(got.Reviewers), want) {
		t.Errorf("expected %v, got %v", want, types.Logins(got.Reviewers))
	}
	if got.Outcome != OutcomeFixedOnly {
		t.Errorf("expected outcome %v, got %v", OutcomeFixedOnly, got.Outcome)
	}
	if !strings.Contains(logs.String(), "All 3 reviewers are fixed, no random selection needed") {
		t.Errorf("expected fixed-only observation, got logs: %s", logs.String())
	}
}

func TestSelect_ScenarioE_FixedDuplicatesRegular(t *testing.T) {
	s, _ := newTestSelector(1)
	pool := NewPool(candidates("R1"), candidates("r1"))

	got := s.Select(pool, Request{Author: "x", Count: 2})

	if want := []string{"r1"}; !slices.Equal(types.Logins(got.Reviewers), want) {
		t.Errorf("expected %v, got %v", want, types.Logins(got.Reviewers))
	}
}

func TestSelect_FixedFirstThenSampled(t *testing.T) {
	s, _ := newTestSelector(7)
	pool := NewPool(candidates("r1", "r2", "r3", "r4"), candidates("f1", "f2"))

	got := s.Select(pool, Request{Author: "x", Count: 3})

	if len(got.Reviewers) != 3 {
		t.Fatalf("expected 3 reviewers, got %v", types.Logins(got.Reviewers))
	}
	if got.Reviewers[0].Login != "f1" || got.Reviewers[1].Login != "f2" {
		t.Errorf("expected fixed reviewers first, got %v", types.Logins(got.Reviewers))
	}
	if !strings.HasPrefix(got.Reviewers[2].Login, "r") {
		t.Errorf("expected a regular reviewer last, got %q", got.Reviewers[2].Login)
	}
}

func TestSelect_ZeroAndNegativeCount(t *testing.T) {
	tests := []struct {
		name    string
		regular []string
		fixed   []string
		count   int
		want    []string
	}{
		{"zero without fixed", []string{"r1", "r2"}, nil, 0, []string{}},
		{"zero with fixed", []string{"r1", "r2"}, []string{"f1"}, 0, []string{"f1"}},
		{"negative without fixed", []string{"r1"}, nil, -3, []string{}},
		{"negative with fixed", []string{"r1"}, []string{"f1", "f2"}, -1, []string{"f1", "f2"}},
		{"zero with empty pool", nil, nil, 0, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestSelector(3)
			pool := NewPool(candidates(tt.regular...), candidates(tt.fixed...))

			got := s.Select(pool, Request{Author: "author", Count: tt.count})

			if !slices.Equal(types.Logins(got.Reviewers), tt.want) {
				t.Errorf("expected %v, got %v", tt.want, types.Logins(got.Reviewers))
			}
		})
	}
}

func TestSelect_AuthorExcludedCaseInsensitively(t *testing.T) {
	s, _ := newTestSelector(1)
	pool := NewPool(candidates("Alice", "bob", "carol"), candidates("ALICE"))

	got := s.Select(pool, Request{Author: "alice", Count: 5})

	if want := []string{"bob", "carol"}; !slices.Equal(types.Logins(got.Reviewers), want) {
		t.Errorf("expected %v, got %v", want, types.Logins(got.Reviewers))
	}
}

func TestSelect_DoesNotMutatePool(t *testing.T) {
	s, _ := newTestSelector(11)
	regular := candidates("r1", "r2", "r3", "r4", "r5", "r6")
	pool := Pool{Regular: regular, Fixed: candidates("f1")}
	before := slices.Clone(regular)

	for range 20 {
		s.Select(pool, Request{Author: "x", Count: 3})
	}

	if !slices.Equal(pool.Regular, before) {
		t.Errorf("pool was mutated: %v", types.Logins(pool.Regular))
	}
}

func TestSelect_SeededSourceIsDeterministic(t *testing.T) {
	pool := NewPool(candidates("r1", "r2", "r3", "r4", "r5", "r6", "r7"), nil)
	req := Request{Author: "x", Count: 3}

	a, _ := newTestSelector(42)
	b, _ := newTestSelector(42)
	for i := range 10 {
		ga, gb := a.Select(pool, req), b.Select(pool, req)
		if !slices.Equal(types.Logins(ga.Reviewers), types.Logins(gb.Reviewers)) {
			t.Fatalf("draw %d differs: %v vs %v", i, types.Logins(ga.Reviewers), types.Logins(gb.Reviewers))
		}
	}
}

func TestSelect_SamplingIsUniform(t *testing.T) {
	s, _ := newTestSelector(2024)
	pool := NewPool(candidates("r1", "r2", "r3", "r4", "r5"), candidates("f1"))
	const trials = 20000
	counts := make(map[string]int)

	for range trials {
		got := s.Select(pool, Request{Author: "x", Count: 3})
		for _, r := range got.Reviewers[1:] {
			counts[r.Login]++
		}
	}

	// Two of five regular reviewers per draw: each expected in 40% of trials.
	want := trials * 2 / 5
	tolerance := want / 20
	for _, login := range []string{"r1", "r2", "r3", "r4", "r5"} {
		if diff := counts[login] - want; diff > tolerance || diff < -tolerance {
			t.Errorf("%s drawn %d times, want %d ± %d", login, counts[login], want, tolerance)
		}
	}
}

func TestSelect_Properties(t *testing.T) {
	gen := rand.New(rand.NewPCG(9, 9))
	s, _ := newTestSelector(5)

	for trial := range 500 {
		var regular, fixed []types.Candidate
		for range gen.IntN(8) {
			regular = append(regular, types.Candidate{Login: fmt.Sprintf("User%d", gen.IntN(10))})
		}
		for range gen.IntN(4) {
			fixed = append(fixed, types.Candidate{Login: fmt.Sprintf("user%d", gen.IntN(10))})
		}
		author := fmt.Sprintf("USER%d", gen.IntN(10))
		count := gen.IntN(7)
		pool := NewPool(regular, fixed)
		filtered := Filter(pool, author)

		got := s.Select(pool, Request{Author: author, Count: count})

		if limit := max(count, len(filtered.Fixed)); len(got.Reviewers) > limit {
			t.Fatalf("trial %d: %d reviewers exceeds limit %d", trial, len(got.Reviewers), limit)
		}
		seen := make(map[string]bool)
		for _, r := range got.Reviewers {
			if strings.EqualFold(r.Login, author) {
				t.Fatalf("trial %d: author %q selected", trial, author)
			}
			if seen[r.Key()] {
				t.Fatalf("trial %d: duplicate reviewer %q", trial, r.Login)
			}
			seen[r.Key()] = true
		}
		if len(got.Reviewers) > 0 {
			for _, f := range filtered.Fixed {
				if !seen[f.Key()] {
					t.Fatalf("trial %d: fixed reviewer %q missing from %v", trial, f.Login, types.Logins(got.Reviewers))
				}
			}
		}
	}
}

func TestOutcome_String(t *testing.T) {
	tests := map[Outcome]string{
		OutcomeNone:      "none",
		OutcomeAll:       "all",
		OutcomeFixedOnly: "fixed-only",
		OutcomeSampled:   "sampled",
		Outcome(99):      "unknown",
	}
	for o, want := range tests {
		if got := o.String(); got != want {
			t.Errorf("Outcome(%d).String() = %q, want %q", int(o), got, want)
		}
	}
}
