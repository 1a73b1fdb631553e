package reviewer

import (
	"slices"
	"testing"

	"github.com/codeGROOVE-dev/random-reviewer/pkg/types"
)

func TestDedupe(t *testing.T) {
	tests := []struct {
		name string
		in   []types.Candidate
		want []string
	}{
		{"nil", nil, []string{}},
		{"drops empty logins", candidates("", "a", ""), []string{"a"}},
		{"first occurrence wins", []types.Candidate{
			{Login: "Alice", SlackMention: "<@U1>"},
			{Login: "alice", SlackMention: "<@U2>"},
			{Login: "bob"},
		}, []string{"Alice", "bob"}},
		{"keeps order", candidates("c", "b", "a"), []string{"c", "b", "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Dedupe(tt.in)
			if !slices.Equal(types.Logins(got), tt.want) {
				t.Errorf("Dedupe() = %v, want %v", types.Logins(got), tt.want)
			}
		})
	}
}

func TestDedupe_FirstMentionKept(t *testing.T) {
	got := Dedupe([]types.Candidate{
		{Login: "Alice", SlackMention: "<@U1>"},
		{Login: "ALICE", SlackMention: "<@U2>"},
	})
	if len(got) != 1 || got[0].SlackMention != "<@U1>" {
		t.Errorf("expected first entry to win, got %+v", got)
	}
}

func TestFilter(t *testing.T) {
	pool := NewPool(candidates("a", "B", "c", "lead"), candidates("Lead", "author"))

	got := Filter(pool, "AUTHOR")

	if want := []string{"Lead"}; !slices.Equal(types.Logins(got.Fixed), want) {
		t.Errorf("fixed = %v, want %v", types.Logins(got.Fixed), want)
	}
	if want := []string{"a", "B", "c"}; !slices.Equal(types.Logins(got.Regular), want) {
		t.Errorf("regular = %v, want %v", types.Logins(got.Regular), want)
	}
}

func TestFilter_Idempotent(t *testing.T) {
	pool := NewPool(candidates("a", "b", "f", "x"), candidates("f", "X"))

	once := Filter(pool, "x")
	twice := Filter(once, "x")

	if !slices.Equal(once.Regular, twice.Regular) || !slices.Equal(once.Fixed, twice.Fixed) {
		t.Errorf("filter not idempotent: %+v vs %+v", once, twice)
	}
}

func TestPool_SizeAndEmpty(t *testing.T) {
	if !(Pool{}).Empty() {
		t.Error("zero pool should be empty")
	}
	p := NewPool(candidates("a", "b"), candidates("c"))
	if p.Size() != 3 || p.Empty() {
		t.Errorf("expected size 3, got %d", p.Size())
	}
}
