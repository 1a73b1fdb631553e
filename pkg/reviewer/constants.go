// Package reviewer selects pull request reviewers from a configured candidate pool.
package reviewer

// Outcome describes which branch of the selection produced a result.
type Outcome int

// Selection outcomes.
const (
	OutcomeNone      Outcome = iota // No eligible candidates after filtering
	OutcomeAll                      // Fewer candidates than requested, all selected
	OutcomeFixedOnly                // Fixed reviewers alone meet the requested count
	OutcomeSampled                  // Fixed reviewers plus a random sample of regular ones
)

// String returns the outcome name used in logs and metric attributes.
func (o Outcome) String() string {
	switch o {
	case OutcomeNone:
		return "none"
	case OutcomeAll:
		return "all"
	case OutcomeFixedOnly:
		return "fixed-only"
	case OutcomeSampled:
		return "sampled"
	default:
		return "unknown"
	}
}
