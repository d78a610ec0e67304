// Package ranking orders a loaded window of merged proposals.
//
// Every ordering is a chain of stable passes. A later pass is the primary key
// of the result because ties are resolved by the order the earlier passes
// left behind.
package ranking

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"

	"ProposalBoard/internal/domain"
)

// Options selects the ranking for a window.
type Options struct {
	SortBy  domain.SortKey
	Desc    bool
	Keyword string
	Voted   map[string]domain.VotedMarker
}

var statusPriority = map[domain.Status]int{
	domain.StatusRevoked:        0,
	domain.StatusCancelled:      1,
	domain.StatusDraft:          2,
	domain.StatusApproved:       3,
	domain.StatusImplementation: 4,
	domain.StatusFinished:       5,
	domain.StatusDiscussion:     6,
	domain.StatusVoting:         7,
}

// StatusPriority ranks a status for sorting; unlisted statuses rank -1.
func StatusPriority(s domain.Status) int {
	if v, ok := statusPriority[s]; ok {
		return v
	}
	return -1
}

// ApprovalTotal sums all scores of the tally, 0 without one.
func ApprovalTotal(p domain.MergedProposal) decimal.Decimal {
	total := decimal.Zero
	if p.VoteResults == nil {
		return total
	}
	for _, score := range p.VoteResults.Scores {
		total = total.Add(decimal.NewFromFloat(score))
	}
	return total
}

// VotedWeight is 2 when the voter has a marker, 1 when the vote exists but the
// voter has not voted, and 0 when there is no vote at all.
func VotedWeight(p domain.MergedProposal, voted map[string]domain.VotedMarker) int {
	if p.VoteResults == nil {
		return 0
	}
	if _, ok := voted[p.VoteKey()]; ok {
		return 2
	}
	return 1
}

// Known reports whether key selects an explicit comparator.
func Known(key domain.SortKey) bool {
	switch key {
	case domain.SortStatus, domain.SortTitle, domain.SortApproval, domain.SortParticipants, domain.SortVoted:
		return true
	}
	return false
}

// Apply returns a ranked copy of items; the input is left untouched.
//
// Without a sort key the default chain runs (participants, status, cycle),
// unless a keyword is set, in which case the source's relevance order is
// kept. An explicit key runs one pass; when Desc is false the result is
// reversed afterwards, so items that tied end up in inverted relative order.
// An unrecognised key leaves the order as loaded.
func Apply(items []domain.MergedProposal, opts Options) []domain.MergedProposal {
	out := slices.Clone(items)

	if opts.SortBy == domain.SortDefault {
		if opts.Keyword != "" {
			return out
		}
		stable(out, byParticipants)
		stable(out, byStatus)
		stable(out, byCycle)
		return out
	}

	if !Known(opts.SortBy) {
		return out
	}

	switch opts.SortBy {
	case domain.SortStatus:
		stable(out, byStatus)
	case domain.SortApproval:
		stable(out, func(a, b domain.MergedProposal) int {
			return ApprovalTotal(b).Cmp(ApprovalTotal(a))
		})
	case domain.SortParticipants:
		stable(out, byParticipants)
	case domain.SortVoted:
		stable(out, func(a, b domain.MergedProposal) int {
			return cmp.Compare(VotedWeight(b, opts.Voted), VotedWeight(a, opts.Voted))
		})
	case domain.SortTitle:
		stable(out, func(a, b domain.MergedProposal) int {
			return cmp.Compare(a.Title, b.Title)
		})
	}

	if !opts.Desc {
		slices.Reverse(out)
	}
	return out
}

func stable(items []domain.MergedProposal, fn func(a, b domain.MergedProposal) int) {
	slices.SortStableFunc(items, fn)
}

func byParticipants(a, b domain.MergedProposal) int {
	return cmp.Compare(b.Participants(), a.Participants())
}

func byStatus(a, b domain.MergedProposal) int {
	return cmp.Compare(StatusPriority(b.Status), StatusPriority(a.Status))
}

func byCycle(a, b domain.MergedProposal) int {
	return cmp.Compare(b.Cycle(), a.Cycle())
}
