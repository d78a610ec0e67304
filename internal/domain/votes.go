package domain

import (
	"fmt"
	"time"
)

// VoteOrder selects how the votes of a single proposal are ordered.
type VoteOrder string

const (
	VoteOrderCreated VoteOrder = "created"
	VoteOrderPower   VoteOrder = "vp"
)

// VoteField restricts a vote listing to votes that carry the field.
type VoteField string

const (
	VoteFieldAny    VoteField = ""
	VoteFieldReason VoteField = "reason"
	VoteFieldApp    VoteField = "app"
)

const (
	// VotesPerPage is the default page size of a vote listing.
	VotesPerPage = 150
	// MaxVotesPerRequest is the voting platform's cap on a single query.
	MaxVotesPerRequest = 1000
)

// VotesQuery describes one page of the votes cast on a proposal.
type VotesQuery struct {
	ProposalID string
	OrderBy    VoteOrder
	With       VoteField
	Skip       int
	Limit      int
}

// Validate checks the listing parameters.
func (q VotesQuery) Validate() error {
	if VoteKey(q.ProposalID) == "" {
		return fmt.Errorf("%w: proposal id is required", ErrInvalidQuery)
	}
	switch q.OrderBy {
	case "", VoteOrderCreated, VoteOrderPower:
	default:
		return fmt.Errorf("%w: unknown vote order %q", ErrInvalidQuery, q.OrderBy)
	}
	switch q.With {
	case VoteFieldAny, VoteFieldReason, VoteFieldApp:
	default:
		return fmt.Errorf("%w: unknown vote filter %q", ErrInvalidQuery, q.With)
	}
	if q.Skip < 0 || q.Limit < 0 {
		return fmt.Errorf("%w: skip and limit must be non-negative", ErrInvalidQuery)
	}
	return nil
}

// Order returns the effective order, created when unset.
func (q VotesQuery) Order() VoteOrder {
	if q.OrderBy == "" {
		return VoteOrderCreated
	}
	return q.OrderBy
}

// PageSize returns the effective page size: VotesPerPage when unset, never
// more than MaxVotesPerRequest.
func (q VotesQuery) PageSize() int {
	if q.Limit == 0 {
		return VotesPerPage
	}
	return min(q.Limit, MaxVotesPerRequest)
}

// SortsAfterQuery reports whether the field filter forces loading every vote
// the platform allows and paging locally.
func (q VotesQuery) SortsAfterQuery() bool {
	return q.With != VoteFieldAny
}

// Request builds the source request for a proposal with totalVotes votes.
func (q VotesQuery) Request(totalVotes int) VotesRequest {
	req := VotesRequest{ProposalID: VoteKey(q.ProposalID), OrderBy: q.Order()}
	if q.SortsAfterQuery() {
		req.First = min(max(totalVotes, 0), MaxVotesPerRequest)
		return req
	}
	req.First = q.PageSize()
	req.Skip = q.Skip
	return req
}

// VotesRequest is what the vote source receives for a vote listing.
type VotesRequest struct {
	ProposalID string
	First      int
	Skip       int
	OrderBy    VoteOrder
}

// VoteRecord is a single vote cast on a proposal.
type VoteRecord struct {
	ID          string
	Voter       string
	Choice      string
	VotingPower float64
	Reason      string
	App         string
	Created     time.Time
}

// Has reports whether the vote carries field. Votes cast through the
// platform's own app do not count as having an app.
func (v VoteRecord) Has(field VoteField) bool {
	switch field {
	case VoteFieldReason:
		return v.Reason != ""
	case VoteFieldApp:
		return v.App != "" && v.App != "snapshot"
	default:
		return true
	}
}

// VoteList is one page of a proposal's votes. Total counts every vote that
// matches the filter, not just this page.
type VoteList struct {
	Votes []VoteRecord
	Total int
	Tally *VoteTally
}
