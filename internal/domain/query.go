package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// SortKey selects the ranking applied to a loaded window.
type SortKey string

const (
	SortDefault      SortKey = ""
	SortStatus       SortKey = "status"
	SortTitle        SortKey = "title"
	SortApproval     SortKey = "approval"
	SortParticipants SortKey = "participants"
	SortVoted        SortKey = "voted"
)

// Query is the complete description of a proposal list view. Space, Cycle,
// Keyword and Limit drive the remote fetch; SortBy, SortDesc and ShowDrafts
// only shape what has been loaded.
type Query struct {
	Space    string
	Cycle    *int
	Keyword  string
	Limit    int
	SortBy   SortKey
	SortDesc bool

	// ShowDrafts asks for the space's private draft proposals alongside the
	// list. Drafts are never shown for keyword searches.
	ShowDrafts bool
}

// Validate checks the fetch parameters.
func (q Query) Validate() error {
	if strings.TrimSpace(q.Space) == "" {
		return fmt.Errorf("%w: space is required", ErrInvalidQuery)
	}
	if q.Limit <= 0 {
		return fmt.Errorf("%w: limit must be positive, got %d", ErrInvalidQuery, q.Limit)
	}
	if q.Cycle != nil && *q.Cycle < 0 {
		return fmt.Errorf("%w: cycle must be non-negative, got %d", ErrInvalidQuery, *q.Cycle)
	}
	return nil
}

// Signature identifies the remote result set the query addresses. Two queries
// with the same signature may share accumulated pages; sort options are not
// part of it.
func (q Query) Signature() string {
	cycle := "-"
	if q.Cycle != nil {
		cycle = strconv.Itoa(*q.Cycle)
	}
	return strings.Join([]string{q.Space, cycle, q.Keyword, strconv.Itoa(q.Limit)}, "|")
}

// PageRequest is what the proposal source receives for a single page.
type PageRequest struct {
	Space   string
	Cycle   *int
	Keyword string
	Limit   int
	Page    int
}

// PageRequest builds the request for the 1-based page number.
func (q Query) PageRequest(page int) PageRequest {
	return PageRequest{
		Space:   q.Space,
		Cycle:   q.Cycle,
		Keyword: q.Keyword,
		Limit:   q.Limit,
		Page:    page,
	}
}

// RawPage is one unmodified response of the proposal source.
type RawPage struct {
	Number  int
	Items   []ProposalRecord
	HasMore bool

	// PrivateProposals holds the space's draft proposals.
	PrivateProposals []ProposalRecord
}

// VoteBatch is the batched vote source response.
type VoteBatch struct {
	Tallies map[string]VoteTally
	Voted   map[string]VotedMarker
}

// ProposalListPage is the ranked, merged view handed to the presentation layer.
type ProposalListPage struct {
	Items          []MergedProposal
	HasMore        bool
	Voted          map[string]VotedMarker
	Pages          []RawPage
	Empty          bool
	Degraded       bool
	DegradedReason string

	// PrivateProposals is set only when the query asks for drafts without a keyword.
	PrivateProposals []ProposalRecord
}

// ExpectedMinimum is the smallest item count that proves the last of size
// pages has arrived: every earlier page is full, the last holds at least one.
func ExpectedMinimum(size, limit int) int {
	if size <= 0 {
		return 0
	}
	return (size-1)*limit + 1
}
