package domain

import (
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Status is the lifecycle state reported by the proposal backend.
type Status string

const (
	StatusDraft            Status = "Draft"
	StatusDiscussion       Status = "Discussion"
	StatusTemperatureCheck Status = "Temperature Check"
	StatusVoting           Status = "Voting"
	StatusApproved         Status = "Approved"
	StatusCancelled        Status = "Cancelled"
	StatusRevoked          Status = "Revoked"
	StatusImplementation   Status = "Implementation"
	StatusFinished         Status = "Finished"
	StatusArchived         Status = "Archived"
	StatusUnknown          Status = "unknown"
)

var knownStatuses = map[Status]struct{}{
	StatusDraft:            {},
	StatusDiscussion:       {},
	StatusTemperatureCheck: {},
	StatusVoting:           {},
	StatusApproved:         {},
	StatusCancelled:        {},
	StatusRevoked:          {},
	StatusImplementation:   {},
	StatusFinished:         {},
	StatusArchived:         {},
}

// ParseStatus maps backend text onto the enumeration. Empty input is unknown;
// other unrecognised values are kept verbatim so they still render.
func ParseStatus(raw string) Status {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return StatusUnknown
	}
	return Status(raw)
}

// Known reports whether s belongs to the closed enumeration.
func (s Status) Known() bool {
	_, ok := knownStatuses[s]
	return ok
}

// ProposalRecord is a governance proposal as served by the proposal feed.
type ProposalRecord struct {
	ID                    string
	ProposalNumber        *int
	Title                 string
	Status                Status
	GovernanceCycle       *int
	AuthorAddress         string
	VoteReferenceID       string
	TemperatureCheckVotes *[2]int
}

// VoteKey returns the identifier used to correlate the record with the vote
// source, or "" when the proposal never went to a vote.
func (p ProposalRecord) VoteKey() string {
	return VoteKey(p.VoteReferenceID)
}

// Cycle returns the governance cycle, treating a missing value as 0.
func (p ProposalRecord) Cycle() int {
	if p.GovernanceCycle == nil {
		return 0
	}
	return *p.GovernanceCycle
}

// VoteKey reduces a vote reference (bare id or vote URL) to its last path segment.
func VoteKey(ref string) string {
	ref = strings.TrimSpace(ref)
	ref = strings.TrimRight(ref, "/")
	if ref == "" {
		return ""
	}
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		return ref[i+1:]
	}
	return ref
}

// VoteTally is the current result of a vote on the voting platform.
type VoteTally struct {
	Choices     []string
	Scores      []float64
	TotalVotes  int
	Type        string
	State       string
	ScoresTotal float64
	Start       time.Time
	End         time.Time
}

// WindowPhase describes where "now" sits relative to a vote's window.
type WindowPhase string

const (
	WindowPending WindowPhase = "pending"
	WindowActive  WindowPhase = "active"
	WindowClosed  WindowPhase = "closed"
)

// VotingWindow is the start/end indicator shown next to a tally.
type VotingWindow struct {
	Phase WindowPhase
	Label string
}

// Window reports the voting phase at now. Pending and active phases carry a
// relative label ("2 days from now"); closed tallies carry none.
func (t VoteTally) Window(now time.Time) VotingWindow {
	switch {
	case !t.Start.IsZero() && now.Before(t.Start):
		return VotingWindow{Phase: WindowPending, Label: humanize.RelTime(now, t.Start, "from now", "ago")}
	case !t.End.IsZero() && !now.After(t.End):
		return VotingWindow{Phase: WindowActive, Label: humanize.RelTime(now, t.End, "from now", "ago")}
	default:
		return VotingWindow{Phase: WindowClosed}
	}
}

// MergedProposal is a record enriched with the vote tally, when one matched.
type MergedProposal struct {
	ProposalRecord
	VoteResults *VoteTally
}

// Participants returns the tally's vote count, 0 when no tally matched.
func (m MergedProposal) Participants() int {
	if m.VoteResults == nil {
		return 0
	}
	return m.VoteResults.TotalVotes
}

// VotedMarker records that Voter already voted on ProposalID.
type VotedMarker struct {
	ProposalID string
	Voter      string
	Choice     string
	CastAt     time.Time
}
