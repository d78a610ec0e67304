package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVoteKey(t *testing.T) {
	t.Parallel()

	cases := []struct{ in, want string }{
		{"", ""},
		{"0xabc", "0xabc"},
		{"  0xabc  ", "0xabc"},
		{"https://snapshot.org/#/jbdao.eth/proposal/0xdef", "0xdef"},
		{"https://snapshot.org/#/jbdao.eth/proposal/0xdef/", "0xdef"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, VoteKey(tc.in), "input %q", tc.in)
	}
}

func TestParseStatus(t *testing.T) {
	t.Parallel()

	assert.Equal(t, StatusUnknown, ParseStatus("  "))
	assert.Equal(t, StatusVoting, ParseStatus("Voting"))
	assert.True(t, ParseStatus("Temperature Check").Known())
	assert.False(t, ParseStatus("Paused").Known())
	assert.Equal(t, Status("Paused"), ParseStatus("Paused"))
}

func TestNormalizeAddress(t *testing.T) {
	t.Parallel()

	got, ok := NormalizeAddress("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed")
	require.True(t, ok)
	assert.Equal(t, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", got)

	for _, bad := range []string{"", "0x123", "vitalik.eth"} {
		_, ok := NormalizeAddress(bad)
		assert.False(t, ok, bad)
	}
}

func TestQueryValidateAndSignature(t *testing.T) {
	t.Parallel()

	cycle := 7
	q := Query{Space: "juicebox", Cycle: &cycle, Keyword: "treasury", Limit: 15, SortBy: SortTitle}
	require.NoError(t, q.Validate())

	resorted := q
	resorted.SortBy, resorted.SortDesc = SortStatus, true
	assert.Equal(t, q.Signature(), resorted.Signature())

	other := q
	other.Keyword = "payout"
	assert.NotEqual(t, q.Signature(), other.Signature())

	assert.ErrorIs(t, Query{Limit: 1}.Validate(), ErrInvalidQuery)
	assert.Equal(t, PageRequest{Space: "juicebox", Cycle: &cycle, Keyword: "treasury", Limit: 15, Page: 3}, q.PageRequest(3))
}

func TestExpectedMinimum(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, ExpectedMinimum(0, 15))
	assert.Equal(t, 1, ExpectedMinimum(1, 15))
	assert.Equal(t, 6, ExpectedMinimum(2, 5))
}

func TestSpaceCountdown(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, time.May, 10, 0, 0, 0, 0, time.UTC)

	open := SpaceInfo{CurrentCycle: 70, CurrentEvent: CycleEvent{Title: "Voting", End: now.Add(5 * time.Hour)}}
	cd := open.Countdown(now)
	assert.Equal(t, 5*time.Hour, cd.Remaining)
	assert.Equal(t, "5 hours remaining", cd.Label)
	assert.Equal(t, "Voting", cd.Event)

	late := SpaceInfo{CurrentEvent: CycleEvent{End: now.Add(-48 * time.Hour)}}
	cd = late.Countdown(now)
	assert.Zero(t, cd.Remaining)
	assert.Equal(t, "2 days overdue", cd.Label)
	assert.Equal(t, "Unknown", cd.Event)

	cd = SpaceInfo{}.Countdown(now)
	assert.Equal(t, "-", cd.Label)
}

func TestVoteTallyWindow(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, time.May, 10, 0, 0, 0, 0, time.UTC)
	tally := VoteTally{Start: now.Add(time.Hour * 3), End: now.Add(time.Hour * 72)}

	w := tally.Window(now)
	assert.Equal(t, WindowPending, w.Phase)
	assert.Equal(t, "3 hours from now", w.Label)

	w = tally.Window(now.Add(24 * time.Hour))
	assert.Equal(t, WindowActive, w.Phase)
	assert.Equal(t, "2 days from now", w.Label)

	w = tally.Window(now.Add(100 * time.Hour))
	assert.Equal(t, WindowClosed, w.Phase)
	assert.Empty(t, w.Label)
}

func TestMergedProposalAccessors(t *testing.T) {
	t.Parallel()

	m := MergedProposal{}
	assert.Equal(t, 0, m.Participants())
	assert.Equal(t, 0, m.Cycle())

	c := 4
	m = MergedProposal{ProposalRecord: ProposalRecord{GovernanceCycle: &c}, VoteResults: &VoteTally{TotalVotes: 9}}
	assert.Equal(t, 9, m.Participants())
	assert.Equal(t, 4, m.Cycle())
}

func TestVotesQueryRequest(t *testing.T) {
	t.Parallel()

	q := VotesQuery{ProposalID: "https://snapshot.org/#/jbdao.eth/proposal/0xp", Skip: 300}
	assert.Equal(t, VotesRequest{ProposalID: "0xp", First: VotesPerPage, Skip: 300, OrderBy: VoteOrderCreated}, q.Request(5000))

	q.Limit = 4000
	assert.Equal(t, MaxVotesPerRequest, q.Request(5000).First)

	q.With = VoteFieldApp
	assert.Equal(t, VotesRequest{ProposalID: "0xp", First: 420, OrderBy: VoteOrderCreated}, q.Request(420))
	assert.Equal(t, MaxVotesPerRequest, q.Request(5000).First)
	assert.Zero(t, q.Request(-1).First)
}

func TestVoteRecordHas(t *testing.T) {
	t.Parallel()

	assert.True(t, VoteRecord{}.Has(VoteFieldAny))
	assert.False(t, VoteRecord{}.Has(VoteFieldReason))
	assert.True(t, VoteRecord{Reason: "why"}.Has(VoteFieldReason))
	assert.False(t, VoteRecord{App: "snapshot"}.Has(VoteFieldApp))
	assert.True(t, VoteRecord{App: "boardroom"}.Has(VoteFieldApp))
}
