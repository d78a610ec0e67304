package usecase

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"

	"ProposalBoard/internal/domain"
	"ProposalBoard/internal/ports"
)

// VoteBrowserDeps wires the vote adapters into the vote listing.
type VoteBrowserDeps struct {
	Tallies ports.VoteSource
	Votes   ports.VoteListSource
	Logger  *slog.Logger
}

// VoteBrowser pages through the votes cast on a single proposal.
type VoteBrowser struct {
	tallies ports.VoteSource
	votes   ports.VoteListSource
	logger  *slog.Logger
}

// NewVoteBrowser constructs the vote listing use case.
func NewVoteBrowser(deps VoteBrowserDeps) *VoteBrowser {
	return &VoteBrowser{tallies: deps.Tallies, votes: deps.Votes, logger: deps.Logger}
}

// List returns one page of votes. Without a field filter the platform pages
// and orders the votes. With one, every vote up to the platform cap is
// loaded, filtered, ordered descending and paged here, and Total counts the
// matching votes only.
func (b *VoteBrowser) List(ctx context.Context, q domain.VotesQuery) (domain.VoteList, error) {
	if err := q.Validate(); err != nil {
		return domain.VoteList{}, err
	}
	if b.tallies == nil || b.votes == nil {
		return domain.VoteList{}, fmt.Errorf("%w: no vote source configured", domain.ErrVoteSourceUnavailable)
	}

	key := domain.VoteKey(q.ProposalID)
	batch, err := b.tallies.FetchVotes(ctx, []string{key}, "")
	if err != nil {
		return domain.VoteList{}, fmt.Errorf("%w: %w", domain.ErrVoteSourceUnavailable, err)
	}
	tally, ok := batch.Tallies[key]
	if !ok {
		return domain.VoteList{}, fmt.Errorf("%w: proposal %s", domain.ErrVoteNotFound, key)
	}

	req := q.Request(tally.TotalVotes)
	b.debug("fetch proposal votes", "proposal", key, "first", req.First, "skip", req.Skip, "order", req.OrderBy)

	votes := []domain.VoteRecord{}
	if req.First > 0 {
		votes, err = b.votes.FetchProposalVotes(ctx, req)
		if err != nil {
			return domain.VoteList{}, fmt.Errorf("%w: %w", domain.ErrVoteSourceUnavailable, err)
		}
	}

	list := domain.VoteList{Votes: votes, Total: tally.TotalVotes, Tally: &tally}
	if !q.SortsAfterQuery() {
		return list, nil
	}

	matching := make([]domain.VoteRecord, 0, len(votes))
	for _, v := range votes {
		if v.Has(q.With) {
			matching = append(matching, v)
		}
	}
	slices.SortStableFunc(matching, func(a, b domain.VoteRecord) int {
		if q.Order() == domain.VoteOrderPower {
			return cmp.Compare(b.VotingPower, a.VotingPower)
		}
		return b.Created.Compare(a.Created)
	})

	list.Total = len(matching)
	start := min(q.Skip, len(matching))
	end := min(start+q.PageSize(), len(matching))
	list.Votes = matching[start:end]
	return list, nil
}

func (b *VoteBrowser) debug(msg string, args ...any) {
	if b.logger != nil {
		b.logger.Debug(msg, args...)
	}
}
