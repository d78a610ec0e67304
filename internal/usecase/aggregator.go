package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"ProposalBoard/internal/domain"
	"ProposalBoard/internal/ports"
	"ProposalBoard/internal/ranking"
)

// AggregatorDeps wires the driven adapters into the aggregation engine.
type AggregatorDeps struct {
	Proposals ports.ProposalSource
	Votes     ports.VoteSource
	Logger    *slog.Logger
}

// Aggregator merges the proposal feed with vote tallies and ranks the result.
// It keeps no state between calls.
type Aggregator struct {
	proposals ports.ProposalSource
	votes     ports.VoteSource
	logger    *slog.Logger
}

// NewAggregator constructs the aggregation engine.
func NewAggregator(deps AggregatorDeps) *Aggregator {
	return &Aggregator{
		proposals: deps.Proposals,
		votes:     deps.Votes,
		logger:    deps.Logger,
	}
}

// FetchPage loads the page after accumulated, then merges and ranks every
// loaded proposal. accumulated is not modified; the returned page carries the
// extended sequence in Pages for the next call.
func (a *Aggregator) FetchPage(ctx context.Context, q domain.Query, address string, accumulated []domain.RawPage) (domain.ProposalListPage, error) {
	raw, err := a.FetchRaw(ctx, q, len(accumulated)+1)
	if err != nil {
		return domain.ProposalListPage{}, err
	}

	pages := make([]domain.RawPage, 0, len(accumulated)+1)
	pages = append(pages, accumulated...)
	pages = append(pages, raw)

	return a.Assemble(ctx, q, address, pages), nil
}

// FetchPages replays FetchPage until size pages are loaded or the source
// reports no more.
func (a *Aggregator) FetchPages(ctx context.Context, q domain.Query, address string, size int) (domain.ProposalListPage, error) {
	if size < 1 {
		size = 1
	}

	var (
		page domain.ProposalListPage
		err  error
	)
	for i := 0; i < size; i++ {
		page, err = a.FetchPage(ctx, q, address, page.Pages)
		if err != nil {
			return domain.ProposalListPage{}, err
		}
		if !page.HasMore {
			break
		}
	}
	return page, nil
}

// FetchRaw fetches a single 1-based page from the proposal source. Every
// failure is reported as domain.ErrSourceUnavailable.
func (a *Aggregator) FetchRaw(ctx context.Context, q domain.Query, page int) (domain.RawPage, error) {
	if err := q.Validate(); err != nil {
		return domain.RawPage{}, err
	}
	if a.proposals == nil {
		return domain.RawPage{}, fmt.Errorf("%w: no proposal source configured", domain.ErrSourceUnavailable)
	}

	a.debug("fetch proposals", "space", q.Space, "page", page, "limit", q.Limit, "keyword", q.Keyword)
	raw, err := a.proposals.FetchProposals(ctx, q.PageRequest(page))
	if err != nil {
		return domain.RawPage{}, fmt.Errorf("%w: page %d: %w", domain.ErrSourceUnavailable, page, err)
	}
	raw.Number = page
	a.debug("proposals fetched", "space", q.Space, "page", page, "count", len(raw.Items), "has_more", raw.HasMore)
	return raw, nil
}

// Assemble runs the vote stage over already fetched pages and ranks the
// merged window. A vote source failure degrades the page instead of failing it.
func (a *Aggregator) Assemble(ctx context.Context, q domain.Query, address string, pages []domain.RawPage) domain.ProposalListPage {
	proposals := Concat(pages)

	result := domain.ProposalListPage{
		Pages: pages,
		Voted: map[string]domain.VotedMarker{},
	}
	if len(pages) > 0 {
		result.HasMore = pages[len(pages)-1].HasMore
	}
	if q.ShowDrafts && q.Keyword == "" {
		result.PrivateProposals = PrivateProposals(pages)
	}

	if len(proposals) == 0 {
		result.Empty = true
		result.Items = []domain.MergedProposal{}
		return result
	}

	batch, err := a.fetchVotes(ctx, CandidateIDs(proposals), address)
	if err != nil {
		a.warn("vote source degraded", "space", q.Space, "error", err)
		result.Degraded = true
		result.DegradedReason = err.Error()
		batch = domain.VoteBatch{}
	}
	if batch.Voted != nil {
		result.Voted = batch.Voted
	}

	merged := Merge(proposals, batch.Tallies)
	result.Items = ranking.Apply(merged, ranking.Options{
		SortBy:  q.SortBy,
		Desc:    q.SortDesc,
		Keyword: q.Keyword,
		Voted:   result.Voted,
	})
	return result
}

func (a *Aggregator) fetchVotes(ctx context.Context, ids []string, address string) (domain.VoteBatch, error) {
	if len(ids) == 0 {
		return domain.VoteBatch{}, nil
	}
	if a.votes == nil {
		return domain.VoteBatch{}, fmt.Errorf("%w: no vote source configured", domain.ErrVoteSourceUnavailable)
	}

	voter, ok := domain.NormalizeAddress(address)
	if !ok && address != "" {
		a.debug("ignoring malformed voter address", "address", address)
	}

	batch, err := a.votes.FetchVotes(ctx, ids, voter)
	if err != nil {
		return domain.VoteBatch{}, fmt.Errorf("%w: %w", domain.ErrVoteSourceUnavailable, err)
	}
	if voter == "" {
		batch.Voted = nil
	}
	return batch, nil
}

func (a *Aggregator) debug(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Debug(msg, args...)
	}
}

func (a *Aggregator) warn(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Warn(msg, args...)
	}
}
