package ports

import (
	"context"
	"time"

	"ProposalBoard/internal/domain"
)

// ProposalSource serves the paginated proposal feed of a space.
type ProposalSource interface {
	FetchProposals(ctx context.Context, req domain.PageRequest) (domain.RawPage, error)
}

// VoteSource resolves tallies for a batch of vote keys and, when voter is
// non-empty, the voter's markers on the same batch.
type VoteSource interface {
	FetchVotes(ctx context.Context, ids []string, voter string) (domain.VoteBatch, error)
}

// VoteListSource lists the individual votes cast on one proposal.
type VoteListSource interface {
	FetchProposalVotes(ctx context.Context, req domain.VotesRequest) ([]domain.VoteRecord, error)
}

// SpaceSource looks up space metadata such as the current governance cycle.
type SpaceSource interface {
	SpaceInfo(ctx context.Context, space string) (domain.SpaceInfo, error)
}

// Scheduler controls when recurring jobs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
