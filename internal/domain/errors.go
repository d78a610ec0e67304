package domain

import "errors"

var (
	// ErrInvalidQuery marks a query rejected before any remote call.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrSourceUnavailable is fatal to a page fetch.
	ErrSourceUnavailable = errors.New("proposal source unavailable")
	// ErrVoteSourceUnavailable degrades a page and fails a vote listing. FetchPage
	// never returns it.
	ErrVoteSourceUnavailable = errors.New("vote source unavailable")
	// ErrSpaceNotFound is returned by space lookups for unknown spaces.
	ErrSpaceNotFound = errors.New("space not found")
	// ErrVoteNotFound is returned when the voting platform has no vote for a proposal id.
	ErrVoteNotFound = errors.New("vote not found")
)
