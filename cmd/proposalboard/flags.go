package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ProposalBoard/internal/domain"
	"ProposalBoard/internal/ranking"
)

type listArguments struct {
	Space    string
	Cycle    int
	Keyword  string
	Limit    int
	Pages    int
	SortBy   string
	SortDesc bool
	Drafts   bool
	Address  string
}

func listFlags(cmd *cobra.Command, args *listArguments) {
	cmd.Flags().StringVarP(&args.Space, "space", "s", "", "governance space (defaults to config)")
	cmd.Flags().IntVarP(&args.Cycle, "cycle", "c", -1, "governance cycle filter, -1 for all")
	cmd.Flags().StringVarP(&args.Keyword, "keyword", "k", "", "search keyword")
	cmd.Flags().IntVarP(&args.Limit, "limit", "l", 0, "page size (defaults to config)")
	cmd.Flags().IntVarP(&args.Pages, "pages", "p", 1, "number of pages to load")
	cmd.Flags().StringVarP(&args.SortBy, "sort", "", "", "status | title | approval | participants | voted")
	cmd.Flags().BoolVarP(&args.SortDesc, "desc", "", true, "descending order for --sort; --desc=false reverses it")
	cmd.Flags().BoolVarP(&args.Drafts, "drafts", "", false, "include private drafts when no keyword is set")
	cmd.Flags().StringVarP(&args.Address, "address", "a", "", "voter address for voted markers")
}

// query overlays the flags on the configured defaults.
func (a listArguments) query(base domain.Query) (domain.Query, error) {
	q := base
	if a.Limit != 0 {
		q.Limit = a.Limit
	}
	if a.Cycle >= 0 {
		cycle := a.Cycle
		q.Cycle = &cycle
	}
	q.Keyword = a.Keyword
	q.SortBy = domain.SortKey(a.SortBy)
	q.SortDesc = a.SortDesc
	q.ShowDrafts = a.Drafts
	if q.SortBy != domain.SortDefault && !ranking.Known(q.SortBy) {
		return domain.Query{}, fmt.Errorf("%w: unknown sort %q", domain.ErrInvalidQuery, a.SortBy)
	}
	return q, q.Validate()
}

type votesArguments struct {
	OrderBy string
	With    string
	Skip    int
	Limit   int
}

func votesFlags(cmd *cobra.Command, args *votesArguments) {
	cmd.Flags().StringVarP(&args.OrderBy, "order", "o", "created", "created | vp")
	cmd.Flags().StringVarP(&args.With, "with", "w", "", "only votes carrying a reason or an app: reason | app")
	cmd.Flags().IntVarP(&args.Skip, "skip", "", 0, "votes to skip")
	cmd.Flags().IntVarP(&args.Limit, "limit", "l", 0, "page size, at most 1000 (defaults to 150)")
}

func (a votesArguments) query(proposal string) (domain.VotesQuery, error) {
	q := domain.VotesQuery{
		ProposalID: proposal,
		OrderBy:    domain.VoteOrder(a.OrderBy),
		With:       domain.VoteField(a.With),
		Skip:       a.Skip,
		Limit:      a.Limit,
	}
	return q, q.Validate()
}
