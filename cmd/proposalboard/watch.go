package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"ProposalBoard/internal/domain"
	"ProposalBoard/internal/usecase"
)

var watchArgs listArguments

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-print the ranked proposal list on the configured interval",
	RunE:  watchRun,
}

func init() {
	listFlags(watchCmd, &watchArgs)
}

func watchRun(cmd *cobra.Command, args []string) error {
	application := newApplication()

	q, err := watchArgs.query(application.Query(watchArgs.Space))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	target := usecase.WatchTarget{Query: q, Address: watchArgs.Address, Size: watchArgs.Pages}
	return application.Watch(cmd.Context(), target, func(at time.Time, page domain.ProposalListPage) {
		fmt.Fprintf(out, "--- %s\n", at.Format(time.RFC3339))
		if err := renderPage(out, page); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), err)
		}
	})
}
