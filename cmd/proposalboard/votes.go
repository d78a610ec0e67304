package main

import (
	"github.com/spf13/cobra"
)

var votesArgs votesArguments

var votesCmd = &cobra.Command{
	Use:   "votes <proposal>",
	Short: "Page through the votes cast on a proposal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		q, err := votesArgs.query(args[0])
		if err != nil {
			return err
		}

		list, err := newApplication().Votes(cmd.Context(), q)
		if err != nil {
			return err
		}
		return renderVotes(cmd.OutOrStdout(), list, q.Skip)
	},
}

func init() {
	votesFlags(votesCmd, &votesArgs)
}
