package main

import (
	"github.com/spf13/cobra"
)

var listArgs listArguments

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the ranked proposal list of a space",
	RunE:  listRun,
}

func init() {
	listFlags(listCmd, &listArgs)
}

func listRun(cmd *cobra.Command, args []string) error {
	application := newApplication()

	q, err := listArgs.query(application.Query(listArgs.Space))
	if err != nil {
		return err
	}

	page, err := application.List(cmd.Context(), q, listArgs.Address, listArgs.Pages)
	if err != nil {
		return err
	}
	return renderPage(cmd.OutOrStdout(), page)
}
