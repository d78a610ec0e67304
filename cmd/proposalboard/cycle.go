package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cycleSpace string

var cycleCmd = &cobra.Command{
	Use:   "cycle",
	Short: "Show the current governance cycle and the time left in its event",
	RunE: func(cmd *cobra.Command, args []string) error {
		application := newApplication()

		info, cd, err := application.Cycle(cmd.Context(), cycleSpace)
		if err != nil {
			return err
		}

		name := info.Name
		if name == "" {
			name = cycleSpace
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s  GC-%d  %s  %s\n", name, cd.Cycle, cd.Event, cd.Label)
		return nil
	},
}

func init() {
	cycleCmd.Flags().StringVarP(&cycleSpace, "space", "s", "", "governance space (defaults to config)")
}
