package main

import (
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the proposal list and cycle countdown as a JSON API",
	RunE: func(cmd *cobra.Command, args []string) error {
		application := newApplication()
		return application.Serve(cmd.Context())
	},
}
