package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newToggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle PROBLEM_ID",
		Short: "Flip the completion of a problem",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer session.Close()

			problemID := args[0]
			completed, err := session.Controller.Toggle(cmd.Context(), problemID)
			if err != nil {
				return fmt.Errorf("toggle %s: %w", problemID, err)
			}

			state := "incomplete"
			if completed {
				state = "complete"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s marked %s\n", problemID, state)
			return nil
		},
	}
}
