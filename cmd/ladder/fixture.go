package main

import (
	"github.com/spf13/cobra"

	"github.com/five82/ladder/internal/app"
	"github.com/five82/ladder/internal/fixture"
	"github.com/five82/ladder/internal/logging"
)

func newFixtureCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fixture",
		Short: "Serve an in-memory sheet backend for development",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := app.LoadEnvironment(appOptions(cmd), true)
			if err != nil {
				return err
			}
			log := logging.NewOrNop(logging.Options{
				Environment: env.Config.Environment,
				Level:       env.Config.LogLevel,
			})
			defer func() { _ = log.Sync() }()

			dataPath, _ := cmd.Flags().GetString("data")
			seed, err := fixture.LoadSeed(dataPath)
			if err != nil {
				return err
			}

			addr, _ := cmd.Flags().GetString("addr")
			srv := fixture.NewServer(seed, log.Named("fixture"))
			return srv.ListenAndServe(cmd.Context(), addr)
		},
	}
	cmd.Flags().String("addr", "127.0.0.1:8740", "listen address")
	cmd.Flags().String("data", "", "YAML sheet file (default: built-in sample sheet)")
	return cmd
}
