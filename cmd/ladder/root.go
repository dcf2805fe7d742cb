package main

import (
	"github.com/spf13/cobra"

	"github.com/five82/ladder/internal/app"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ladder",
		Short: "Track progress through a DSA problem sheet",
		Long: "ladder shows the topics and problems of a DSA sheet, lets you mark problems\n" +
			"complete and keeps per-topic and overall completion figures.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(cmd.Context(), appOptions(cmd))
		},
	}

	flags := cmd.PersistentFlags()
	flags.String("config", "", "override config path (default ~/.config/ladder/config.toml)")
	flags.String("prefs", "", "override prefs path (default ~/.config/ladder/prefs.toml)")
	flags.String("api-url", "", "sheet API address, overrides api_url from config")

	cmd.AddCommand(newStatsCmd())
	cmd.AddCommand(newToggleCmd())
	cmd.AddCommand(newFixtureCmd())
	return cmd
}

// appOptions collects the persistent flags.
func appOptions(cmd *cobra.Command) app.Options {
	configPath, _ := cmd.Flags().GetString("config")
	prefsPath, _ := cmd.Flags().GetString("prefs")
	apiURL, _ := cmd.Flags().GetString("api-url")
	return app.Options{ConfigPath: configPath, PrefsPath: prefsPath, APIURL: apiURL}
}

// openSession loads config, builds a client and session and runs one refresh.
// Callers must Close the session.
func openSession(cmd *cobra.Command) (*app.Session, error) {
	env, err := app.LoadEnvironment(appOptions(cmd), true)
	if err != nil {
		return nil, err
	}
	client, err := app.NewClient(env.Config)
	if err != nil {
		return nil, err
	}
	session, err := app.NewSession(client, env.Config, env.Log)
	if err != nil {
		return nil, err
	}
	if err := session.Refresher.Refresh(cmd.Context()); err != nil {
		session.Close()
		return nil, err
	}
	return session, nil
}
