package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/five82/ladder/internal/config"
	"github.com/five82/ladder/internal/logging"
	"github.com/five82/ladder/internal/prefs"
	"github.com/five82/ladder/internal/sheet"
	"github.com/five82/ladder/internal/ui"
)

const defaultUITick = time.Second

// Options configure the ladder application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/ladder/prefs.toml
	APIURL     string // overrides config api_url when set
}

// Environment is the loaded configuration plus the logger built from it.
type Environment struct {
	Config config.Config
	Log    *zap.Logger
}

// LoadEnvironment reads config and builds the logger. Interactive runs log to
// the configured file; pass toStderr for one-shot commands.
func LoadEnvironment(opts Options, toStderr bool) (Environment, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return Environment{}, fmt.Errorf("load config: %w", err)
	}
	if opts.APIURL != "" {
		cfg.APIURL = opts.APIURL
	}

	logOpts := logging.Options{Environment: cfg.Environment, Level: cfg.LogLevel, Path: cfg.LogPath}
	if toStderr {
		logOpts.Path = ""
		logOpts.Level = "warn"
	}
	return Environment{Config: cfg, Log: logging.NewOrNop(logOpts)}, nil
}

// NewClient builds the sheet HTTP client for cfg.
func NewClient(cfg config.Config) (*sheet.Client, error) {
	client, err := sheet.NewClient(cfg.APIURL, sheet.WithTimeout(cfg.RequestTimeout))
	if err != nil {
		return nil, fmt.Errorf("init sheet client: %w", err)
	}
	return client, nil
}

// Run boots the ladder TUI until the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	env, err := LoadEnvironment(opts, false)
	if err != nil {
		return err
	}
	defer func() { _ = env.Log.Sync() }()

	userPrefs := prefs.Load(opts.PrefsPath)

	client, err := NewClient(env.Config)
	if err != nil {
		return err
	}

	session, err := NewSession(client, env.Config, env.Log)
	if err != nil {
		return err
	}
	defer session.Close()

	env.Log.Info("ladder starting", zap.String("api_url", client.BaseURL()))

	// Populate the store before the UI starts; failures leave an empty view.
	_ = session.Refresher.Refresh(ctx)
	session.Refresher.Start(ctx)

	return ui.Run(ui.Options{
		Context: ctx,
		Session: ui.Session{
			Controller: session.Controller,
			State:      session.State,
			Refresh:    session.Refresher.Trigger,
		},
		APIURL:    client.BaseURL(),
		LogPath:   env.Config.LogPath,
		ThemeName: userPrefs.Theme,
		LastTopic: userPrefs.LastTopic,
		PrefsPath: opts.PrefsPath,
		PollTick:  defaultUITick,
	})
}
