// Package config loads ladder's TOML configuration.
//
// # Configuration Discovery
//
// Load reads the explicit path when one is given, otherwise
// ~/.config/ladder/config.toml. A missing file is not an error: every field
// has a default, and empty or whitespace-only values fall back to it.
//
// # TOML Format
//
//	api_url          = "127.0.0.1:8740"   # host:port or full URL of the sheet API
//	request_timeout  = "5s"               # per-request and per-toggle timeout
//	refresh_interval = "0s"               # 0 disables timed refresh
//	log_path         = "~/.local/state/ladder/ladder.log"
//	log_level        = "info"             # debug, info, warn, error
//	environment      = "development"      # development or production logging
//
// Durations use time.ParseDuration syntax. Tilde expansion is applied to
// log_path and to the config path itself.
//
// # Error Handling
//
// Load returns errors for path expansion failures, unreadable files, invalid
// TOML and invalid durations. Errors from parsing mention "parse config".
package config
