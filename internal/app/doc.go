// Package app provides the orchestration layer for ladder.
//
// # Overview
//
// This package wires configuration, logging, the sheet client, the progress
// store, the reconcile controller and the UI together. It is the composition
// root: everything below it receives its dependencies explicitly.
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │ Initialize everything
//	└──────┬───────┘
//	       │
//	       ├─────> LoadEnvironment()   config.Load + logging.New
//	       ├─────> sheet.NewClient()   HTTP client for the sheet API
//	       ├─────> NewSession()        progress.Store + reconcile.Controller
//	       │                           + state.Store + Refresher
//	       ├─────> Refresh()           initial load (failure = empty view)
//	       ├─────> Refresher.Start()   trigger-driven reloads
//	       └─────> ui.Run()            Start TUI (blocks)
//
//	Refresh:
//	┌─────────────────────────────────────────┐
//	│ controller.Generation()                 │
//	│ errgroup                                │
//	│  ├─> FetchAllTopics()                   │
//	│  ├─> FetchProgress()                    │
//	│  └─> FetchProgressStats() (best effort) │
//	│ controller.ReloadSince() reload store   │
//	│ state.Update()       publish snapshot   │
//	└─────────────────────────────────────────┘
//
// # Refresh Triggers
//
// The refresher has no timer of its own. It reloads when:
//
//   - the app starts
//   - the user presses r in the TUI
//   - the controller confirms a toggle (observer subscription)
//   - refresh_interval elapses, when configured to a positive duration
//
// Triggers that arrive while a refresh is queued collapse into one.
//
// # Error Handling
//
// Fatal errors (returned from Run): unreadable or invalid configuration and
// an unparseable api_url. Everything else degrades: fetch failures keep the
// previous snapshot and are shown in the header; logging problems fall back
// to a no-op logger.
package app
