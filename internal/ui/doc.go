// Package ui provides the Bubble Tea terminal interface for ladder.
//
// # Layout
//
//	┌ header: solved x/y, difficulty breakdown, refresh time, status ┐
//	┌ command bar: context-sensitive key hints, theme               ┐
//	┌─ Topics ─────┐┌─ Problems of the selected topic ──────────────┐
//	│ title   3/10 ││ ✓ Two Sum            Easy    array, hash      │
//	│ ████░░░  30% ││ · 3Sum               Medium  array            │
//	│ ...          │└───────────────────────────────────────────────┘
//	│              │┌─ Details ─────────────────────────────────────┐
//	│              ││ description, tags, links, record id           │
//	└──────────────┘└───────────────────────────────────────────────┘
//
// The l key swaps the sheet for a tail of ladder's own log file.
//
// # Data Flow
//
// The model never fetches from the backend itself. It reads three things:
//
//   - state.Store snapshots (topics, resolved global figures, last error),
//     polled on a short tick
//   - the reconcile controller's progress store, read on every render so an
//     optimistic toggle shows immediately
//   - the controller's pending set, which drives the saving spinner
//
// A toggle runs Controller.Toggle inside a tea.Cmd. The controller flips the
// store before calling the server, so the row changes on the next frame; the
// command's result message only updates the status line. A failed toggle has
// already been rolled back by the time its message arrives.
//
// The r key asks the session's refresher for a reload; results arrive through
// the next snapshot.
//
// # Preferences
//
// The theme (cycled with T) and the selected topic are written to the prefs
// file on theme change and on quit, and the topic is reselected on the next
// start.
package ui
