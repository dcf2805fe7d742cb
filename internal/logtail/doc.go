// Package logtail reads the end of ladder's own log file for the in-app log
// view.
//
// # Reading
//
// Read returns the last maxLines lines of a file in a single pass, holding at
// most maxLines lines in a ring buffer regardless of file size. A missing file
// is not an error: the log view simply shows nothing until the first entry is
// written.
//
// # Parsing
//
// The logging package writes zap output in one of two shapes depending on the
// configured environment:
//
//	development (console encoder, tab separated):
//	2026-10-19T14:32:15.123+0200	INFO	reconcile	reconcile/controller.go:210	toggle confirmed	{"problem_id": "a1"}
//
//	production (JSON encoder):
//	{"level":"info","timestamp":"2026-10-19T14:32:15.123+0200","logger":"reconcile","msg":"toggle confirmed","problem_id":"a1"}
//
// Parse recognises both and returns an Entry with the time, upper-cased level,
// logger name, message and the remaining structured fields rendered as sorted
// key=value pairs. Lines matching neither shape (stack traces, stray stderr
// output) come back with only Message and Raw set.
//
// Parsing never fails; the UI decides how to style what it gets.
package logtail
