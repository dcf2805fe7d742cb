// Package state shares the latest sheet snapshot between the refresher and
// the UI.
//
// The refresher is the single writer: after each refresh it calls Update with
// the topics and resolved global figures, or with the error that stopped the
// refresh. The UI reads copies through Snapshot on its own schedule.
//
// # Update Semantics
//
//	store.Update(u, nil)  // replace topics and figures, clear LastError
//	store.Update(u, err)  // keep previous data, record err, count the failure
//
// A failed first refresh therefore leaves an empty, zero-valued view with
// LastError set, which keeps the screen usable while the backend is away.
//
// Per-problem completion is not part of the snapshot; it lives in the
// progress store, which the reconcile controller mutates between refreshes.
package state
