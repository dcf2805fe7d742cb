// Package sheet provides the types and HTTP client for the problem sheet API.
//
// # Overview
//
// The sheet backend owns topics, problems and the signed-in user's progress
// records. This package mirrors its JSON schema and exposes the operations the
// tracker consumes through the Backend interface:
//
//   - GET  /api/topics: every topic with its ordered problem list
//   - GET  /api/topics/{id}: a single topic
//   - GET  /api/progress: the current user's progress records
//   - GET  /api/progress/stats: precomputed completion figures (best effort)
//   - POST /api/progress: set the completed flag for one problem
//
// # Client Usage
//
//	client, err := sheet.NewClient("127.0.0.1:8740", sheet.WithTimeout(5*time.Second))
//	if err != nil {
//		return err
//	}
//	topics, err := client.FetchAllTopics(ctx)
//
// # Error Handling
//
// Every failure is classified into one of three sentinels so callers can branch
// with errors.Is:
//
//   - ErrNetwork: the request never produced a response (refused, timeout, DNS)
//   - ErrServer: the backend answered with a non-success status
//   - ErrNotFound: the backend answered 404 for the requested entity
//
// Non-success responses are returned as *StatusError, which matches ErrServer
// and, for 404, ErrNotFound as well.
package sheet
