// Package fixture serves an in-memory sheet backend over HTTP.
//
// It implements the same endpoints ladder's client consumes:
//
//	GET  /api/topics
//	GET  /api/topics/{id}
//	GET  /api/progress
//	GET  /api/progress/stats
//	POST /api/progress        {"problemId": "...", "completed": true}
//
// Topics and optional starting progress come from a YAML sheet file; a small
// default sheet is embedded. Progress lives only in memory and records get
// uuid ids on first write.
//
// FailNext makes the next n progress writes answer 500, which is how the
// client's rollback path is exercised end to end.
package fixture
