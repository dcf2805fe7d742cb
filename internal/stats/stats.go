// Package stats derives completion figures from topics and progress.
//
// Nothing here mutates its inputs. Completion is supplied as a lookup func so
// callers can pass progress.Store.IsCompleted or any snapshot of it.
package stats

import "github.com/five82/ladder/internal/sheet"

// Completion reports whether a problem is complete.
type Completion func(problemID string) bool

// Stats summarises completion over a set of problems.
type Stats struct {
	Total      int
	Completed  int
	Percentage int
}

// Remaining returns the number of incomplete problems.
func (s Stats) Remaining() int {
	if s.Total <= s.Completed {
		return 0
	}
	return s.Total - s.Completed
}

// Add sums two figures and recomputes the percentage.
func (s Stats) Add(other Stats) Stats {
	return newStats(s.Total+other.Total, s.Completed+other.Completed)
}

// Percent rounds completed/total*100 half-up, returning 0 when total is 0.
func Percent(completed, total int) int {
	if total <= 0 {
		return 0
	}
	// Integer form of floor(x + 0.5) for non-negative x.
	return (completed*200 + total) / (total * 2)
}

func newStats(total, completed int) Stats {
	return Stats{Total: total, Completed: completed, Percentage: Percent(completed, total)}
}

// TopicStats counts the topic's problems and how many are complete.
func TopicStats(topic sheet.Topic, done Completion) Stats {
	completed := 0
	for _, p := range topic.Problems {
		if done != nil && done(p.ID) {
			completed++
		}
	}
	return newStats(len(topic.Problems), completed)
}

// GlobalStats sums TopicStats across topics.
func GlobalStats(topics []sheet.Topic, done Completion) Stats {
	var total Stats
	for _, topic := range topics {
		total = total.Add(TopicStats(topic, done))
	}
	return total
}

// FromSheet converts the backend's precomputed figures.
func FromSheet(s sheet.Stats) Stats {
	return Stats{Total: s.Total, Completed: s.Completed, Percentage: s.Percentage}
}

// Resolve prefers the remote figures when they exist and report a nonzero
// total; otherwise the locally derived figures win.
func Resolve(remote *sheet.Stats, local Stats) Stats {
	if remote == nil || remote.Total <= 0 {
		return local
	}
	return FromSheet(*remote)
}

// Disagrees reports whether usable remote figures differ from the local ones.
func Disagrees(remote *sheet.Stats, local Stats) bool {
	if remote == nil || remote.Total <= 0 {
		return false
	}
	return remote.Total != local.Total || remote.Completed != local.Completed
}

// DifficultyBreakdown holds per-difficulty figures.
type DifficultyBreakdown map[sheet.Difficulty]Stats

// ByDifficulty groups every problem by difficulty.
func ByDifficulty(topics []sheet.Topic, done Completion) DifficultyBreakdown {
	counts := make(map[sheet.Difficulty][2]int)
	for _, topic := range topics {
		for _, p := range topic.Problems {
			c := counts[p.Difficulty]
			c[0]++
			if done != nil && done(p.ID) {
				c[1]++
			}
			counts[p.Difficulty] = c
		}
	}
	out := make(DifficultyBreakdown, len(counts))
	for d, c := range counts {
		out[d] = newStats(c[0], c[1])
	}
	return out
}
