package sheet

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Difficulty grades a problem.
type Difficulty int

const (
	DifficultyUnknown Difficulty = iota
	DifficultyEasy
	DifficultyMedium
	DifficultyHard
)

// ParseDifficulty maps the API label to a Difficulty, case-insensitively.
func ParseDifficulty(value string) Difficulty {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "easy":
		return DifficultyEasy
	case "medium":
		return DifficultyMedium
	case "hard":
		return DifficultyHard
	default:
		return DifficultyUnknown
	}
}

func (d Difficulty) String() string {
	switch d {
	case DifficultyEasy:
		return "Easy"
	case DifficultyMedium:
		return "Medium"
	case DifficultyHard:
		return "Hard"
	default:
		return "?"
	}
}

// MarshalJSON encodes the difficulty as its API label.
func (d Difficulty) MarshalJSON() ([]byte, error) {
	if d == DifficultyUnknown {
		return json.Marshal("")
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts any casing of Easy, Medium or Hard. Unrecognised labels
// decode to DifficultyUnknown instead of failing the whole payload.
func (d *Difficulty) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err != nil {
		return fmt.Errorf("difficulty: %w", err)
	}
	*d = ParseDifficulty(label)
	return nil
}

// UnmarshalText lets YAML and TOML decoders share the JSON label rules.
func (d *Difficulty) UnmarshalText(text []byte) error {
	*d = ParseDifficulty(string(text))
	return nil
}

// Links holds the optional external references for a problem.
type Links struct {
	Video    string `json:"video,omitempty" yaml:"video,omitempty"`
	LeetCode string `json:"leetcode,omitempty" yaml:"leetcode,omitempty"`
	GFG      string `json:"gfg,omitempty" yaml:"gfg,omitempty"`
	Article  string `json:"article,omitempty" yaml:"article,omitempty"`
}

// Named returns the non-empty links in display order.
func (l Links) Named() []NamedLink {
	candidates := []NamedLink{
		{Name: "Video", URL: l.Video},
		{Name: "LeetCode", URL: l.LeetCode},
		{Name: "GFG", URL: l.GFG},
		{Name: "Article", URL: l.Article},
	}
	out := make([]NamedLink, 0, len(candidates))
	for _, link := range candidates {
		if strings.TrimSpace(link.URL) != "" {
			out = append(out, link)
		}
	}
	return out
}

// NamedLink pairs a link label with its URL.
type NamedLink struct {
	Name string
	URL  string
}

// Problem is a single exercise within a topic.
type Problem struct {
	ID          string     `json:"id" yaml:"id"`
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description" yaml:"description"`
	Difficulty  Difficulty `json:"difficulty" yaml:"difficulty"`
	Tags        []string   `json:"tags" yaml:"tags"`
	Links       Links      `json:"links" yaml:"links"`
}

// Topic groups an ordered list of problems.
type Topic struct {
	ID          string    `json:"id" yaml:"id"`
	Title       string    `json:"title" yaml:"title"`
	Description string    `json:"description" yaml:"description"`
	Problems    []Problem `json:"problems" yaml:"problems"`
}

// TopicListResponse mirrors /api/topics.
type TopicListResponse struct {
	Topics []Topic `json:"topics"`
}

// ProgressRecord mirrors one entry of /api/progress.
type ProgressRecord struct {
	ID        string `json:"id"`
	ProblemID string `json:"problemId"`
	Completed bool   `json:"completed"`
}

// ProgressListResponse mirrors /api/progress.
type ProgressListResponse struct {
	Progress []ProgressRecord `json:"progress"`
}

// ProgressUpdate is the body of POST /api/progress.
type ProgressUpdate struct {
	ProblemID string `json:"problemId"`
	Completed bool   `json:"completed"`
}

// Stats mirrors /api/progress/stats.
type Stats struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	Remaining  int `json:"remaining"`
	Percentage int `json:"percentage"`
}

// ErrorResponse is the JSON error envelope returned with non-success statuses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
