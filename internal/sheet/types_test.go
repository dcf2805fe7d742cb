package sheet

import (
	"encoding/json"
	"testing"
)

func TestParseDifficulty(t *testing.T) {
	tests := []struct {
		in   string
		want Difficulty
	}{
		{"Easy", DifficultyEasy},
		{" medium ", DifficultyMedium},
		{"HARD", DifficultyHard},
		{"expert", DifficultyUnknown},
		{"", DifficultyUnknown},
	}
	for _, tt := range tests {
		if got := ParseDifficulty(tt.in); got != tt.want {
			t.Fatalf("ParseDifficulty(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestProblemDecoding(t *testing.T) {
	raw := `{"id":"p1","title":"Two Sum","difficulty":"easy","tags":["array"],
		"links":{"leetcode":"https://leetcode.com/problems/two-sum/","video":""}}`

	var p Problem
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.Difficulty != DifficultyEasy {
		t.Fatalf("difficulty = %v", p.Difficulty)
	}
	links := p.Links.Named()
	if len(links) != 1 || links[0].Name != "LeetCode" {
		t.Fatalf("links = %+v", links)
	}
}

func TestDifficultyUnknownRendering(t *testing.T) {
	var d Difficulty
	if err := json.Unmarshal([]byte(`"Legendary"`), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if d.String() != "?" {
		t.Fatalf("String() = %q, want ?", d.String())
	}
	out, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `""` {
		t.Fatalf("marshal = %s", out)
	}
}
