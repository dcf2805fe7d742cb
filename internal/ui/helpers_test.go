package ui

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/five82/ladder/internal/sheet"
)

func TestTruncate(t *testing.T) {
	cases := []struct {
		in    string
		limit int
		want  string
	}{
		{"hello", 0, ""},
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello world", 8, "hello..."},
		{"hello", 2, "he"},
		{"✓✓✓✓✓✓", 5, "✓✓..."},
	}
	for _, tc := range cases {
		if got := truncate(tc.in, tc.limit); got != tc.want {
			t.Fatalf("truncate(%q, %d) = %q, want %q", tc.in, tc.limit, got, tc.want)
		}
	}
}

func TestTruncateMiddle(t *testing.T) {
	if got := truncateMiddle("abc", 10); got != "abc" {
		t.Fatalf("truncateMiddle short = %q", got)
	}
	if got := truncateMiddle("abcdefgh", 4); got != "abcd" {
		t.Fatalf("truncateMiddle limit<=5 = %q, want abcd", got)
	}
	got := truncateMiddle("https://leetcode.com/problems/two-sum/", 20)
	if len([]rune(got)) != 20 {
		t.Fatalf("truncateMiddle = %q (%d runes), want 20", got, len([]rune(got)))
	}
	if got[len(got)-3:] != "um/" {
		t.Fatalf("truncateMiddle = %q, want end preserved", got)
	}
}

func TestVisibleRange(t *testing.T) {
	cases := []struct {
		selected, count, capacity int
		start, end                int
	}{
		{0, 0, 5, 0, 0},
		{0, 3, 0, 0, 0},
		{2, 3, 5, 0, 3},
		{0, 10, 4, 0, 4},
		{5, 10, 4, 3, 7},
		{9, 10, 4, 6, 10},
		{42, 10, 4, 6, 10},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("%d/%d/%d", tc.selected, tc.count, tc.capacity), func(t *testing.T) {
			start, end := visibleRange(tc.selected, tc.count, tc.capacity)
			if start != tc.start || end != tc.end {
				t.Fatalf("visibleRange = [%d,%d), want [%d,%d)", start, end, tc.start, tc.end)
			}
		})
	}
}

func TestClamp(t *testing.T) {
	if got := clamp(5, 0, 3); got != 3 {
		t.Fatalf("clamp high = %d", got)
	}
	if got := clamp(-1, 0, 3); got != 0 {
		t.Fatalf("clamp low = %d", got)
	}
	if got := clamp(2, 0, -1); got != 0 {
		t.Fatalf("clamp empty range = %d, want 0", got)
	}
}

func TestHumanizeDuration(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want string
	}{
		{-5 * time.Second, "now"},
		{0, "now"},
		{12 * time.Second, "12s"},
		{61 * time.Second, "1m"},
		{2*time.Hour + 10*time.Second, "2h"},
	}
	for _, tc := range cases {
		if got := humanizeDuration(tc.in); got != tc.want {
			t.Fatalf("humanizeDuration(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatTimestamp(t *testing.T) {
	if got := formatTimestamp(time.Time{}, time.Now()); got != "" {
		t.Fatalf("formatTimestamp zero = %q, want empty", got)
	}
	at := time.Date(2026, 10, 19, 14, 32, 15, 0, time.Local)
	if got := formatTimestamp(at, at.Add(500*time.Millisecond)); got != "14:32:15 (now)" {
		t.Fatalf("formatTimestamp = %q", got)
	}
	if got := formatTimestamp(at, at.Add(90*time.Second)); got != "14:32:15 (1m ago)" {
		t.Fatalf("formatTimestamp = %q", got)
	}
}

func TestClassifyConnectionError(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{fmt.Errorf("execute request: %w: dial tcp: connection refused", sheet.ErrNetwork), "OFFLINE"},
		{fmt.Errorf("execute request: %w: context deadline exceeded", sheet.ErrNetwork), "TIMEOUT"},
		{&sheet.StatusError{Path: "/api/topics/x", StatusCode: 404}, "NOT FOUND"},
		{&sheet.StatusError{Path: "/api/progress", StatusCode: 500}, "SERVER ERROR"},
		{errors.New("boom"), "ERROR"},
	}
	for _, tc := range cases {
		if got := classifyConnectionError(tc.err); got != tc.want {
			t.Fatalf("classifyConnectionError(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestShortTime(t *testing.T) {
	if got := shortTime("2026-10-19T14:32:15.123+0200"); got != "14:32:15" {
		t.Fatalf("shortTime = %q", got)
	}
	if got := shortTime("yesterday"); got != "yesterday" {
		t.Fatalf("shortTime passthrough = %q", got)
	}
}
