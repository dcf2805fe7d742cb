package ui

import (
	"fmt"
	"time"
)

// truncate shortens s to at most limit runes, ending in an ellipsis.
func truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}

// truncateMiddle keeps both ends of s, favouring the end (the useful part of
// a path or URL).
func truncateMiddle(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	if limit <= 5 {
		return string(runes[:limit])
	}
	endLen := (limit - 3) * 2 / 3
	startLen := limit - 3 - endLen
	return string(runes[:startLen]) + "..." + string(runes[len(runes)-endLen:])
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return min(max(v, lo), hi)
}

// visibleRange returns the [start, end) window of a list of count rows that
// fits capacity rows and keeps selected in view, roughly centred.
func visibleRange(selected, count, capacity int) (start, end int) {
	if count <= 0 || capacity <= 0 {
		return 0, 0
	}
	if count <= capacity {
		return 0, count
	}
	selected = clamp(selected, 0, count-1)
	start = clamp(selected-capacity/2, 0, count-capacity)
	return start, start + capacity
}

func humanizeDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return "now"
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	default:
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
}

// formatTimestamp renders "15:04:05 (12s ago)" for the last refresh.
func formatTimestamp(at, now time.Time) string {
	if at.IsZero() {
		return ""
	}
	since := now.Sub(at)
	label := humanizeDuration(since)
	if label != "now" {
		label += " ago"
	}
	return at.Format("15:04:05") + " (" + label + ")"
}
