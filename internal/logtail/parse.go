package logtail

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Entry is one parsed log line.
type Entry struct {
	Time    string
	Level   string // DEBUG, INFO, WARN, ERROR, ... or empty when unknown
	Logger  string
	Message string
	Fields  string // remaining structured fields as "key=value" pairs
	Raw     string
}

// Structured reports whether the line was recognised as zap output.
func (e Entry) Structured() bool {
	return e.Level != ""
}

// Keys the JSON encoder uses for the entry header; everything else is a field.
var headerKeys = map[string]struct{}{
	"level":      {},
	"timestamp":  {},
	"ts":         {},
	"logger":     {},
	"caller":     {},
	"msg":        {},
	"stacktrace": {},
}

var knownLevels = map[string]struct{}{
	"DEBUG":  {},
	"INFO":   {},
	"WARN":   {},
	"ERROR":  {},
	"DPANIC": {},
	"PANIC":  {},
	"FATAL":  {},
}

// ParseLines parses each line in order.
func ParseLines(lines []string) []Entry {
	if len(lines) == 0 {
		return nil
	}
	entries := make([]Entry, 0, len(lines))
	for _, line := range lines {
		entries = append(entries, Parse(line))
	}
	return entries
}

// Parse interprets a single line written by either zap encoder.
func Parse(line string) Entry {
	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(trimmed, "{") {
		if entry, ok := parseJSON(trimmed); ok {
			entry.Raw = line
			return entry
		}
	}
	if entry, ok := parseConsole(line); ok {
		entry.Raw = line
		return entry
	}
	return Entry{Message: line, Raw: line}
}

func parseJSON(line string) (Entry, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(line), &obj); err != nil {
		return Entry{}, false
	}
	level := strings.ToUpper(stringField(obj, "level"))
	if _, ok := knownLevels[level]; !ok {
		return Entry{}, false
	}

	ts := stringField(obj, "timestamp")
	if ts == "" {
		ts = stringField(obj, "ts")
	}

	fields := make(map[string]any, len(obj))
	for k, v := range obj {
		if _, skip := headerKeys[k]; !skip {
			fields[k] = v
		}
	}

	return Entry{
		Time:    ts,
		Level:   level,
		Logger:  stringField(obj, "logger"),
		Message: stringField(obj, "msg"),
		Fields:  formatFields(fields),
	}, true
}

// parseConsole handles the development encoder: time, level, optional logger
// name, optional caller, message and an optional trailing JSON object.
func parseConsole(line string) (Entry, bool) {
	parts := strings.Split(line, "\t")
	if len(parts) < 3 {
		return Entry{}, false
	}
	level := strings.ToUpper(strings.TrimSpace(parts[1]))
	if _, ok := knownLevels[level]; !ok {
		return Entry{}, false
	}

	entry := Entry{Time: strings.TrimSpace(parts[0]), Level: level}
	rest := parts[2:]

	if last := strings.TrimSpace(rest[len(rest)-1]); len(rest) > 1 && strings.HasPrefix(last, "{") {
		var obj map[string]any
		if err := json.Unmarshal([]byte(last), &obj); err == nil {
			entry.Fields = formatFields(obj)
			rest = rest[:len(rest)-1]
		}
	}

	entry.Message = rest[len(rest)-1]
	for _, part := range rest[:len(rest)-1] {
		if isCaller(part) {
			continue
		}
		entry.Logger = part
	}
	return entry, true
}

func isCaller(s string) bool {
	return strings.Contains(s, ".go:")
}

func stringField(obj map[string]any, key string) string {
	if v, ok := obj[key].(string); ok {
		return v
	}
	return ""
}

func formatFields(fields map[string]any) string {
	if len(fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+formatValue(fields[k]))
	}
	return strings.Join(pairs, " ")
}

func formatValue(v any) string {
	switch val := v.(type) {
	case string:
		if strings.ContainsAny(val, " \t") {
			return fmt.Sprintf("%q", val)
		}
		return val
	case nil:
		return "null"
	case float64, bool:
		return fmt.Sprint(val)
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(data)
	}
}
