package ui

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/ladder/internal/prefs"
	"github.com/five82/ladder/internal/progress"
	"github.com/five82/ladder/internal/reconcile"
	"github.com/five82/ladder/internal/sheet"
	"github.com/five82/ladder/internal/state"
)

type stubPoster struct {
	mu  sync.Mutex
	err error
}

func (s *stubPoster) PostProgress(ctx context.Context, problemID string, completed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func testTopics() []sheet.Topic {
	return []sheet.Topic{
		{ID: "arrays", Title: "Arrays", Problems: []sheet.Problem{
			{ID: "two-sum", Title: "Two Sum", Difficulty: sheet.DifficultyEasy, Tags: []string{"array", "hash"}},
			{ID: "3sum", Title: "3Sum", Difficulty: sheet.DifficultyMedium},
		}},
		{ID: "graphs", Title: "Graphs", Problems: []sheet.Problem{
			{ID: "islands", Title: "Number of Islands", Difficulty: sheet.DifficultyMedium,
				Links: sheet.Links{LeetCode: "https://leetcode.com/problems/number-of-islands/"}},
		}},
	}
}

type harness struct {
	model  Model
	ctrl   *reconcile.Controller
	poster *stubPoster
	state  *state.Store
	prefs  string
}

func newHarness(t *testing.T, lastTopic string) *harness {
	t.Helper()
	poster := &stubPoster{}
	ctrl, err := reconcile.New(&progress.Store{}, poster)
	if err != nil {
		t.Fatalf("reconcile.New: %v", err)
	}
	topics := testTopics()
	ctrl.SetProblems(topics...)

	snapshots := &state.Store{}
	snapshots.Update(state.Update{Topics: topics}, nil)

	prefsPath := filepath.Join(t.TempDir(), "prefs.toml")
	h := &harness{ctrl: ctrl, poster: poster, state: snapshots, prefs: prefsPath}
	h.model = New(Options{
		Session:   Session{Controller: ctrl, State: snapshots},
		APIURL:    "http://127.0.0.1:8740",
		LastTopic: lastTopic,
		PrefsPath: prefsPath,
	})
	h.send(tea.WindowSizeMsg{Width: 140, Height: 40})
	h.send(snapshotMsg(snapshots.Snapshot()))
	return h
}

func (h *harness) send(msg tea.Msg) tea.Cmd {
	next, cmd := h.model.Update(msg)
	h.model = next.(Model)
	return cmd
}

func (h *harness) press(s string) tea.Cmd {
	if s == "tab" {
		return h.send(tea.KeyMsg{Type: tea.KeyTab})
	}
	return h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

// runCmd executes cmd and any batched commands, returning every message.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runCmd(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func findToggleResult(t *testing.T, msgs []tea.Msg) toggleResultMsg {
	t.Helper()
	for _, msg := range msgs {
		if res, ok := msg.(toggleResultMsg); ok {
			return res
		}
	}
	t.Fatalf("no toggle result among %d messages", len(msgs))
	return toggleResultMsg{}
}

func TestModel_NavigationPreservesSelectionAcrossSnapshots(t *testing.T) {
	h := newHarness(t, "")

	h.press("j")
	if topic, _ := h.model.selectedTopic(); topic.ID != "graphs" {
		t.Fatalf("selected topic = %q, want graphs", topic.ID)
	}

	// Reordered topics keep the same topic selected.
	topics := testTopics()
	topics[0], topics[1] = topics[1], topics[0]
	h.state.Update(state.Update{Topics: topics}, nil)
	h.send(snapshotMsg(h.state.Snapshot()))

	if topic, _ := h.model.selectedTopic(); topic.ID != "graphs" {
		t.Fatalf("selected topic after reorder = %q, want graphs", topic.ID)
	}
	if h.model.topicIdx != 0 {
		t.Fatalf("topicIdx = %d, want 0", h.model.topicIdx)
	}
}

func TestModel_LastTopicRestored(t *testing.T) {
	h := newHarness(t, "graphs")
	if topic, _ := h.model.selectedTopic(); topic.ID != "graphs" {
		t.Fatalf("selected topic = %q, want graphs", topic.ID)
	}
	if h.model.pendingTopic != "" {
		t.Fatalf("pendingTopic not cleared")
	}
}

func TestModel_ToggleSuccess(t *testing.T) {
	h := newHarness(t, "")
	h.press("tab") // focus problems

	cmd := h.press(" ")
	if !h.model.isBusy("two-sum") {
		t.Fatalf("expected two-sum to be awaiting a result")
	}

	res := findToggleResult(t, runCmd(cmd))
	if res.err != nil || !res.completed || res.problemID != "two-sum" {
		t.Fatalf("toggle result = %#v", res)
	}
	h.send(res)

	if !h.model.isCompleted("two-sum") {
		t.Fatalf("two-sum not completed after confirmed toggle")
	}
	if h.model.isBusy("two-sum") {
		t.Fatalf("two-sum still busy after result")
	}
	if h.model.status.err || !strings.Contains(h.model.status.text, "Two Sum") {
		t.Fatalf("status = %#v", h.model.status)
	}
}

func TestModel_ToggleFailureShowsError(t *testing.T) {
	h := newHarness(t, "")
	h.poster.err = sheet.ErrNetwork
	h.press("tab")

	res := findToggleResult(t, runCmd(h.press(" ")))
	if !errors.Is(res.err, reconcile.ErrUpdateFailed) {
		t.Fatalf("toggle err = %v, want ErrUpdateFailed", res.err)
	}
	h.send(res)

	if h.model.isCompleted("two-sum") {
		t.Fatalf("failed toggle left two-sum completed")
	}
	if !h.model.status.err || !strings.HasPrefix(h.model.status.text, "Could not save Two Sum") {
		t.Fatalf("status = %#v", h.model.status)
	}
}

func TestModel_ToggleWhileAwaitingIsRejectedLocally(t *testing.T) {
	h := newHarness(t, "")
	h.press("tab")

	first := h.press(" ")
	if first == nil {
		t.Fatalf("first toggle produced no command")
	}
	if second := h.press(" "); second != nil {
		t.Fatalf("second toggle produced a command while the first is outstanding")
	}
	if !h.model.status.err || !strings.Contains(h.model.status.text, "still saving") {
		t.Fatalf("status = %#v", h.model.status)
	}
}

func TestModel_EnterOnTopicFocusesProblems(t *testing.T) {
	h := newHarness(t, "")
	if cmd := h.send(tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
		t.Fatalf("enter on topics produced a command")
	}
	if h.model.focus != paneProblems {
		t.Fatalf("focus = %v, want problems", h.model.focus)
	}
}

func TestModel_RefreshKeyCallsSession(t *testing.T) {
	h := newHarness(t, "")
	calls := 0
	h.model.session.Refresh = func() { calls++ }

	h.press("r")
	if calls != 1 {
		t.Fatalf("Refresh called %d times, want 1", calls)
	}
}

func TestModel_ThemeCycleSavesPrefs(t *testing.T) {
	h := newHarness(t, "")
	h.press("j")
	h.press("T")

	if h.model.theme.Name != "Kanagawa" {
		t.Fatalf("theme = %q, want Kanagawa", h.model.theme.Name)
	}
	saved := prefs.Load(h.prefs)
	if saved.Theme != "Kanagawa" || saved.LastTopic != "graphs" {
		t.Fatalf("saved prefs = %#v", saved)
	}
}

func TestModel_QuitSavesPrefs(t *testing.T) {
	h := newHarness(t, "")
	h.press("j")

	cmd := h.press("q")
	if cmd == nil {
		t.Fatalf("quit produced no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("quit command did not return QuitMsg")
	}
	if got := prefs.Load(h.prefs).LastTopic; got != "graphs" {
		t.Fatalf("saved last topic = %q, want graphs", got)
	}
}

func TestModel_ViewRendersAllScreens(t *testing.T) {
	h := newHarness(t, "")

	view := h.model.View()
	for _, want := range []string{"ladder", "Topics (2)", "Two Sum"} {
		if !strings.Contains(view, want) {
			t.Fatalf("sheet view missing %q", want)
		}
	}

	h.press("?")
	if !strings.Contains(h.model.View(), "Keyboard Shortcuts") {
		t.Fatalf("help overlay not rendered")
	}
	h.press("x") // any key closes help
	if h.model.showHelp {
		t.Fatalf("help still shown")
	}

	h.press("l")
	if h.model.currentView != ViewLogs {
		t.Fatalf("view = %v, want logs", h.model.currentView)
	}
	if !strings.Contains(h.model.View(), "Client log") {
		t.Fatalf("log view not rendered")
	}
}

func TestModel_ViewSurvivesTinyTerminal(t *testing.T) {
	h := newHarness(t, "")
	h.send(tea.WindowSizeMsg{Width: 10, Height: 4})
	_ = h.model.View()
	h.press("l")
	_ = h.model.View()
}

func TestModel_EmptySnapshotMessage(t *testing.T) {
	m := New(Options{PrefsPath: filepath.Join(t.TempDir(), "prefs.toml")})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m = next.(Model)

	next, _ = m.Update(snapshotMsg(state.Snapshot{LastError: sheet.ErrNetwork, ConsecutiveFailures: 1}))
	m = next.(Model)
	if !strings.Contains(m.View(), "Could not load the sheet") {
		t.Fatalf("empty view missing retry hint")
	}
}
