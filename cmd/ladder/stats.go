package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/five82/ladder/internal/sheet"
	"github.com/five82/ladder/internal/stats"
)

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print completion statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer session.Close()

			done := session.Progress.IsCompleted
			out := cmd.OutOrStdout()

			topicID, _ := cmd.Flags().GetString("topic")
			if topicID != "" {
				topic, err := session.Backend.FetchTopic(cmd.Context(), topicID)
				if err != nil {
					return fmt.Errorf("fetch topic %s: %w", topicID, err)
				}
				writeTopicStats(out, topic, done)
				return nil
			}

			snap := session.State.Snapshot()
			writeOverview(out, snap.Topics, snap.Global, snap.GlobalSource.String(), done)
			return nil
		},
	}
	cmd.Flags().String("topic", "", "show a single topic and its problems")
	return cmd
}

func statsRow(label string, s stats.Stats) []string {
	return []string{
		label,
		strconv.Itoa(s.Completed),
		strconv.Itoa(s.Total),
		strconv.Itoa(s.Percentage) + "%",
	}
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...)
}

func writeOverview(out io.Writer, topics []sheet.Topic, global stats.Stats, source string, done stats.Completion) {
	t := newTable("TOPIC", "SOLVED", "TOTAL", "DONE")
	for _, topic := range topics {
		t.Row(statsRow(topic.Title, stats.TopicStats(topic, done))...)
	}
	fmt.Fprintln(out, t.Render())

	breakdown := stats.ByDifficulty(topics, done)
	d := newTable("DIFFICULTY", "SOLVED", "TOTAL", "DONE")
	for _, level := range []sheet.Difficulty{sheet.DifficultyEasy, sheet.DifficultyMedium, sheet.DifficultyHard, sheet.DifficultyUnknown} {
		s, ok := breakdown[level]
		if !ok {
			continue
		}
		d.Row(statsRow(level.String(), s)...)
	}
	fmt.Fprintln(out, d.Render())

	fmt.Fprintf(out, "Overall: %d/%d solved (%d%%), %d remaining [%s]\n",
		global.Completed, global.Total, global.Percentage, global.Remaining(), source)
}

func writeTopicStats(out io.Writer, topic sheet.Topic, done stats.Completion) {
	t := newTable("", "PROBLEM", "DIFFICULTY", "ID")
	for _, p := range topic.Problems {
		mark := " "
		if done(p.ID) {
			mark = "✓"
		}
		t.Row(mark, p.Title, p.Difficulty.String(), p.ID)
	}
	fmt.Fprintln(out, t.Render())

	s := stats.TopicStats(topic, done)
	fmt.Fprintf(out, "%s: %d/%d solved (%d%%)\n", topic.Title, s.Completed, s.Total, s.Percentage)
}
