package analytics

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
)

const (
	defaultMaxWidth = 40 // max width of the text columns
	DefaultLimit    = 20
)

// PrintEntries writes entries as an aligned table. Times are shown relative to
// now.
func PrintEntries(out io.Writer, entries []AnalyticsEntry, now time.Time) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(out, "No analytics entries found.")
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "ID\tWHEN\tSLOT\tINPUT\tPREDICTION\tRESULT")
	fmt.Fprintln(w, "──\t────\t────\t─────\t──────────\t──────")

	for _, entry := range entries {
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\t%s\n",
			entry.ID,
			humanize.RelTime(entry.CreatedAt, now, "ago", "from now"),
			entry.Slot+1,
			truncate(entry.Input, defaultMaxWidth),
			truncate(entry.Prediction, defaultMaxWidth),
			truncate(entry.Actual, defaultMaxWidth),
		)
	}

	return w.Flush()
}

// PrintSummary writes the total and the per-slot share of accepted
// suggestions.
func PrintSummary(out io.Writer, total int64, counts []SlotCount) error {
	if _, err := fmt.Fprintf(out, "Total accepted suggestions: %s\n", humanize.Comma(total)); err != nil {
		return err
	}
	for _, c := range counts {
		share := 0.0
		if total > 0 {
			share = float64(c.Count) / float64(total) * 100
		}
		if _, err := fmt.Fprintf(out, "  slot %d: %s (%.0f%%)\n", c.Slot+1, humanize.Comma(c.Count), share); err != nil {
			return err
		}
	}
	return nil
}

// truncate shortens s to maxLen display cells, adding an ellipsis if
// truncated.
func truncate(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\t", " ")
	s = strings.TrimSpace(s)

	if runewidth.StringWidth(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return runewidth.Truncate(s, maxLen, "")
	}
	return runewidth.Truncate(s, maxLen, "...")
}
