// Package ui renders items for terminal output.
package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/baiirun/tracker/internal/model"
)

// Sprint color functions for building styled strings.
var (
	Bold       = color.New(color.Bold).SprintFunc()
	Dim        = color.New(color.Faint).SprintFunc()
	Cyan       = color.New(color.FgCyan).SprintFunc()
	Green      = color.New(color.FgGreen).SprintFunc()
	Red        = color.New(color.FgRed).SprintFunc()
	Yellow     = color.New(color.FgYellow).SprintFunc()
	BoldCyan   = color.New(color.Bold, color.FgCyan).SprintFunc()
	BoldGreen  = color.New(color.Bold, color.FgGreen).SprintFunc()
	BoldRed    = color.New(color.Bold, color.FgRed).SprintFunc()
	BoldYellow = color.New(color.Bold, color.FgYellow).SprintFunc()
)

// StatusIcon returns a colored status icon for compact list display.
func StatusIcon(status model.Status) string {
	switch status {
	case model.StatusDone:
		return Green("✓")
	case model.StatusInProgress:
		return Yellow("●")
	default:
		return Dim("○")
	}
}

// StatusText returns the status colored by progress.
func StatusText(status model.Status) string {
	switch status {
	case model.StatusDone:
		return BoldGreen(string(status))
	case model.StatusInProgress:
		return BoldYellow(string(status))
	default:
		return Dim(string(status))
	}
}

// KindTag returns a short fixed-width tag for an item kind.
func KindTag(kind model.Kind) string {
	switch kind {
	case model.KindEpic:
		return BoldCyan("epic")
	case model.KindSubtask:
		return Cyan("sub ")
	default:
		return "task"
	}
}

// Window formats an item's time window relative to now, e.g.
// "Mar 1 09:00 (in 2 hours), 30m". Items without a start are "unscheduled".
func Window(start *time.Time, d *time.Duration, now time.Time) string {
	if start == nil {
		if d != nil {
			return Dim("unscheduled, " + FormatDuration(*d))
		}
		return Dim("unscheduled")
	}
	s := fmt.Sprintf("%s (%s)", start.Local().Format("Jan 2 15:04"), humanize.RelTime(*start, now, "ago", "from now"))
	if d != nil {
		s += ", " + FormatDuration(*d)
	}
	return s
}

// FormatDuration prints whole minutes as e.g. "1h30m" or "45m".
func FormatDuration(d time.Duration) string {
	d = d.Truncate(time.Minute)
	h, m := int(d/time.Hour), int(d%time.Hour/time.Minute)
	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%dh%dm", h, m)
	case h > 0:
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dm", m)
}

// Line renders one record as a single list line.
func Line(r model.Record, now time.Time) string {
	line := fmt.Sprintf("%s %s %s %s", StatusIcon(r.Status), Dim(fmt.Sprintf("#%-4d", r.ID)), KindTag(r.Kind), r.Name)
	if r.StartTime != nil {
		line += "  " + Dim(Window(r.StartTime, r.Duration, now))
	}
	if r.EpicID != nil {
		line += "  " + Dim(fmt.Sprintf("epic #%d", *r.EpicID))
	}
	return line
}

// PrintList writes one line per record, or a hint when there are none.
func PrintList(w io.Writer, records []model.Record, now time.Time) {
	if len(records) == 0 {
		fmt.Fprintln(w, Dim("nothing here"))
		return
	}
	for _, r := range records {
		fmt.Fprintln(w, Line(r, now))
	}
}

// PrintDetail writes every field of a record.
func PrintDetail(w io.Writer, r model.Record, now time.Time) {
	fmt.Fprintf(w, "%s %s\n", Bold(fmt.Sprintf("#%d", r.ID)), Bold(r.Name))
	fmt.Fprintf(w, "  %-12s %s\n", "type:", KindTag(r.Kind))
	fmt.Fprintf(w, "  %-12s %s\n", "status:", StatusText(r.Status))
	fmt.Fprintf(w, "  %-12s %s\n", "when:", Window(r.StartTime, r.Duration, now))
	if r.EndTime != nil {
		fmt.Fprintf(w, "  %-12s %s\n", "ends:", r.EndTime.Local().Format("Jan 2 15:04"))
	}
	if r.EpicID != nil {
		fmt.Fprintf(w, "  %-12s #%d\n", "epic:", *r.EpicID)
	}
	if r.Kind == model.KindEpic {
		ids := make([]string, 0, len(r.SubtaskIDs))
		for _, id := range r.SubtaskIDs {
			ids = append(ids, fmt.Sprintf("#%d", id))
		}
		if len(ids) == 0 {
			ids = append(ids, Dim("none"))
		}
		fmt.Fprintf(w, "  %-12s %s\n", "subtasks:", strings.Join(ids, " "))
	}
	if r.Description != "" {
		fmt.Fprintf(w, "\n  %s\n", strings.ReplaceAll(r.Description, "\n", "\n  "))
	}
}

// Success prints a confirmation line.
func Success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", Green("✓"), fmt.Sprintf(format, args...))
}

// Error prints an error line.
func Error(w io.Writer, err error) {
	fmt.Fprintf(w, "%s %v\n", BoldRed("error:"), err)
}
