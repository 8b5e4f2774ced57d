package ui

import (
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gdamore/tcell/v2"
)

func stateColor(state string) tcell.Color {
	switch state {
	case "pending":
		return tcell.ColorYellow
	case "running":
		return tcell.ColorDodgerBlue
	case "completed":
		return tcell.ColorGreen
	case "failed":
		return tcell.ColorRed
	}
	return tcell.ColorWhite
}

// stateTag returns the tview color tag name for state.
func stateTag(state string) string {
	switch state {
	case "pending":
		return "yellow"
	case "running":
		return "dodgerblue"
	case "completed":
		return "green"
	case "failed":
		return "red"
	}
	return "white"
}

// relativeTime renders t relative to now, e.g. "3 minutes ago".
func relativeTime(t, now time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
