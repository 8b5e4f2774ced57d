package ui

import (
	"github.com/rivo/tview"
)

// createHelpPanel creates the help panel.
func (a *App) createHelpPanel() {
	a.helpView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	a.helpView.SetBorder(true).SetTitle(" Help ")

	helpText := `[yellow::b]tubegrab TUI[white]

Monitor a tubegrab server and queue new downloads.

[yellow::b]GLOBAL NAVIGATION[white]
[cyan]1[white] or [cyan]F1[white]     Dashboard      - Queue counts and server health
[cyan]2[white] or [cyan]F2[white]     Downloads      - All jobs, newest first
[cyan]3[white] or [cyan]F3[white]     New Download   - Look up a video and pick a format
[cyan]?[white]            Help           - This help screen
[cyan]r[white]            Refresh        - Poll the server now
[cyan]q[white]            Quit           - Exit the application
[cyan]Escape[white]       Dashboard      - Return to dashboard

[yellow::b]DOWNLOADS PANEL[white]
[cyan]Up/Down[white]      Select a job and show its details
[cyan]f[white]            Cycle the status filter (all, pending, running, completed, failed)

[yellow::b]NEW DOWNLOAD PANEL[white]
[cyan]Enter[white]        In the URL field: fetch video info and formats
[cyan]Tab[white]          Move between the URL field and the format list
[cyan]Enter[white]        In the format list: start the download

[yellow::b]ENVIRONMENT[white]
[cyan]TUBEGRAB_SERVER[white]            API base URL (default http://localhost:8000)
[cyan]TUBEGRAB_API_KEY[white]           Sent as X-API-Key when the server requires one
[cyan]TUBEGRAB_STATUS_REFRESH[white]    Poll interval (default 2s)
[cyan]TUBEGRAB_REQUEST_TIMEOUT[white]   Per-request timeout (default 90s)
`
	a.helpView.SetText(helpText)
}
