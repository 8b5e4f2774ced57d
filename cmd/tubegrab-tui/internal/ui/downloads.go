package ui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/iconidentify/tubegrab/internal/api/handler"
)

// stateFilters is the cycle order of the 'f' key.
var stateFilters = []string{"", "pending", "running", "completed", "failed"}

// createDownloadsPanel creates the job table and its detail box.
func (a *App) createDownloadsPanel() {
	a.downloadsTable = tview.NewTable().
		SetBorders(false).
		SetSelectable(true, false).
		SetFixed(1, 0)
	a.downloadsTable.SetBorder(true)
	a.downloadsTable.SetSelectedStyle(tcell.StyleDefault.
		Foreground(tcell.ColorWhite).
		Background(tcell.ColorDarkCyan))
	a.setDownloadsTitle()

	headers := []string{"ID", "STATUS", "FORMAT", "URL", "CREATED", "UPDATED"}
	for i, h := range headers {
		cell := tview.NewTableCell(h).
			SetTextColor(tcell.ColorYellow).
			SetSelectable(false).
			SetExpansion(1)
		if i == 3 {
			cell.SetExpansion(3)
		}
		a.downloadsTable.SetCell(0, i, cell)
	}

	a.detailBox = tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true)
	a.detailBox.SetBorder(true).SetTitle(" Details ")

	a.downloadsTable.SetSelectionChangedFunc(func(row, column int) {
		a.showDetail(row)
	})

	a.downloadsTable.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyRune && (event.Rune() == 'f' || event.Rune() == 'F') {
			a.stateFilter = nextFilter(a.stateFilter)
			a.setDownloadsTitle()
			a.updateDownloadsTable()
			return nil
		}
		return event
	})

	a.downloadsView = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.downloadsTable, 0, 1, true).
		AddItem(a.detailBox, 7, 0, false)
}

func (a *App) setDownloadsTitle() {
	filter := a.stateFilter
	if filter == "" {
		filter = "all"
	}
	a.downloadsTable.SetTitle(fmt.Sprintf(" Downloads [%s] - 'f' to filter ", filter))
}

// updateDownloadsTable redraws the table from the latest snapshot.
func (a *App) updateDownloadsTable() {
	snap := a.getSnapshot()
	if snap == nil || snap.Downloads == nil {
		return
	}

	for row := a.downloadsTable.GetRowCount() - 1; row > 0; row-- {
		a.downloadsTable.RemoveRow(row)
	}

	jobs := filterJobs(snap.Downloads.Downloads, a.stateFilter)
	for i, job := range jobs {
		row := i + 1
		color := stateColor(job.Status)

		a.downloadsTable.SetCell(row, 0, tview.NewTableCell(shortID(job.DownloadID)).
			SetExpansion(1).
			SetTextColor(tcell.ColorWhite).
			SetReference(job))
		a.downloadsTable.SetCell(row, 1, tview.NewTableCell(job.Status).
			SetExpansion(1).
			SetTextColor(color))
		a.downloadsTable.SetCell(row, 2, tview.NewTableCell(job.FormatID).
			SetExpansion(1).
			SetTextColor(tcell.ColorWhite))
		a.downloadsTable.SetCell(row, 3, tview.NewTableCell(truncateString(job.URL, 60)).
			SetExpansion(3).
			SetTextColor(tcell.ColorWhite))
		a.downloadsTable.SetCell(row, 4, tview.NewTableCell(relativeTime(job.CreatedAt, snap.FetchedAt)).
			SetExpansion(1).
			SetTextColor(tcell.ColorWhite))
		a.downloadsTable.SetCell(row, 5, tview.NewTableCell(relativeTime(job.UpdatedAt, snap.FetchedAt)).
			SetExpansion(1).
			SetTextColor(tcell.ColorWhite))
	}

	row, _ := a.downloadsTable.GetSelection()
	a.showDetail(row)
}

func (a *App) showDetail(row int) {
	if row < 1 || row >= a.downloadsTable.GetRowCount() {
		a.detailBox.SetText("[dim]Select a download to see details[white]")
		return
	}
	job, ok := a.downloadsTable.GetCell(row, 0).GetReference().(handler.JobResponse)
	if !ok {
		return
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("[white::b]ID:[white] %s\n", job.DownloadID))
	b.WriteString(fmt.Sprintf("[white::b]URL:[white] %s\n", job.URL))
	b.WriteString(fmt.Sprintf("[white::b]Format:[white] %s  [white::b]Status:[white] [%s]%s[white]\n", job.FormatID, stateTag(job.Status), job.Status))
	b.WriteString(fmt.Sprintf("[white::b]Message:[white] %s\n", job.Message))
	b.WriteString(fmt.Sprintf("[white::b]Created:[white] %s", job.CreatedAt.Local().Format("2006-01-02 15:04:05")))
	a.detailBox.SetText(b.String())
}

func nextFilter(current string) string {
	for i, f := range stateFilters {
		if f == current {
			return stateFilters[(i+1)%len(stateFilters)]
		}
	}
	return stateFilters[0]
}

func filterJobs(jobs []handler.JobResponse, state string) []handler.JobResponse {
	if state == "" {
		return jobs
	}
	out := make([]handler.JobResponse, 0, len(jobs))
	for _, j := range jobs {
		if j.Status == state {
			out = append(out, j)
		}
	}
	return out
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
