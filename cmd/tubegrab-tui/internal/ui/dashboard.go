package ui

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/rivo/tview"
)

// createDashboardPanel creates the main dashboard panel.
func (a *App) createDashboardPanel() {
	a.queueBox = tview.NewTextView().
		SetDynamicColors(true)
	a.queueBox.SetBorder(true).SetTitle(" Queue ")

	a.systemBox = tview.NewTextView().
		SetDynamicColors(true)
	a.systemBox.SetBorder(true).SetTitle(" Server ")

	a.recentBox = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	a.recentBox.SetBorder(true).SetTitle(" Recent Downloads ")

	topRow := tview.NewFlex().
		AddItem(a.queueBox, 0, 1, false).
		AddItem(a.systemBox, 0, 1, false)

	a.dashboardView = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(topRow, 0, 1, false).
		AddItem(a.recentBox, 0, 2, false)
}

// updateDashboard redraws the dashboard from the latest snapshot.
func (a *App) updateDashboard() {
	snap := a.getSnapshot()
	if snap == nil {
		return
	}

	var queueText strings.Builder
	if q := snap.Ready.Queue; q != nil {
		queueText.WriteString(fmt.Sprintf("[white::b]Waiting for worker:[white] %d\n\n", q.Waiting))
		queueText.WriteString(fmt.Sprintf("[%s]Pending:[white]   %s\n", stateTag("pending"), humanize.Comma(int64(q.Pending))))
		queueText.WriteString(fmt.Sprintf("[%s]Running:[white]   %s\n", stateTag("running"), humanize.Comma(int64(q.Running))))
		queueText.WriteString(fmt.Sprintf("[%s]Completed:[white] %s\n", stateTag("completed"), humanize.Comma(int64(q.Completed))))
		queueText.WriteString(fmt.Sprintf("[%s]Failed:[white]    %s\n", stateTag("failed"), humanize.Comma(int64(q.Failed))))
	} else {
		queueText.WriteString("[yellow]No queue statistics[white]")
	}
	a.queueBox.SetText(queueText.String())

	var systemText strings.Builder
	systemText.WriteString(fmt.Sprintf("[white::b]Status:[white] [green]%s[white]\n", snap.Ready.Status))
	if s := snap.Stats; s != nil {
		systemText.WriteString(fmt.Sprintf("[white::b]Uptime:[white] %s\n", s.UptimeHuman))
		systemText.WriteString(fmt.Sprintf("[white::b]Memory:[white] %d MB alloc / %d MB sys\n", s.MemAllocMB, s.MemSysMB))
		systemText.WriteString(fmt.Sprintf("[white::b]Goroutines:[white] %d\n\n", s.NumGoroutines))
		systemText.WriteString(fmt.Sprintf("[white::b]Download path:[white] %s\n", s.DownloadPath))
		diskColor := "green"
		if s.DiskUsedPct > 90 {
			diskColor = "red"
		} else if s.DiskUsedPct > 75 {
			diskColor = "yellow"
		}
		systemText.WriteString(fmt.Sprintf("[white::b]Disk:[white] [%s]%.1f%% used[white], %s free\n", diskColor, s.DiskUsedPct, s.DiskFreeHuman))
	}
	a.systemBox.SetText(systemText.String())

	var recentText strings.Builder
	if snap.Downloads == nil || len(snap.Downloads.Downloads) == 0 {
		recentText.WriteString("[dim]No downloads yet[white]")
	} else {
		for i, d := range snap.Downloads.Downloads {
			if i == 10 {
				break
			}
			recentText.WriteString(fmt.Sprintf("[%s]%-9s[white] %s [dim]%s[white]\n",
				stateTag(d.Status), d.Status, truncateString(d.URL, 60), relativeTime(d.UpdatedAt, snap.FetchedAt)))
			recentText.WriteString(fmt.Sprintf("  %s\n", truncateString(d.Message, 80)))
		}
	}
	a.recentBox.SetText(recentText.String())
}
