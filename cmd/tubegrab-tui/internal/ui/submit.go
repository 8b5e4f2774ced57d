package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/iconidentify/tubegrab/internal/domain"
)

// createSubmitPanel creates the URL lookup and format picker.
func (a *App) createSubmitPanel() {
	a.urlInput = tview.NewInputField().
		SetLabel("Video URL: ").
		SetFieldWidth(0)
	a.urlInput.SetBorder(true).SetTitle(" New Download - Enter to look up formats ")

	a.videoBox = tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true)
	a.videoBox.SetBorder(true).SetTitle(" Video ")

	a.optionsList = tview.NewList().
		ShowSecondaryText(false).
		SetHighlightFullLine(true)
	a.optionsList.SetBorder(true).SetTitle(" Formats - Enter to download, Tab to edit URL ")

	a.optionsList.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyTab {
			a.app.SetFocus(a.urlInput)
			return nil
		}
		return event
	})

	a.urlInput.SetDoneFunc(func(key tcell.Key) {
		switch key {
		case tcell.KeyEnter:
			url := strings.TrimSpace(a.urlInput.GetText())
			if url == "" {
				return
			}
			a.videoBox.SetText("[yellow]Looking up video...[white]")
			a.optionsList.Clear()
			go a.lookupVideo(url)
		case tcell.KeyTab:
			a.app.SetFocus(a.optionsList)
		}
	})

	body := tview.NewFlex().
		AddItem(a.videoBox, 0, 1, false).
		AddItem(a.optionsList, 0, 1, false)

	a.submitView = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.urlInput, 3, 0, true).
		AddItem(body, 0, 1, false)
}

// lookupVideo runs off the draw goroutine.
func (a *App) lookupVideo(url string) {
	ctx, cancel := context.WithTimeout(a.ctx, a.cfg.RequestTimeout)
	defer cancel()

	info, err := a.api.VideoInfo(ctx, url)
	if err != nil {
		a.app.QueueUpdateDraw(func() {
			a.videoBox.SetText(fmt.Sprintf("[red]%v[white]", err))
		})
		return
	}

	a.app.QueueUpdateDraw(func() {
		a.videoBox.SetText(videoSummary(info.Video))
		a.optionsList.Clear()
		if len(info.Options) == 0 {
			a.optionsList.AddItem("No downloadable formats", "", 0, nil)
			return
		}
		for _, opt := range info.Options {
			formatID := opt.FormatID
			a.optionsList.AddItem(optionLabel(opt), "", 0, func() {
				go a.submitDownload(url, formatID)
			})
		}
		a.app.SetFocus(a.optionsList)
	})
}

func (a *App) submitDownload(url, formatID string) {
	ctx, cancel := context.WithTimeout(a.ctx, 15*time.Second)
	defer cancel()

	resp, err := a.api.Submit(ctx, url, formatID)
	if err != nil {
		a.updateStatusBar(fmt.Sprintf("[red]Download rejected: %v", err))
		return
	}

	a.updateStatusBar(fmt.Sprintf("[green]Queued %s (format %s)", shortID(resp.DownloadID), formatID))
	a.app.QueueUpdateDraw(func() {
		a.switchPanel(PanelDownloads)
	})
	a.refreshStatus()
}

func videoSummary(v domain.VideoMetadata) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[white::b]%s[white]\n\n", v.Title))
	verified := ""
	if v.Channel.Verified {
		verified = " [green](verified)[white]"
	}
	b.WriteString(fmt.Sprintf("[white::b]Channel:[white] %s%s, %s subscribers\n", v.Channel.Name, verified, v.Channel.Subscribers))
	b.WriteString(fmt.Sprintf("[white::b]Duration:[white] %s\n", v.Duration))
	b.WriteString(fmt.Sprintf("[white::b]Views:[white] %s  [white::b]Likes:[white] %s\n", v.Views, v.Likes))
	b.WriteString(fmt.Sprintf("[white::b]Uploaded:[white] %s\n\n", v.UploadDate))
	b.WriteString(v.Description)
	return b.String()
}

func optionLabel(opt domain.DownloadOption) string {
	label := fmt.Sprintf("%-5s %-8s %8s  (%s)", opt.Type, opt.Quality, opt.Size, opt.FormatID)
	if opt.Recommended {
		label += "  recommended"
	}
	return label
}
