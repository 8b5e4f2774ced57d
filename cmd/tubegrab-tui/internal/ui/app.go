// Package ui provides the terminal user interface for the tubegrab TUI.
package ui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/iconidentify/tubegrab/cmd/tubegrab-tui/internal/client"
	"github.com/iconidentify/tubegrab/cmd/tubegrab-tui/internal/config"
	"github.com/iconidentify/tubegrab/internal/api/handler"
)

// Panel identifies one page of the TUI.
type Panel int

const (
	PanelDashboard Panel = iota
	PanelDownloads
	PanelSubmit
	PanelHelp
)

// page binds a panel to its tview page and shortcuts. fnKey is
// tcell.KeyNUL for panels reachable only by rune.
type page struct {
	name  string
	title string
	key   rune
	fnKey tcell.Key
	view  func(a *App) tview.Primitive
	focus func(a *App) tview.Primitive
}

var panels = map[Panel]page{
	PanelDashboard: {
		name: "dashboard", title: "Dashboard", key: '1', fnKey: tcell.KeyF1,
		view: func(a *App) tview.Primitive { return a.dashboardView },
	},
	PanelDownloads: {
		name: "downloads", title: "Downloads", key: '2', fnKey: tcell.KeyF2,
		view:  func(a *App) tview.Primitive { return a.downloadsView },
		focus: func(a *App) tview.Primitive { return a.downloadsTable },
	},
	PanelSubmit: {
		name: "submit", title: "New Download", key: '3', fnKey: tcell.KeyF3,
		view:  func(a *App) tview.Primitive { return a.submitView },
		focus: func(a *App) tview.Primitive { return a.urlInput },
	},
	PanelHelp: {
		name: "help", title: "Help", key: '?', fnKey: tcell.KeyNUL,
		view: func(a *App) tview.Primitive { return a.helpView },
	},
}

// panelOrder fixes page registration order; the first page is shown at start.
var panelOrder = []Panel{PanelDashboard, PanelDownloads, PanelSubmit, PanelHelp}

// Snapshot is one poll of the server.
type Snapshot struct {
	Ready     *handler.HealthResponse
	Stats     *handler.SystemStats
	Downloads *handler.ListResponse
	FetchedAt time.Time
}

// App is the main TUI application.
type App struct {
	app          *tview.Application
	pages        *tview.Pages
	cfg          *config.Config
	api          *client.Client
	currentPanel Panel
	ctx          context.Context
	cancel       context.CancelFunc

	snapMu   sync.RWMutex
	snapshot *Snapshot
	// stateFilter is read and written on the draw goroutine only.
	stateFilter string

	// UI components
	mainFlex       *tview.Flex
	header         *tview.TextView
	footer         *tview.TextView
	statusBar      *tview.TextView
	dashboardView  *tview.Flex
	queueBox       *tview.TextView
	systemBox      *tview.TextView
	recentBox      *tview.TextView
	downloadsView  *tview.Flex
	downloadsTable *tview.Table
	detailBox      *tview.TextView
	submitView     *tview.Flex
	urlInput       *tview.InputField
	videoBox       *tview.TextView
	optionsList    *tview.List
	helpView       *tview.TextView
}

// NewApp creates a new TUI application.
func NewApp(cfg *config.Config, api *client.Client) (*App, error) {
	if cfg.ServerURL == "" {
		return nil, fmt.Errorf("server URL is required")
	}
	ctx, cancel := context.WithCancel(context.Background())

	a := &App{
		app:    tview.NewApplication(),
		pages:  tview.NewPages(),
		cfg:    cfg,
		api:    api,
		ctx:    ctx,
		cancel: cancel,
	}

	a.setupUI()
	return a, nil
}

// setupUI builds the layout: header, pages, status bar and key legend.
func (a *App) setupUI() {
	a.header = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	a.header.SetBackgroundColor(tcell.ColorDarkBlue)

	a.footer = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter).
		SetText(keyLegend())
	a.footer.SetBackgroundColor(tcell.ColorDarkBlue)

	a.statusBar = tview.NewTextView().
		SetDynamicColors(true)
	a.statusBar.SetBackgroundColor(tcell.ColorDarkGreen)

	a.createDashboardPanel()
	a.createDownloadsPanel()
	a.createSubmitPanel()
	a.createHelpPanel()

	for i, panel := range panelOrder {
		p := panels[panel]
		a.pages.AddPage(p.name, p.view(a), true, i == 0)
	}

	a.mainFlex = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.header, 3, 0, false).
		AddItem(a.pages, 0, 1, true).
		AddItem(a.statusBar, 1, 0, false).
		AddItem(a.footer, 1, 0, false)

	a.app.SetInputCapture(a.handleGlobalKeys)
	a.app.SetRoot(a.mainFlex, true)
	a.updateHeader()
}

func keyLegend() string {
	var b strings.Builder
	for _, panel := range panelOrder {
		p := panels[panel]
		fmt.Fprintf(&b, "[yellow]%c[white]:%s ", p.key, p.title)
	}
	b.WriteString("[yellow]r[white]:Refresh [yellow]q[white]:Quit")
	return b.String()
}

// handleGlobalKeys routes panel shortcuts, refresh and quit.
func (a *App) handleGlobalKeys(event *tcell.EventKey) *tcell.EventKey {
	// The URL field owns every key except Esc, which hands focus to the options.
	if a.app.GetFocus() == a.urlInput {
		if event.Key() == tcell.KeyEscape {
			a.app.SetFocus(a.optionsList)
			return nil
		}
		return event
	}

	if event.Key() == tcell.KeyEscape {
		a.switchPanel(PanelDashboard)
		return nil
	}

	for _, panel := range panelOrder {
		p := panels[panel]
		if (event.Key() == tcell.KeyRune && event.Rune() == p.key) ||
			(p.fnKey != tcell.KeyNUL && event.Key() == p.fnKey) {
			a.switchPanel(panel)
			return nil
		}
	}

	if event.Key() == tcell.KeyRune {
		switch event.Rune() {
		case 'q', 'Q':
			a.Stop()
			return nil
		case 'r', 'R':
			go a.refreshStatus()
			return nil
		}
	}
	return event
}

func (a *App) switchPanel(panel Panel) {
	a.currentPanel = panel
	p := panels[panel]
	a.pages.SwitchToPage(p.name)
	if p.focus != nil {
		a.app.SetFocus(p.focus(a))
	}
	a.updateHeader()
}

func (a *App) updateHeader() {
	a.header.SetText(fmt.Sprintf("\n[white::b]tubegrab[white] - [yellow]%s[white] | Server: [green]%s",
		panels[a.currentPanel].title, a.api.BaseURL()))
}

// updateStatusBar must not be called from the draw goroutine.
func (a *App) updateStatusBar(msg string) {
	a.app.QueueUpdateDraw(func() {
		a.statusBar.SetText(fmt.Sprintf(" %s | Last refresh: %s", msg, time.Now().Format("15:04:05")))
	})
}

// Run polls the server in the background and blocks until the user quits.
func (a *App) Run() error {
	go a.pollLoop()
	go a.refreshStatus()
	return a.app.Run()
}

// Stop ends polling and tears down the terminal.
func (a *App) Stop() {
	a.cancel()
	a.app.Stop()
}

func (a *App) pollLoop() {
	ticker := time.NewTicker(a.cfg.StatusRefresh)
	defer ticker.Stop()

	for {
		select {
		case <-a.ctx.Done():
			return
		case <-ticker.C:
			a.refreshStatus()
		}
	}
}

// refreshStatus polls readiness, system stats and the job list.
func (a *App) refreshStatus() {
	ctx, cancel := context.WithTimeout(a.ctx, 10*time.Second)
	defer cancel()

	ready, err := a.api.Ready(ctx)
	if err != nil {
		a.updateStatusBar(fmt.Sprintf("[red]Server unreachable: %v", err))
		return
	}

	snap := &Snapshot{Ready: ready, FetchedAt: time.Now()}

	if stats, err := a.api.Stats(ctx); err == nil {
		snap.Stats = stats
	}

	// Fetch every state and filter locally so switching filters is instant.
	downloads, err := a.api.ListDownloads(ctx, "", a.cfg.PageSize, 0)
	if err != nil {
		a.updateStatusBar(fmt.Sprintf("[red]Error listing downloads: %v", err))
		return
	}
	snap.Downloads = downloads

	a.snapMu.Lock()
	a.snapshot = snap
	a.snapMu.Unlock()

	a.app.QueueUpdateDraw(func() {
		a.updateDashboard()
		a.updateDownloadsTable()
	})

	if q := ready.Queue; q != nil && q.Failed > 0 {
		a.updateStatusBar(fmt.Sprintf("[yellow]%d failed download(s)", q.Failed))
	} else {
		a.updateStatusBar("[green]Server ready")
	}
}

func (a *App) getSnapshot() *Snapshot {
	a.snapMu.RLock()
	defer a.snapMu.RUnlock()
	return a.snapshot
}
