// tubegrab-tui is a terminal monitor for a running tubegrab server.
// It shows queue health, lists download jobs and submits new downloads.
package main

import (
	"fmt"
	"os"

	"github.com/iconidentify/tubegrab/cmd/tubegrab-tui/internal/client"
	"github.com/iconidentify/tubegrab/cmd/tubegrab-tui/internal/config"
	"github.com/iconidentify/tubegrab/cmd/tubegrab-tui/internal/ui"
)

func main() {
	cfg := config.Load()

	api := client.New(cfg.ServerURL, cfg.APIKey, cfg.RequestTimeout)

	app, err := ui.NewApp(cfg, api)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing TUI: %v\n", err)
		os.Exit(1)
	}

	if err := app.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
