package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"coherence-console/internal/client"
	"coherence-console/internal/config"
	"coherence-console/internal/dom"
	"coherence-console/internal/logging"
	"coherence-console/internal/tui"
	"coherence-console/internal/widget"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// The terminal belongs to the UI; logs go to a file.
	logPath := filepath.Join(os.TempDir(), "coherence-tui.log")
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()
	logger := logging.Setup(logFile, cfg.Log.Level, nil)

	c, err := client.New(cfg.Console.URL, cfg.Console.Token)
	if err != nil {
		return err
	}
	logger.Info("Connecting to console", "url", cfg.Console.URL, "component", "Main")

	doc := dom.NewDocument(widget.HeaderID, widget.BodyID)
	clicks := make(chan dom.Target)
	page := widget.NewPage(doc, c, widget.Options{PanelSize: cfg.Log.PanelSize, Logger: logger})

	prog := tea.NewProgram(tui.New(doc, clicks), tea.WithAltScreen())
	doc.OnChange(func() { prog.Send(tui.ChangedMsg{}) })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go page.Run(ctx, clicks)

	if _, err := prog.Run(); err != nil {
		return fmt.Errorf("run terminal ui: %w", err)
	}
	return nil
}
