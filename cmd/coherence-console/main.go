package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coherence-console/internal/config"
	"coherence-console/internal/inventory"
	"coherence-console/internal/logging"
	"coherence-console/internal/state"
	"coherence-console/internal/web"
)

// version is set at build time via -ldflags "-X main.version=v1.0.0"
var version = "dev"

func main() {
	// "coherence-console hashpw <password>" prints a value for web.admin_password_hash.
	if len(os.Args) == 3 && os.Args[1] == "hashpw" {
		hash, err := web.HashPassword(os.Args[2])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(hash)
		return
	}

	// Load config first to get log level
	cfg, err := config.Load()
	if err != nil {
		// Can't log yet as slog isn't configured
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.ValidateServer(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	// Shared state for the web UI; every log record also lands in the Logging panel.
	appState := state.New(cfg.Log.MaxEntries)
	logger := logging.Setup(os.Stdout, cfg.Log.Level, appState)
	mainLog := logger.With("component", "Main")

	mainLog.Info("Starting Coherence console", "version", version)
	mainLog.Info("Web UI configuration", "port", cfg.Web.Port, "auth_disabled", cfg.Web.AuthDisabled)

	n, err := inventory.Seed(appState, cfg.Inventory.Path)
	if err != nil {
		mainLog.Error("Failed to load device inventory", "path", cfg.Inventory.Path, "error", err)
		os.Exit(1)
	}
	if cfg.Inventory.Path != "" {
		mainLog.Info("Device inventory loaded", "path", cfg.Inventory.Path, "devices", n)
	}

	webServer := web.New(appState, web.Options{
		Port:    cfg.Web.Port,
		Version: version,
		Auth: web.Auth{
			Username:     cfg.Web.AdminUsername,
			PasswordHash: cfg.Web.AdminPasswordHash,
			APIToken:     cfg.Web.APIToken,
			Disabled:     cfg.Web.AuthDisabled,
		},
		PanelSize: cfg.Log.PanelSize,
		Logger:    logger,
	})
	webServer.Start()

	// Set up graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	mainLog.Info("Shutting down gracefully")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := webServer.Shutdown(ctx); err != nil {
		slog.Error("Web server shutdown failed", "error", err, "component", "Main")
	}
}
