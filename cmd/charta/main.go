package main

import (
	"bufio"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/pmeridian/charta/internal/api"
	"github.com/pmeridian/charta/internal/config"
	"github.com/pmeridian/charta/internal/log"
	"github.com/pmeridian/charta/internal/service"
	"github.com/pmeridian/charta/internal/store"
	"github.com/pmeridian/charta/internal/tui"
)

const version = "1.0.0"

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.BoolVar(showVersion, "v", false, "print version and exit")
	clearCache := flag.Bool("clear-cache", false, "delete all cached catalog data and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("charta " + version)
		return
	}

	if *clearCache {
		if err := runClearCache(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	logger, err := log.Setup(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = log.Null()
	}
	slog.SetDefault(logger)

	logger.Info("starting charta", "version", version)

	// First run: collect server URL and API key
	if !cfg.IsConfigured() {
		if err := runSetup(cfg); err != nil {
			return err
		}
	}

	client, err := api.NewClient(cfg.Server.URL, cfg.Server.APIKey, logger)
	if err != nil {
		return fmt.Errorf("invalid server URL: %w", err)
	}

	catalogStore, err := store.NewCatalogStore(cfg.CacheDir(), cfg.Server.URL)
	if err != nil {
		logger.Warn("cache unavailable, running memory-only", "error", err)
		catalogStore, _ = store.NewCatalogStore("", "")
	}
	defer catalogStore.Close()

	svc := tui.Services{
		Catalog:  service.NewCatalogService(client, catalogStore, logger),
		Podcasts: service.NewPodcastService(client, catalogStore, logger),
		Books:    service.NewBookService(client, catalogStore, logger),
		Notes:    service.NewNotesService(client, catalogStore, logger),
	}

	model := tui.New(svc, logger)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	logger.Info("starting TUI")

	if _, err := p.Run(); err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	logger.Info("shutting down")
	return nil
}

func runClearCache() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := config.ClearCache(cfg); err != nil {
		return err
	}
	fmt.Println("cache cleared")
	return nil
}

// runSetup prompts for the catalog server URL and API key. The key is read
// with echo off.
func runSetup(cfg *config.Config) error {
	fmt.Println("Welcome to charta!")
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)

	if cfg.Server.URL == "" {
		fmt.Print("Catalog server URL (e.g., http://localhost:5000): ")
		url, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read server URL: %w", err)
		}
		cfg.Server.URL = strings.TrimSpace(url)
	}

	if cfg.Server.APIKey == "" {
		fmt.Print("API key: ")
		keyBytes, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("failed to read API key: %w", err)
		}
		cfg.Server.APIKey = strings.TrimSpace(string(keyBytes))
	}

	if !cfg.IsConfigured() {
		return fmt.Errorf("server URL and API key are required")
	}

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println("✓ Configuration saved")
	fmt.Println()
	return nil
}
