package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/folio/internal/adapter"
	"github.com/mmcdole/folio/internal/analytics"
	"github.com/mmcdole/folio/internal/domain"
	"github.com/mmcdole/folio/internal/eventloop"
	"github.com/mmcdole/folio/internal/fetch"
	"github.com/mmcdole/folio/internal/preview"
	"github.com/mmcdole/folio/internal/store"
	"github.com/mmcdole/folio/internal/tui"
)

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	var (
		showVersion bool
		configPath  string
		prefetch    bool
		clearCache  bool
	)
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.BoolVar(&prefetch, "prefetch", false, "download every missing preview and exit")
	flag.BoolVar(&clearCache, "clear-cache", false, "remove cached previews and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("folio %s\n", Version)
		return
	}

	if err := run(configPath, prefetch, clearCache); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, prefetch, clearCache bool) error {
	// Load configuration
	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	logger, err := adapter.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = adapter.NullLogger()
	}
	slog.SetDefault(logger)

	logger.Info("starting folio", "version", Version)

	if clearCache {
		return runClearCache(cfg.CacheDir(), os.Stdout)
	}

	// Check if configured
	if len(cfg.Showcase.Projects) == 0 {
		return runSetupFlow(cfg)
	}

	assets, err := store.NewAssetStore(cfg.CacheDir())
	if err != nil {
		return fmt.Errorf("failed to open preview cache: %w", err)
	}
	defer assets.Close()

	client := fetch.NewClient(cfg.Preview.Timeout, cfg.Preview.MaxBytes, logger)

	var sink domain.AnalyticsSink = analytics.Nop{}
	if cfg.Analytics.Enabled {
		sink = analytics.NewLogSink(logger)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if prefetch {
		return runPrefetch(ctx, cfg.Showcase.Projects, assets, client, os.Stdout, logger)
	}

	loop := eventloop.New(eventloop.WithFrameInterval(cfg.Preview.FrameInterval))
	defer loop.Close()

	events := make(chan domain.PreviewEvent, 256)
	page := tui.NewPage(cfg.UI.CardHeight, cfg.UI.CardGap)

	showcase := preview.NewShowcase(cfg.Showcase.Projects, page, loop, client, preview.ShowcaseOptions{
		QuietInterval: cfg.Preview.QuietInterval,
		Store:         assets,
		Sink:          sink,
		Observer:      tui.NewChannelObserver(events),
		Logger:        logger,
		Parent:        ctx,
	})
	showcase.Attach()
	defer showcase.Detach()

	// Create TUI model
	model := tui.NewModel(showcase, page, events, adapter.NewOpener(cfg.Viewer, logger), logger)

	// Run the TUI
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	logger.Info("starting TUI", "projects", len(cfg.Showcase.Projects))

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	logger.Info("shutting down")
	return nil
}

// runClearCache wipes every stored preview in dir
func runClearCache(dir string, out io.Writer) error {
	if dir == "" {
		fmt.Fprintln(out, "Preview cache is disabled, nothing to clear")
		return nil
	}

	assets, err := store.NewAssetStore(dir)
	if err != nil {
		return fmt.Errorf("failed to open preview cache: %w", err)
	}
	defer assets.Close()

	n := len(assets.ListAssets())
	if err := assets.InvalidateAll(); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	fmt.Fprintf(out, "✓ Removed %d cached previews\n", n)
	return nil
}

func loadConfig(path string) (*adapter.Config, error) {
	if path != "" {
		return adapter.LoadConfigFile(path)
	}
	return adapter.LoadConfig()
}

// runSetupFlow offers to write a starter config when no projects exist
func runSetupFlow(cfg *adapter.Config) error {
	fmt.Println()
	fmt.Println("Welcome to Folio!")
	fmt.Println()
	fmt.Println("No projects are configured yet.")
	fmt.Print("Write a sample config to get started? [y/N]: ")

	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	if answer := strings.ToLower(strings.TrimSpace(input)); answer != "y" && answer != "yes" {
		fmt.Println("Add showcase.projects to config.yaml and run folio again.")
		return nil
	}

	cfg.Showcase.Projects = []domain.Project{
		{
			ID:         "sample",
			Title:      "Sample Project",
			Summary:    "Replace with your own work",
			Tags:       []string{"example"},
			PreviewURL: "https://upload.wikimedia.org/wikipedia/commons/2/2c/Rotating_earth_%28large%29.gif",
		},
	}
	if err := adapter.SaveConfig(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println()
	fmt.Println("✓ Configuration saved!")
	fmt.Println()
	fmt.Println("Run folio again to start the showcase.")
	return nil
}
