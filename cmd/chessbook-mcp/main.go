package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/dmmcquay/chessbook/internal/cache"
	"github.com/dmmcquay/chessbook/internal/config"
	"github.com/dmmcquay/chessbook/internal/health"
	"github.com/dmmcquay/chessbook/internal/logging"
	mcptools "github.com/dmmcquay/chessbook/internal/mcp"
	"github.com/dmmcquay/chessbook/internal/metrics"
	"github.com/dmmcquay/chessbook/internal/opening"
	"github.com/dmmcquay/chessbook/internal/ratelimit"
	"github.com/dmmcquay/chessbook/internal/render"
	"github.com/dmmcquay/chessbook/internal/retry"
	httpserver "github.com/dmmcquay/chessbook/internal/server"
	"github.com/dmmcquay/chessbook/internal/shutdown"
	"github.com/dmmcquay/chessbook/internal/store"
)

var (
	// Version information injected at build time.
	GitCommit string = "unknown"
	BuildTime string = "unknown"
)

func main() {
	var (
		showVersion bool
		batch       bool
		pgnDir      string
		outputDir   string
	)
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&batch, "batch", false, "Convert every PGN file of the PGN directory and exit")
	flag.StringVar(&pgnDir, "pgn-dir", "", "Directory with PGN files (overrides config)")
	flag.StringVar(&outputDir, "output-dir", "", "Directory for rendered documents (overrides config)")
	flag.Parse()

	if showVersion {
		fmt.Printf("chessbook-mcp version 0.1.0\n")
		fmt.Printf("Git commit: %s\n", GitCommit)
		fmt.Printf("Build time: %s\n", BuildTime)
		os.Exit(0)
	}

	configPath := config.GetConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if pgnDir != "" {
		cfg.Output.PGNDir = pgnDir
	}
	if outputDir != "" {
		cfg.Output.OutputDir = outputDir
	}

	logger := logging.NewLoggerFromConfig(&logging.Config{
		Level:   cfg.Logging.Level,
		Format:  logging.LogFormat(cfg.Logging.Format),
		Service: cfg.Server.Name,
		Version: cfg.Server.Version,
		Prefix:  cfg.Logging.Prefix,
	})
	logger.Info("Starting chessbook version %s (commit: %s, built: %s)",
		cfg.Server.Version, GitCommit, BuildTime)

	shutdownManager := shutdown.NewManager(logger)
	shutdownManager.HandleSignals()
	ctx := shutdownManager.Context()

	classifier, err := loadOpenings(cfg, logger)
	if err != nil {
		logger.Error("Failed to load openings: %v", err)
		os.Exit(1)
	}

	rm := retry.NewManager(retry.DefaultConfig())
	fontPath := cfg.FontFile()
	fonts := &render.FontLoader{
		Path:   fontPath,
		URL:    cfg.Render.FontURL,
		Client: &http.Client{Timeout: 30 * time.Second},
		Retry:  rm,
		Logger: logger,
	}
	fontTTF, err := fonts.Load(ctx)
	if err != nil {
		// PNG output still works with the fallback face
		logger.Warn("Failed to load diagram font: %v", err)
	}

	prom := metrics.NewPrometheusCollector()
	collector := metrics.NewCollector()

	renderCache := cache.NewManager(&cfg.Cache, logger)
	renderCache.SetObserver(prom)

	renderer := render.New(cfg, classifier, logger)
	renderer.SetFont(fontTTF)
	renderer.SetCache(renderCache)
	renderer.SetMetrics(prom, collector)

	if batch {
		os.Exit(runBatch(ctx, cfg, renderer, rm, logger, shutdownManager))
	}

	rateLimiter := ratelimit.NewLimiter(&cfg.RateLimit, logger)
	if rateLimiter != nil {
		go rateLimiter.Run(ctx, 5*time.Minute)
	}

	healthChecker := health.NewChecker(logger, cfg.Server.Version, GitCommit)
	healthChecker.RegisterCheck("openings", health.OpeningsCheck(classifier))
	healthChecker.RegisterCheck("output", health.WritableDirCheck(cfg.Output.OutputDir))
	healthChecker.RegisterCheck("font", health.FontCheck(fontPath))

	healthAddr := cfg.Server.HealthAddr
	if healthAddr == "" {
		healthAddr = ":8080"
	}
	httpServer := httpserver.NewHTTPServer(healthAddr, logger, healthChecker, func() map[string]interface{} {
		stats := collector.GetStats()
		stats["cache"] = renderCache.Stats()
		return stats
	})
	if err := httpServer.Start(); err != nil {
		logger.Error("Failed to start health check server", "error", err)
		os.Exit(1)
	}
	shutdownManager.Register("http", httpServer.Stop)
	logger.Info("Health check server started", "addr", httpServer.Addr())

	mcpServer := server.NewMCPServer(
		cfg.Server.Name,
		cfg.Server.Version,
		server.WithLogging(),
	)

	middleware := mcptools.NewMiddleware(logger, collector, rateLimiter)
	middleware.SetPrometheus(prom)

	toolsHandler := mcptools.NewToolsHandler(renderer, logger)
	toolsHandler.SetMiddleware(middleware)
	toolsHandler.AddStatus("rateLimit", rateLimiter.GetStatus)
	toolsHandler.AddStatus("server", func() map[string]interface{} {
		return map[string]interface{}{
			"version":   cfg.Server.Version,
			"gitCommit": GitCommit,
			"buildTime": BuildTime,
		}
	})
	toolsHandler.RegisterTools(mcpServer)

	logger.Info("chessbook MCP server ready")

	done := make(chan error, 1)
	go func() {
		done <- server.ServeStdio(mcpServer)
	}()

	select {
	case err := <-done:
		if err != nil {
			logger.Error("Server error", "error", err)
		}
	case <-ctx.Done():
		logger.Info("Server stopped by context cancellation")
	}

	if err := shutdownManager.Shutdown(shutdown.DefaultTimeout); err != nil {
		os.Exit(1)
	}
}

// loadOpenings reads the configured opening set, or the built-in one.
func loadOpenings(cfg *config.Config, logger logging.ContextLogger) (*opening.Classifier, error) {
	var (
		records []opening.Record
		err     error
	)
	if cfg.Openings.Path != "" {
		records, err = opening.LoadFile(cfg.Openings.Path)
	} else {
		records, err = opening.Default()
	}
	if err != nil {
		return nil, err
	}
	logger.Info("Loaded openings", "count", len(records), "path", cfg.Openings.Path)
	return opening.New(records), nil
}

func runBatch(ctx context.Context, cfg *config.Config, renderer *render.Renderer, rm *retry.Manager, logger logging.ContextLogger, sm *shutdown.Manager) int {
	out := store.New(cfg.Output.OutputDir, rm, logger)
	converter := render.NewConverter(renderer, out, logger)

	sum, err := converter.ConvertDir(ctx, cfg.Output.PGNDir)
	_ = sm.Shutdown(shutdown.DefaultTimeout)
	if err != nil {
		logger.Error("Batch conversion finished with errors: %v", err)
		return 1
	}
	fmt.Fprintf(os.Stderr, "Converted %d game(s) from %d file(s) into %s\n", len(sum.Written), sum.Files, out.Dir())
	return 0
}
