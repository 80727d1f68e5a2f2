package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/pricehound/pricehound/app/agent"
	"github.com/pricehound/pricehound/app/api"
	"github.com/pricehound/pricehound/app/cfg"
	"github.com/pricehound/pricehound/app/database"
	"github.com/pricehound/pricehound/app/llm"
	"github.com/pricehound/pricehound/app/memory"
	"github.com/pricehound/pricehound/app/pricer"
	"github.com/pricehound/pricehound/app/scrape"
	"github.com/pricehound/pricehound/app/tasks"
)

func main() {
	// Local development convenience, ignored when the file is absent
	_ = godotenv.Load()

	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	logHub := api.NewLogHub(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}), api.DefaultLogCapacity)
	slog.SetDefault(slog.New(logHub))

	slog.Info("Starting Price Hound server", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "migration_version", version, "dirty", dirty)

	categories, err := scrape.LoadCategories(appCfg.FeedsDir)
	if err != nil {
		slog.Error("Failed to load category configurations", "dir", appCfg.FeedsDir, "error", err)
		os.Exit(1)
	}
	if len(categories) == 0 {
		slog.Warn("No category configurations found", "dir", appCfg.FeedsDir)
	} else {
		slog.Info("Loaded category configurations", "count", len(categories))
	}

	httpClient := &http.Client{}

	fetcher := scrape.NewFetcher(categories, httpClient, appCfg.UserAgent, appCfg.MaxDealsPerFeed)
	llmClient := llm.NewClient(httpClient, appCfg.OpenAIBaseUrl, appCfg.OpenAIAPIKey, appCfg.OpenAIModel)

	ftPricer := pricer.NewFTClient(httpClient, appCfg.PricerBaseUrl)
	ragPricer := pricer.NewRAGClient(httpClient, appCfg.PricerBaseUrl)
	xgbPricer := pricer.NewXGBClient(httpClient, appCfg.PricerBaseUrl)
	ensemble := pricer.NewEnsemble(appCfg.EnsembleModelPath)

	store := memory.NewStore(filepath.Join(appCfg.MemoryDir, "memory.json"))
	gate := memory.NewDemoGate(filepath.Join(appCfg.MemoryDir, "demo_state.json"),
		appCfg.MaxDemoRunsPerDay, appCfg.DemoMode)

	scanner := agent.NewScanner(fetcher, llmClient, store)
	planner := agent.NewPlanner(scanner, ftPricer, ragPricer, xgbPricer, ensemble,
		store, appCfg.DealThreshold)

	runRepo := database.NewRunRepository(db)

	runner := tasks.NewRunner()
	runner.Start()
	defer runner.Stop()

	handler := api.NewHandler(categories, store, gate, runRepo, runner, planner,
		store, logHub, appCfg.Version, appCfg.MaxCategorySelection, appCfg.MemoryExpirationDays)
	server := api.NewServer(handler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	// Runner is stopped via defer
	slog.Info("Shutdown complete")
}
