package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/stockpulse/backend/internal/api"
	"github.com/stockpulse/backend/internal/api/handlers"
	"github.com/stockpulse/backend/internal/health"
	"github.com/stockpulse/backend/internal/query"
	"github.com/stockpulse/backend/internal/stocks"
	"github.com/stockpulse/backend/pkg/config"
	"github.com/stockpulse/backend/pkg/database"
	"github.com/stockpulse/backend/pkg/logger"
	"github.com/stockpulse/backend/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the REST API server",
	Long: `Starts the HTTP API server.

Endpoints:
  GET  /health                 - Health check
  GET  /api/stocks             - Scored stock listing (search, ordering, pagination)
  GET  /api/stocks/compare     - Two-way comparison (?stock1=&stock2=)
  GET  /api/stocks/{ticker}    - Stock detail with prices and news
  POST /api/ingest/prices      - Trigger price ingestion
  POST /api/ingest/news        - Trigger news ingestion

Example:
  go run ./cmd/stockpulse api
  go run ./cmd/stockpulse api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (overrides PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== StockPulse API Server ===")

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Override port if flag is set
	if apiPort != "" {
		cfg.Port = apiPort
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	log.WithFields(map[string]interface{}{
		"port": cfg.Port,
		"env":  cfg.Env,
	}).Info("Initializing API server")

	// 3. Connect to database
	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	log.Info("Connected to database")

	// 4. Repository and schema
	repo := stocks.NewRepository(db.Pool)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := repo.EnsureSchema(ctx); err != nil {
		cancel()
		return fmt.Errorf("ensure schema: %w", err)
	}
	cancel()

	// 5. Optional Redis-backed score memoization
	var memo *health.Memo
	redisClient, err := redis.New(cfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, scoring without memoization")
	} else if redisClient.Enabled() {
		defer redisClient.Close()
		memo = health.NewMemo(redis.NewCache(redisClient, "stockpulse"))
		log.Info("Score memoization enabled")
	}

	// 6. Query service
	service := query.NewService(repo, memo, log)

	// 7. Ingestion collector for the trigger endpoints
	col := newCollector(cfg, repo, log)

	// 8. Handlers and router
	stockHandler := handlers.NewStockHandler(service, log)
	ingestHandler := handlers.NewIngestHandler(col, cfg, log)
	router := api.NewRouter(stockHandler, ingestHandler, log)

	// 9. Server with graceful shutdown
	server := api.New(cfg, log, router)

	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("\nAvailable endpoints:")
	fmt.Println("  GET  /health")
	fmt.Println("  GET  /api/stocks")
	fmt.Println("  GET  /api/stocks/compare")
	fmt.Println("  GET  /api/stocks/{ticker}")
	fmt.Println("  POST /api/ingest/prices")
	fmt.Println("  POST /api/ingest/news")
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
