package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"

	"github.com/trogers1052/etf-trading-service/internal/api"
	"github.com/trogers1052/etf-trading-service/internal/broker"
	"github.com/trogers1052/etf-trading-service/internal/config"
	"github.com/trogers1052/etf-trading-service/internal/database"
	"github.com/trogers1052/etf-trading-service/internal/kafka"
	"github.com/trogers1052/etf-trading-service/internal/ledger"
	"github.com/trogers1052/etf-trading-service/internal/lifecycle"
	"github.com/trogers1052/etf-trading-service/internal/metrics"
	"github.com/trogers1052/etf-trading-service/internal/money"
	"github.com/trogers1052/etf-trading-service/internal/policy"
	"github.com/trogers1052/etf-trading-service/internal/pricing"
	"github.com/trogers1052/etf-trading-service/internal/redis"
)

func main() {
	// Load .env if present; real deployments use environment variables
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	cfg := config.Load()

	// Connect to database
	db, err := database.New(cfg.Database.ConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Run migrations
	if err := runMigrations(cfg.Database.ConnectionString()); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}
	log.Println("Connected to PostgreSQL database")

	// Load the portfolio ledger from the store
	book, err := ledger.Load(db)
	if err != nil {
		log.Fatalf("Failed to load portfolio ledger: %v", err)
	}
	log.Printf("Ledger loaded: %d holdings, %d sold items, %d pending orders",
		len(book.Holdings()), len(book.SoldItems()), len(book.PendingOrders()))

	// Connect to Redis
	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v (continuing without cache)", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
		log.Println("Connected to Redis cache")
	}

	// Trading policy and money management
	pol := policy.New(policy.Config{
		ProfitTargetPct:       cfg.Trading.ProfitTargetPct,
		AveragingThresholdPct: cfg.Trading.AveragingThresholdPct,
		MaxETFsPerSector:      cfg.Trading.MaxETFsPerSector,
		DailySellLimit:        cfg.Trading.DailySellLimit,
	})
	tracker := &money.Tracker{BaseTradingAmount: cfg.Trading.BaseTradingAmount}

	// Broker client: demo mode keeps orders off the real exchange
	var brokerClient broker.Client
	if cfg.Broker.DemoMode {
		log.Println("Broker demo mode enabled; orders fill against the in-memory fake")
		brokerClient = broker.NewFake()
	} else {
		session := broker.Session{APIKey: cfg.Broker.APIKey, AccessToken: cfg.Broker.AccessToken}
		brokerClient = broker.NewMStocksClient(cfg.Broker.BaseURL, session, nil)
		log.Printf("MStocks broker client initialized (base URL: %s)", cfg.Broker.BaseURL)
	}

	// Create Kafka producer for order events
	producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.OrdersTopic)
	defer producer.Close()
	log.Printf("Kafka producer initialized (brokers: %v)", cfg.Kafka.Brokers)

	// Prometheus collectors
	m := metrics.New()

	// Order lifecycle manager
	manager := lifecycle.New(book, brokerClient, pol, producer, m, lifecycle.Config{
		PollInterval: cfg.Broker.PollInterval,
		MaxPolls:     cfg.Broker.MaxPolls,
	})

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create and start Kafka consumer for price ticks
	ticksConsumer := kafka.NewTicksConsumer(
		cfg.Kafka.Brokers,
		cfg.Kafka.TicksTopic,
		cfg.Kafka.ConsumerGroup,
		book,
	)
	go func() {
		log.Printf("Starting Kafka ticks consumer for topic: %s (group: %s-ticks)",
			cfg.Kafka.TicksTopic, cfg.Kafka.ConsumerGroup)
		if err := ticksConsumer.Start(ctx); err != nil {
			log.Printf("Kafka ticks consumer error: %v", err)
		}
	}()

	// Price source: HTTP quote endpoint behind the Redis cache
	quotes := pricing.NewCachedSource(
		pricing.NewHTTPSource(cfg.Pricing.BaseURL, nil),
		redisClient,
		cfg.Pricing.CacheTTL,
	)

	// Periodic price refresh for held symbols, market hours only
	refresher := pricing.NewRefresher(quotes, cfg.Pricing.RefreshInterval,
		func() []string {
			holdings := book.Holdings()
			seen := make(map[string]bool, len(holdings))
			symbols := make([]string, 0, len(holdings))
			for _, h := range holdings {
				if !seen[h.Symbol] {
					seen[h.Symbol] = true
					symbols = append(symbols, h.Symbol)
				}
			}
			return symbols
		},
		func(symbol string, q pricing.Quote) {
			book.SetCurrentPrice(symbol, q.Price)
			m.SetOpenHoldings(len(book.Holdings()))
		},
	)
	go refresher.Run(ctx)

	// Set up HTTP handler and routes
	handler := api.NewHandler(db, book, manager, pol, tracker, quotes, redisClient)
	router := api.SetupRoutes(handler, m.Handler())

	// Create HTTP server
	addr := cfg.Server.Host + ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // Order placement waits out the polling budget
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Cancel context to stop the consumer and refresher
	cancel()

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	if err := ticksConsumer.Close(); err != nil {
		log.Printf("Error closing Kafka ticks consumer: %v", err)
	}

	log.Println("Server stopped")
}

func runMigrations(databaseUrl string) error {
	m, err := migrate.New("file://./db/migrations", databaseUrl)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil {
		if err == migrate.ErrNoChange {
			log.Println("No migrations to apply; database is up to date.")
			return nil
		}
		return err
	}

	return nil
}
