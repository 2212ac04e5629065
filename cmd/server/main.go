/**
 * @description
 * This is the main entry point for the ledger service. It is responsible for
 * initializing all components of the service, including configuration, the
 * backing store (PostgreSQL or in-memory), the RabbitMQ event producer, the
 * dashboard broadcaster, the optional activity simulator, and the HTTP server.
 * It wires everything together and starts the service.
 *
 * @dependencies
 * - log, net/http: Standard Go libraries for logging and HTTP server functionality.
 * - github.com/jackc/pgx/v5: PostgreSQL driver.
 * - internal/api, internal/app, internal/config, internal/store: Internal packages for the service.
 * - pkg/rabbitmq: Client for RabbitMQ.
 */

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/coreledger/ledger-service/internal/api"
	"github.com/coreledger/ledger-service/internal/app"
	"github.com/coreledger/ledger-service/internal/config"
	"github.com/coreledger/ledger-service/internal/store"
	"github.com/coreledger/ledger-service/pkg/rabbitmq"
)

func main() {
	// Load application configuration from environment variables.
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"config load failed\" err=%v", err)
	}

	log.Printf("level=info component=bootstrap msg=\"starting ledger-service\" port=%s store=%s", cfg.ServerPort, cfg.StoreDriver)

	repository, cleanup, err := buildRepository(cfg)
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"store init failed\" err=%v", err)
	}
	defer cleanup()

	// Initialize the RabbitMQ producer to publish dashboard events. A missing
	// broker degrades to a no-op publisher; the ledger keeps serving requests.
	var producer rabbitmq.Publisher
	if strings.TrimSpace(cfg.RabbitMQURL) == "" {
		log.Println("level=info component=bootstrap msg=\"rabbitmq url not configured; dashboard events disabled\"")
		producer = &rabbitmq.NoopPublisher{}
	} else {
		eventProducer, err := rabbitmq.NewEventProducer(cfg.RabbitMQURL, cfg.DashboardEventExchange)
		if err != nil {
			log.Printf("level=warn component=bootstrap msg=\"rabbitmq producer unavailable; using fallback\" err=%v", err)
			producer = &rabbitmq.NoopPublisher{}
		} else {
			producer = eventProducer
			log.Println("level=info component=bootstrap msg=\"rabbitmq producer connected\"")
		}
	}
	defer producer.Close()

	// Initialize the core application service with its dependencies.
	ledgerService := app.NewService(repository)

	// Dashboard fan-out: WebSocket clients plus the event exchange.
	broadcaster := api.NewDashboardBroadcaster(ledgerService, producer, cfg.RecentTransactionsLimit)

	// Initialize the API handlers and router.
	ledgerHandlers := api.NewLedgerHandlers(ledgerService, broadcaster, cfg.RecentTransactionsLimit)
	router := api.LedgerRoutes(ledgerHandlers, broadcaster, cfg.AllowedOrigins())

	// Optional background activity simulator for demo deployments.
	if cfg.SimulatorEnabled {
		simulator := app.NewSimulator(ledgerService, cfg.SimulatorSchedule, broadcaster.Broadcast)
		if err := simulator.Start(); err != nil {
			log.Fatalf("level=fatal component=bootstrap msg=\"simulator start failed\" err=%v", err)
		}
		defer simulator.Stop()
	}

	// Start the HTTP server.
	serverAddr := fmt.Sprintf(":%s", cfg.ServerPort)
	log.Printf("level=info component=http msg=\"server listening\" addr=%s", serverAddr)

	server := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("level=fatal component=http msg=\"server stopped unexpectedly\" err=%v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Println("level=info component=http msg=\"shutdown started\"")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("level=error component=http msg=\"shutdown failed\" err=%v", err)
	}

	log.Println("level=info component=http msg=\"shutdown complete\"")
}

// buildRepository selects the backing store from configuration. The returned
// cleanup function closes pooled resources on shutdown.
func buildRepository(cfg config.Config) (store.Repository, func(), error) {
	switch cfg.StoreDriver {
	case config.StoreMemory:
		log.Println("level=info component=bootstrap msg=\"using in-memory store\"")
		return store.NewMemoryRepository(), func() {}, nil

	case config.StorePostgres:
		poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to parse database url: %w", err)
		}

		poolConfig.MaxConns = 25
		poolConfig.MinConns = 5
		poolConfig.MaxConnLifetime = 30 * time.Minute
		poolConfig.MaxConnIdleTime = 5 * time.Minute

		// Disable prepared statement caching to prevent conflicts behind
		// connection poolers.
		poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

		dbpool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}

		repository := store.NewPostgresRepository(dbpool)

		migrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := repository.Migrate(migrateCtx); err != nil {
			dbpool.Close()
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}

		log.Println("level=info component=bootstrap msg=\"database connected\"")
		return repository, dbpool.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
