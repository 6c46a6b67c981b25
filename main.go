package main

import (
	"context"
	"embed"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"edahub/adapters/postgres"
	"edahub/internal/apps"
	"edahub/internal/config"
	"edahub/internal/errors"
	"edahub/internal/migration"
	"edahub/internal/session"
	"edahub/ports"
	"edahub/ui"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"
)

//go:embed ui/templates/*.html ui/static/*
var embeddedFiles embed.FS

const shutdownTimeout = 10 * time.Second

// initDatabase connects to PostgreSQL and brings the schema up to date
func initDatabase(ctx context.Context, appConfig *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", appConfig.Database.URL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to ping database")
	}

	migrator := migration.NewRunner()
	if err := migrator.Run(ctx, db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "database migration failed")
	}
	return db, nil
}

// stateStore picks where session state lives: PostgreSQL when configured,
// otherwise process memory
func stateStore(ctx context.Context, appConfig *config.Config) (ports.SessionStateRepository, func(), error) {
	if !appConfig.Database.Enabled() {
		log.Println("DATABASE_URL not set, keeping session state in memory")
		return session.NewMemoryStore(), func() {}, nil
	}
	db, err := initDatabase(ctx, appConfig)
	if err != nil {
		return nil, nil, err
	}
	log.Println("Session state stored in PostgreSQL")
	return postgres.NewSessionStateRepository(db), func() { db.Close() }, nil
}

// pruneSessions evicts idle sessions until ctx is cancelled
func pruneSessions(ctx context.Context, manager *session.Manager, cfg config.SessionConfig) error {
	ticker := time.NewTicker(cfg.PruneInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := manager.Prune(ctx, cfg.TTL); err != nil {
				log.Printf("Session pruning failed: %v", err)
			}
		}
	}
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	gin.SetMode(appConfig.Server.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	states, closeStore, err := stateStore(ctx, appConfig)
	if err != nil {
		log.Fatalf("Failed to initialize session store: %v", err)
	}
	defer closeStore()

	manager := session.NewManager(states, session.NewTableCache())
	registry, err := apps.NewRegistry(manager)
	if err != nil {
		log.Fatalf("Failed to register apps: %v", err)
	}

	server := ui.NewServer(embeddedFiles, registry, manager, appConfig)
	if err := server.Initialize(); err != nil {
		log.Fatalf("Failed to initialize UI server: %v", err)
	}

	httpServer := &http.Server{
		Addr:              ":" + appConfig.Server.Port,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("Starting hub on port %s", appConfig.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return pruneSessions(gctx, manager, appConfig.Session)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Println("Shutting down server...")
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
	log.Println("Server stopped")
}
