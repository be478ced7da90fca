package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MarcusAlienx/casanala/internal/cache"
	"github.com/MarcusAlienx/casanala/internal/chat"
	"github.com/MarcusAlienx/casanala/internal/config"
	"github.com/MarcusAlienx/casanala/internal/database"
	"github.com/MarcusAlienx/casanala/internal/docstore"
	"github.com/MarcusAlienx/casanala/internal/events"
	"github.com/MarcusAlienx/casanala/internal/logger"
	"github.com/MarcusAlienx/casanala/internal/router"
	"github.com/MarcusAlienx/casanala/internal/ws"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		logger.L().Error("server exited", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	logger.Sync()
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := logger.Init(os.Getenv("ENV") == "development"); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	log := logger.L()

	cfg, err := config.Load(log)
	if err != nil {
		return err
	}

	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	hub := ws.NewHub(log.Named("ws"))
	go hub.Run(ctx)

	notifiers := events.Multi{hub}
	if cfg.RabbitMQURL != "" {
		conn, err := events.Dial(cfg.RabbitMQURL)
		if err != nil {
			return err
		}
		defer conn.Close()
		notifiers = append(notifiers, events.NewPublisher(conn, log.Named("rabbitmq")))
		log.Info("publishing order events", zap.String("exchange", events.OrdersExchange))
	}

	deps := router.Deps{Notifier: notifiers, Hub: hub}

	if cfg.RedisURL != "" {
		rc, err := cache.NewRoleCache(cfg.RedisURL, cfg.RoleCacheTTL, log.Named("redis"))
		if err != nil {
			return err
		}
		defer rc.Close()
		deps.RoleCache = rc
	}

	var model llms.Model
	if cfg.GoogleAPIKey != "" {
		m, err := googleai.New(ctx,
			googleai.WithAPIKey(cfg.GoogleAPIKey),
			googleai.WithDefaultModel(cfg.LLMModel),
		)
		if err != nil {
			return fmt.Errorf("init google ai: %w", err)
		}
		model = m
	} else {
		log.Warn("GOOGLE_API_KEY not set, chatbot will answer with the fallback message")
	}
	deps.Assistant = chat.NewAssistant(model, cfg.LLMTimeout, log.Named("chat"))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.New(cfg, store, deps, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", zap.String("port", cfg.Port), zap.String("backend", cfg.StoreBackend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openStore connects the configured backend. The returned func releases it.
func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (router.Store, func(), error) {
	switch cfg.StoreBackend {
	case config.BackendFirestore:
		ds, err := docstore.Open(ctx, cfg.FirestoreProjectID, log)
		if err != nil {
			return nil, nil, err
		}
		log.Info("firestore connected", zap.String("project", cfg.FirestoreProjectID))
		return ds, func() { ds.Close() }, nil

	default:
		if cfg.AutoMigrate {
			if err := database.Migrate(cfg.DatabaseURL); err != nil {
				return nil, nil, fmt.Errorf("migrate: %w", err)
			}
			log.Info("database migrations applied")
		}
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("create pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("ping database: %w", err)
		}
		log.Info("postgres connected")
		return database.New(pool), pool.Close, nil
	}
}
