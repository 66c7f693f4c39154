package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	firebase "firebase.google.com/go/v4"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"google.golang.org/api/option"

	"github.com/flicky/aqua-storefront/internal/config"
	"github.com/flicky/aqua-storefront/internal/contact"
	"github.com/flicky/aqua-storefront/internal/docstore"
	"github.com/flicky/aqua-storefront/internal/handler"
	"github.com/flicky/aqua-storefront/internal/identity"
	"github.com/flicky/aqua-storefront/internal/invoice"
	"github.com/flicky/aqua-storefront/internal/kv"
	"github.com/flicky/aqua-storefront/internal/service"
	"github.com/flicky/aqua-storefront/internal/store"
	"github.com/flicky/aqua-storefront/internal/worker"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		log.Error("load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var checks []handler.Check

	// Backend
	mode, backendChecks, closeBackend, err := openBackend(ctx, cfg, log)
	if err != nil {
		log.Error("open backend", "error", err)
		os.Exit(1)
	}
	defer closeBackend()
	checks = append(checks, backendChecks...)

	// Local key-value area
	var kvs kv.Store
	switch cfg.KV.Driver {
	case "memory":
		kvs = kv.NewMemory()
		log.Info("using in-memory key-value store")
	default:
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Error("connect to Redis", "error", err)
			os.Exit(1)
		}
		log.Info("connected to Redis")
		kvs = kv.NewRedis(redisClient)
		checks = append(checks, handler.Check{Name: "redis", Ping: func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}})
	}

	// Store
	st, err := store.New(ctx, mode, kvs, store.WithLogger(log), store.WithSessionTTL(cfg.Server.SessionTTL))
	if err != nil {
		log.Error("start store", "error", err)
		os.Exit(1)
	}
	defer st.Close()
	log.Info("store ready", "online", st.Online())

	// RabbitMQ (optional)
	var publisher service.OrderPublisher
	var invoiceWorker *worker.InvoiceWorker
	renderer := invoice.NewRenderer(cfg.Business)
	if cfg.RabbitMQ.URL != "" {
		amqpConn, err := amqp.Dial(cfg.RabbitMQ.URL)
		if err != nil {
			log.Error("connect to RabbitMQ", "error", err)
			os.Exit(1)
		}
		defer amqpConn.Close()

		amqpCh, err := amqpConn.Channel()
		if err != nil {
			log.Error("open RabbitMQ channel", "error", err)
			os.Exit(1)
		}
		defer amqpCh.Close()

		if err := worker.SetupRabbitMQ(amqpCh); err != nil {
			log.Error("setup RabbitMQ", "error", err)
			os.Exit(1)
		}
		log.Info("connected to RabbitMQ")

		publisher = worker.NewPublisher(amqpCh)
		invoiceWorker = worker.NewInvoiceWorker(amqpCh, st, renderer, kvs, cfg.Invoice.ArchiveDir, log)
		checks = append(checks, handler.Check{Name: "rabbitmq", Ping: func(context.Context) error {
			if amqpConn.IsClosed() {
				return amqp.ErrClosed
			}
			return nil
		}})
	}

	// Services
	authSvc := service.NewAuthService(st, cfg.JWT.Secret, cfg.JWT.Expiration)
	productSvc := service.NewProductService(st)
	cartSvc := service.NewCartService(st)
	orderSvc := service.NewOrderService(st, contact.LogOpener{Log: log}, publisher, cfg.Business, log)
	invoiceSvc := service.NewInvoiceService(renderer, orderSvc)
	analyticsSvc := service.NewAnalyticsService(st)

	// Router
	router := handler.NewRouter(handler.Handlers{
		Auth:    handler.NewAuthHandler(authSvc),
		Product: handler.NewProductHandler(productSvc),
		Cart:    handler.NewCartHandler(cartSvc),
		Order:   handler.NewOrderHandler(orderSvc),
		Invoice: handler.NewInvoiceHandler(invoiceSvc),
		Admin:   handler.NewAdminHandler(productSvc, analyticsSvc),
		Feed:    handler.NewFeedHandler(st, log),
		Health:  handler.NewHealthHandler(checks...),
	}, handler.RouterConfig{
		JWTSecret:    cfg.JWT.Secret,
		AllowOrigins: cfg.Server.AllowOrigins,
		Sessions:     authSvc,
		Middleware:   []gin.HandlerFunc{gin.Logger()},
	})

	if invoiceWorker != nil {
		if err := invoiceWorker.Start(ctx); err != nil {
			log.Error("start invoice worker", "error", err)
			os.Exit(1)
		}
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("starting HTTP server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", "error", err)
	}

	if invoiceWorker != nil {
		invoiceWorker.Stop()
		time.Sleep(500 * time.Millisecond)
	}
	cancel()
	log.Info("server stopped")
}

// openBackend connects the configured remote document store and identity
// provider, or falls back to local mode.
func openBackend(ctx context.Context, cfg *config.Config, log *slog.Logger) (store.Mode, []handler.Check, func(), error) {
	switch m := cfg.Mode().(type) {
	case config.RemoteFirestore:
		var opts []option.ClientOption
		if m.Firebase.CredentialsJSON != "" {
			opts = append(opts, option.WithCredentialsJSON([]byte(m.Firebase.CredentialsJSON)))
		}
		app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: m.Firebase.ProjectID}, opts...)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("init firebase: %w", err)
		}
		fs, err := app.Firestore(ctx)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("init firestore: %w", err)
		}
		authClient, err := app.Auth(ctx)
		if err != nil {
			_ = fs.Close()
			return nil, nil, nil, fmt.Errorf("init firebase auth: %w", err)
		}
		log.Info("using Firestore backend", "project_id", m.Firebase.ProjectID)
		mode := store.Remote{
			Docs:     docstore.NewFirestore(fs),
			Identity: identity.NewFirebase(m.Firebase.APIKey, authClient),
		}
		return mode, nil, func() { _ = fs.Close() }, nil

	case config.RemotePostgres:
		if err := docstore.Migrate(m.DB.DSN()); err != nil {
			return nil, nil, nil, fmt.Errorf("migrate: %w", err)
		}

		poolCfg, err := pgxpool.ParseConfig(m.DB.DSN())
		if err != nil {
			return nil, nil, nil, fmt.Errorf("parse db config: %w", err)
		}
		poolCfg.MaxConns = m.DB.MaxConns

		dbPool, err := pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		if err := dbPool.Ping(ctx); err != nil {
			dbPool.Close()
			return nil, nil, nil, fmt.Errorf("ping database: %w", err)
		}
		log.Info("connected to PostgreSQL")

		users := identity.NewPostgres(dbPool)
		if err := users.EnsureUser(ctx, cfg.Admin.Email, cfg.Admin.Password); err != nil {
			dbPool.Close()
			return nil, nil, nil, fmt.Errorf("ensure admin user: %w", err)
		}

		mode := store.Remote{Docs: docstore.NewPostgres(dbPool, log), Identity: users}
		checks := []handler.Check{{Name: "postgres", Ping: dbPool.Ping}}
		return mode, checks, dbPool.Close, nil

	default:
		log.Warn("no remote backend configured, running in local mode")
		return store.Local{Credentials: identity.Credentials{
			Email:    cfg.Admin.Email,
			Password: cfg.Admin.Password,
		}}, nil, func() {}, nil
	}
}
