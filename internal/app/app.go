package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mongoadapter "storefront-backend/internal/adapter/mongo"
	natsadapter "storefront-backend/internal/adapter/nats"
	redisadapter "storefront-backend/internal/adapter/redis"
	"storefront-backend/internal/config"
	"storefront-backend/internal/httpapi"
	"storefront-backend/internal/platform/logger"
	"storefront-backend/internal/platform/metrics"
	"storefront-backend/internal/realtime"
	"storefront-backend/internal/repository"
	"storefront-backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const metricsNamespace = "storefront"

type App struct {
	cfg         *config.Config
	log         *zap.Logger
	server      *http.Server
	hub         *realtime.Hub
	relay       *natsadapter.Relay
	natsConn    *nats.Conn
	mongoClient *mongo.Client
	redisClient *redis.Client
}

func New(cfg *config.Config) (*App, error) {
	ctx := context.Background()

	appLogger := logger.New(logger.Config{
		Level:      cfg.Logger.Level,
		Encoding:   cfg.Logger.Encoding,
		TimeFormat: cfg.Logger.TimeFormat,
	})
	appLogger.Info("Configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("http_port", cfg.HTTP.Port),
	)

	if cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	a := &App{cfg: cfg, log: appLogger}

	appLogger.Info("Initializing MongoDB client...")
	mongoClient, err := mongoadapter.NewClient(ctx, cfg.MongoDB)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MongoDB client: %w", err)
	}
	a.mongoClient = mongoClient
	db := mongoClient.Database(cfg.MongoDB.Database)
	mongoadapter.EnsureIndexes(ctx, db, appLogger)
	appLogger.Info("MongoDB client initialized successfully", zap.String("database", cfg.MongoDB.Database))

	userRepo := mongoadapter.NewUserRepository(db)
	productRepo := mongoadapter.NewProductRepository(db)
	orderRepo := mongoadapter.NewOrderRepository(db)
	cartRepo := mongoadapter.NewCartRepository(db)
	tx := mongoadapter.NewTransactor(mongoClient, cfg.MongoDB.UseTransactions)

	var catalogCache repository.ProductListCache
	if cfg.Redis.Addr != "" {
		appLogger.Info("Initializing Redis client...")
		redisClient, err := redisadapter.NewClient(ctx, cfg.Redis)
		if err != nil {
			a.closeStores()
			return nil, fmt.Errorf("failed to initialize Redis client: %w", err)
		}
		a.redisClient = redisClient
		catalogCache = redisadapter.NewProductListCache(redisClient, cfg.Redis.TTL)
		appLogger.Info("Catalog cache enabled", zap.Duration("ttl", cfg.Redis.TTL))
	}

	m := metrics.New(metricsNamespace)
	origins := cfg.HTTP.Origins()
	a.hub = realtime.NewHub(appLogger,
		realtime.WithSendBuffer(cfg.Realtime.SendBuffer),
		realtime.WithMetrics(m),
		realtime.WithAllowedOrigins(origins),
	)

	if cfg.NATS.URL != "" {
		appLogger.Info("Connecting to NATS...", zap.String("url", cfg.NATS.URL))
		conn, err := natsadapter.NewConnection(cfg.NATS.URL, appLogger)
		if err != nil {
			a.closeStores()
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		a.natsConn = conn
		relay, err := natsadapter.NewRelay(conn, cfg.NATS.Subject, a.hub, appLogger)
		if err != nil {
			conn.Close()
			a.closeStores()
			return nil, fmt.Errorf("failed to start NATS relay: %w", err)
		}
		a.relay = relay
		a.hub.SetUpstream(relay)
		appLogger.Info("Realtime events relayed through NATS", zap.String("subject", cfg.NATS.Subject))
	}

	services := httpapi.Services{
		Accounts:   service.NewAccountService(userRepo, appLogger),
		Catalog:    service.NewCatalogService(productRepo, catalogCache, a.hub, appLogger),
		Orders:     service.NewOrderService(orderRepo, productRepo, appLogger),
		Cart:       service.NewCartService(cartRepo, appLogger),
		AdminUsers: service.NewAdminUserService(userRepo, orderRepo, tx, appLogger),
	}

	router := httpapi.NewRouter(services, httpapi.Options{
		Log:      appLogger,
		Metrics:  m,
		Realtime: a.hub,
		Health: func(ctx context.Context) error {
			return mongoadapter.Ping(ctx, mongoClient)
		},
		AllowedOrigins: origins,
	})

	a.server = &http.Server{
		Addr:              ":" + cfg.HTTP.Port,
		Handler:           router,
		ReadHeaderTimeout: cfg.HTTP.ReadTimeout,
	}

	return a, nil
}

func (a *App) Run() {
	a.log.Info("Starting HTTP server", zap.String("addr", a.server.Addr))

	go func() {
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	receivedSignal := <-quit
	a.log.Info("Received shutdown signal, shutting down", zap.String("signal", receivedSignal.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTP.ShutdownTimeout+5*time.Second)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.log.Error("Error during HTTP server graceful shutdown", zap.Error(err))
	} else {
		a.log.Info("HTTP server stopped successfully")
	}

	// Shutdown does not wait for hijacked websocket connections.
	a.hub.Close()

	if a.relay != nil {
		if err := a.relay.Close(); err != nil {
			a.log.Error("Error closing NATS relay", zap.Error(err))
		}
	}
	if a.natsConn != nil {
		if err := a.natsConn.Drain(); err != nil {
			a.log.Error("Error draining NATS connection", zap.Error(err))
		} else {
			a.log.Info("NATS connection drained")
		}
	}

	a.log.Info("Closing database connections...")
	a.closeStoresWith(shutdownCtx)

	a.log.Info("Application shut down successfully")
	_ = a.log.Sync()
}

func (a *App) closeStores() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	a.closeStoresWith(ctx)
}

func (a *App) closeStoresWith(ctx context.Context) {
	if a.mongoClient != nil {
		if err := a.mongoClient.Disconnect(ctx); err != nil {
			a.log.Error("Error disconnecting from MongoDB", zap.Error(err))
		} else {
			a.log.Info("MongoDB connection closed successfully")
		}
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Error("Error closing Redis client", zap.Error(err))
		} else {
			a.log.Info("Redis client closed successfully")
		}
	}
}
