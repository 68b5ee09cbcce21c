package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fekuna/omnipos-catalog-service/config"
	"github.com/fekuna/omnipos-catalog-service/internal/auth"
	"github.com/fekuna/omnipos-catalog-service/internal/events"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/broker"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/cache"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/httpx"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/i18n"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/postgres"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/search"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	catH "github.com/fekuna/omnipos-catalog-service/internal/category/handler"
	catRepoPkg "github.com/fekuna/omnipos-catalog-service/internal/category/repository"
	catUCPkg "github.com/fekuna/omnipos-catalog-service/internal/category/usecase"

	imgH "github.com/fekuna/omnipos-catalog-service/internal/image/handler"
	imgRepoPkg "github.com/fekuna/omnipos-catalog-service/internal/image/repository"
	imgUCPkg "github.com/fekuna/omnipos-catalog-service/internal/image/usecase"

	invH "github.com/fekuna/omnipos-catalog-service/internal/inventory/handler"
	invListenerPkg "github.com/fekuna/omnipos-catalog-service/internal/inventory/listener"
	invRepoPkg "github.com/fekuna/omnipos-catalog-service/internal/inventory/repository"
	invUCPkg "github.com/fekuna/omnipos-catalog-service/internal/inventory/usecase"

	poH "github.com/fekuna/omnipos-catalog-service/internal/purchaseorder/handler"
	poRepoPkg "github.com/fekuna/omnipos-catalog-service/internal/purchaseorder/repository"
	poUCPkg "github.com/fekuna/omnipos-catalog-service/internal/purchaseorder/usecase"

	prodH "github.com/fekuna/omnipos-catalog-service/internal/product/handler"
	prodRepoPkg "github.com/fekuna/omnipos-catalog-service/internal/product/repository"
	prodUCPkg "github.com/fekuna/omnipos-catalog-service/internal/product/usecase"

	varH "github.com/fekuna/omnipos-catalog-service/internal/variant/handler"
	varRepoPkg "github.com/fekuna/omnipos-catalog-service/internal/variant/repository"
	varUCPkg "github.com/fekuna/omnipos-catalog-service/internal/variant/usecase"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the gRPC health endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), cfg)
		},
	}
}

func newLogger(cfg *config.Config) logger.ZapLogger {
	logConfig := &logger.ZapLoggerConfig{
		Encoding:          cfg.Logger.Encoding,
		Level:             cfg.Logger.Level,
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}
	if cfg.Server.AppEnv == "dev" || cfg.Server.AppEnv == "development" {
		logConfig.IsDevelopment = true
	}
	return logger.NewZapLogger(logConfig)
}

func listenAddr(port string) string {
	if !strings.HasPrefix(port, ":") && !strings.Contains(port, ":") {
		return ":" + port
	}
	return port
}

func serve(ctx context.Context, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	appLogger := newLogger(cfg)
	defer appLogger.Sync()

	translator, err := i18n.New(cfg.I18n.DefaultLocale)
	if err != nil {
		return err
	}

	db, err := postgres.NewPostgres(&postgres.Config{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		DBName:          cfg.Postgres.DBName,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to database", zap.Error(err))
	}
	defer db.Close()
	appLogger.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Postgres.DBName))

	redisClient, err := cache.NewRedisClient(&cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))

	esClient, err := search.NewClient(&search.Config{
		Addresses: cfg.Elastic.Addresses,
		Username:  cfg.Elastic.Username,
		Password:  cfg.Elastic.Password,
	})
	if err != nil {
		appLogger.Warn("Could not connect to Elasticsearch, search falls back to the database", zap.Error(err))
		esClient = nil
	} else {
		appLogger.Info("Connected to Elasticsearch", zap.Strings("addresses", cfg.Elastic.Addresses))
	}

	var publisher events.Publisher
	if cfg.Kafka.EnableProduce {
		producer := broker.NewProducer(&broker.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.ProductTopic,
		})
		defer producer.Close()
		publisher = producer
		appLogger.Info("Publishing product events", zap.String("topic", cfg.Kafka.ProductTopic))
	}
	bus := events.NewBus(publisher, appLogger)

	// Repositories
	catRepo := catRepoPkg.NewPGRepository(db)
	prodRepo := prodRepoPkg.NewPGRepository(db)
	varRepo := varRepoPkg.NewPGRepository(db)
	imgRepo := imgRepoPkg.NewPGRepository(db)
	poRepo := poRepoPkg.NewPGRepository(db)
	invRepo := invRepoPkg.NewPGRepository(db)

	// UseCases
	catUC := catUCPkg.NewCategoryUseCase(catRepo, appLogger)
	varUC := varUCPkg.NewVariantUseCase(varRepo, bus, cfg.Catalog, appLogger)
	imgUC := imgUCPkg.NewImageUseCase(imgRepo, bus, appLogger)
	poUC := poUCPkg.NewPurchaseOrderUseCase(poRepo, appLogger)
	prodUC := prodUCPkg.NewProductUseCase(prodUCPkg.Deps{
		Repo:       prodRepo,
		Variants:   varUC,
		Images:     imgUC,
		Categories: catUC,
		Orders:     poUC,
		Cache:      redisClient,
		Search:     esClient,
		Bus:        bus,
		Config:     cfg.Catalog,
		Logger:     appLogger,
	})
	invUC := invUCPkg.NewInventoryUseCase(invRepo, varUC, redisClient, bus, cfg.Catalog, appLogger)

	indexer := prodUCPkg.NewIndexer(prodRepo, redisClient, esClient, cfg.Catalog.SearchIndex, appLogger)
	if err := indexer.EnsureIndex(ctx); err != nil {
		appLogger.Warn("Could not create search index", zap.String("index", cfg.Catalog.SearchIndex), zap.Error(err))
	}
	unsubscribe := bus.Subscribe(indexer.Handle)
	defer unsubscribe()
	appLogger.Info("Event bus ready", zap.Int("subscribers", bus.Subscribers()), zap.Bool("kafka", publisher != nil))

	if cfg.Kafka.EnableOrders {
		consumer := broker.NewConsumer(&broker.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
			GroupID: cfg.Kafka.GroupID,
		})
		defer consumer.Close()
		appLogger.Info("Connected to Kafka Consumer", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
		go invListenerPkg.NewInventoryListener(consumer, invUC, appLogger).Start(ctx)
	}

	// Handlers
	rs := httpx.NewResponder(translator, appLogger)
	variantHandler := varH.NewVariantHandler(varUC, rs)
	inventoryHandler := invH.NewInventoryHandler(invUC, rs)
	productHandler := prodH.NewProductHandler(prodUC, rs, appLogger,
		variantHandler,
		imgH.NewImageHandler(imgUC, rs),
		poH.NewPurchaseOrderHandler(poUC, rs),
		inventoryHandler,
	)
	categoryHandler := catH.NewCategoryHandler(catUC, rs, appLogger)
	tokens := auth.NewTokenManager(cfg.JWT.SecretKey, cfg.JWT.Issuer, time.Duration(cfg.JWT.TTL)*time.Minute)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Language", "Authorization", "Content-Type", "X-Branch-ID"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.SendJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.Middleware(tokens, rs.SendError))
		productHandler.Routes(r)
		categoryHandler.Routes(r)
		variantHandler.IdentifierRoutes(r)
		inventoryHandler.MerchantRoutes(r)
	})

	httpServer := &http.Server{
		Addr:              listenAddr(cfg.Server.HTTPPort),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lis, err := net.Listen("tcp", listenAddr(cfg.Server.GRPCPort))
	if err != nil {
		return err
	}
	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	reflection.Register(grpcServer)

	errCh := make(chan error, 2)
	go func() {
		appLogger.Info("Starting gRPC health server", zap.String("addr", lis.Addr().String()))
		if err := grpcServer.Serve(lis); err != nil {
			errCh <- err
		}
	}()
	go func() {
		appLogger.Info("Starting HTTP server", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		appLogger.Error("server failed", zap.Error(err))
	}

	appLogger.Info("Shutting down server...")
	healthServer.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("HTTP shutdown failed", zap.Error(err))
	}
	grpcServer.GracefulStop()
	appLogger.Info("Server stopped")
	return nil
}
