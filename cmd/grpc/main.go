package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fekuna/omnipos-structured-data/config"
	"github.com/fekuna/omnipos-structured-data/internal/broker"
	"github.com/fekuna/omnipos-structured-data/internal/cache"
	"github.com/fekuna/omnipos-structured-data/internal/database"
	"github.com/fekuna/omnipos-structured-data/internal/jsonld"
	"github.com/fekuna/omnipos-structured-data/internal/logger"
	"github.com/fekuna/omnipos-structured-data/internal/middleware"

	sdHandler "github.com/fekuna/omnipos-structured-data/internal/structureddata/handler"
	sdListener "github.com/fekuna/omnipos-structured-data/internal/structureddata/listener"
	sdRepo "github.com/fekuna/omnipos-structured-data/internal/structureddata/repository"
	sdUC "github.com/fekuna/omnipos-structured-data/internal/structureddata/usecase"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load() // Load .env file if it exists
	cfg := config.LoadEnv()

	// 2. Initialize Logger
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          cfg.Logger.Encoding,
		Level:             cfg.Logger.Level,
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}

	if cfg.Server.AppEnv == "development" {
		logConfig.IsDevelopment = true
		logConfig.Encoding = "console"
		logConfig.Level = "debug"
	}

	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	// 3. Connect to Database
	db, err := database.NewPostgres(&database.Config{
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

	// 4. Initialize Repository
	repo := sdRepo.NewPGRepository(db)

	// 5. Initialize Redis. Documents are still served without it.
	var docCache sdUC.Cache
	redisClient, err := cache.NewRedisClient(&cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		appLogger.Warn("Could not connect to Redis, JSON-LD caching disabled", zap.Error(err))
	} else {
		defer redisClient.Close()
		docCache = redisClient
		appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))
	}

	// 6. Initialize JSON-LD builder
	moneyFormat, ok := jsonld.ParseMoneyFormat(cfg.JSONLD.MoneyFormat)
	if !ok {
		appLogger.Warn("Unknown JSONLD_MONEY_FORMAT, using string", zap.String("value", cfg.JSONLD.MoneyFormat))
	}
	encoder := jsonld.JSONEncoder{Money: moneyFormat}
	if cfg.JSONLD.Indent {
		encoder.Indent = "  "
	}
	builder := jsonld.NewBuilder(encoder)

	// 7. Initialize UseCase
	uc := sdUC.NewStructuredDataUseCase(repo, docCache, builder, sdUC.Options{
		CacheTTL:    time.Duration(cfg.JSONLD.CacheTTL) * time.Second,
		BaseURL:     cfg.Server.BaseURL,
		MaxPageSize: cfg.JSONLD.MaxPageSize,
	}, appLogger)

	// 8. Initialize Kafka Consumer and Listener
	kafkaConsumer := broker.NewConsumer(&broker.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.Topic,
		GroupID: cfg.Kafka.GroupID,
	})
	defer kafkaConsumer.Close()
	appLogger.Info("Connected to Kafka Consumer", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", kafkaConsumer.Topic()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sdListener.NewInvalidationListener(kafkaConsumer, uc, appLogger).Start(ctx)

	// 9. Start gRPC Server
	port := withColon(cfg.Server.GRPCPort)
	lis, err := net.Listen("tcp", port)
	if err != nil {
		log.Fatalf("failed to listen: %v", err)
	}

	grpcServer := grpc.NewServer(
		grpc.UnaryInterceptor(middleware.ContextInterceptor(appLogger)),
	)
	sdHandler.RegisterStructuredDataServer(grpcServer, sdHandler.NewStructuredDataHandler(uc, cfg.JSONLD.DefaultCurrency, appLogger))
	reflection.Register(grpcServer)

	appLogger.Info("Starting gRPC server", zap.String("port", port))
	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			appLogger.Fatal("failed to serve", zap.Error(err))
		}
	}()

	// 10. Start HTTP Server
	httpServer := &http.Server{
		Addr:              withColon(cfg.Server.HTTPPort),
		Handler:           sdHandler.NewHTTPHandler(uc, cfg.JSONLD.DefaultCurrency, appLogger).Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	appLogger.Info("Starting HTTP server", zap.String("port", httpServer.Addr))
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("failed to serve http", zap.Error(err))
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("HTTP server shutdown failed", zap.Error(err))
	}
	grpcServer.GracefulStop()
	appLogger.Info("Server stopped")
}

func withColon(port string) string {
	if !strings.HasPrefix(port, ":") {
		return ":" + port
	}
	return port
}
