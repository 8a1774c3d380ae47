package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Shubhamgoyalbs/Hostel-Bites/internal/adapter/handler"
	"github.com/Shubhamgoyalbs/Hostel-Bites/internal/adapter/storage"
	"github.com/Shubhamgoyalbs/Hostel-Bites/internal/core/service"
	"github.com/Shubhamgoyalbs/Hostel-Bites/internal/port"
)

type config struct {
	httpAddr  string
	mysqlDSN  string
	redisAddr string
}

func loadConfig() config {
	// Missing .env is fine, the environment may be set directly.
	_ = godotenv.Load()

	return config{
		httpAddr:  getenv("HTTP_ADDR", ":8080"),
		mysqlDSN:  getenv("MYSQL_DSN", "root:root@tcp(localhost:3306)/hostelbites?parseTime=true"),
		redisAddr: os.Getenv("REDIS_ADDR"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg := loadConfig()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize MySQL
	db, err := sql.Open("mysql", cfg.mysqlDSN)
	if err != nil {
		logger.Fatal("failed to open mysql", zap.Error(err))
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		logger.Fatal("failed to ping mysql", zap.Error(err))
	}
	logger.Info("connected to mysql")

	if err := storage.Migrate(ctx, db); err != nil {
		logger.Fatal("failed to migrate schema", zap.Error(err))
	}

	// Initialize the cache; without a Redis address the in-process
	// cache keeps single-node deployments working.
	var cache port.CacheRepository
	var rdb *redis.Client
	if cfg.redisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.redisAddr,
			PoolSize: 100,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Fatal("failed to connect redis", zap.Error(err))
		}
		logger.Info("connected to redis", zap.String("addr", cfg.redisAddr))
		cache = storage.NewRedisAdapter(rdb)
	} else {
		logger.Info("no redis address configured, using in-process cache")
		cache = storage.NewMemoryCache()
	}

	// Initialize adapters and services
	store := storage.NewMySQLStore(db)
	users := storage.NewMySQLUsers(store)
	products := storage.NewMySQLProducts(store)
	orders := storage.NewMySQLOrders(store)
	inventory := storage.NewMySQLInventory(store)

	orderService := service.NewOrderService(users, products, orders, inventory, cache, store, logger)
	inventoryService := service.NewInventoryService(users, products, inventory, cache, store, logger)

	server := handler.NewServer(orderService, inventoryService, logger)
	httpServer := &http.Server{
		Addr:    cfg.httpAddr,
		Handler: server.Engine(),
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", cfg.httpAddr))
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	logger.Info("HTTP server stopped")

	if rdb != nil {
		rdb.Close()
	}
	db.Close()
	logger.Info("connections closed")
}
