package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/rl1809/aid-distribution/internal/adapter/handler"
	"github.com/rl1809/aid-distribution/internal/adapter/storage"
	"github.com/rl1809/aid-distribution/internal/config"
	"github.com/rl1809/aid-distribution/internal/core/service"
	"github.com/rl1809/aid-distribution/internal/port"
)

func main() {
	cfg := config.Load()

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// MySQL: durable store for directories, log, and (by default)
	// inventory.
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		logrus.Fatalf("failed to open mysql: %v", err)
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		logrus.Fatalf("failed to ping mysql: %v", err)
	}
	logrus.Info("connected to mysql")

	if err := runMigrations(cfg); err != nil {
		logrus.Fatalf("migrations failed: %v", err)
	}

	mysqlAdapter := storage.NewMySQLAdapter(db)

	var inventoryStore port.InventoryStore = mysqlAdapter
	var rdb *redis.Client

	if cfg.StockBackend == "redis" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			PoolSize: 100,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logrus.Fatalf("failed to connect redis: %v", err)
		}
		logrus.Info("connected to redis, using redis stock backend")
		inventoryStore = storage.NewRedisAdapter(rdb)
	}

	svc := service.NewDistributionService(mysqlAdapter, inventoryStore, mysqlAdapter, service.Config{
		DefaultCooldownDays: cfg.DefaultCooldownDays,
		CooldownScope:       service.CooldownScope(cfg.CooldownScope),
		LockTimeout:         cfg.LockTimeout,
	})

	httpHandler := handler.NewHTTPHandler(svc)
	mux := http.NewServeMux()
	httpHandler.Register(mux)
	mux.Handle("/metrics", promhttp.Handler())

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: mux,
	}

	go func() {
		logrus.Infof("HTTP server listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logrus.Errorf("HTTP server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	logrus.Info("HTTP server stopped")

	if rdb != nil {
		rdb.Close()
	}
	db.Close()
	logrus.Info("connections closed")
}

func runMigrations(cfg config.Config) error {
	m, err := migrate.New(
		"file://"+cfg.MigrationsPath,
		"mysql://"+cfg.MySQLDSN,
	)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	logrus.Info("migrations applied")
	return nil
}
