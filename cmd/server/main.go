package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/stockops/inventory-service/internal/adapter/handler"
	"github.com/stockops/inventory-service/internal/adapter/metrics"
	"github.com/stockops/inventory-service/internal/adapter/queue"
	"github.com/stockops/inventory-service/internal/adapter/storage"
	"github.com/stockops/inventory-service/internal/config"
	"github.com/stockops/inventory-service/internal/core/service"
	"github.com/stockops/inventory-service/internal/port"
)

func main() {
	godotenv.Load()
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// MySQL
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("failed to open mysql: %v", err)
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	if err := db.PingContext(pingCtx); err != nil {
		log.Fatalf("failed to ping mysql: %v", err)
	}
	pingCancel()
	log.Println("connected to mysql")

	if err := storage.Migrate(ctx, db); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}
	if cfg.SeedData {
		if err := storage.Seed(ctx, db); err != nil {
			log.Fatalf("failed to seed inventory: %v", err)
		}
	}

	// Redis (optional; the service is fully correct without it)
	var cache port.CacheRepository
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			PoolSize: 100,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Printf("redis unavailable, cache disabled: %v", err)
			rdb.Close()
			rdb = nil
		} else {
			cache = storage.NewRedisAdapter(rdb)
			log.Println("connected to redis")
		}
	}

	// RabbitMQ (optional)
	var events port.EventPublisher
	var publisher *queue.Publisher
	if cfg.AMQPURL != "" {
		publisher, err = queue.NewPublisher(cfg.AMQPURL)
		if err != nil {
			log.Printf("broker unavailable, stock events disabled: %v", err)
		} else {
			events = publisher
			log.Println("connected to rabbitmq")
		}
	}

	ledger := storage.NewMySQLAdapter(db)
	sink := metrics.NewPrometheusSink(prometheus.DefaultRegisterer)
	svc := service.NewInventoryService(ledger, cache, sink, events, service.Config{
		CacheTTL:       cfg.CacheTTL,
		LockTimeout:    cfg.LockTimeout,
		ReservationTTL: cfg.ReservationTTL,
	})

	e := echo.New()
	e.HideBanner = true
	handler.NewHTTPHandler(svc, ledger, cache).Register(e)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	go func() {
		log.Printf("HTTP server listening on :%s", cfg.HTTPPort)
		if err := e.Start(":" + cfg.HTTPPort); err != nil && err != http.ErrServerClosed {
			log.Printf("HTTP server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown error: %v", err)
	}
	log.Println("HTTP server stopped")

	if publisher != nil {
		publisher.Close()
	}
	if rdb != nil {
		rdb.Close()
	}
	db.Close()
	log.Println("connections closed")
}
