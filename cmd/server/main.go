package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/RanaKhaled2002/Student-Management-System/internal/config"
	"github.com/RanaKhaled2002/Student-Management-System/internal/db"
	internalhttp "github.com/RanaKhaled2002/Student-Management-System/internal/http"
	"github.com/RanaKhaled2002/Student-Management-System/internal/jobs"
	"github.com/RanaKhaled2002/Student-Management-System/internal/repository"
	"github.com/RanaKhaled2002/Student-Management-System/internal/revocation"
	"github.com/RanaKhaled2002/Student-Management-System/internal/seed"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connection failed: %v", err)
	}
	defer pool.Close()

	store := repository.NewStore(pool)

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			cancel()
			log.Fatalf("redis ping failed: %v", err)
		}
		cancel()
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Printf("redis close error: %v", err)
			}
		}()
	}

	if err := seed.EnsureAdmin(ctx, cfg, store); err != nil {
		log.Fatalf("admin seed failed: %v", err)
	}

	ledger := revocation.NewLedger(store, redisClient)
	jobs.StartRevokedTokenPurgeJob(ctx, cfg, ledger)

	server := internalhttp.NewServer(cfg, store, ledger)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("student-management listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server error: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
