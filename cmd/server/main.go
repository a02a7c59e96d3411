package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	webAdapter "sales-register/internal/adapters/web"
	"sales-register/internal/app"
	"sales-register/internal/core"
	"sales-register/internal/db"
	"sales-register/internal/identity"
	"sales-register/internal/store"
	colsync "sales-register/internal/sync"
)

func main() {
	_ = godotenv.Load()

	log, err := newLogger()
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	st := store.NewPostgres(pool, log)

	products, err := colsync.Subscribe(ctx, st, store.Products, "createdAt", colsync.WithLogger(log))
	if err != nil {
		log.Fatal("products subscription", zap.Error(err))
	}
	defer products.Close()
	clients, err := colsync.Subscribe(ctx, st, store.Clients, "createdAt", colsync.WithLogger(log))
	if err != nil {
		log.Fatal("clients subscription", zap.Error(err))
	}
	defer clients.Close()

	view := core.NewSyncView(products, clients)

	loc := time.Local
	if tz := os.Getenv("TIMEZONE"); tz != "" {
		loc, err = time.LoadLocation(tz)
		if err != nil {
			log.Fatal("timezone", zap.String("tz", tz), zap.Error(err))
		}
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET environment variable not set")
	}

	svc := app.NewAppService(
		core.NewSaleService(st, view, log),
		core.NewProductService(st, log),
		core.NewClientService(st, log),
		core.NewExpenseService(st, log),
		core.NewHistoryAggregator(loc),
		identity.NewManager(st, []byte(secret), log),
		products, clients,
	)

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}
	handler := webAdapter.NewHandler(svc, os.Getenv("ALLOWED_ORIGINS"), log)

	server := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Info("server starting", zap.String("port", port))
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("server", zap.Error(err))
	}
}

func newLogger() (*zap.Logger, error) {
	if os.Getenv("APP_ENV") == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
