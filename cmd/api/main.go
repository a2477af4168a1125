package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/subsbazaar/storefront/internal/auth"
	"github.com/subsbazaar/storefront/internal/catalog"
	"github.com/subsbazaar/storefront/internal/config"
	"github.com/subsbazaar/storefront/internal/httpx"
	kafkax "github.com/subsbazaar/storefront/internal/kafka"
	"github.com/subsbazaar/storefront/internal/orders"
	"github.com/subsbazaar/storefront/internal/postgres"
	"github.com/subsbazaar/storefront/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if cfg.AdminEmail == "" || cfg.AdminPasswordHash == "" || cfg.SessionSecret == "" {
		log.Fatal("ADMIN_EMAIL, ADMIN_PASSWORD_HASH and SESSION_SECRET must be set")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, cfg.PostgresDSN); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	// Redis (admin session allowlist)
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer for order events
	prod := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderEvents, 1024)
	prod.Start(ctx)

	adminAuth := &auth.Auth{
		Secret:            []byte(cfg.SessionSecret),
		AdminEmail:        cfg.AdminEmail,
		AdminPasswordHash: cfg.AdminPasswordHash,
		TTL:               cfg.SessionTTL,
		Sessions:          &redisx.Sessions{RDB: rdb},
	}

	// Repos & handlers
	products := &catalog.Repo{DB: db}
	orderRepo := &orders.Repo{DB: db}

	router := httpx.NewRouter(cfg.PublicDir)
	requireAdmin := httpx.RequireAdmin(adminAuth)

	ph := &httpx.ProductsHandler{Store: products}
	ph.Register(router, requireAdmin)
	oh := &httpx.OrdersHandler{
		Orders:    orderRepo,
		Products:  products,
		Publisher: prod,
		Service:   cfg.ServiceName,
	}
	oh.Register(router, requireAdmin)
	ah := &httpx.AdminHandler{Auth: adminAuth, Orders: orderRepo, Products: products}
	ah.Register(router, requireAdmin)

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	// graceful shutdown
	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close()      // stop accepting events, flush what is queued
	cancel()          // stop producer loop
	prod.WaitClosed() // drain
}
