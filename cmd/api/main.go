package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/printworks/print-orders/internal/config"
	"github.com/printworks/print-orders/internal/events"
	"github.com/printworks/print-orders/internal/httpx"
	"github.com/printworks/print-orders/internal/importer"
	kafkax "github.com/printworks/print-orders/internal/kafka"
	"github.com/printworks/print-orders/internal/orders"
	"github.com/printworks/print-orders/internal/postgres"
	"github.com/printworks/print-orders/internal/prints"
	"github.com/printworks/print-orders/internal/redisx"
	"github.com/printworks/print-orders/internal/settings"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN, cfg.PGMaxConns)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("db schema: %v", err)
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers
	pOrders := kafkax.NewProducer(cfg.KafkaBrokers, events.TopicOrderActivity, 1024)
	pOrders.Start(ctx)
	pInventory := kafkax.NewProducer(cfg.KafkaBrokers, events.TopicInventoryReplaced, 1024)
	pInventory.Start(ctx)

	// Repos & service
	printRepo := &prints.Repo{DB: db}
	orderRepo := &orders.Repo{DB: db}
	svc := &orders.Service{DB: db, Prints: printRepo, Orders: orderRepo}

	oh := &httpx.OrdersHandler{
		Service:  svc,
		Producer: pOrders,
		Redis:    rdb,
		Name:     cfg.ServiceName,
	}
	ph := &httpx.PrintsHandler{
		Repo:       printRepo,
		Service:    svc,
		Importer:   &importer.Gateway{Prints: printRepo},
		Producer:   pInventory,
		Redis:      rdb,
		Name:       cfg.ServiceName,
		CatalogTTL: cfg.CatalogTTL,
	}
	sh := &httpx.SettingsHandler{Repo: &settings.Repo{DB: db}, Redis: rdb}

	router := httpx.NewRouter(cfg.HTTPTimeout)
	ph.RegisterPublic(router)
	sh.RegisterPublic(router)
	router.Group(func(r chi.Router) {
		r.Use(httpx.RequireIdentity)
		oh.Register(r)
		ph.Register(r)
		sh.Register(r)
	})

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	// graceful shutdown
	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	pOrders.Close()
	pInventory.Close()
	cancel()
	pOrders.WaitClosed()
	pInventory.WaitClosed()
}
