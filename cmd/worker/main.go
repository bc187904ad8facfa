package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/printworks/print-orders/internal/cachesync"
	"github.com/printworks/print-orders/internal/config"
	"github.com/printworks/print-orders/internal/events"
	kafkax "github.com/printworks/print-orders/internal/kafka"
	"github.com/printworks/print-orders/internal/redisx"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &cachesync.Service{
		Redis:       rdb,
		ServiceName: cfg.ServiceName + "-worker",
	}

	cOrders := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.WorkerGroup, events.TopicOrderActivity, cfg.WorkerConcurrency)
	cInventory := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.WorkerGroup, events.TopicInventoryReplaced, 1)

	go func() {
		log.Printf("order consumer started: group=%s topic=%s workers=%d", cfg.WorkerGroup, events.TopicOrderActivity, cfg.WorkerConcurrency)
		if err := cOrders.Start(ctx, svc.HandleOrderEvent); err != nil {
			log.Printf("order consumer exit: %v", err)
			cancel()
		}
	}()
	go func() {
		log.Printf("inventory consumer started: group=%s topic=%s", cfg.WorkerGroup, events.TopicInventoryReplaced)
		if err := cInventory.Start(ctx, svc.HandleInventoryEvent); err != nil {
			log.Printf("inventory consumer exit: %v", err)
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	log.Println("shutting down consumers...")
	cancel()
	time.Sleep(500 * time.Millisecond)
}
