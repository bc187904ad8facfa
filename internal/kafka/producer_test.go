package kafka_test

import (
	"context"
	"testing"
	"time"

	kafkax "github.com/printworks/print-orders/internal/kafka"
)

func waitClosed(t *testing.T, p *kafkax.Producer) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		p.WaitClosed()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("WaitClosed did not return")
	}
}

// The API shuts down with Close, then cancel, then WaitClosed; that ordering
// must terminate.
func Test_Producer_CloseThenCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := kafkax.NewProducer([]string{"127.0.0.1:1"}, "orders", 8)
	p.Start(ctx)

	p.Close()
	cancel()
	waitClosed(t, p)
}

func Test_Producer_CancelOnly(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := kafkax.NewProducer([]string{"127.0.0.1:1"}, "orders", 8)
	p.Start(ctx)

	cancel()
	waitClosed(t, p)
}

func Test_Producer_CancelThenClose(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := kafkax.NewProducer([]string{"127.0.0.1:1"}, "orders", 8)
	p.Start(ctx)

	cancel()
	waitClosed(t, p)
	p.Close()
}
