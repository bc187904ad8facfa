// Package cachesync keeps the Redis read caches in step with order and
// inventory events coming off Kafka. It is the worker-side counterpart of the
// caching done in the HTTP handlers: handlers fill caches on reads, this
// service refreshes or drops them when the underlying rows change.
package cachesync

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/printworks/print-orders/internal/events"
	"github.com/printworks/print-orders/internal/redisx"
)

type Service struct {
	Redis       *redis.Client
	ServiceName string
}

// HandleOrderEvent consumes the order activity topic.
func (s *Service) HandleOrderEvent(ctx context.Context, m kafkago.Message) error {
	var env events.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}

	dkey := fmt.Sprintf(redisx.KeyDedup, s.ServiceName, env.EventID)
	if exists, _ := redisx.Exists(ctx, s.Redis, dkey); exists {
		return nil
	}
	_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	switch env.EventType {
	case events.EventOrderCreated:
		var p events.OrderCreatedPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return err
		}
		s.setStatus(ctx, p.OrderID, p.Status)
		s.dropCatalog(ctx)
	case events.EventOrderUpdated:
		// quantity changed, stock moved with it
		s.dropCatalog(ctx)
	case events.EventOrderStatusChanged:
		var p events.OrderStatusChangedPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return err
		}
		s.setStatus(ctx, p.OrderID, p.Status)
	case events.EventOrderDeleted:
		var p events.OrderDeletedPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return err
		}
		_ = s.Redis.Del(ctx, fmt.Sprintf(redisx.KeyOrderStatus, p.OrderID)).Err()
		s.dropCatalog(ctx)
	}
	return nil
}

// HandleInventoryEvent consumes the inventory replaced topic. A replace wipes
// the catalog and, via cascade, any orders against the old rows.
func (s *Service) HandleInventoryEvent(ctx context.Context, m kafkago.Message) error {
	var env events.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != events.EventInventoryReplaced {
		return nil
	}

	dkey := fmt.Sprintf(redisx.KeyDedup, s.ServiceName, env.EventID)
	if exists, _ := redisx.Exists(ctx, s.Redis, dkey); exists {
		return nil
	}
	_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	s.dropCatalog(ctx)
	return nil
}

func (s *Service) setStatus(ctx context.Context, orderID, status string) {
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	b, _ := json.Marshal(map[string]string{"status": status})
	_ = s.Redis.Set(ctx, key, b, redisx.TTLStatusCache).Err()
}

func (s *Service) dropCatalog(ctx context.Context) {
	_ = s.Redis.Del(ctx, redisx.KeyCatalog).Err()
}
