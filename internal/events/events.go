package events

import (
	"encoding/json"
	"time"
)

const (
	EventOrderCreated       = "OrderCreated"
	EventOrderUpdated       = "OrderUpdated"
	EventOrderDeleted       = "OrderDeleted"
	EventOrderStatusChanged = "OrderStatusChanged"
	EventInventoryReplaced  = "InventoryReplaced"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order_id for order events
	Payload       json.RawMessage `json:"payload"`
}

type OrderCreatedPayload struct {
	OrderID  string `json:"order_id"`
	UserID   string `json:"user_id"`
	PrintID  string `json:"print_id"`
	Quantity int    `json:"quantity"`
	Status   string `json:"status"`
}

type OrderUpdatedPayload struct {
	OrderID  string `json:"order_id"`
	PrintID  string `json:"print_id"`
	Quantity int    `json:"quantity"`
}

type OrderDeletedPayload struct {
	OrderID  string `json:"order_id"`
	PrintID  string `json:"print_id"`
	Quantity int    `json:"quantity"` // returned to stock
}

type OrderStatusChangedPayload struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

type InventoryReplacedPayload struct {
	Count int `json:"count"`
}
