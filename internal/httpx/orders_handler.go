package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/printworks/print-orders/internal/events"
	kafkax "github.com/printworks/print-orders/internal/kafka"
	"github.com/printworks/print-orders/internal/orders"
	"github.com/printworks/print-orders/internal/redisx"
)

type OrdersHandler struct {
	Service  *orders.Service
	Producer *kafkax.Producer // order activity topic
	Redis    *redis.Client
	Name     string
}

func (h *OrdersHandler) Register(r chi.Router) {
	r.Post("/orders", h.create)
	r.Get("/orders", h.listMine)
	r.Get("/orders/all", h.listAll)
	r.Get("/orders/count", h.countPending)
	r.Delete("/orders/all", h.deleteAll)
	r.Put("/orders/{id}/status", h.setStatus)
	r.Put("/orders/{id}", h.update)
	r.Delete("/orders/{id}", h.delete)
}

func (h *OrdersHandler) create(w http.ResponseWriter, r *http.Request) {
	var in orders.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Service.Create(ctx, identity(r), in)
	if err != nil {
		writeError(w, err)
		return
	}

	statusKey := fmt.Sprintf(redisx.KeyOrderStatus, o.ID)
	_ = h.Redis.Set(ctx, statusKey, fmt.Sprintf(`{"status":%q}`, o.Status), redisx.TTLStatusCache).Err()

	h.publish(r, events.EventOrderCreated, o.ID, events.OrderCreatedPayload{
		OrderID:  o.ID,
		UserID:   o.UserID,
		PrintID:  o.PrintID,
		Quantity: o.Quantity,
		Status:   string(o.Status),
	})
	writeJSON(w, http.StatusCreated, map[string]string{"id": o.ID})
}

func (h *OrdersHandler) update(w http.ResponseWriter, r *http.Request) {
	var in orders.UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Service.Update(ctx, identity(r), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, err)
		return
	}

	h.publish(r, events.EventOrderUpdated, o.ID, events.OrderUpdatedPayload{
		OrderID:  o.ID,
		PrintID:  o.PrintID,
		Quantity: o.Quantity,
	})
	writeJSON(w, http.StatusOK, map[string]string{"message": "Order updated successfully"})
}

func (h *OrdersHandler) delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Service.Delete(ctx, identity(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	_ = h.Redis.Del(ctx, fmt.Sprintf(redisx.KeyOrderStatus, o.ID)).Err()
	h.publish(r, events.EventOrderDeleted, o.ID, events.OrderDeletedPayload{
		OrderID:  o.ID,
		PrintID:  o.PrintID,
		Quantity: o.Quantity,
	})
	writeJSON(w, http.StatusOK, map[string]string{"message": "Order deleted successfully"})
}

func (h *OrdersHandler) setStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status orders.Status `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Service.SetStatus(ctx, identity(r), chi.URLParam(r, "id"), body.Status)
	if err != nil {
		writeError(w, err)
		return
	}

	statusKey := fmt.Sprintf(redisx.KeyOrderStatus, o.ID)
	_ = h.Redis.Set(ctx, statusKey, fmt.Sprintf(`{"status":%q}`, o.Status), redisx.TTLStatusCache).Err()
	h.publish(r, events.EventOrderStatusChanged, o.ID, events.OrderStatusChangedPayload{
		OrderID: o.ID,
		Status:  string(o.Status),
	})
	writeJSON(w, http.StatusOK, map[string]string{"message": "Order status updated successfully"})
}

func (h *OrdersHandler) listMine(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	out, err := h.Service.ListMine(ctx, identity(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *OrdersHandler) listAll(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	out, err := h.Service.ListAll(ctx, identity(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *OrdersHandler) countPending(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	n, err := h.Service.CountPending(ctx, identity(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": n})
}

func (h *OrdersHandler) deleteAll(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	n, err := h.Service.DeleteAllOrders(ctx, identity(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "All orders deleted", "deleted": n})
}

func (h *OrdersHandler) publish(r *http.Request, eventType, orderID string, payload any) {
	ev := events.Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Name,
		TraceID:       r.Header.Get("X-Request-Id"),
		CorrelationID: orderID,
		Payload:       kafkax.MustMarshal(payload),
	}
	h.Producer.Publish(events.PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
