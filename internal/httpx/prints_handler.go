package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/printworks/print-orders/internal/events"
	"github.com/printworks/print-orders/internal/importer"
	kafkax "github.com/printworks/print-orders/internal/kafka"
	"github.com/printworks/print-orders/internal/orders"
	"github.com/printworks/print-orders/internal/prints"
	"github.com/printworks/print-orders/internal/redisx"
)

type PrintsHandler struct {
	Repo       *prints.Repo
	Service    *orders.Service // delete ops go through the order service
	Importer   *importer.Gateway
	Producer   *kafkax.Producer // inventory replaced topic
	Redis      *redis.Client
	Name       string
	CatalogTTL time.Duration
}

// RegisterPublic mounts the read-only catalog routes; browsing needs no login.
func (h *PrintsHandler) RegisterPublic(r chi.Router) {
	r.Get("/prints", h.list)
	r.Get("/prints/search", h.search)
}

func (h *PrintsHandler) Register(r chi.Router) {
	r.Post("/prints", h.create)
	r.Post("/prints/import", h.importCatalog)
	r.Delete("/prints/all", h.deleteAll)
	r.Put("/prints/{id}", h.update)
	r.Delete("/prints/{id}", h.delete)
}

func (h *PrintsHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	// cache first, DB on miss
	if s, err := h.Redis.Get(ctx, redisx.KeyCatalog).Result(); err == nil && s != "" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(s))
		return
	}

	ps, err := h.Repo.List(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	if ps == nil {
		ps = []prints.Print{}
	}
	b, _ := json.Marshal(ps)
	_ = h.Redis.Set(ctx, redisx.KeyCatalog, b, h.CatalogTTL).Err()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

func (h *PrintsHandler) search(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ps, err := h.Repo.Search(ctx, r.URL.Query().Get("query"))
	if err != nil {
		writeError(w, err)
		return
	}
	if ps == nil {
		ps = []prints.Print{}
	}
	writeJSON(w, http.StatusOK, ps)
}

type printInput struct {
	Name              string `json:"name"`
	URL               string `json:"url"`
	QuantityAvailable int    `json:"quantityAvailable"`
}

func (h *PrintsHandler) create(w http.ResponseWriter, r *http.Request) {
	if !identity(r).Admin {
		writeError(w, orders.ErrUnauthorized)
		return
	}
	var in printInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if in.Name == "" || in.QuantityAvailable < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name and a non-negative quantityAvailable are required"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id, err := h.Repo.Create(ctx, in.Name, in.URL, in.QuantityAvailable)
	if err != nil {
		writeError(w, err)
		return
	}
	_ = h.Redis.Del(ctx, redisx.KeyCatalog).Err()
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (h *PrintsHandler) update(w http.ResponseWriter, r *http.Request) {
	if !identity(r).Admin {
		writeError(w, orders.ErrUnauthorized)
		return
	}
	var in printInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Repo.Update(ctx, chi.URLParam(r, "id"), in.Name, in.URL, in.QuantityAvailable); err != nil {
		writeError(w, err)
		return
	}
	_ = h.Redis.Del(ctx, redisx.KeyCatalog).Err()
	writeJSON(w, http.StatusOK, map[string]string{"message": "Print updated successfully"})
}

func (h *PrintsHandler) delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Service.DeletePrint(ctx, identity(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	_ = h.Redis.Del(ctx, redisx.KeyCatalog).Err()
	writeJSON(w, http.StatusOK, map[string]string{"message": "Print deleted successfully"})
}

func (h *PrintsHandler) deleteAll(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	n, err := h.Service.DeleteAllPrints(ctx, identity(r))
	if err != nil {
		writeError(w, err)
		return
	}
	_ = h.Redis.Del(ctx, redisx.KeyCatalog).Err()
	writeJSON(w, http.StatusOK, map[string]any{"message": "All prints deleted", "deleted": n})
}

// importCatalog replaces the whole catalog with the validated rows from the
// import collaborator. File parsing happens upstream; this body is plain JSON.
func (h *PrintsHandler) importCatalog(w http.ResponseWriter, r *http.Request) {
	if !identity(r).Admin {
		writeError(w, orders.ErrUnauthorized)
		return
	}
	var items []prints.ImportItem
	if err := json.NewDecoder(r.Body).Decode(&items); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	count, err := h.Importer.Replace(ctx, items)
	if err != nil {
		writeError(w, err)
		return
	}
	_ = h.Redis.Del(ctx, redisx.KeyCatalog).Err()

	ev := events.Envelope{
		EventID:      uuid.NewString(),
		EventType:    events.EventInventoryReplaced,
		EventVersion: 1,
		OccurredAt:   time.Now().UTC(),
		Producer:     h.Name,
		TraceID:      r.Header.Get("X-Request-Id"),
		Payload:      kafkax.MustMarshal(events.InventoryReplacedPayload{Count: count}),
	}
	h.Producer.Publish(events.PartitionKey("inventory"), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(events.EventInventoryReplaced)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
	writeJSON(w, http.StatusOK, map[string]any{"message": "Prints uploaded successfully", "count": count})
}
