package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/printworks/print-orders/internal/orders"
	"github.com/printworks/print-orders/internal/redisx"
	"github.com/printworks/print-orders/internal/settings"
)

type SettingsHandler struct {
	Repo  *settings.Repo
	Redis *redis.Client
}

func (h *SettingsHandler) RegisterPublic(r chi.Router) {
	r.Get("/settings", h.get)
}

func (h *SettingsHandler) Register(r chi.Router) {
	r.Put("/settings/announcement", h.putKey(settings.KeyAnnouncementHeader, "header"))
	r.Put("/settings/how-to-use", h.putKey(settings.KeyHowToUse, "text"))
}

func (h *SettingsHandler) get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if s, err := h.Redis.Get(ctx, redisx.KeySettings).Result(); err == nil && s != "" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(s))
		return
	}

	all, err := h.Repo.All(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	b, _ := json.Marshal(all)
	_ = h.Redis.Set(ctx, redisx.KeySettings, b, redisx.TTLSettings).Err()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

func (h *SettingsHandler) putKey(key, field string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !identity(r).Admin {
			writeError(w, orders.ErrUnauthorized)
			return
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
			return
		}
		value := body[field]
		if value == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": field + " is required"})
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := h.Repo.Set(ctx, key, value); err != nil {
			writeError(w, err)
			return
		}
		_ = h.Redis.Del(ctx, redisx.KeySettings).Err()
		writeJSON(w, http.StatusOK, map[string]string{"message": "Setting updated successfully"})
	}
}
