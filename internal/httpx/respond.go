package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/printworks/print-orders/internal/importer"
	"github.com/printworks/print-orders/internal/orders"
	"github.com/printworks/print-orders/internal/prints"
	"github.com/printworks/print-orders/internal/settings"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
}

// statusFor maps domain errors onto HTTP codes the way the API always has:
// missing rows 404, capability failures 403, everything caller-correctable
// 400, storage failures 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, orders.ErrPrintNotFound),
		errors.Is(err, orders.ErrOrderNotFound),
		errors.Is(err, prints.ErrNotFound),
		errors.Is(err, settings.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, orders.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, orders.ErrInvalidQuantity),
		errors.Is(err, orders.ErrInsufficientStock),
		errors.Is(err, orders.ErrMissingPhotosLink),
		errors.Is(err, orders.ErrNotPending),
		errors.Is(err, orders.ErrInvalidStatus),
		errors.Is(err, prints.ErrHasOrders),
		errors.Is(err, prints.ErrNegativeQuantity),
		errors.Is(err, importer.ErrInvalidRow):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
