package httpx

import (
	"net/http"

	"github.com/printworks/print-orders/internal/auth"
)

// Caller identity headers, injected by the auth layer in front of this
// service after it has verified the bearer credential. This service never
// re-derives the admin flag.
const (
	HeaderUserID = "X-User-Id"
	HeaderAdmin  = "X-User-Admin"
)

// RequireIdentity rejects requests without a caller identity and stores the
// identity in the request context for the handlers.
func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get(HeaderUserID)
		if userID == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
			return
		}
		id := auth.Identity{UserID: userID, Admin: r.Header.Get(HeaderAdmin) == "true"}
		next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
	})
}

func identity(r *http.Request) auth.Identity {
	id, _ := auth.FromContext(r.Context())
	return id
}
