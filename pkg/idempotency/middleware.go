package idempotency

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

const HeaderKey = "Idempotency-Key"

// Middleware rejects a mutating request whose Idempotency-Key header was
// already seen inside the store's TTL window. Requests without the header
// pass through untouched.
func Middleware(log *slog.Logger, store *Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(HeaderKey)
			if key == "" || (r.Method != http.MethodPost && r.Method != http.MethodPatch) {
				next.ServeHTTP(w, r)
				return
			}

			seen, err := store.Seen(r.Context(), store.Key(r.Method+":"+r.URL.Path, key))
			if err != nil {
				// Redis being down must not block checkout.
				log.Error("idempotency check failed", "err", err)
				next.ServeHTTP(w, r)
				return
			}
			if seen {
				log.Info("duplicate request rejected", "key", key, "path", r.URL.Path)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusConflict)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "duplicate request"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
