package middleware

import (
	"context"
	"errors"
	"net/http"

	"example.com/tweetfeed/internal/logger"
	"example.com/tweetfeed/internal/models"
	"example.com/tweetfeed/internal/store"
	"github.com/goccy/go-json"
)

type contextKey string

const (
	UserCtxKey = contextKey("user")

	// APIKeyHeader carries the caller's credential.
	APIKeyHeader = "api-key"
)

var logg = logger.New()

// APIKeyAuth resolves the api-key header to exactly one user and stores it in
// the request context. Missing or unknown keys get 401 {"result": false}.
func APIKeyAuth(st store.StoreInterface) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey := r.Header.Get(APIKeyHeader)
			if apiKey == "" {
				reject(w, http.StatusUnauthorized)
				return
			}

			var user models.User
			err := st.WithTx(r.Context(), func(tx store.Tx) error {
				var err error
				user, err = tx.ResolveCredential(r.Context(), apiKey)
				return err
			})
			if errors.Is(err, store.ErrUnauthorized) {
				logg.Info("http/auth", "Rejected unknown api key")
				reject(w, http.StatusUnauthorized)
				return
			}
			if err != nil {
				logg.Error("http/auth", "Credential lookup failed", err)
				writeInternal(w)
				return
			}

			ctx := context.WithValue(r.Context(), UserCtxKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func reject(w http.ResponseWriter, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"result": false})
}

// writeInternal answers 500 without exposing the cause.
func writeInternal(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"result":        false,
		"error_type":    "InternalServerError",
		"error_message": "internal error",
	})
}

// Extracting the authenticated user in handler
func UserFromContext(ctx context.Context) (models.User, bool) {
	u, ok := ctx.Value(UserCtxKey).(models.User)
	return u, ok
}
