package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"example.com/tweetfeed/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthedHandler(t *testing.T, st store.StoreInterface) http.Handler {
	t.Helper()
	return APIKeyAuth(st)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := UserFromContext(r.Context())
		require.True(t, ok)
		w.Header().Set("X-User-Name", u.Name)
		w.WriteHeader(http.StatusOK)
	}))
}

func TestAPIKeyAuth(t *testing.T) {
	ctx := context.Background()
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	defer st.Close()

	require.NoError(t, st.WithTx(ctx, func(tx store.Tx) error {
		_, err := tx.CreateUser(ctx, "TestUser", "qwe")
		return err
	}))

	h := newAuthedHandler(t, st)

	cases := []struct {
		name   string
		key    string
		status int
	}{
		{"valid key", "qwe", http.StatusOK},
		{"unknown key", "nope", http.StatusUnauthorized},
		{"missing key", "", http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
			if tc.key != "" {
				req.Header.Set(APIKeyHeader, tc.key)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tc.status, rec.Code)
			if tc.status == http.StatusOK {
				assert.Equal(t, "TestUser", rec.Header().Get("X-User-Name"))
			} else {
				assert.JSONEq(t, `{"result": false}`, rec.Body.String())
			}
		})
	}
}

func TestAPIKeyAuth_StoreFailure(t *testing.T) {
	h := newAuthedHandler(t, &store.MockStoreFail{})

	req := httptest.NewRequest(http.MethodGet, "/api/tweets", nil)
	req.Header.Set(APIKeyHeader, "qwe")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t,
		`{"result": false, "error_type": "InternalServerError", "error_message": "internal error"}`,
		rec.Body.String())
}

func TestUserFromContext_Missing(t *testing.T) {
	_, ok := UserFromContext(context.Background())
	assert.False(t, ok)
}
