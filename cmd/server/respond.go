package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"example.com/tweetfeed/internal/metrics"
	"example.com/tweetfeed/internal/models"
	"example.com/tweetfeed/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
)

type failure struct {
	Result       bool   `json:"result"`
	ErrorType    string `json:"error_type"`
	ErrorMessage string `json:"error_message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logg.Error("http", "Failed to encode response", err)
	}
}

// writeOK writes {"result": true} merged with fields.
func writeOK(w http.ResponseWriter, status int, fields map[string]any) {
	body := map[string]any{"result": true}
	for k, v := range fields {
		body[k] = v
	}
	writeJSON(w, status, body)
}

func writeFailure(w http.ResponseWriter, status int, errType, msg string) {
	writeJSON(w, status, failure{Result: false, ErrorType: errType, ErrorMessage: msg})
}

// writeError maps store sentinels to HTTP statuses. Anything else is logged
// and answered with a generic 500 envelope.
func writeError(w http.ResponseWriter, module string, err error) {
	switch {
	case errors.Is(err, store.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, map[string]any{"result": false})
	case errors.Is(err, store.ErrNotFound):
		writeFailure(w, http.StatusNotFound, "NotFound", err.Error())
	case errors.Is(err, store.ErrForbidden):
		writeFailure(w, http.StatusForbidden, "Forbidden", err.Error())
	case errors.Is(err, store.ErrConflict):
		writeFailure(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, store.ErrInvalid):
		writeFailure(w, http.StatusBadRequest, "BadRequest", err.Error())
	default:
		logg.Error(module, "Request failed", err)
		writeFailure(w, http.StatusInternalServerError, "InternalServerError", "internal error")
	}
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeFailure(w, http.StatusBadRequest, "BadRequest", msg)
}

// recoverer turns a panic anywhere below it into the generic 500 envelope.
func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			logg.Error("http", "Recovered from panic on "+r.Method+" "+r.URL.Path, fmt.Errorf("panic: %v", rec))
			writeFailure(w, http.StatusInternalServerError, "InternalServerError", "internal error")
		}()
		next.ServeHTTP(w, r)
	})
}

// pathID parses the {id} URL parameter. Non-numeric ids address nothing.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, store.ErrNotFound
	}
	return id, nil
}

// publish sends ev after its transaction committed. Failures never fail the
// request.
func (s *Server) publish(ev models.Event) {
	ev.Created = time.Now().UTC()
	if err := s.events.Publish(ev); err != nil {
		metrics.EventPublishFailures.WithLabelValues(ev.Type).Inc()
		logg.Error("http/events", "Failed to publish "+ev.Type+" event", err)
	}
}
