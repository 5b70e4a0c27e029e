package app

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/oklog/ulid/v2"
	log "github.com/sirupsen/logrus"
)

const requestIdHeader = "X-Request-Id"

const maxRequestIdLength = 64

type requestIdKey struct{}

// RequestId returns the id assigned to the request by the middleware, or "".
func RequestId(ctx context.Context) string {
	id, _ := ctx.Value(requestIdKey{}).(string)
	return id
}

// SetupMiddleware wires all HTTP middlewares for the application.
func SetupMiddleware(r *mux.Router) {

	// Keep the caller's X-Request-Id or assign one, so client and server logs line up
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			requestId := req.Header.Get(requestIdHeader)
			if requestId == "" || len(requestId) > maxRequestIdLength {
				requestId = ulid.Make().String()
			}
			w.Header().Set(requestIdHeader, requestId)
			ctx := context.WithValue(req.Context(), requestIdKey{}, requestId)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})

	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			start := time.Now()
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(recorder, req)

			entry := log.WithFields(log.Fields{
				"requestId": RequestId(req.Context()),
				"method":    req.Method,
				"path":      req.URL.Path,
				"status":    recorder.status,
				"duration":  time.Since(start),
			})
			if recorder.status >= http.StatusInternalServerError {
				entry.Error("request failed")
			} else {
				entry.Debug("request handled")
			}
		})
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
