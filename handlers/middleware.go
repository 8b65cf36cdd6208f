package handlers

import (
	"net/http"
	"runtime/debug"
	"time"

	logx "github.com/Fomkes/uae-water-delivery1-sub001/pkg/logger"
)

func (h *Handler) ErrorHandleMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logx.Error().Interface("panic", rec).Str("stack", string(debug.Stack())).
					Str("path", r.URL.Path).Msg("panic occurred")
				writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "something went wrong, contact the store administration"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (h *Handler) LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logx.Info().Str("method", r.Method).Str("path", r.URL.Path).
			Int("status", rec.status).Dur("duration", time.Since(start)).Msg("request")
	})
}
