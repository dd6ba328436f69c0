package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// AllowedHeaders is the request header list browsers may send cross-origin.
const AllowedHeaders = "authorization, x-client-info, apikey, content-type"

// corsMiddleware returns the permissive fixed-header policy for a wildcard
// origin list and a negotiated go-chi/cors policy otherwise.
func corsMiddleware(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		return permissiveCORS
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "X-Client-Info", "Apikey", "Content-Type"},
		ExposedHeaders:   []string{InterpretationHeader},
		AllowCredentials: false,
		MaxAge:           300,
	})
}

// InterpretationHeader tells callers whether an analysis came from the
// model's structured output or from the fallback.
const InterpretationHeader = "X-Analysis-Interpretation"

// permissiveCORS stamps the wildcard CORS headers on every response,
// including errors and 404s, and answers every OPTIONS request with an
// empty 200.
func permissiveCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Headers", AllowedHeaders)
		h.Set("Access-Control-Expose-Headers", InterpretationHeader)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestLogger writes one zap entry per request.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Info("request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
					zap.String("request_id", middleware.GetReqID(r.Context())),
					zap.String("remote", r.RemoteAddr))
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
