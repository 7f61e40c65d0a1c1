package httpserver

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// HealthHandler serves a liveness/readiness probe endpoint. With no checks
// it always reports healthy, which is enough for a liveness probe. Readiness
// probes pass the checks their dependencies expose, for example
// redis.Healthcheck for the relay's fan-in subscription.
func HealthHandler(log *slog.Logger, checks ...func(ctx context.Context) error) http.HandlerFunc {
	if log == nil {
		log = slog.Default()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		for _, check := range checks {
			if err := check(ctx); err != nil {
				log.WarnContext(ctx, "health check failed", slog.Any("error", err))
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("unavailable"))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}
