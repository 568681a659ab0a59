package httpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/resumekit/pkg/logger"
)

// Check is a named readiness dependency.
type Check struct {
	Name string
	Fn   func(context.Context) error
}

// LivenessHandler answers 200 while the process is up.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"alive"}`))
	}
}

// ReadinessHandler runs every check with a shared timeout and answers 503
// naming the failing dependencies.
func ReadinessHandler(log *slog.Logger, timeout time.Duration, checks ...Check) http.HandlerFunc {
	if log == nil {
		log = logger.Discard()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		failed := make([]string, 0)
		for _, c := range checks {
			if err := c.Fn(ctx); err != nil {
				log.ErrorContext(ctx, "readiness check failed", slog.String("check", c.Name), logger.Error(err))
				failed = append(failed, c.Name)
			}
		}

		status, code := "ready", http.StatusOK
		if len(failed) > 0 {
			status, code = "not_ready", http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(map[string]any{"status": status, "failed": failed})
	}
}
