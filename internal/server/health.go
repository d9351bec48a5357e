package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/moyeshkhanal/partyGames/internal/store"
)

// HealthResponse reports the record store's liveness.
type HealthResponse struct {
	Status string `json:"status"`
}

func handleHealth(logger *slog.Logger, health store.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		if err := health.Ping(ctx); err != nil {
			logger.Error("health check failed", "name", "store", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "error"})
			return
		}

		writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
	}
}
