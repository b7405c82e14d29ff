package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/straye-as/earsip/internal/apiclient"
	"go.uber.org/zap"
)

const readinessTimeout = 3 * time.Second

// HealthHandler serves liveness and readiness probes
type HealthHandler struct {
	client *apiclient.Client
	mock   bool
	logger *zap.Logger
}

func NewHealthHandler(client *apiclient.Client, mock bool, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{client: client, mock: mock, logger: logger}
}

// Health is the liveness probe
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready reports whether the upstream archive API answers
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	mode := "upstream"
	if h.mock {
		mode = "mock"
	}

	if err := h.client.Ping(ctx); err != nil {
		h.logger.Error("upstream readiness check failed", zap.Error(err))
		respondJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status": "not_ready",
			"checks": map[string]interface{}{
				"upstream": map[string]string{"status": "unhealthy", "mode": mode, "error": err.Error()},
			},
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ready",
		"checks": map[string]interface{}{
			"upstream": map[string]string{"status": "healthy", "mode": mode},
		},
	})
}
