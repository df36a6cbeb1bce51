package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/diewo77/colegio/httpx"
	"github.com/sirupsen/logrus"
)

// Pinger checks that the store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	responder
	store Pinger
}

func NewHealthHandler(store Pinger, log logrus.FieldLogger) *HealthHandler {
	return &HealthHandler{responder: responder{log: log}, store: store}
}

// Live always answers ok while the process serves requests.
func (h *HealthHandler) Live(w http.ResponseWriter, _ *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready pings the store and answers 503 when it is unreachable.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.store.Ping(ctx); err != nil {
		h.logger(r).WithError(err).Warn("health check failed")
		httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "db": "down"})
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok", "db": "up"})
}
