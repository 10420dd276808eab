package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"nhgate/internal/logging"
	"nhgate/internal/repository/api/nicehash"
	"nhgate/internal/service/rigs"
)

type RigService interface {
	Status(ctx context.Context, name string) (nicehash.RawMessage, error)
}

type Handler struct {
	rs     RigService
	logger *slog.Logger
}

func New(rs RigService, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{rs: rs, logger: logger}
}

// Routes serves POST /{name} and, when gatherer is not nil, GET /metrics.
func (h *Handler) Routes(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /{name}", h.Status)
	if gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	return mux
}

// Status answers with the rig's minerStatus, or null when no rig has that
// name.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	ctx := logging.WithRig(r.Context(), name)

	status, err := h.rs.Status(ctx, name)
	switch {
	case errors.Is(err, rigs.ErrNotFound):
		status = nicehash.RawMessage("null")
	case err != nil:
		h.logger.ErrorContext(logging.ErrorCtx(ctx, err), "rig status failed", "error", err)
		writeJSON(w, statusFor(err), nicehash.RawMessage(`{"error":"upstream request failed"}`))
		return
	}

	writeJSON(w, http.StatusOK, status)
}

func statusFor(err error) int {
	var cfgErr *nicehash.ConfigError
	if errors.As(err, &cfgErr) {
		return http.StatusInternalServerError
	}
	return http.StatusBadGateway
}

func writeJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
	_, _ = w.Write([]byte{'\n'})
}
