package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/magicstocks/calendar/internal/pipeline"
	"github.com/magicstocks/calendar/pkg/logger"
)

// OpsHandler exposes operational actions.
type OpsHandler struct {
	runner *pipeline.Runner
	logger *logger.Logger
}

// NewOpsHandler creates the ops handlers.
func NewOpsHandler(runner *pipeline.Runner, log *logger.Logger) *OpsHandler {
	return &OpsHandler{
		runner: runner,
		logger: log,
	}
}

type retrainRequest struct {
	Symbols []string `json:"symbols,omitempty"`
	Limit   int      `json:"limit,omitempty"`
}

// Retrain kicks off a retrain run in the background. Responds 202 when the
// run is accepted, 409 when a run is already in flight.
// POST /api/ops/retrain
func (h *OpsHandler) Retrain(w http.ResponseWriter, r *http.Request) {
	var req retrainRequest
	if r.Body != nil {
		// An empty or absent body means "full universe, default limit".
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			respondError(w, http.StatusBadRequest, "malformed request body")
			return
		}
	}

	if h.runner.IsRunning() {
		respondError(w, http.StatusConflict, "retrain already in progress")
		return
	}

	go func() {
		_, err := h.runner.Run(context.Background(), pipeline.Options{
			Symbols: req.Symbols,
			Limit:   req.Limit,
		})
		if errors.Is(err, pipeline.ErrAlreadyRunning) {
			h.logger.Warn("Retrain request lost the race to a concurrent run")
		} else if err != nil {
			h.logger.WithError(err).Error("Background retrain failed")
		}
	}()

	respondJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}
