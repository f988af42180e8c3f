package handlers

import (
	"errors"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"github.com/showdown-ml/battle-features/internal/battlelog"
	"github.com/showdown-ml/battle-features/internal/dex"
	"github.com/showdown-ml/battle-features/internal/features"
	"github.com/showdown-ml/battle-features/internal/logic"
	"github.com/showdown-ml/battle-features/internal/models"
	"github.com/showdown-ml/battle-features/internal/typechart"
)

// Health check endpoint
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
	})
}

// Ready check endpoint
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	checks := make(map[string]bool, len(h.checks))
	allHealthy := true
	for name, check := range h.checks {
		ok := check(ctx) == nil
		checks[name] = ok
		allHealthy = allHealthy && ok
	}

	body := map[string]interface{}{
		"ready":  allHealthy,
		"checks": checks,
	}
	if h.pool != nil {
		body["queueDepth"] = h.pool.QueueDepth()
	}

	status := http.StatusOK
	if !allHealthy {
		status = http.StatusServiceUnavailable
	}
	h.jsonResponse(w, status, body)
}

func (h *Handler) jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) errorResponse(w http.ResponseWriter, status int, message string) {
	h.jsonResponse(w, status, map[string]string{"error": message})
}

// statusFor maps engine errors to HTTP statuses.
func statusFor(err error) int {
	var lineErr *battlelog.LineError
	switch {
	case errors.As(err, &lineErr),
		errors.Is(err, features.ErrUnsupportedOption),
		errors.Is(err, logic.ErrNoBattles),
		errors.Is(err, logic.ErrInvalidBattle),
		errors.Is(err, models.ErrDuplicateBattle),
		errors.Is(err, logic.ErrInvalidSummary):
		return http.StatusBadRequest
	case errors.Is(err, typechart.ErrUnknownType),
		errors.Is(err, dex.ErrRosterConflict):
		return http.StatusUnprocessableEntity
	case errors.Is(err, logic.ErrNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
