package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/showdown-ml/battle-features/internal/battlelog"
	"github.com/showdown-ml/battle-features/internal/logic"
	"github.com/showdown-ml/battle-features/internal/models"
)

// GenerateFeatures handles POST /api/v1/features
// @Summary Generate Features
// @Description Turns newline-delimited battle records into a feature table
// @Tags Features
// @Accept plain
// @Produce json
// @Param set query string false "Feature set (tree, linear)"
// @Param test query bool false "Input carries no labels"
// @Param difference query bool false "Emit P1 minus P2 columns"
// @Param divide_turns query bool false "Split averages by turn segment"
// @Param one_hot query bool false "One-hot identity encoding"
// @Success 200 {object} models.FeatureResponse
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /features [post]
func (h *Handler) GenerateFeatures(w http.ResponseWriter, r *http.Request) {
	query, err := h.parseFeatureQuery(r)
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.validator.Struct(query); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "Invalid query: "+err.Error())
		return
	}
	set, err := logic.ParseFeatureSet(query.Set)
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	opts := h.defaults
	opts.Set = set
	opts.FlagTest = query.Test
	opts.Difference = query.Difference
	opts.DivideTurns = query.DivideTurns
	opts.OneHot = query.OneHot

	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)
	defer r.Body.Close()

	ctx := r.Context()
	battles, err := battlelog.Read(ctx, r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.errorResponse(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		h.errorResponse(w, statusFor(err), err.Error())
		return
	}

	start := time.Now()
	table, err := h.features.Generate(ctx, battles, opts)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			h.logger.Errorw("Feature generation failed", "battles", len(battles), "error", err)
		}
		h.errorResponse(w, status, err.Error())
		return
	}

	run := &models.FeatureRun{
		Set:         string(opts.Set),
		Test:        opts.FlagTest,
		Difference:  opts.Difference,
		DivideTurns: opts.DivideTurns,
		OneHot:      opts.OneHot,
		Battles:     len(table.Rows),
		Columns:     len(table.Columns),
		Duration:    time.Since(start),
		CreatedAt:   time.Now().UTC(),
	}
	if h.runs != nil {
		if err := h.runs.Record(ctx, run); err != nil {
			h.logger.Warnw("Failed to record run", "error", err)
		}
	}

	h.jsonResponse(w, http.StatusOK, models.FeatureResponse{
		RunID:   run.ID,
		Columns: table.Header(),
		Rows:    table.Records(),
	})
}

// parseFeatureQuery reads the query string over the configured defaults.
func (h *Handler) parseFeatureQuery(r *http.Request) (models.FeatureQuery, error) {
	q := r.URL.Query()
	out := models.FeatureQuery{
		Set:         q.Get("set"),
		Test:        h.defaults.FlagTest,
		Difference:  h.defaults.Difference,
		DivideTurns: h.defaults.DivideTurns,
		OneHot:      h.defaults.OneHot,
	}
	if out.Set == "" {
		out.Set = string(h.defaults.Set)
	}
	flags := []struct {
		key string
		dst *bool
	}{
		{"test", &out.Test},
		{"difference", &out.Difference},
		{"divide_turns", &out.DivideTurns},
		{"one_hot", &out.OneHot},
	}
	for _, f := range flags {
		v := q.Get(f.key)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return out, errors.New("invalid " + f.key + " parameter")
		}
		*f.dst = b
	}
	return out, nil
}

// GetBattleFeatures handles GET /api/v1/features/{battleID}
// @Summary Get Battle Features
// @Description Returns the stored feature row of a battle, cache first
// @Tags Features
// @Produce json
// @Param battleID path string true "Battle ID"
// @Success 200 {object} models.FeatureLookup
// @Failure 404 {object} map[string]string
// @Router /features/{battleID} [get]
func (h *Handler) GetBattleFeatures(w http.ResponseWriter, r *http.Request) {
	battleID := chi.URLParam(r, "battleID")
	ctx := r.Context()

	if h.cache != nil {
		row, err := h.cache.Get(ctx, battleID)
		if err == nil {
			h.jsonResponse(w, http.StatusOK, row)
			return
		}
		if !errors.Is(err, logic.ErrNotFound) {
			h.logger.Warnw("Feature cache read failed", "battle", battleID, "error", err)
		}
	}

	if h.store == nil {
		h.errorResponse(w, http.StatusNotFound, "Battle not found")
		return
	}
	row, err := h.store.Lookup(ctx, battleID)
	if err != nil {
		if errors.Is(err, logic.ErrNotFound) {
			h.errorResponse(w, http.StatusNotFound, "Battle not found")
			return
		}
		h.logger.Errorw("Feature lookup failed", "battle", battleID, "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to load features")
		return
	}
	h.jsonResponse(w, http.StatusOK, row)
}

// GetRun handles GET /api/v1/runs/{runID}
// @Summary Get Feature Run
// @Tags Features
// @Produce json
// @Param runID path string true "Run ID"
// @Success 200 {object} models.FeatureRun
// @Failure 404 {object} map[string]string
// @Router /runs/{runID} [get]
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	if h.runs == nil {
		h.errorResponse(w, http.StatusNotFound, "Run not found")
		return
	}
	run, err := h.runs.Get(r.Context(), chi.URLParam(r, "runID"))
	if err != nil {
		if errors.Is(err, logic.ErrNotFound) {
			h.errorResponse(w, http.StatusNotFound, "Run not found")
			return
		}
		h.logger.Errorw("Run lookup failed", "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to load run")
		return
	}
	h.jsonResponse(w, http.StatusOK, run)
}
