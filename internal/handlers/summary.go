package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/showdown-ml/battle-features/internal/logic"
)

// GetFeatureSummary handles GET /api/v1/features/summary
// @Summary Summarize Feature Column
// @Description Aggregates one stored feature column, optionally split by outcome or run
// @Tags Features
// @Produce json
// @Param column query string true "Feature column"
// @Param metric query string false "avg, min, max, stddev, median or count"
// @Param group_by query string false "outcome or run"
// @Param run_id query string false "Restrict to one run"
// @Param since query string false "RFC3339 lower bound"
// @Param until query string false "RFC3339 upper bound"
// @Param limit query int false "Max groups"
// @Success 200 {array} models.SummaryPoint
// @Failure 400 {object} map[string]string
// @Router /features/summary [get]
func (h *Handler) GetFeatureSummary(w http.ResponseWriter, r *http.Request) {
	if h.summary == nil {
		h.errorResponse(w, http.StatusServiceUnavailable, "Feature store not configured")
		return
	}

	req, err := parseSummaryRequest(r)
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "Invalid query: "+err.Error())
		return
	}

	points, err := h.summary.Summarize(r.Context(), req)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			h.logger.Errorw("Feature summary failed", "column", req.Column, "error", err)
			h.errorResponse(w, status, "Failed to summarize features")
			return
		}
		h.errorResponse(w, status, err.Error())
		return
	}
	h.jsonResponse(w, http.StatusOK, points)
}

func parseSummaryRequest(r *http.Request) (logic.SummaryRequest, error) {
	q := r.URL.Query()
	req := logic.SummaryRequest{
		Column:  q.Get("column"),
		Metric:  q.Get("metric"),
		GroupBy: q.Get("group_by"),
		RunID:   q.Get("run_id"),
	}
	var err error
	if v := q.Get("since"); v != "" {
		if req.Since, err = time.Parse(time.RFC3339, v); err != nil {
			return req, errors.New("invalid since parameter")
		}
	}
	if v := q.Get("until"); v != "" {
		if req.Until, err = time.Parse(time.RFC3339, v); err != nil {
			return req, errors.New("invalid until parameter")
		}
	}
	if v := q.Get("limit"); v != "" {
		if req.Limit, err = strconv.Atoi(v); err != nil {
			return req, errors.New("invalid limit parameter")
		}
	}
	return req, nil
}
