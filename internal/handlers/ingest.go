package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/showdown-ml/battle-features/internal/battlelog"
	"github.com/showdown-ml/battle-features/internal/models"
)

// IngestBattles handles POST /api/v1/ingest/battles
// @Summary Ingest Battles
// @Description Accepts newline-delimited battle records for asynchronous feature extraction
// @Tags Ingestion
// @Accept plain
// @Produce json
// @Success 202 {object} models.IngestResponse
// @Failure 413 {object} map[string]string "Request Entity Too Large"
// @Router /ingest/battles [post]
func (h *Handler) IngestBattles(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)
	defer r.Body.Close()

	ctx := r.Context()
	resp := models.IngestResponse{Status: "accepted"}

	var battles []models.Battle
	rd := battlelog.NewReader(r.Body)
	for {
		b, err := rd.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		var lineErr *battlelog.LineError
		if errors.As(err, &lineErr) {
			// Skip invalid lines; the rest of the batch is still accepted
			h.logger.Warnw("Skipping invalid battle", "line", lineErr.Line, "error", lineErr.Err)
			resp.Invalid++
			continue
		}
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				h.errorResponse(w, http.StatusRequestEntityTooLarge, "Request body too large")
				return
			}
			h.errorResponse(w, http.StatusBadRequest, err.Error())
			return
		}
		battles = append(battles, b)
	}

	fresh, dups, err := h.pool.Deduplicate(ctx, battles)
	if err != nil {
		h.logger.Errorw("Deduplication failed", "battles", len(battles), "error", err)
		h.errorResponse(w, http.StatusServiceUnavailable, "Failed to check known battles")
		return
	}
	resp.Duplicates = dups

	for _, b := range fresh {
		if !h.pool.Enqueue(b) {
			h.logger.Warnw("Worker pool queue full, dropping remaining battles", "dropped", len(fresh)-resp.Processed)
			resp.Status = "partial"
			break
		}
		resp.Processed++
	}

	h.logger.Infow("Battles ingested",
		"processed", resp.Processed,
		"duplicates", resp.Duplicates,
		"invalid", resp.Invalid,
	)
	h.jsonResponse(w, http.StatusAccepted, resp)
}
