package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"route-segment-cache/internal/api/dto"
	"route-segment-cache/internal/domain"
	"route-segment-cache/internal/ports"
	"route-segment-cache/internal/services"
)

type SegmentHandler struct {
	Repo       ports.RecordRepository
	Reconciler *services.Reconciler
}

// Reconcile recomputes a record's segment set: decompose the record's
// waypoints, reuse persisted segments whose hash still matches, compute the
// gaps, persist the newly computed subset, and return the merged list.
func (h *SegmentHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.ReconcileRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	recordID := strings.TrimSpace(req.RecordID)
	if recordID == "" {
		writeError(w, r, http.StatusBadRequest, "record_id is required")
		return
	}

	rec, err := h.Repo.GetRecord(r.Context(), recordID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			writeError(w, r, http.StatusNotFound, "record not found")
			return
		}
		log.Printf("load record failed record=%s err=%v", recordID, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	result := h.Reconciler.Reconcile(r.Context(), rec)

	// A persistence failure after successful computation is non-fatal: the
	// computed segments are still returned for display, and the hash-based
	// reuse forces recomputation on the next run.
	persisted := true
	if len(result.Computed) > 0 {
		if err := h.Repo.UpsertSegments(r.Context(), recordID, result.Computed); err != nil {
			log.Printf("persist segments failed record=%s err=%v", recordID, err)
			persisted = false
		}
	}

	res := dto.ReconcileResponse{
		RecordID:  recordID,
		Segments:  make([]dto.SegmentResponse, 0, len(result.Segments)),
		Reused:    result.Reused,
		Computed:  len(result.Computed),
		Failed:    result.Failed,
		Persisted: persisted,
	}
	for _, s := range result.Segments {
		res.Segments = append(res.Segments, dto.SegmentResponse{
			Hash:            s.Hash,
			Type:            string(s.Type),
			FromLat:         s.FromLat,
			FromLon:         s.FromLon,
			ToLat:           s.ToLat,
			ToLon:           s.ToLon,
			FromIndex:       s.FromIndex,
			ToIndex:         s.ToIndex,
			OrderID:         s.OrderID,
			DistanceMiles:   s.DistanceMiles,
			DurationText:    s.DurationText,
			DurationSeconds: s.DurationSeconds,
			CalculatedAt:    s.CalculatedAt,
			Status:          segmentStatus(s),
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}

func segmentStatus(s domain.Segment) string {
	switch {
	case s.Errored:
		return "error"
	case s.Complete():
		return "complete"
	default:
		return "calculating"
	}
}
