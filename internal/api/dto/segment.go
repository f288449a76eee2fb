package dto

import "time"

type ReconcileRequest struct {
	RecordID string `json:"record_id"`
}

type SegmentResponse struct {
	Hash            string     `json:"segment_hash"`
	Type            string     `json:"type"`
	FromLat         float64    `json:"from_lat"`
	FromLon         float64    `json:"from_lon"`
	ToLat           float64    `json:"to_lat"`
	ToLon           float64    `json:"to_lon"`
	FromIndex       int        `json:"from_index"`
	ToIndex         int        `json:"to_index"`
	OrderID         string     `json:"order_id,omitempty"`
	DistanceMiles   *float64   `json:"distance_miles,omitempty"`
	DurationText    string     `json:"duration_text,omitempty"`
	DurationSeconds *int       `json:"duration_seconds,omitempty"`
	CalculatedAt    *time.Time `json:"calculated_at,omitempty"`
	// Status is "complete", "error", or "calculating".
	Status string `json:"status"`
}

type ReconcileResponse struct {
	RecordID string            `json:"record_id"`
	Segments []SegmentResponse `json:"segments"`
	Reused   int               `json:"reused"`
	Computed int               `json:"computed"`
	Failed   int               `json:"failed"`
	// Persisted is false when segment computation succeeded but the write
	// back to the record failed; results are still returned for display.
	Persisted bool `json:"persisted"`
}
