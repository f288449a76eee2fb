package ports

import (
	"context"
	"route-segment-cache/internal/domain"
)

// Port: a boundary for record persistence. Segments are upserted with the
// segment hash as the natural key, never by positional index, because
// positions can shift between recomputations while hashes for unchanged
// geometry do not.
type RecordRepository interface {
	// Return the ids of every record, for batch processing.
	ListRecordIDs(ctx context.Context) ([]string, error)
	// Retrieve one record with its linked orders, customers, and persisted
	// segments. Returns domain.ErrRecordNotFound for unknown ids.
	GetRecord(ctx context.Context, id string) (*domain.Record, error)
	// Upsert newly computed segments onto the record, keyed by segment hash.
	UpsertSegments(ctx context.Context, recordID string, segments []domain.Segment) error
}
