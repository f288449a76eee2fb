package services

import (
	"context"
	"log"
	"sync"
	"time"

	"route-segment-cache/internal/domain"
)

// maxInflightComputations bounds concurrent provider/cache calls per
// reconciliation run.
const maxInflightComputations = 5

// ReconcileResult is the outcome of one reconciliation run.
type ReconcileResult struct {
	// Segments is the full merged list in decomposition order. Errored
	// segments stay in it with no distance fields for display purposes.
	Segments []domain.Segment
	// Computed is the newly computed, error-free subset the caller must
	// persist (upsert by segment hash).
	Computed []domain.Segment
	// Reused counts persisted segments matched by hash and kept verbatim.
	Reused int
	// Failed counts segments whose computation failed this run.
	Failed int
}

// Reconciler merges a record's persisted segments with the freshly expected
// decomposition, computing only the gaps. Reconciling an unchanged record a
// second time performs zero provider calls.
type Reconciler struct {
	Distance *DistanceService
}

func NewReconciler(distance *DistanceService) *Reconciler {
	return &Reconciler{Distance: distance}
}

type pairOutcome struct {
	key   string
	entry domain.CacheEntry
	err   error
}

// Reconcile computes the authoritative segment list for rec.
//
// Persisted segments are indexed by hash; an expected segment with a complete
// persisted match is reused verbatim (geometry drift changes the hash, so a
// stale entry is never mistakenly reused). The remaining gap set is grouped
// by cache key so each unique coordinate pair is computed at most once per
// run, all pairs in flight concurrently. Every outcome is collected: one
// pair's failure never blocks or cancels the others.
func (r *Reconciler) Reconcile(ctx context.Context, rec *domain.Record) ReconcileResult {
	if rec == nil {
		return ReconcileResult{Segments: []domain.Segment{}}
	}

	expected := ExpectedSegments(rec)

	persisted := make(map[string]domain.Segment, len(rec.Segments))
	for _, s := range rec.Segments {
		if s.Complete() {
			persisted[s.Hash] = s
		}
	}

	merged := make([]domain.Segment, len(expected))
	toCompute := make(map[string][]int)
	reused := 0

	for i, exp := range expected {
		if prev, ok := persisted[exp.Hash]; ok {
			merged[i] = prev
			reused++
			continue
		}
		merged[i] = exp
		toCompute[exp.CacheKey()] = append(toCompute[exp.CacheKey()], i)
	}

	sem := make(chan struct{}, maxInflightComputations)
	outcomes := make(chan pairOutcome, len(toCompute))
	var wg sync.WaitGroup

	for key, idxs := range toCompute {
		seg := expected[idxs[0]]
		from := domain.Coordinate{Lat: seg.FromLat, Lon: seg.FromLon}
		to := domain.Coordinate{Lat: seg.ToLat, Lon: seg.ToLon}

		wg.Add(1)
		go func(key string, from, to domain.Coordinate) {
			sem <- struct{}{}
			defer wg.Done()
			defer func() { <-sem }()

			if entry, ok := r.Distance.Lookup(ctx, from, to); ok {
				outcomes <- pairOutcome{key: key, entry: *entry}
				return
			}

			entry, err := r.Distance.ComputeAndCache(ctx, from, to)
			if err != nil {
				outcomes <- pairOutcome{key: key, err: err}
				return
			}
			outcomes <- pairOutcome{key: key, entry: entry}
		}(key, from, to)
	}

	wg.Wait()
	close(outcomes)

	result := ReconcileResult{Reused: reused}
	now := time.Now()

	for out := range outcomes {
		idxs := toCompute[out.key]
		if out.err != nil {
			log.Printf("segment computation failed record=%s pair=%s err=%v", rec.ID, out.key, out.err)
			for _, i := range idxs {
				merged[i].Errored = true
			}
			result.Failed += len(idxs)
			continue
		}

		for _, i := range idxs {
			applyEntry(&merged[i], out.entry, now)
			result.Computed = append(result.Computed, merged[i])
		}
	}

	result.Segments = merged
	return result
}

// applyEntry populates a segment skeleton from a cached or freshly computed
// distance result.
func applyEntry(seg *domain.Segment, entry domain.CacheEntry, at time.Time) {
	miles := entry.DistanceMiles
	seconds := entry.DurationSeconds
	seg.DistanceMiles = &miles
	seg.DurationSeconds = &seconds
	seg.DurationText = entry.DurationText
	seg.CalculatedAt = &at
	seg.Errored = false
}
