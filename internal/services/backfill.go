package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"route-segment-cache/internal/domain"
	"route-segment-cache/internal/ports"
)

// BackfillReport aggregates one full batch run.
type BackfillReport struct {
	Records       int
	Reused        int
	CacheHits     int
	Computed      int
	Failed        int
	FailedRecords []string
}

// Summary renders the report as the textual block the backfill binary prints.
func (r BackfillReport) Summary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "records processed:  %d\n", r.Records)
	fmt.Fprintf(&sb, "segments reused:    %d\n", r.Reused)
	fmt.Fprintf(&sb, "cache hits:         %d\n", r.CacheHits)
	fmt.Fprintf(&sb, "newly computed:     %d\n", r.Computed)
	fmt.Fprintf(&sb, "failed segments:    %d\n", r.Failed)
	if len(r.FailedRecords) > 0 {
		fmt.Fprintf(&sb, "records with failures: %s\n", strings.Join(r.FailedRecords, ", "))
	}
	return sb.String()
}

// Backfill reconciles every historical record, pre-populating the distance
// cache. Records are processed sequentially and provider calls wait on a
// pacing limiter so the batch respects external rate limits; this is a
// deliberate throughput trade-off against the interactive reconciler's
// full concurrency.
type Backfill struct {
	Repo     ports.RecordRepository
	Distance *DistanceService
	Limiter  *rate.Limiter
}

// NewBackfill paces provider calls to at most one per interval. A zero
// interval disables pacing.
func NewBackfill(repo ports.RecordRepository, distance *DistanceService, interval time.Duration) *Backfill {
	return &Backfill{
		Repo:     repo,
		Distance: distance,
		Limiter:  rate.NewLimiter(rate.Every(interval), 1),
	}
}

// Run processes every record once. Failures are local: a failed segment or
// record is counted and the batch moves on. Only context cancellation or a
// failure to list records aborts the run.
func (b *Backfill) Run(ctx context.Context) (BackfillReport, error) {
	ids, err := b.Repo.ListRecordIDs(ctx)
	if err != nil {
		return BackfillReport{}, fmt.Errorf("backfill: list records: %w", err)
	}

	var report BackfillReport
	failed := make(map[string]struct{})

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		rec, err := b.Repo.GetRecord(ctx, id)
		if err != nil {
			log.Printf("backfill: load record failed record=%s err=%v", id, err)
			failed[id] = struct{}{}
			continue
		}

		report.Records++

		computed, recordFailed := b.fillRecord(ctx, rec, &report)

		if len(computed) > 0 {
			if err := b.Repo.UpsertSegments(ctx, id, computed); err != nil {
				log.Printf("backfill: persist segments failed record=%s err=%v", id, err)
				recordFailed = true
			}
		}

		if recordFailed {
			failed[id] = struct{}{}
		}
	}

	report.FailedRecords = make([]string, 0, len(failed))
	for id := range failed {
		report.FailedRecords = append(report.FailedRecords, id)
	}
	sort.Strings(report.FailedRecords)

	return report, nil
}

// fillRecord applies the reconciliation algorithm sequentially: complete
// persisted matches are reused, cache hits fill directly, and every provider
// call waits on the pacing limiter first.
func (b *Backfill) fillRecord(ctx context.Context, rec *domain.Record, report *BackfillReport) ([]domain.Segment, bool) {
	expected := ExpectedSegments(rec)

	persisted := make(map[string]domain.Segment, len(rec.Segments))
	for _, s := range rec.Segments {
		if s.Complete() {
			persisted[s.Hash] = s
		}
	}

	now := time.Now()
	computed := make([]domain.Segment, 0, len(expected))
	failedAny := false

	for _, exp := range expected {
		if _, ok := persisted[exp.Hash]; ok {
			report.Reused++
			continue
		}

		from := domain.Coordinate{Lat: exp.FromLat, Lon: exp.FromLon}
		to := domain.Coordinate{Lat: exp.ToLat, Lon: exp.ToLon}

		if entry, ok := b.Distance.Lookup(ctx, from, to); ok {
			applyEntry(&exp, *entry, now)
			computed = append(computed, exp)
			report.CacheHits++
			continue
		}

		if b.Limiter != nil {
			if err := b.Limiter.Wait(ctx); err != nil {
				return computed, true
			}
		}

		entry, err := b.Distance.ComputeAndCache(ctx, from, to)
		if err != nil {
			log.Printf("backfill: segment computation failed record=%s pair=%s err=%v", rec.ID, exp.CacheKey(), err)
			report.Failed++
			failedAny = true
			continue
		}

		applyEntry(&exp, entry, now)
		computed = append(computed, exp)
		report.Computed++
	}

	return computed, failedAny
}
