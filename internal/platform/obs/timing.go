// Package obs carries the minimal observability plumbing: per-request ids
// and deferred operation timing logs.
package obs

import (
	"context"
	"log"
	"time"
)

type ctxKey string

// RequestIDKey holds the request id assigned by the API middleware; batch
// entry points leave it unset.
const RequestIDKey ctxKey = "req_id"

// Time logs an operation's duration (and error, if any) when the returned
// func runs. Use with a named error return:
//
//	defer obs.Time(ctx, "distance.ComputeAndCache")(&err)
func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()

	reqID, _ := ctx.Value(RequestIDKey).(string)

	return func(errp *error) {
		dur := time.Since(start)

		if errp != nil && *errp != nil {
			log.Printf("req_id=%s op=%s dur=%dms err=%v", reqID, name, dur.Milliseconds(), *errp)
			return
		}
		log.Printf("req_id=%s op=%s dur=%dms", reqID, name, dur.Milliseconds())
	}
}
