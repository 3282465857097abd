package obs

import (
	"context"
	"log"
	"sync"
	"time"
)

type ctxKey string

const RequestIDKey ctxKey = "req_id"

// WithRequestID returns a context carrying the request correlation id.
func WithRequestID(ctx context.Context, reqID string) context.Context {
	if reqID == "" {
		return ctx
	}
	return context.WithValue(ctx, RequestIDKey, reqID)
}

func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	reqID, _ := ctx.Value(RequestIDKey).(string)
	return reqID
}

// Sink receives one record per finished operation.
type Sink func(ctx context.Context, op string, dur time.Duration, err error)

var (
	sinkMu sync.RWMutex
	sink   Sink
)

// SetSink routes timing records to s. A nil sink restores plain log lines.
func SetSink(s Sink) {
	sinkMu.Lock()
	sink = s
	sinkMu.Unlock()
}

// Time records the duration of an operation and its error, if any:
//
//	defer obs.Time(ctx, "trips.AssignTanker")(&err)
func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()

	return func(errp *error) {
		dur := time.Since(start)

		var err error
		if errp != nil {
			err = *errp
		}

		sinkMu.RLock()
		s := sink
		sinkMu.RUnlock()
		if s != nil {
			s(ctx, name, dur, err)
			return
		}

		if err != nil {
			log.Printf("req_id=%s op=%s dur=%dms err=%v", RequestID(ctx), name, dur.Milliseconds(), err)
			return
		}
		log.Printf("req_id=%s op=%s dur=%dms", RequestID(ctx), name, dur.Milliseconds())
	}
}
