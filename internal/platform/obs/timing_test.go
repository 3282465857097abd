package obs

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "abc")
	if got := RequestID(ctx); got != "abc" {
		t.Fatalf("RequestID = %q, want abc", got)
	}
	if got := RequestID(WithRequestID(context.Background(), "")); got != "" {
		t.Fatalf("empty id should not be stored, got %q", got)
	}
}

func TestTimeReportsToSink(t *testing.T) {
	var (
		gotOp  string
		gotErr error
		gotReq string
	)
	SetSink(func(ctx context.Context, op string, dur time.Duration, err error) {
		gotOp, gotErr, gotReq = op, err, RequestID(ctx)
		if dur < 0 {
			t.Errorf("negative duration %v", dur)
		}
	})
	t.Cleanup(func() { SetSink(nil) })

	run := func(ctx context.Context) (err error) {
		defer Time(ctx, "schedules.Generate")(&err)
		return errors.New("locked")
	}

	_ = run(WithRequestID(context.Background(), "req-1"))

	if gotOp != "schedules.Generate" || gotReq != "req-1" {
		t.Fatalf("unexpected record op=%q req=%q", gotOp, gotReq)
	}
	if gotErr == nil || gotErr.Error() != "locked" {
		t.Fatalf("err = %v, want locked", gotErr)
	}
}
