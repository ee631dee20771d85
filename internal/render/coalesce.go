package render

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/goliatone/go-sitecms/internal/metrics"
)

// coalescer shares one in-flight render between concurrent identical calls.
// Entries leave the group as soon as the render settles.
type coalescer struct {
	group    singleflight.Group
	recorder metrics.Recorder
	timeout  time.Duration
}

func newCoalescer(recorder metrics.Recorder, timeout time.Duration) *coalescer {
	return &coalescer{recorder: metrics.OrNoop(recorder), timeout: timeout}
}

// do runs fn once per key at a time. fn gets a context that keeps the first
// caller's values but none of its cancellation, bounded by the engine
// timeout. Each caller stops waiting when its own ctx is done.
func (c *coalescer) do(ctx context.Context, kind metrics.RenderKind, key string, fn func(context.Context) (any, error)) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var leader bool
	ch := c.group.DoChan(string(kind)+":"+key, func() (any, error) {
		leader = true
		runCtx, cancel := boundedContext(context.WithoutCancel(ctx), c.timeout)
		defer cancel()
		return fn(runCtx)
	})
	c.recorder.AddWaiting(kind, 1)
	defer c.recorder.AddWaiting(kind, -1)

	waitCtx, cancel := boundedContext(ctx, c.timeout)
	defer cancel()
	select {
	case res := <-ch:
		if res.Shared && !leader {
			c.recorder.IncCoalesced(kind)
		}
		return res.Val, res.Err
	case <-waitCtx.Done():
		return nil, waitCtx.Err()
	}
}

func boundedContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func requestKey(request any) (string, error) {
	raw, err := json.Marshal(request)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}
