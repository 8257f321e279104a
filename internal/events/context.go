package events

import (
	"context"
	"math/rand/v2"
)

type runKey struct{}

// WithRun tags parent with a new random run id. Events published with the
// returned context belong to that run; subscribers group them by RunID.
func WithRun(parent context.Context) (context.Context, int64) {
	id := rand.Int64()
	return context.WithValue(parent, runKey{}, id), id
}

// RunID returns the run id ctx was tagged with by WithRun.
func RunID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(runKey{}).(int64)
	return id, ok
}
