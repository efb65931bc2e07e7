package resource

import (
	"context"
	"io"
)

type throttledWriter struct {
	ctx context.Context
	dst io.Writer
	rc  *Controller
}

// NewRateLimitedWriter returns a writer that charges every Write against the
// controller's IO limit before forwarding it to w.
func NewRateLimitedWriter(ctx context.Context, w io.Writer, rc *Controller) io.Writer {
	return &throttledWriter{ctx: ctx, dst: w, rc: rc}
}

func (t *throttledWriter) Write(p []byte) (int, error) {
	if err := t.rc.AcquireIO(t.ctx, len(p)); err != nil {
		return 0, err
	}
	return t.dst.Write(p)
}
