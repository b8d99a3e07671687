package remote

import (
	"context"
	"io"

	"golang.org/x/time/rate"
)

// ThrottledTier wraps a Tier and caps the upload bandwidth with a token
// bucket, so flushes cannot saturate the uplink of the host.
type ThrottledTier struct {
	inner   Tier
	limiter *rate.Limiter
}

// NewThrottledTier creates a throttling wrapper limiting uploads to
// bytesPerSec (which is also the burst size).
func NewThrottledTier(inner Tier, bytesPerSec int) *ThrottledTier {
	return &ThrottledTier{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(bytesPerSec), bytesPerSec),
	}
}

func (t *ThrottledTier) Upload(ctx context.Context, info ObjectInfo, body io.Reader, size int64) error {
	return t.inner.Upload(ctx, info, &throttledReader{
		ctx:     ctx,
		r:       body,
		limiter: t.limiter,
	}, size)
}

type throttledReader struct {
	ctx     context.Context
	r       io.Reader
	limiter *rate.Limiter
}

func (tr *throttledReader) Read(p []byte) (int, error) {
	// Never request more than the bucket can ever hold.
	if burst := tr.limiter.Burst(); len(p) > burst {
		p = p[:burst]
	}
	n, err := tr.r.Read(p)
	if n > 0 {
		if werr := tr.limiter.WaitN(tr.ctx, n); werr != nil {
			return n, werr
		}
	}
	return n, err
}
