package remote

import (
	"context"
	"io"
)

// ObjectInfo describes one locally durable object owed to the remote tier.
type ObjectInfo struct {
	// Bucket is the local bucket (directory) the object lives in.
	Bucket string
	// Name is the cluster-prefixed object name within the bucket.
	Name string
	// KMSID identifies the key-management key for server-side encryption.
	// It is carried through from the location, never interpreted locally.
	KMSID string
}

// Tier transfers locally durable objects to a remote tier.
//
// Upload must consume body to completion on success. A size of -1 means
// the length is unknown (e.g. the body is compressed on the fly).
// Implementations must be safe for concurrent use.
type Tier interface {
	Upload(ctx context.Context, info ObjectInfo, body io.Reader, size int64) error
}

// SimulatedTier accepts every upload without reading the body, making a
// flush pure bookkeeping. Useful as the innermost tier when only the
// wrapper behavior (compression, throttling) is under test.
type SimulatedTier struct{}

func (SimulatedTier) Upload(ctx context.Context, info ObjectInfo, body io.Reader, size int64) error {
	return ctx.Err()
}
