// Package remote provides transfer backends for flushing objects to a
// remote tier.
//
// Tier is the interface the storage source invokes once per flushed object.
// The source itself only guarantees the crash-safe bookkeeping (marker
// files, flush queue); what "transfer" means is up to the configured Tier.
//
// # Built-in Implementations
//
//   - SimulatedTier: accepts everything, transfers nothing
//   - MemoryTier: in-memory capture, for tests
//   - MinioTier: MinIO and S3-compatible endpoints
//   - S3Tier: Amazon S3 via the multipart upload manager
//
// # Wrappers
//
//   - CompressingTier: compresses the stream (zstd or lz4) before upload
//   - ThrottledTier: caps upload bandwidth with a token bucket
//
// Wrappers compose:
//
//	tier := remote.NewThrottledTier(
//	    remote.NewCompressingTier(s3Tier, remote.CompressionZSTD),
//	    8<<20, // 8 MiB/s
//	)
package remote
