package remote

import (
	"context"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// CompressionType defines the compression algorithm used before upload.
type CompressionType uint8

const (
	// CompressionZSTD compresses with zstd (better ratio, good for cold data).
	CompressionZSTD CompressionType = iota
	// CompressionLZ4 compresses with LZ4 (fast, good for hot data).
	CompressionLZ4
)

func (c CompressionType) suffix() string {
	if c == CompressionLZ4 {
		return ".lz4"
	}
	return ".zst"
}

// CompressingTier wraps a Tier and compresses the object stream before
// handing it to the inner tier. The remote key gains a codec suffix so
// recovery tooling can tell compressed objects apart.
type CompressingTier struct {
	inner Tier
	codec CompressionType
}

// NewCompressingTier creates a compressing wrapper around inner.
func NewCompressingTier(inner Tier, codec CompressionType) *CompressingTier {
	return &CompressingTier{inner: inner, codec: codec}
}

// Upload compresses body on the fly. The compressed length is unknown
// ahead of time, so the inner tier sees size -1.
func (t *CompressingTier) Upload(ctx context.Context, info ObjectInfo, body io.Reader, size int64) error {
	pr, pw := io.Pipe()

	go func() {
		pw.CloseWithError(t.compress(pw, body))
	}()

	info.Name += t.codec.suffix()
	if err := t.inner.Upload(ctx, info, pr, -1); err != nil {
		_ = pr.CloseWithError(err)
		return err
	}
	return nil
}

func (t *CompressingTier) compress(dst io.Writer, src io.Reader) error {
	switch t.codec {
	case CompressionLZ4:
		zw := lz4.NewWriter(dst)
		if _, err := io.Copy(zw, src); err != nil {
			return fmt.Errorf("remote: lz4 compress: %w", err)
		}
		if err := zw.Close(); err != nil {
			return fmt.Errorf("remote: lz4 close: %w", err)
		}
		return nil
	default:
		zw, err := zstd.NewWriter(dst, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return fmt.Errorf("remote: zstd writer: %w", err)
		}
		if _, err := io.Copy(zw, src); err != nil {
			_ = zw.Close()
			return fmt.Errorf("remote: zstd compress: %w", err)
		}
		if err := zw.Close(); err != nil {
			return fmt.Errorf("remote: zstd close: %w", err)
		}
		return nil
	}
}
