package tierstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/hupe1980/tierstore/remote"
)

// flushRecord represents one object not yet confirmed flushed. It is
// created when a creation handle closes, owned by the flush queue, and
// destroyed only when a flush processes it.
type flushRecord struct {
	srcPath    string // final on-disk path; flush-matching key and upload source
	markerPath string // zero-byte FLUSH_ marker, the crash-durable proof of pending status
	bucket     string
	kmsID      string
}

// enqueueFlush inserts a record at the head of the flush queue.
func (s *Source) enqueueFlush(rec *flushRecord) {
	s.queueMu.Lock()
	s.flushq = append([]*flushRecord{rec}, s.flushq...)
	s.queueMu.Unlock()
}

// PendingFlushes returns the number of in-memory flush queue entries.
func (s *Source) PendingFlushes() int {
	s.queueMu.RLock()
	defer s.queueMu.RUnlock()
	return len(s.flushq)
}

// Flush drains pending flush records and retires their marker files.
//
// With loc and name, exactly the named object is flushed. With only loc,
// every pending object under that location is flushed. With neither,
// every pending object system-wide is flushed. A name without a location
// is not interpretable and returns ErrInvalidArgument.
//
// Flush is best-effort by design: a transfer failure is reported, but the
// queue entry is still removed and its marker file still deleted — the
// item is not retryable. The first error among all matched entries is
// returned; draining continues regardless.
//
// The queue lock is held for the whole drain, so a slow transfer blocks
// other flush and close operations. A real cloud implementation would
// have to release the lock around the transfer.
func (s *Source) Flush(ctx context.Context, loc *Location, name string) error {
	s.opCount.Add(1)

	if loc == nil && name != "" {
		return fmt.Errorf("%w: flush: cannot specify name without location", ErrInvalidArgument)
	}

	var match string
	exact := false
	if loc != nil {
		match = loc.objectPath("", name)
		exact = name != ""
	}
	s.logger.Debug("flush", "match", match, "exact", exact)

	s.queueMu.Lock()
	defer s.queueMu.Unlock()

	var firstErr error
	kept := s.flushq[:0]
	for _, rec := range s.flushq {
		matched := true
		if loc != nil {
			if exact {
				matched = rec.srcPath == match
			} else {
				matched = strings.HasPrefix(rec.srcPath, match)
			}
		}
		if !matched {
			kept = append(kept, rec)
			continue
		}

		if err := s.flushOne(ctx, rec); err != nil && firstErr == nil {
			firstErr = err
		}

		// The entry is retired unconditionally, transfer error or not.
		if err := s.fs.Remove(rec.markerPath); err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("tierstore: unlink flush marker %s: %w", rec.markerPath, err)
			}
		}
	}
	s.flushq = kept

	return firstErr
}

// flushOne transfers a single object to the remote tier, applying the
// deterministic delay/error injection first. Counting is global across
// locations.
func (s *Source) flushOne(ctx context.Context, rec *flushRecord) error {
	flushes := s.objectFlushes.Add(1)

	objectName := rec.srcPath[strings.LastIndexByte(rec.srcPath, '/')+1:]
	s.logger.Debug("flush object",
		"from", rec.srcPath,
		"bucket", rec.bucket,
		"object", objectName,
		"kmsid", rec.kmsID,
	)

	if s.forceDelay != 0 && flushes%s.forceDelay == 0 {
		s.logger.Debug("simulated transfer delay",
			"delay", s.delay,
			"object_flushes", flushes,
		)
		time.Sleep(s.delay)
	}
	if s.forceError != 0 && flushes%s.forceError == 0 {
		s.logger.Debug("simulated transfer error", "object_flushes", flushes)
		return fmt.Errorf("%w: after %d object flushes", ErrSimulatedNetwork, flushes)
	}

	// Without a configured tier the transfer is purely simulated.
	if s.tier == nil {
		return nil
	}

	f, err := s.fs.OpenFile(rec.srcPath, os.O_RDONLY, 0)
	if err != nil {
		return fmt.Errorf("tierstore: flush open %s: %w", rec.srcPath, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("tierstore: flush stat %s: %w", rec.srcPath, err)
	}

	return s.tier.Upload(ctx, remote.ObjectInfo{
		Bucket: rec.bucket,
		Name:   objectName,
		KMSID:  rec.kmsID,
	}, io.NewSectionReader(f, 0, info.Size()), info.Size())
}
