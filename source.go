package tierstore

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hupe1980/tierstore/internal/fs"
	"github.com/hupe1980/tierstore/remote"
)

// Source is the storage-source context object. It owns the two
// concurrency domains of the protocol: the open-handle registry and the
// flush queue, each guarded by its own lock, never nested.
type Source struct {
	delay      time.Duration
	forceDelay uint64
	forceError uint64
	tier       remote.Tier
	logger     *Logger
	fs         fs.FileSystem

	handleMu sync.RWMutex
	handles  []*Object

	queueMu sync.RWMutex
	flushq  []*flushRecord

	closed atomic.Bool

	// Statistics, monotonically increasing.
	opCount       atomic.Uint64
	fhOps         atomic.Uint64
	readOps       atomic.Uint64
	writeOps      atomic.Uint64
	objectFlushes atomic.Uint64
}

// Stats is a point-in-time snapshot of the source's operation counters.
type Stats struct {
	// OpCount is the number of storage-source level operations.
	OpCount uint64
	// FileHandleOps counts non-read/write operations on open handles.
	FileHandleOps uint64
	// ReadOps counts positional reads.
	ReadOps uint64
	// WriteOps counts positional writes.
	WriteOps uint64
	// ObjectFlushes counts (what would be) transfers to the remote tier.
	ObjectFlushes uint64
}

// New creates a storage source. Call Close to release it; termination
// force-closes any handles the caller leaked.
func New(optFns ...func(*Options)) (*Source, error) {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = NoopLogger()
	}
	if opts.FS == nil {
		opts.FS = fs.Default
	}
	if opts.Delay < 0 {
		return nil, fmt.Errorf("%w: delay must not be negative", ErrInvalidConfig)
	}

	return &Source{
		delay:      opts.Delay,
		forceDelay: opts.ForceDelay,
		forceError: opts.ForceError,
		tier:       opts.Tier,
		logger:     opts.Logger,
		fs:         opts.FS,
	}, nil
}

// Exist reports whether the object is visible under its final name.
// Objects still mid-materialization do not exist.
func (s *Source) Exist(loc *Location, name string) (bool, error) {
	s.opCount.Add(1)

	path := loc.objectPath("", name)
	if _, err := s.fs.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("tierstore: exist stat %s: %w", path, err)
	}
	return true, nil
}

// Size returns the size in bytes of a visible object, by name.
func (s *Source) Size(loc *Location, name string) (int64, error) {
	s.opCount.Add(1)

	path := loc.objectPath("", name)
	info, err := s.fs.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("tierstore: size stat %s: %w", path, err)
	}
	return info.Size(), nil
}

// Remove unlinks a visible object. Any pending flush record for the
// object is left alone; its marker is retired by the next matching flush.
func (s *Source) Remove(loc *Location, name string) error {
	s.opCount.Add(1)

	path := loc.objectPath("", name)
	if err := s.fs.Remove(path); err != nil {
		return fmt.Errorf("tierstore: remove %s: %w", path, err)
	}
	return nil
}

// Stats returns a snapshot of the operation counters.
func (s *Source) Stats() Stats {
	return Stats{
		OpCount:       s.opCount.Load(),
		FileHandleOps: s.fhOps.Load(),
		ReadOps:       s.readOps.Load(),
		WriteOps:      s.writeOps.Load(),
		ObjectFlushes: s.objectFlushes.Load(),
	}
}

// Close terminates the source, force-closing any still-open handles.
// Their unfinished creations are not preserved: no rename happens and
// owned flush records are discarded.
//
// Termination is single-threaded by contract; no other operation may be
// in flight. The registry is walked without locking.
func (s *Source) Close() error {
	s.opCount.Add(1)

	if s.closed.Swap(true) {
		return ErrSourceClosed
	}

	var firstErr error
	for _, obj := range s.handles {
		if err := obj.closeFile(true); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.handles = nil

	s.logger.Debug("source terminated",
		"op_count", s.opCount.Load(),
		"object_flushes", s.objectFlushes.Load(),
	)
	return firstErr
}

// registerHandle inserts a handle at the head of the open-handle registry.
func (s *Source) registerHandle(obj *Object) {
	s.handleMu.Lock()
	s.handles = append([]*Object{obj}, s.handles...)
	s.handleMu.Unlock()
}

// unregisterHandle removes a handle from the registry.
func (s *Source) unregisterHandle(obj *Object) {
	s.handleMu.Lock()
	for i, h := range s.handles {
		if h == obj {
			s.handles = append(s.handles[:i], s.handles[i+1:]...)
			break
		}
	}
	s.handleMu.Unlock()
}
