package tierstore

import (
	"fmt"
	"os"

	"github.com/hupe1980/tierstore/internal/fs"
	"github.com/hupe1980/tierstore/internal/objpath"
)

// OpenMode selects how an object is opened.
type OpenMode int

const (
	// OpenReadOnly opens an existing, visible object for reading.
	OpenReadOnly OpenMode = iota
	// OpenCreate creates a new object. The object stays invisible until
	// its handle is closed.
	OpenCreate
)

// Object is one open object handle.
//
// A handle created with OpenCreate writes through a hidden TEMP_ file and
// owns a pending flush record until Close hands it to the flush queue.
// A read-only handle never owns a flush record.
//
// Capabilities the local implementation does not support — memory
// mapping ([Mappable]), truncate ([Truncater]), extend ([Extender]) and
// non-blocking sync — are declared absent: Object simply does not
// implement those interfaces, so callers can feature-detect with a type
// assertion instead of getting silent no-ops.
type Object struct {
	src      *Source
	name     string
	file     fs.File
	path     string       // final, user-visible path
	tempPath string       // non-empty only for OpenCreate handles
	pending  *flushRecord // owned until successful close
}

// Mappable is an optional capability for handles that support memory
// mapping. Not implemented by this storage source.
type Mappable interface {
	Bytes() ([]byte, error)
}

// Truncater is an optional capability for handles that support
// truncation. Not implemented by this storage source.
type Truncater interface {
	Truncate(size int64) error
}

// Extender is an optional capability for handles that support
// preallocation. Not implemented by this storage source.
type Extender interface {
	Extend(size int64) error
}

// Open opens an object within a location.
//
// With OpenCreate, the zero-byte FLUSH_ marker is created before any
// object bytes can be written: a crash from here on leaves a durable
// record that this object is owed a flush. The handle then writes through
// the hidden TEMP_ path until Close renames it to the final name.
func (s *Source) Open(loc *Location, name string, mode OpenMode) (*Object, error) {
	s.opCount.Add(1)

	if s.closed.Load() {
		return nil, ErrSourceClosed
	}

	obj := &Object{
		src:  s,
		name: name,
		path: loc.objectPath("", name),
	}

	switch mode {
	case OpenCreate:
		markerPath := loc.objectPath(objpath.MarkerFlush, name)
		marker, err := s.fs.OpenFile(markerPath, os.O_WRONLY|os.O_CREATE, 0666)
		if err != nil {
			return nil, fmt.Errorf("tierstore: open marker %s: %w", markerPath, err)
		}
		if err := marker.Close(); err != nil {
			return nil, fmt.Errorf("tierstore: close marker %s: %w", markerPath, err)
		}

		obj.pending = &flushRecord{
			markerPath: markerPath,
			bucket:     loc.bucket,
			kmsID:      loc.kmsID,
		}
		obj.tempPath = loc.objectPath(objpath.MarkerTemp, name)

		// 0444 so the object can only be reopened read-only once visible.
		// If this open fails the marker stays behind; half-born objects
		// are a recovery-tooling concern, not cleaned up here.
		obj.file, err = s.fs.OpenFile(obj.tempPath, os.O_WRONLY|os.O_CREATE, 0444)
		if err != nil {
			return nil, fmt.Errorf("tierstore: open %s: %w", obj.tempPath, err)
		}

	case OpenReadOnly:
		var err error
		obj.file, err = s.fs.OpenFile(obj.path, os.O_RDONLY, 0)
		if err != nil {
			return nil, fmt.Errorf("tierstore: open %s: %w", obj.path, err)
		}

	default:
		return nil, fmt.Errorf("%w: invalid open mode %d", ErrInvalidArgument, mode)
	}

	s.registerHandle(obj)

	s.logger.Debug("object opened",
		"name", name,
		"path", obj.path,
		"temp_path", obj.tempPath,
	)
	return obj, nil
}

// Name returns the object name the handle was opened with.
func (o *Object) Name() string { return o.name }

// ReadAt reads len(p) bytes at offset off. Short reads are retried until
// the requested length is satisfied or an I/O failure occurs; a partial
// transfer is never reported as success.
func (o *Object) ReadAt(p []byte, off int64) (int, error) {
	o.src.readOps.Add(1)

	total := 0
	for total < len(p) {
		n, err := o.file.ReadAt(p[total:], off+int64(total))
		total += n
		if err != nil {
			return total, fmt.Errorf("tierstore: read %s: %w", o.openPath(), err)
		}
		if n == 0 {
			break
		}
	}
	return total, nil
}

// WriteAt writes len(p) bytes at offset off, retrying short writes.
func (o *Object) WriteAt(p []byte, off int64) (int, error) {
	o.src.writeOps.Add(1)

	total := 0
	for total < len(p) {
		n, err := o.file.WriteAt(p[total:], off+int64(total))
		total += n
		if err != nil {
			return total, fmt.Errorf("tierstore: write %s: %w", o.openPath(), err)
		}
		if n == 0 {
			break
		}
	}
	return total, nil
}

// Size returns the current size of the open file.
func (o *Object) Size() (int64, error) {
	o.src.fhOps.Add(1)

	info, err := o.file.Stat()
	if err != nil {
		return 0, fmt.Errorf("tierstore: size %s: %w", o.openPath(), err)
	}
	return info.Size(), nil
}

// Sync makes the content of the open file stable.
func (o *Object) Sync() error {
	o.src.fhOps.Add(1)

	if err := o.file.Sync(); err != nil {
		return fmt.Errorf("tierstore: sync %s: %w", o.openPath(), err)
	}
	return nil
}

// Lock locks or unlocks the object. Locks are always granted.
func (o *Object) Lock(lock bool) error {
	o.src.fhOps.Add(1)
	return nil
}

// Close closes the handle. For a creation handle this is the visibility
// boundary: the TEMP_ file is renamed to the final name, and only after a
// successful rename is the pending flush record handed to the flush
// queue. If the rename fails the object stays invisible, the record is
// discarded and its marker file is left behind for recovery tooling.
func (o *Object) Close() error {
	s := o.src
	s.fhOps.Add(1)

	// Registry lock and queue lock are taken sequentially, never nested.
	s.unregisterHandle(o)
	return o.closeFile(false)
}

// closeFile finishes a close. With final set (termination cleanup) no
// rename happens and an owned flush record is discarded: a creation that
// never completed close is not preserved.
func (o *Object) closeFile(final bool) error {
	s := o.src

	pending := o.pending
	o.pending = nil

	if err := o.file.Close(); err != nil {
		return fmt.Errorf("tierstore: close %s: %w", o.openPath(), err)
	}

	if final || o.tempPath == "" {
		return nil
	}

	if err := s.fs.Rename(o.tempPath, o.path); err != nil {
		return fmt.Errorf("tierstore: rename %s to %s: %w", o.tempPath, o.path, err)
	}

	if pending != nil {
		pending.srcPath = o.path
		s.enqueueFlush(pending)
	}

	s.logger.Debug("object materialized", "path", o.path)
	return nil
}

// openPath is the path the underlying descriptor actually points at.
func (o *Object) openPath() string {
	if o.tempPath != "" {
		return o.tempPath
	}
	return o.path
}
