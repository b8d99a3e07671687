package tierstore

import (
	"fmt"
	"strings"

	"github.com/hupe1980/tierstore/internal/objpath"
)

// List returns the names of visible objects in a location, optionally
// filtered by a literal name prefix. In-progress (TEMP_) and
// pending-flush (FLUSH_) artifacts are never listed. A limit of zero
// means unbounded. Order is directory-enumeration order.
func (s *Source) List(loc *Location, prefix string, limit int) ([]string, error) {
	s.opCount.Add(1)
	return s.list(loc, "", prefix, limit)
}

// ListPending returns the names of objects whose FLUSH_ marker is still
// on disk. This is the crash-durable view of the flush backlog: after a
// restart it is the ground truth recovery tooling consults, independent
// of any in-memory queue state.
func (s *Source) ListPending(loc *Location, prefix string, limit int) ([]string, error) {
	s.opCount.Add(1)
	return s.list(loc, objpath.MarkerFlush, prefix, limit)
}

// list scans the bucket directory. With a marker, only entries carrying
// that tag are kept and the tag is stripped; otherwise all tagged entries
// are hidden. The remainder must carry the location's cluster prefix,
// which is stripped before the caller prefix filter applies.
func (s *Source) list(loc *Location, marker, prefix string, limit int) ([]string, error) {
	entries, err := s.fs.ReadDir(loc.bucket)
	if err != nil {
		return nil, fmt.Errorf("tierstore: list %s: %w", loc.bucket, err)
	}

	var names []string
	for _, entry := range entries {
		if limit > 0 && len(names) >= limit {
			break
		}

		base := entry.Name()
		if marker == "" {
			if strings.HasPrefix(base, objpath.MarkerTemp) || strings.HasPrefix(base, objpath.MarkerFlush) {
				continue
			}
		} else {
			if !strings.HasPrefix(base, marker) {
				continue
			}
			base = base[len(marker):]
		}

		if !strings.HasPrefix(base, loc.clusterPrefix) {
			continue
		}
		base = base[len(loc.clusterPrefix):]

		if prefix != "" && !strings.HasPrefix(base, prefix) {
			continue
		}

		names = append(names, base)
	}

	return names, nil
}
