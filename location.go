package tierstore

import (
	"fmt"

	"github.com/hupe1980/tierstore/internal/objpath"
)

// LocationConfig identifies a namespace for objects. The host engine
// parses its location string into these fields.
type LocationConfig struct {
	// Bucket is the directory root standing in for a remote container.
	// Required.
	Bucket string

	// Cluster is the namespace tag prepended (escaped) to every object
	// name within the bucket. May be empty, but must not contain a path
	// separator or underscore.
	Cluster string

	// KMSID is the opaque key-management identifier carried through to
	// flush records. Required, never interpreted locally.
	KMSID string
}

// Location is an opened (bucket, cluster, kms id) triple. Locations are
// immutable, share no state with each other, and are closed by the caller
// when no longer needed. Double-close is undefined by contract.
type Location struct {
	bucket        string
	clusterPrefix string
	kmsID         string
}

// OpenLocation validates a location configuration and returns a handle
// usable across many object operations.
func (s *Source) OpenLocation(cfg LocationConfig) (*Location, error) {
	s.opCount.Add(1)

	if cfg.Bucket == "" {
		return nil, fmt.Errorf("%w: missing bucket parameter", ErrInvalidConfig)
	}
	if cfg.KMSID == "" {
		return nil, fmt.Errorf("%w: missing kmsid parameter", ErrInvalidConfig)
	}
	prefix, err := objpath.ClusterPrefix(cfg.Cluster)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	loc := &Location{
		bucket:        cfg.Bucket,
		clusterPrefix: prefix,
		kmsID:         cfg.KMSID,
	}
	s.logger.Debug("location opened",
		"bucket", loc.bucket,
		"cluster_prefix", loc.clusterPrefix,
		"kmsid", loc.kmsID,
	)
	return loc, nil
}

// Close releases the location. The location must not be used afterwards.
func (loc *Location) Close() error {
	loc.bucket = ""
	loc.clusterPrefix = ""
	loc.kmsID = ""
	return nil
}

// Bucket returns the directory root of the location.
func (loc *Location) Bucket() string { return loc.bucket }

// ClusterPrefix returns the escaped cluster prefix, including its
// trailing separator.
func (loc *Location) ClusterPrefix() string { return loc.clusterPrefix }

// KMSID returns the key-management identifier of the location.
func (loc *Location) KMSID() string { return loc.kmsID }

// objectPath derives the path for name with the given marker tag.
func (loc *Location) objectPath(marker, name string) string {
	return objpath.Join(loc.bucket, marker, loc.clusterPrefix, name)
}
