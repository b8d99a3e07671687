// Package objpath derives on-disk paths for tiered objects.
//
// Every object path is built from a fixed concatenation:
//
//	<bucket>/<marker><cluster_prefix><name>
//
// The marker tag comes first so listing code can strip a known tag and then
// check for the cluster prefix with plain string prefix tests, no path
// parsing required. Marker files encode protocol state in their name:
// a TEMP_ file holds bytes still being written, a FLUSH_ file is the
// zero-byte crash-durable record of a pending flush.
package objpath

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// MarkerFlush prefixes the zero-byte marker recording that an object
	// has been created but not yet flushed to the remote tier.
	MarkerFlush = "FLUSH_"

	// MarkerTemp prefixes the hidden file an object is written through
	// before its atomic rename to the final name.
	MarkerTemp = "TEMP_"

	// clusterSep terminates every cluster prefix so that distinct
	// (cluster, name) pairs can never alias to the same path.
	clusterSep = "_"
)

// ErrInvalidCluster is returned when a cluster name would make the
// prefix decomposition ambiguous.
var ErrInvalidCluster = errors.New("invalid cluster name")

// ClusterPrefix escapes a cluster name into the prefix prepended to every
// object name in a bucket. The name may be empty but must not contain a
// path separator or the prefix separator itself; either would break the
// prefix-stripping done by listing and flush matching.
func ClusterPrefix(cluster string) (string, error) {
	if strings.ContainsAny(cluster, "/"+clusterSep) {
		return "", fmt.Errorf("%w: characters \"/%s\" disallowed in %q", ErrInvalidCluster, clusterSep, cluster)
	}
	return cluster + clusterSep, nil
}

// Join constructs the path for an object, or for one of its marker files
// when marker is MarkerFlush or MarkerTemp. An empty marker yields the
// user-visible path.
func Join(bucket, marker, clusterPrefix, name string) string {
	return bucket + "/" + marker + clusterPrefix + name
}
