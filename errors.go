package tierstore

import (
	"errors"
	"os"
)

var (
	// ErrNotFound is returned when an object does not exist.
	//
	// It satisfies errors.Is(err, os.ErrNotExist) so callers can treat
	// local-tier lookups like ordinary file lookups.
	ErrNotFound = os.ErrNotExist

	// ErrInvalidConfig is returned when a required location or source
	// setting is missing or malformed.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidArgument is returned for malformed calls, e.g. a flush
	// naming an object without a location.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrSimulatedNetwork is the injected transfer failure returned when
	// fault injection trips (every ForceError-th flush).
	ErrSimulatedNetwork = errors.New("simulated network unreachable")

	// ErrSourceClosed is returned when operations are attempted on a
	// terminated source.
	ErrSourceClosed = errors.New("storage source is closed")
)
