package tierstore

import (
	"log/slog"
	"time"

	"github.com/hupe1980/tierstore/internal/fs"
	"github.com/hupe1980/tierstore/remote"
)

// Options configures a Source.
//
// The host engine delivers these as opaque key/value settings; parsing
// them is the host's job, this struct is the boundary.
type Options struct {
	// Delay is the length of the simulated network delay.
	Delay time.Duration

	// ForceDelay injects the simulated delay on every Nth flushed object.
	// Zero disables.
	ForceDelay uint64

	// ForceError fails every Nth flushed object with ErrSimulatedNetwork.
	// Zero disables. Counting is global across locations, deterministic
	// by count rather than by wall clock.
	ForceError uint64

	// Tier is the remote transfer backend invoked once per flushed
	// object. Nil means the transfer is simulated: bookkeeping only,
	// nothing is read or sent.
	Tier remote.Tier

	// Logger receives structured operational logs. Nil disables logging.
	Logger *Logger

	// FS is the filesystem implementation. Nil means the local
	// filesystem; tests override it for fault injection.
	FS fs.FileSystem
}

// WithDelay configures the simulated transfer delay cadence:
// every forceDelay-th flush sleeps for delay.
func WithDelay(delay time.Duration, forceDelay uint64) func(*Options) {
	return func(o *Options) {
		o.Delay = delay
		o.ForceDelay = forceDelay
	}
}

// WithForceError fails every n-th flushed object with ErrSimulatedNetwork.
func WithForceError(n uint64) func(*Options) {
	return func(o *Options) {
		o.ForceError = n
	}
}

// WithTier configures the remote transfer backend.
func WithTier(tier remote.Tier) func(*Options) {
	return func(o *Options) {
		o.Tier = tier
	}
}

// WithLogger configures structured logging. Pass nil to disable.
func WithLogger(logger *Logger) func(*Options) {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithVerbose maps an integer verbosity knob to log levels: zero or
// below disables logging, anything above enables debug output to stderr.
func WithVerbose(verbosity int) func(*Options) {
	return func(o *Options) {
		if verbosity <= 0 {
			o.Logger = NoopLogger()
			return
		}
		o.Logger = NewTextLogger(slog.LevelDebug)
	}
}
