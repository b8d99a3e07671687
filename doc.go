// Package tierstore implements a local-disk-backed tiered object store:
// every object is created and written locally, becomes visible through an
// atomic rename, and is eventually flushed to a remote tier.
//
// # Protocol
//
// Objects are created through hidden marker files whose names encode
// protocol state, so crash recovery needs no metadata store:
//
//	<bucket>/<cluster>_<name>        final, user-visible
//	<bucket>/TEMP_<cluster>_<name>   in-progress write
//	<bucket>/FLUSH_<cluster>_<name>  zero-byte pending-flush record
//
// On create, the FLUSH_ marker is written before any object bytes, so a
// crash at any point leaves a complete record of what is still owed a
// flush. The TEMP_ file is renamed to the final name on close; the rename
// is the only visibility boundary. A successful flush removes the FLUSH_
// marker.
//
// # Quick Start
//
//	src, _ := tierstore.New()
//	defer src.Close()
//
//	loc, _ := src.OpenLocation(tierstore.LocationConfig{
//	    Bucket:  "./bucket1",
//	    Cluster: "cluster1",
//	    KMSID:   "kms-key-1",
//	})
//	defer loc.Close()
//
//	obj, _ := src.Open(loc, "segment-000001", tierstore.OpenCreate)
//	obj.WriteAt(data, 0)
//	obj.Close()                    // object becomes visible here
//
//	src.Flush(ctx, loc, "segment-000001")  // retire the pending flush
//
// # Remote Tiers
//
// By default a flush is simulated (bookkeeping only, optionally with
// deterministic delay and error injection for tests). Configure a real
// backend with WithTier:
//
//	tier := remote.NewS3Tier(client, "my-bucket", "tier/")
//	src, _ := tierstore.New(func(o *tierstore.Options) { o.Tier = tier })
//
// # Concurrency
//
// All methods are safe for concurrent use. Two independent locks guard the
// open-handle registry and the flush queue; a flush holds the queue lock
// for the whole drain, so a slow remote transfer blocks other flushes and
// closes. Close (terminate) must be the only operation in flight.
package tierstore
