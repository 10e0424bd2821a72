package recheck

// Store is the persisted mapping from resource key to Record. A store is
// materialized once per invocation; Lookup and All are read-only, Upsert
// mutates in memory (or durably, backend-dependent) and Save persists the
// whole mapping. There is no locking: at most one invocation is expected to
// mutate a given store at a time.
type Store interface {
	// Lookup returns the record for name, or nil if none exists. A missing
	// record is not an error.
	Lookup(name string) (*Record, error)

	// Upsert inserts or fully overwrites the record for name.
	Upsert(name string, rec Record) error

	// All returns a snapshot of every record, keyed by resource name.
	All() (map[string]Record, error)

	// Save persists the mapping. Backends with durable upserts may make
	// this a no-op.
	Save() error

	Close() error
}
