package recheck

import (
	"fmt"
	"sort"
	"time"
)

// Service is the orchestration layer that coordinates the store, clock and
// random source to answer the top-level operations: check, record,
// summarise. Each invocation of the tool builds one Service, performs one
// operation, and exits.
type Service struct {
	store  Store
	logger Logger
	clock  Clock
}

// NewService creates a Service with the provided dependencies.
func NewService(store Store, logger Logger, clock Clock) *Service {
	return &Service{
		store:  store,
		logger: logger,
		clock:  clock,
	}
}

// Check reports whether the named resource is due for a recheck right now.
// Unknown resources are always due; archived resources never are. A
// non-empty seed makes the random draw reproducible. Read-only: the store
// is never saved.
func (s *Service) Check(name, seed string) (bool, error) {
	rec, err := s.store.Lookup(name)
	if err != nil {
		return false, fmt.Errorf("looking up %q: %w", name, err)
	}
	if rec == nil {
		s.logger.Info("no record, check is due", "name", name)
		return true, nil
	}
	if rec.Archived {
		s.logger.Debug("resource is archived", "name", name)
		return false, nil
	}

	rng, err := NewRand(seed)
	if err != nil {
		return false, fmt.Errorf("creating random source: %w", err)
	}

	now := s.clock.Now().UTC()
	due := ShouldCheckNow(rec.ChangeTime, rec.CheckTime, now, rng)
	s.logger.Debug("drew recheck decision",
		"name", name,
		"probability", Probability(rec.ChangeTime, rec.CheckTime, now),
		"due", due,
	)
	return due, nil
}

// RecordCommit creates or updates the record for name: the commit hash and
// change time are overwritten and the check time is reset to now. The
// archived flag of an existing record is preserved. The store is saved
// before returning.
func (s *Service) RecordCommit(name string, commitTime time.Time, hash Hash) error {
	existing, err := s.store.Lookup(name)
	if err != nil {
		return fmt.Errorf("looking up %q: %w", name, err)
	}

	rec := Record{
		CheckTime:  s.clock.Now().UTC(),
		ChangeTime: commitTime.UTC(),
		CommitHash: hash,
	}
	if existing != nil {
		rec.Archived = existing.Archived
	}

	if err := s.store.Upsert(name, rec); err != nil {
		return fmt.Errorf("updating record for %q: %w", name, err)
	}
	if err := s.store.Save(); err != nil {
		return fmt.Errorf("saving store: %w", err)
	}

	s.logger.Info("recorded commit", "name", name, "hash", hash.String())
	return nil
}

// SetArchived flips the archived flag on an existing record and saves the
// store. Unlike Check, an unknown name here is an error.
func (s *Service) SetArchived(name string, archived bool) error {
	rec, err := s.store.Lookup(name)
	if err != nil {
		return fmt.Errorf("looking up %q: %w", name, err)
	}
	if rec == nil {
		return fmt.Errorf("no record for %q", name)
	}

	rec.Archived = archived
	if err := s.store.Upsert(name, *rec); err != nil {
		return fmt.Errorf("updating record for %q: %w", name, err)
	}
	if err := s.store.Save(); err != nil {
		return fmt.Errorf("saving store: %w", err)
	}

	s.logger.Info("archived flag updated", "name", name, "archived", archived)
	return nil
}

// SummarizeByChange buckets all records by time since last change.
// Archived records are excluded: a resource taken out of rotation should
// not age the change histogram forever.
func (s *Service) SummarizeByChange() ([]BucketCount, error) {
	records, err := s.store.All()
	if err != nil {
		return nil, fmt.Errorf("reading store: %w", err)
	}
	return Summarize(records, ByChange, true, s.clock.Now().UTC())
}

// SummarizeByCheck buckets all records by time since last check. Archived
// records are included; their check age is still real.
func (s *Service) SummarizeByCheck() ([]BucketCount, error) {
	records, err := s.store.All()
	if err != nil {
		return nil, fmt.Errorf("reading store: %w", err)
	}
	return Summarize(records, ByCheck, false, s.clock.Now().UTC())
}

// ListEntry is one row of the List output.
type ListEntry struct {
	Name   string
	Record Record
}

// List returns every record sorted by resource name.
func (s *Service) List() ([]ListEntry, error) {
	records, err := s.store.All()
	if err != nil {
		return nil, fmt.Errorf("reading store: %w", err)
	}

	entries := make([]ListEntry, 0, len(records))
	for name, rec := range records {
		entries = append(entries, ListEntry{Name: name, Record: rec})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}
