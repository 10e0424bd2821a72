package recheck_test

import (
	"testing"
	"time"

	"recheck-go/internal/recheck"
	"recheck-go/internal/store"
	"recheck-go/internal/testutil"
)

func newTestService(t *testing.T) (*recheck.Service, recheck.Store, *testutil.StubClock) {
	t.Helper()
	st := store.NewMemoryStore()
	clock := testutil.FixedClock()
	svc := recheck.NewService(st, recheck.NewNopLogger(), clock)
	return svc, st, clock
}

func mustHash(t *testing.T, text string) recheck.Hash {
	t.Helper()
	h, err := recheck.ParseHash(text)
	if err != nil {
		t.Fatalf("ParseHash(%q) error = %v", text, err)
	}
	return h
}

func TestService_Check(t *testing.T) {
	day := 24 * time.Hour

	t.Run("unknown resource is always due", func(t *testing.T) {
		t.Parallel()
		svc, _, _ := newTestService(t)

		due, err := svc.Check("never/recorded", "")
		if err != nil {
			t.Fatalf("Check() error = %v", err)
		}
		if !due {
			t.Error("Check() = false for an unknown resource, want true")
		}
	})

	t.Run("archived resource is never due", func(t *testing.T) {
		t.Parallel()
		svc, st, clock := newTestService(t)

		now := clock.Now()
		st.Upsert("repo/a", recheck.Record{
			ChangeTime: now.Add(-30 * day),
			CheckTime:  now.Add(-20 * day), // heavily overdue, due if not archived
			CommitHash: mustHash(t, sha1Hex),
			Archived:   true,
		})

		due, err := svc.Check("repo/a", "")
		if err != nil {
			t.Fatalf("Check() error = %v", err)
		}
		if due {
			t.Error("Check() = true for an archived resource, want false")
		}
	})

	t.Run("overdue resource is certainly due", func(t *testing.T) {
		t.Parallel()
		svc, st, clock := newTestService(t)

		// Stable 10 days, 10 days overdue: probability 3.0, beyond any draw.
		now := clock.Now()
		st.Upsert("repo/a", recheck.Record{
			ChangeTime: now.Add(-20 * day),
			CheckTime:  now.Add(-10 * day),
			CommitHash: mustHash(t, sha1Hex),
		})

		for i := 0; i < 20; i++ {
			due, err := svc.Check("repo/a", "")
			if err != nil {
				t.Fatalf("Check() error = %v", err)
			}
			if !due {
				t.Fatal("Check() = false for a certainly-due resource")
			}
		}
	})

	t.Run("seeded decision is reproducible", func(t *testing.T) {
		t.Parallel()
		svc, st, clock := newTestService(t)

		now := clock.Now()
		rec := recheck.Record{
			ChangeTime: now.Add(-1001 * day),
			CheckTime:  now.Add(-1 * day), // stable 1000 days, one day overdue
			CommitHash: mustHash(t, sha1Hex),
		}
		st.Upsert("repo/a", rec)

		want := recheck.NewSeededRand("trial").Float64() <=
			recheck.Probability(rec.ChangeTime, rec.CheckTime, now.UTC())

		for i := 0; i < 5; i++ {
			due, err := svc.Check("repo/a", "trial")
			if err != nil {
				t.Fatalf("Check() error = %v", err)
			}
			if due != want {
				t.Fatalf("Check() = %v, want %v", due, want)
			}
		}
	})
}

func TestService_RecordCommit(t *testing.T) {
	day := 24 * time.Hour

	t.Run("creates a record on first use", func(t *testing.T) {
		t.Parallel()
		svc, st, clock := newTestService(t)

		commitTime := clock.Now().Add(-3 * day)
		hash := mustHash(t, sha256Hex)
		if err := svc.RecordCommit("repo/a", commitTime, hash); err != nil {
			t.Fatalf("RecordCommit() error = %v", err)
		}

		rec, err := st.Lookup("repo/a")
		if err != nil {
			t.Fatalf("Lookup() error = %v", err)
		}
		if rec == nil {
			t.Fatal("Lookup() = nil after RecordCommit")
		}
		if !rec.ChangeTime.Equal(commitTime) {
			t.Errorf("ChangeTime = %v, want %v", rec.ChangeTime, commitTime)
		}
		if !rec.CheckTime.Equal(clock.Now()) {
			t.Errorf("CheckTime = %v, want %v", rec.CheckTime, clock.Now())
		}
		if rec.CommitHash != hash {
			t.Errorf("CommitHash = %v, want %v", rec.CommitHash, hash)
		}
		if rec.Archived {
			t.Error("new record unexpectedly archived")
		}
	})

	t.Run("updates in place and preserves archived", func(t *testing.T) {
		t.Parallel()
		svc, st, clock := newTestService(t)

		if err := svc.RecordCommit("repo/a", clock.Now().Add(-10*day), mustHash(t, sha1Hex)); err != nil {
			t.Fatalf("first RecordCommit() error = %v", err)
		}
		if err := svc.SetArchived("repo/a", true); err != nil {
			t.Fatalf("SetArchived() error = %v", err)
		}

		clock.Advance(2 * day)
		newHash := mustHash(t, sha256Hex)
		newCommit := clock.Now().Add(-time.Hour)
		if err := svc.RecordCommit("repo/a", newCommit, newHash); err != nil {
			t.Fatalf("second RecordCommit() error = %v", err)
		}

		all, err := st.All()
		if err != nil {
			t.Fatalf("All() error = %v", err)
		}
		if len(all) != 1 {
			t.Fatalf("store has %d records, want 1", len(all))
		}

		rec := all["repo/a"]
		if rec.CommitHash != newHash {
			t.Errorf("CommitHash = %v, want %v", rec.CommitHash, newHash)
		}
		if !rec.ChangeTime.Equal(newCommit) {
			t.Errorf("ChangeTime = %v, want %v", rec.ChangeTime, newCommit)
		}
		if !rec.CheckTime.Equal(clock.Now()) {
			t.Errorf("CheckTime = %v, want %v", rec.CheckTime, clock.Now())
		}
		if !rec.Archived {
			t.Error("archived flag lost on update")
		}
	})

	t.Run("distinct names create distinct records", func(t *testing.T) {
		t.Parallel()
		svc, st, clock := newTestService(t)

		hash := mustHash(t, sha1Hex)
		svc.RecordCommit("repo/a", clock.Now().Add(-day), hash)
		svc.RecordCommit("repo/b", clock.Now().Add(-day), hash)

		all, err := st.All()
		if err != nil {
			t.Fatalf("All() error = %v", err)
		}
		if len(all) != 2 {
			t.Errorf("store has %d records, want 2", len(all))
		}
	})
}

func TestService_SetArchived(t *testing.T) {
	t.Run("unknown resource is an error", func(t *testing.T) {
		t.Parallel()
		svc, _, _ := newTestService(t)

		if err := svc.SetArchived("missing", true); err == nil {
			t.Error("SetArchived() expected error for unknown resource")
		}
	})

	t.Run("clears as well as sets", func(t *testing.T) {
		t.Parallel()
		svc, st, clock := newTestService(t)

		svc.RecordCommit("repo/a", clock.Now().Add(-time.Hour), mustHash(t, sha1Hex))
		if err := svc.SetArchived("repo/a", true); err != nil {
			t.Fatalf("SetArchived(true) error = %v", err)
		}
		if err := svc.SetArchived("repo/a", false); err != nil {
			t.Fatalf("SetArchived(false) error = %v", err)
		}

		rec, _ := st.Lookup("repo/a")
		if rec.Archived {
			t.Error("archived flag still set after clearing")
		}
	})
}

func TestService_Summaries(t *testing.T) {
	day := 24 * time.Hour

	t.Run("change summary skips archived, check summary keeps them", func(t *testing.T) {
		t.Parallel()
		svc, st, clock := newTestService(t)

		now := clock.Now()
		st.Upsert("active", recheck.Record{
			ChangeTime: now.Add(-2 * time.Hour),
			CheckTime:  now.Add(-time.Hour),
			CommitHash: mustHash(t, sha1Hex),
		})
		st.Upsert("shelved", recheck.Record{
			ChangeTime: now.Add(-2 * time.Hour),
			CheckTime:  now.Add(-time.Hour),
			CommitHash: mustHash(t, sha1Hex),
			Archived:   true,
		})

		byChange, err := svc.SummarizeByChange()
		if err != nil {
			t.Fatalf("SummarizeByChange() error = %v", err)
		}
		if byChange[0].Count != 1 {
			t.Errorf("ByChange bucket %q = %d, want 1", byChange[0].Label, byChange[0].Count)
		}

		byCheck, err := svc.SummarizeByCheck()
		if err != nil {
			t.Fatalf("SummarizeByCheck() error = %v", err)
		}
		if byCheck[0].Count != 2 {
			t.Errorf("ByCheck bucket %q = %d, want 2", byCheck[0].Label, byCheck[0].Count)
		}
	})

	t.Run("future change time aborts", func(t *testing.T) {
		t.Parallel()
		svc, st, clock := newTestService(t)

		st.Upsert("skewed", recheck.Record{
			ChangeTime: clock.Now().Add(2 * day),
			CheckTime:  clock.Now(),
			CommitHash: mustHash(t, sha1Hex),
		})

		if _, err := svc.SummarizeByChange(); err == nil {
			t.Error("SummarizeByChange() expected error for future timestamp")
		}
	})
}

func TestService_List(t *testing.T) {
	t.Parallel()
	svc, _, clock := newTestService(t)

	hash := mustHash(t, sha1Hex)
	svc.RecordCommit("zeta", clock.Now().Add(-time.Hour), hash)
	svc.RecordCommit("alpha", clock.Now().Add(-time.Hour), hash)

	entries, err := svc.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("List() returned %d entries, want 2", len(entries))
	}
	if entries[0].Name != "alpha" || entries[1].Name != "zeta" {
		t.Errorf("List() order = [%s %s], want [alpha zeta]", entries[0].Name, entries[1].Name)
	}
}
