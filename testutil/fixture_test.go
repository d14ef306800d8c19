package testutil_test

import (
	"context"
	"testing"

	"github.com/carlfranklin/BlobRepositoryDemo/testutil"
)

func TestLoadRoster(t *testing.T) {
	store, repo, roster := testutil.LoadRoster(t)

	all, err := repo.GetAll(context.Background())
	if err != nil {
		t.Fatalf("failed to get records: %v", err)
	}
	if len(all) != 6 {
		t.Fatalf("expected 6 fixture members, got %d", len(all))
	}

	if roster.Carl.FirstName != "Carl" || roster.Carl.Age != 55 {
		t.Errorf("unexpected Carl fixture: %+v", roster.Carl)
	}
	if len(roster.ByID) != 6 {
		t.Errorf("expected 6 members in ByID, got %d", len(roster.ByID))
	}

	// The roster is persisted to the mirror, not just held in memory.
	if _, ok := store.Object("members", "Member.json"); !ok {
		t.Error("expected fixture roster in the mirror document")
	}
}

func TestRosterHelpers(t *testing.T) {
	_, _, roster := testutil.LoadRoster(t)

	active := roster.Active()
	if len(active) != 4 {
		t.Errorf("expected 4 active members, got %d", len(active))
	}
	for _, m := range active {
		if !m.Active {
			t.Errorf("expected only active members, got %+v", m)
		}
	}

	older := roster.OlderThan(60)
	if len(older) != 2 {
		t.Errorf("expected 2 members older than 60, got %d", len(older))
	}
}
