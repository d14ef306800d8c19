// Package testutil provides a canonical member roster and helpers for
// exercising repositories in tests.
package testutil

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/carlfranklin/BlobRepositoryDemo/blob"
	"github.com/carlfranklin/BlobRepositoryDemo/blob/memory"
	"github.com/carlfranklin/BlobRepositoryDemo/repository"
)

// Member is the record type the fixtures are built around.
type Member struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Age       int    `json:"age"`
	Active    bool   `json:"active"`
}

// MemberID is the key function for Member repositories.
func MemberID(m Member) string { return m.ID }

// Roster provides typed access to the canonical fixture members.
type Roster struct {
	Carl    Member // ID "1", 55, active
	Ada     Member // ID "2", 36, active
	Grace   Member // ID "3", 85, retired
	Alan    Member // ID "4", 41, active
	Barbara Member // ID "5", 78, retired
	Linus   Member // ID "6", 54, active

	// ByID maps every fixture member by key.
	ByID map[string]Member
}

// CanonicalMembers returns the fixture records in insertion order.
func CanonicalMembers() []Member {
	return []Member{
		{ID: "1", FirstName: "Carl", LastName: "Franklin", Email: "carl@example.com", Age: 55, Active: true},
		{ID: "2", FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Age: 36, Active: true},
		{ID: "3", FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com", Age: 85, Active: false},
		{ID: "4", FirstName: "Alan", LastName: "Turing", Email: "alan@example.com", Age: 41, Active: true},
		{ID: "5", FirstName: "Barbara", LastName: "Liskov", Email: "barbara@example.com", Age: 78, Active: false},
		{ID: "6", FirstName: "Linus", LastName: "Torvalds", Email: "linus@example.com", Age: 54, Active: true},
	}
}

// QuietLogger returns a logger that discards everything.
func QuietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// LoadRoster creates a memory-backed blob repository populated with the
// canonical members. The backing store is returned so tests can reach
// behind the repository: seed documents out of band, inspect the mirror
// or build a second repository over the same store.
func LoadRoster(t *testing.T) (*memory.Store, repository.Repository[string, Member], *Roster) {
	t.Helper()

	store := memory.New()
	repo := NewRosterRepository(t, store)

	roster := &Roster{ByID: make(map[string]Member)}
	for _, m := range CanonicalMembers() {
		if _, err := repo.Insert(context.Background(), m); err != nil {
			t.Fatalf("failed to insert fixture member %s: %v", m.ID, err)
		}
		roster.ByID[m.ID] = m
	}

	roster.Carl = roster.ByID["1"]
	roster.Ada = roster.ByID["2"]
	roster.Grace = roster.ByID["3"]
	roster.Alan = roster.ByID["4"]
	roster.Barbara = roster.ByID["5"]
	roster.Linus = roster.ByID["6"]

	return store, repo, roster
}

// NewRosterRepository creates an empty Member repository over the given
// backend, with quiet logging and an isolated staging directory.
func NewRosterRepository(t *testing.T, store blob.Store, opts ...repository.Option) repository.Repository[string, Member] {
	t.Helper()

	client, err := blob.NewClient(store, blob.WithLogger(QuietLogger()))
	if err != nil {
		t.Fatalf("failed to create blob client: %v", err)
	}

	base := []repository.Option{
		repository.WithStagingDir(t.TempDir()),
		repository.WithLogger(QuietLogger()),
	}
	base = append(base, opts...)

	repo, err := repository.NewBlobRepository[string, Member](context.Background(), client, "members", MemberID, base...)
	if err != nil {
		t.Fatalf("failed to create repository: %v", err)
	}
	return repo
}

// Active returns the fixture members with Active set.
func (r *Roster) Active() []Member {
	var active []Member
	for _, m := range CanonicalMembers() {
		if r.ByID[m.ID].Active {
			active = append(active, r.ByID[m.ID])
		}
	}
	return active
}

// OlderThan returns the fixture members strictly older than age.
func (r *Roster) OlderThan(age int) []Member {
	var older []Member
	for _, m := range CanonicalMembers() {
		if r.ByID[m.ID].Age > age {
			older = append(older, r.ByID[m.ID])
		}
	}
	return older
}
