package sqlite

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/larderapp/larder-server/internal/domain"
	"github.com/larderapp/larder-server/internal/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	s, err := Open(dbPath, logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func makeTestUser(t *testing.T, s *Store, username string) *domain.User {
	t.Helper()
	u := &domain.User{Username: username, PasswordHash: "hash"}
	if err := s.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser(%q): %v", username, err)
	}
	return u
}

func makeTestRecipe(t *testing.T, s *Store, owner *domain.User, name string, tags ...string) *domain.Recipe {
	t.Helper()
	ctx := context.Background()
	r := &domain.Recipe{Name: name, Content: name + " instructions", UserID: owner.ID}
	if err := s.CreateRecipe(ctx, r); err != nil {
		t.Fatalf("CreateRecipe(%q): %v", name, err)
	}
	for _, tagName := range tags {
		tag, _, err := s.EnsureTag(ctx, tagName)
		if err != nil {
			t.Fatalf("EnsureTag(%q): %v", tagName, err)
		}
		if _, err := s.EnsureRecipeTag(ctx, r.ID, tag.ID); err != nil {
			t.Fatalf("EnsureRecipeTag: %v", err)
		}
	}
	return r
}

func TestOpen(t *testing.T) {
	s := newTestStore(t)

	var journalMode string
	if err := s.db.QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("expected wal, got %s", journalMode)
	}

	var fk int
	if err := s.db.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatalf("query foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Errorf("expected foreign_keys=1, got %d", fk)
	}

	for _, table := range []string{"users", "recipes", "reviews", "tags", "recipe_tags"} {
		var name string
		err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s not found: %v", table, err)
		}
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "again.db")

	s1, err := Open(path, nil)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	makeTestUser(t, s1, "alice")
	s1.Close()

	s2, err := Open(path, nil)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer s2.Close()

	n, err := s2.CountUsers(context.Background())
	if err != nil {
		t.Fatalf("CountUsers: %v", err)
	}
	if n != 1 {
		t.Errorf("users after reopen: got %d, want 1", n)
	}
}

func TestWithTx_RollbackOnError(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	owner := makeTestUser(t, s, "owner")

	boom := errors.New("boom")
	err := s.WithTx(ctx, func(tx store.Store) error {
		r := &domain.Recipe{Name: "Ghost Soup", Content: "...", UserID: owner.ID}
		if err := tx.CreateRecipe(ctx, r); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithTx error: got %v, want boom", err)
	}

	n, err := s.CountRecipes(ctx)
	if err != nil {
		t.Fatalf("CountRecipes: %v", err)
	}
	if n != 0 {
		t.Errorf("recipes after rollback: got %d, want 0", n)
	}
}

func TestWithTx_CommitAndNesting(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	owner := makeTestUser(t, s, "owner")

	err := s.WithTx(ctx, func(tx store.Store) error {
		return tx.WithTx(ctx, func(inner store.Store) error {
			return inner.CreateRecipe(ctx, &domain.Recipe{Name: "Stew", Content: "...", UserID: owner.ID})
		})
	})
	if err != nil {
		t.Fatalf("WithTx: %v", err)
	}

	n, _ := s.CountRecipes(ctx)
	if n != 1 {
		t.Errorf("recipes after commit: got %d, want 1", n)
	}
}

func TestFormatTime_SortsLexically(t *testing.T) {
	s := newTestStore(t)
	a := formatTime(s.now())
	b := formatTime(s.now().Add(100))
	if len(a) != len(b) {
		t.Fatalf("timestamps differ in width: %q vs %q", a, b)
	}
	if a >= b {
		t.Errorf("expected %q < %q", a, b)
	}

	parsed, err := parseTime(a)
	if err != nil {
		t.Fatalf("parseTime: %v", err)
	}
	if formatTime(parsed) != a {
		t.Errorf("round trip: got %q, want %q", formatTime(parsed), a)
	}
}
