package sqlite

import (
	"context"
	"testing"

	"github.com/linguahub/client/internal/domain/entities"
)

func TestSessionStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := Open(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()

	t.Run("empty store reports no session", func(t *testing.T) {
		if _, ok, err := store.Load(ctx); err != nil || ok {
			t.Fatalf("expected empty store, ok=%v err=%v", ok, err)
		}
	})

	rec := entities.SessionRecord{
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		UserJSON:     `{"id":"u1","name":"Alice"}`,
	}

	t.Run("round trip", func(t *testing.T) {
		if err := store.Save(ctx, rec); err != nil {
			t.Fatalf("save: %v", err)
		}

		got, ok, err := store.Load(ctx)
		if err != nil || !ok {
			t.Fatalf("load: ok=%v err=%v", ok, err)
		}
		if got != rec {
			t.Errorf("expected %+v, got %+v", rec, got)
		}
	})

	t.Run("save replaces previous values", func(t *testing.T) {
		updated := rec
		updated.AccessToken = "access-2"
		if err := store.Save(ctx, updated); err != nil {
			t.Fatalf("save: %v", err)
		}

		got, _, _ := store.Load(ctx)
		if got.AccessToken != "access-2" || got.RefreshToken != "refresh-1" {
			t.Errorf("unexpected record %+v", got)
		}
	})

	t.Run("survives reopening", func(t *testing.T) {
		second, err := Open(dir)
		if err != nil {
			t.Fatalf("reopen: %v", err)
		}
		defer second.Close()

		if _, ok, _ := second.Load(ctx); !ok {
			t.Error("session must survive process restarts")
		}
	})

	t.Run("clear removes everything", func(t *testing.T) {
		if err := store.Clear(ctx); err != nil {
			t.Fatalf("clear: %v", err)
		}
		if _, ok, _ := store.Load(ctx); ok {
			t.Error("expected empty store after clear")
		}
	})
}
