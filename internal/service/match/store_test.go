package match

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"

	"github.com/prismvale/checkersd/internal/checkers"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(func() { mr.Close() })
	url := fmt.Sprintf("redis://%s/0", mr.Addr())
	store, err := NewStoreFromURL(url, time.Hour)
	if err != nil {
		t.Fatalf("NewStoreFromURL: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testPayload() *sessionPayload {
	engine := checkers.NewEngine()
	now := time.Now()
	return &sessionPayload{
		SessionUUID: "uuid-1",
		RoomHash:    "room-1",
		RedHash:     "red-hash",
		RedName:     "Alice",
		BlackHash:   "black-hash",
		BlackName:   "Bob",
		Engine:      engine.Snapshot(),
		StartedAt:   now,
		UpdatedAt:   now,
	}
}

func TestStoreSaveLoadDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if p, err := store.Load(ctx, "missing"); err != nil || p != nil {
		t.Fatalf("Load missing: payload=%v err=%v", p, err)
	}

	payload := testPayload()
	if err := store.Save(ctx, "sess-1", payload); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := store.Load(ctx, "sess-1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded == nil || loaded.SessionUUID != "uuid-1" || loaded.RedName != "Alice" {
		t.Fatalf("unexpected payload: %+v", loaded)
	}
	if len(loaded.Engine.Grid) != checkers.BoardSize {
		t.Fatalf("engine snapshot lost: %d rows", len(loaded.Engine.Grid))
	}

	ids, err := store.SessionsByRoom(ctx, "room-1")
	if err != nil || len(ids) != 1 || ids[0] != "sess-1" {
		t.Fatalf("SessionsByRoom: ids=%v err=%v", ids, err)
	}

	if err := store.Delete(ctx, "sess-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if p, err := store.Load(ctx, "sess-1"); err != nil || p != nil {
		t.Fatalf("Load after delete: payload=%v err=%v", p, err)
	}
	if ids, err := store.SessionsByRoom(ctx, "room-1"); err != nil || len(ids) != 0 {
		t.Fatalf("room index not cleared: ids=%v err=%v", ids, err)
	}
}

func TestSessionsByRoomPrunesExpiredMembers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, "sess-1", testPayload()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Save(ctx, "sess-2", testPayload()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// Simulate the TTL expiring one document while its index entry
	// survives.
	if err := store.rdb.Del(ctx, sessionKey("sess-1")).Err(); err != nil {
		t.Fatalf("Del: %v", err)
	}

	ids, err := store.SessionsByRoom(ctx, "room-1")
	if err != nil {
		t.Fatalf("SessionsByRoom: %v", err)
	}
	if len(ids) != 1 || ids[0] != "sess-2" {
		t.Fatalf("expected only the live session, got %v", ids)
	}

	// The dead member must also be gone from the index set.
	members, err := store.rdb.SMembers(ctx, roomIdxKey("room-1")).Result()
	if err != nil {
		t.Fatalf("SMembers: %v", err)
	}
	if len(members) != 1 || members[0] != "sess-2" {
		t.Fatalf("stale member not pruned: %v", members)
	}
}

func TestStoreUpdateGuard(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	payload := testPayload()
	if err := store.Save(ctx, "sess-1", payload); err != nil {
		t.Fatalf("Save: %v", err)
	}

	updated, err := store.update(ctx, "sess-1", 0, func(p *sessionPayload) error {
		p.Plies = 1
		return nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Plies != 1 {
		t.Fatalf("plies = %d, want 1", updated.Plies)
	}

	// Stale guard loses the race.
	if _, err := store.update(ctx, "sess-1", 0, func(p *sessionPayload) error {
		p.Plies = 99
		return nil
	}); !errors.Is(err, ErrSessionConflict) {
		t.Fatalf("stale update err = %v, want ErrSessionConflict", err)
	}

	if _, err := store.update(ctx, "missing", 0, func(p *sessionPayload) error { return nil }); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("update missing err = %v, want ErrSessionNotFound", err)
	}
}

func TestStoreUpdatePropagatesCallbackError(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, "sess-1", testPayload()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	boom := errors.New("boom")
	if _, err := store.update(ctx, "sess-1", 0, func(p *sessionPayload) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("update err = %v, want boom", err)
	}

	// Failed callback must not persist anything.
	loaded, err := store.Load(ctx, "sess-1")
	if err != nil || loaded == nil || loaded.Plies != 0 {
		t.Fatalf("payload mutated after failed callback: %+v err=%v", loaded, err)
	}
}
