package session

import (
	"context"
	"errors"
	"testing"
)

func TestInMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	s := New("abc")
	s.Append("user", "hello")
	if err := store.Put(ctx, s); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := store.Get(ctx, "abc")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != "abc" || len(got.Messages) != 1 {
		t.Fatalf("unexpected session %+v", got)
	}

	// Mutating the returned copy must not leak into the store.
	got.Phase = PhaseComplete
	again, err := store.Get(ctx, "abc")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if again.Phase != PhaseGreeting {
		t.Fatal("store returned a shared session instance")
	}
}

func TestInMemoryStorePutRequiresID(t *testing.T) {
	store := NewInMemoryStore()
	if err := store.Put(context.Background(), New("")); err == nil {
		t.Fatal("expected error for empty session id")
	}
	if err := store.Put(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil session")
	}
}

func TestInMemoryStoreDelete(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	if err := store.Put(ctx, New("abc")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.Delete(ctx, "abc"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, "abc"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := store.Delete(ctx, "abc"); err != nil {
		t.Fatalf("deleting unknown id should be a no-op, got %v", err)
	}
}
