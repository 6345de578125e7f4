package blob

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/paintsnap/server/internal/apperr"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	key, err := store.Save(ctx, "photos", "image/png", strings.NewReader("payload"), 7)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.HasPrefix(key, "photos/") {
		t.Fatalf("expected prefixed key, got %q", key)
	}

	body, contentType, err := store.Open(ctx, key)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer body.Close()
	if contentType != "image/png" {
		t.Fatalf("expected image/png, got %q", contentType)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "payload" {
		t.Fatalf("unexpected payload %q", data)
	}

	if errRemove := store.Remove(ctx, key); errRemove != nil {
		t.Fatalf("remove: %v", errRemove)
	}
	if _, _, errOpen := store.Open(ctx, key); !apperr.Is(errOpen, apperr.KindNotFound) {
		t.Fatalf("expected not found after remove, got %v", errOpen)
	}
	// Removing again is a no-op.
	if errRemove := store.Remove(ctx, key); errRemove != nil {
		t.Fatalf("repeat remove: %v", errRemove)
	}
}

func TestMemoryStoreKeysAreUnique(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	first, err := store.Save(ctx, "tags", "image/jpeg", strings.NewReader("a"), 1)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	second, err := store.Save(ctx, "tags", "image/jpeg", strings.NewReader("b"), 1)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if first == second {
		t.Fatalf("keys must be unique")
	}
	if store.Len() != 2 {
		t.Fatalf("expected 2 blobs, got %d", store.Len())
	}
}
