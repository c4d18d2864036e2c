package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func TestMemoryAdapter(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	t.Run("get missing key returns ErrNotFound", func(t *testing.T) {
		_, err := m.Get(ctx, "accessToken")
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("set then get round-trips", func(t *testing.T) {
		if err := m.Set(ctx, "accessToken", "tok-1"); err != nil {
			t.Fatalf("set failed: %v", err)
		}
		value, err := m.Get(ctx, "accessToken")
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if value != "tok-1" {
			t.Errorf("expected tok-1, got %q", value)
		}
	})

	t.Run("delete removes multiple keys and tolerates missing ones", func(t *testing.T) {
		if err := m.Set(ctx, "refreshToken", "ref-1"); err != nil {
			t.Fatalf("set failed: %v", err)
		}
		if err := m.Delete(ctx, "accessToken", "refreshToken", "never-set"); err != nil {
			t.Fatalf("delete failed: %v", err)
		}
		if _, err := m.Get(ctx, "refreshToken"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound after delete, got %v", err)
		}
	})
}

func TestFileAdapter(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.json")

	f, err := NewFile(path)
	if err != nil {
		t.Fatalf("failed to create file adapter: %v", err)
	}

	t.Run("empty store returns ErrNotFound", func(t *testing.T) {
		if _, err := f.Get(ctx, "auth-storage"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("values survive a new adapter over the same file", func(t *testing.T) {
		if err := f.Set(ctx, "auth-storage", `{"isAuthenticated":true}`); err != nil {
			t.Fatalf("set failed: %v", err)
		}

		reopened, err := NewFile(path)
		if err != nil {
			t.Fatalf("failed to reopen adapter: %v", err)
		}
		value, err := reopened.Get(ctx, "auth-storage")
		if err != nil {
			t.Fatalf("get after reopen failed: %v", err)
		}
		if value != `{"isAuthenticated":true}` {
			t.Errorf("unexpected persisted value: %q", value)
		}
	})

	t.Run("delete persists removal", func(t *testing.T) {
		if err := f.Delete(ctx, "auth-storage"); err != nil {
			t.Fatalf("delete failed: %v", err)
		}
		reopened, err := NewFile(path)
		if err != nil {
			t.Fatalf("failed to reopen adapter: %v", err)
		}
		if _, err := reopened.Get(ctx, "auth-storage"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound after delete, got %v", err)
		}
	})
}

func TestFileAdapterWatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	path := filepath.Join(t.TempDir(), "state.json")
	f, err := NewFile(path)
	if err != nil {
		t.Fatalf("failed to create file adapter: %v", err)
	}

	changes, err := f.Watch(ctx)
	if err != nil {
		t.Fatalf("watch failed: %v", err)
	}

	// A second adapter over the same file stands in for another process.
	other, err := NewFile(path)
	if err != nil {
		t.Fatalf("failed to create second adapter: %v", err)
	}
	if err := other.Set(ctx, "accessToken", "tok-2"); err != nil {
		t.Fatalf("set from second adapter failed: %v", err)
	}

	select {
	case _, ok := <-changes:
		if !ok {
			t.Fatal("watch channel closed before delivering a change")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change notification")
	}

	cancel()
	select {
	case _, ok := <-changes:
		if ok {
			// A buffered notification may still drain; the channel must
			// close afterwards.
			if _, ok := <-changes; ok {
				t.Fatal("watch channel not closed after cancellation")
			}
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watch channel not closed after cancellation")
	}
}
