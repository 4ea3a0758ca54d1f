package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStore_EntriesExpireAfterTTL(t *testing.T) {
	store := NewStore(time.Minute)
	clock := time.Date(2026, 6, 11, 19, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return clock }

	store.Set(context.Background(), "group-member-names:g-001", []string{"Juan Gómez"})

	if _, ok := store.Get(context.Background(), "group-member-names:g-001"); !ok {
		t.Fatal("fresh entry missing")
	}

	clock = clock.Add(59 * time.Second)
	if _, ok := store.Get(context.Background(), "group-member-names:g-001"); !ok {
		t.Fatal("entry expired before its TTL")
	}

	clock = clock.Add(2 * time.Second)
	if _, ok := store.Get(context.Background(), "group-member-names:g-001"); ok {
		t.Fatal("entry survived past its TTL")
	}
}

func TestStore_GetOrLoad_LoadsOnceAcrossCallers(t *testing.T) {
	store := NewStore(time.Minute)
	var loads atomic.Int32

	loader := func(context.Context) (any, error) {
		loads.Add(1)
		time.Sleep(20 * time.Millisecond)
		return []string{"Juan Gómez", "Laura Pérez"}, nil
	}

	const callers = 16
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(callers)

	for i := 0; i < callers; i++ {
		go func() {
			defer wg.Done()
			<-start
			val, err := store.GetOrLoad(context.Background(), "group-member-names:g-001", loader)
			if err != nil {
				t.Errorf("load failed: %v", err)
				return
			}
			if names, _ := val.([]string); len(names) != 2 {
				t.Errorf("unexpected value: %v", val)
			}
		}()
	}

	close(start)
	wg.Wait()

	if got := loads.Load(); got != 1 {
		t.Fatalf("loader ran %d times, want 1", got)
	}

	// A later call on the warm key must hit the cache.
	if _, err := store.GetOrLoad(context.Background(), "group-member-names:g-001", loader); err != nil {
		t.Fatalf("warm load failed: %v", err)
	}
	if got := loads.Load(); got != 1 {
		t.Fatalf("warm call reloaded, loader ran %d times", got)
	}
}

func TestStore_GetOrLoad_ErrorsAreNotCached(t *testing.T) {
	store := NewStore(time.Minute)
	loadErr := errors.New("profiles unavailable")
	var loads int

	failing := func(context.Context) (any, error) {
		loads++
		return nil, loadErr
	}
	if _, err := store.GetOrLoad(context.Background(), "k", failing); !errors.Is(err, loadErr) {
		t.Fatalf("expected loader error, got %v", err)
	}

	if _, err := store.GetOrLoad(context.Background(), "k", func(context.Context) (any, error) {
		loads++
		return "ok", nil
	}); err != nil {
		t.Fatalf("retry after failure: %v", err)
	}
	if loads != 2 {
		t.Fatalf("expected the failed load to be retried, loader ran %d times", loads)
	}
}
