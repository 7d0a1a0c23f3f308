package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

var errUnexpectedValue = errors.New("unexpected loaded value")

func TestStore_GetOrLoad_UsesSingleFlight(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return "board-rows", nil
	}

	const workers = 32
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)
	errCh := make(chan error, workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, err := store.GetOrLoad(context.Background(), "schedule:current-week", loader)
			if err != nil {
				errCh <- err
				return
			}
			if got, _ := v.(string); got != "board-rows" {
				errCh <- errUnexpectedValue
			}
		}()
	}

	close(start)
	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_GetOrLoad_UsesCachedValueAfterFirstLoad(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		return "season-rows", nil
	}

	if _, err := store.GetOrLoad(context.Background(), "schedule:teams", loader); err != nil {
		t.Fatalf("first GetOrLoad error: %v", err)
	}
	if _, err := store.GetOrLoad(context.Background(), "schedule:teams", loader); err != nil {
		t.Fatalf("second GetOrLoad error: %v", err)
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_DeletePrefix_DropsMatchingKeysOnly(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	ctx := context.Background()

	store.Set(ctx, "schedule:games:1", "w1")
	store.Set(ctx, "schedule:games:2", "w2")
	store.Set(ctx, "schedule:teams", "teams")

	store.DeletePrefix(ctx, "schedule:games:")

	if _, ok := store.Get(ctx, "schedule:games:1"); ok {
		t.Fatal("week 1 entry survived prefix delete")
	}
	if _, ok := store.Get(ctx, "schedule:games:2"); ok {
		t.Fatal("week 2 entry survived prefix delete")
	}
	if v, ok := store.Get(ctx, "schedule:teams"); !ok || v != "teams" {
		t.Fatalf("teams entry lost, got %v ok=%t", v, ok)
	}
}

func TestStore_ZeroTTLNeverExpires(t *testing.T) {
	t.Parallel()

	store := NewStore(0)
	ctx := context.Background()

	store.Set(ctx, "schedule:current-week", "wk-3")
	time.Sleep(5 * time.Millisecond)

	if v, ok := store.Get(ctx, "schedule:current-week"); !ok || v != "wk-3" {
		t.Fatalf("zero-ttl entry expired, got %v ok=%t", v, ok)
	}
}
