package sync_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"sales-register/internal/store"
	colsync "sales-register/internal/sync"
)

// scriptedStore hands Watch a channel the test feeds directly, so every
// delivery and failure is under test control.
type scriptedStore struct {
	events   chan store.Event
	watchErr error
}

func newScriptedStore() *scriptedStore {
	return &scriptedStore{events: make(chan store.Event)}
}

func (s *scriptedStore) Watch(context.Context, string, string) (<-chan store.Event, error) {
	if s.watchErr != nil {
		return nil, s.watchErr
	}
	return s.events, nil
}

func (s *scriptedStore) List(context.Context, string, string) ([]store.Document, error) {
	return nil, errors.New("not scripted")
}

func (s *scriptedStore) Get(context.Context, string, string) (*store.Document, error) {
	return nil, store.ErrNotFound
}

func (s *scriptedStore) Create(context.Context, string, map[string]any) store.WriteResult {
	return store.WriteResult{Err: errors.New("not scripted")}
}

func (s *scriptedStore) Update(context.Context, string, string, map[string]any) store.WriteResult {
	return store.WriteResult{Err: errors.New("not scripted")}
}

func (s *scriptedStore) Delete(context.Context, string, string) store.WriteResult {
	return store.WriteResult{Err: errors.New("not scripted")}
}

func (s *scriptedStore) Decrement(context.Context, string, string, string, int64) store.WriteResult {
	return store.WriteResult{Err: errors.New("not scripted")}
}

func docs(ids ...string) []store.Document {
	out := make([]store.Document, 0, len(ids))
	for _, id := range ids {
		out = append(out, store.Document{ID: id, Fields: map[string]any{}})
	}
	return out
}

func waitChange(t *testing.T, c *colsync.Collection) {
	t.Helper()
	select {
	case <-c.Changes():
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a state change")
	}
}

func TestSubscribe_FirstEmissionClearsLoading(t *testing.T) {
	st := newScriptedStore()
	c, err := colsync.Subscribe(context.Background(), st, store.Products, "createdAt")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer c.Close()

	if !c.Loading() {
		t.Fatal("fresh subscription should start loading")
	}

	st.events <- store.Event{Docs: docs("a", "b")}
	waitChange(t, c)

	if c.Loading() {
		t.Error("loading should clear after first emission")
	}
	if got := c.Snapshot(); len(got) != 2 {
		t.Errorf("snapshot = %d docs, want 2", len(got))
	}
}

func TestSubscribe_EmissionFullyReplacesSnapshot(t *testing.T) {
	st := newScriptedStore()
	c, err := colsync.Subscribe(context.Background(), st, store.Products, "createdAt")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer c.Close()

	st.events <- store.Event{Docs: docs("a", "b")}
	waitChange(t, c)
	st.events <- store.Event{Docs: docs("c")}
	waitChange(t, c)

	got := c.Snapshot()
	if len(got) != 1 || got[0].ID != "c" {
		t.Errorf("snapshot = %v, want only doc c", got)
	}
}

func TestSubscribe_FallbackStopsBlockingWithoutData(t *testing.T) {
	st := newScriptedStore()
	c, err := colsync.Subscribe(context.Background(), st, store.Products, "createdAt",
		colsync.WithFallback(20*time.Millisecond))
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer c.Close()

	waitChange(t, c)

	if c.Loading() {
		t.Error("loading should clear when the fallback window expires")
	}
	if got := c.Snapshot(); len(got) != 0 {
		t.Errorf("fallback must not fabricate data, got %d docs", len(got))
	}
	if c.Err() != nil {
		t.Errorf("fallback is not an error: %v", c.Err())
	}
}

func TestSubscribe_LateEmissionAfterFallbackStillApplies(t *testing.T) {
	st := newScriptedStore()
	c, err := colsync.Subscribe(context.Background(), st, store.Products, "createdAt",
		colsync.WithFallback(20*time.Millisecond))
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer c.Close()

	waitChange(t, c) // fallback fired

	st.events <- store.Event{Docs: docs("late")}
	waitChange(t, c)

	got := c.Snapshot()
	if len(got) != 1 || got[0].ID != "late" {
		t.Errorf("late emission not applied, snapshot = %v", got)
	}
}

func TestSubscribe_DeliveryErrorKeepsStaleData(t *testing.T) {
	st := newScriptedStore()
	c, err := colsync.Subscribe(context.Background(), st, store.Products, "createdAt")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer c.Close()

	st.events <- store.Event{Docs: docs("a")}
	waitChange(t, c)

	boom := errors.New("stream broke")
	st.events <- store.Event{Err: boom}
	waitChange(t, c)

	if got := c.Snapshot(); len(got) != 1 || got[0].ID != "a" {
		t.Errorf("error wiped the cache, snapshot = %v", got)
	}
	if !errors.Is(c.Err(), boom) {
		t.Errorf("err = %v, want %v", c.Err(), boom)
	}

	// Recovery clears the recorded error.
	st.events <- store.Event{Docs: docs("a", "b")}
	waitChange(t, c)
	if c.Err() != nil {
		t.Errorf("err not cleared after recovery: %v", c.Err())
	}
}

func TestSubscribe_WatchFailurePropagates(t *testing.T) {
	st := newScriptedStore()
	st.watchErr = errors.New("no backend")
	if _, err := colsync.Subscribe(context.Background(), st, store.Products, "createdAt"); err == nil {
		t.Fatal("expected subscribe to fail when the watch cannot open")
	}
}

func TestClose_IsIdempotentAndFreezesState(t *testing.T) {
	st := newScriptedStore()
	c, err := colsync.Subscribe(context.Background(), st, store.Products, "createdAt")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	st.events <- store.Event{Docs: docs("a")}
	waitChange(t, c)

	c.Close()
	c.Close()

	if got := c.Snapshot(); len(got) != 1 || got[0].ID != "a" {
		t.Errorf("snapshot changed across close, got %v", got)
	}
}

func TestSubscribe_EndToEndOverMemoryStore(t *testing.T) {
	st := store.NewMemory()
	c, err := colsync.Subscribe(context.Background(), st, store.Products, "createdAt")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer c.Close()

	waitChange(t, c) // initial empty snapshot

	res := st.Create(context.Background(), store.Products, map[string]any{"name": "Cal"})
	if !res.OK {
		t.Fatalf("create: %v", res.Err)
	}

	deadline := time.After(2 * time.Second)
	for {
		if snap := c.Snapshot(); len(snap) == 1 {
			if name, _ := snap[0].Fields["name"].(string); name != "Cal" {
				t.Fatalf("unexpected doc: %v", snap[0])
			}
			return
		}
		select {
		case <-c.Changes():
		case <-deadline:
			t.Fatal("write never reached the live view")
		}
	}
}
