package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Op identifies a write operation for failure injection.
type Op string

const (
	OpCreate    Op = "create"
	OpUpdate    Op = "update"
	OpDelete    Op = "delete"
	OpDecrement Op = "decrement"
)

// Memory is an in-memory Store used by tests and as a local development
// backend. All state is mutex-guarded; watchers receive coalesced full
// snapshots through a per-watcher delivery goroutine, which preserves the
// full-replacement contract without holding the store lock during sends.
type Memory struct {
	mu          sync.Mutex
	collections map[string]map[string]Document
	watchers    []*memWatcher
	clock       func() time.Time

	// FailureHook, when set, is consulted before every write; a non-nil
	// return aborts the write with that error. Tests use it to simulate
	// backend faults.
	FailureHook func(op Op, collection string) error
}

type memWatcher struct {
	collection string
	orderField string
	dirty      chan struct{}
	out        chan Event
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		collections: make(map[string]map[string]Document),
		clock:       time.Now,
	}
}

// SetClock overrides the timestamp source. Test helper.
func (m *Memory) SetClock(clock func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clock = clock
}

func (m *Memory) coll(name string) map[string]Document {
	c, ok := m.collections[name]
	if !ok {
		c = make(map[string]Document)
		m.collections[name] = c
	}
	return c
}

func (m *Memory) hookErr(op Op, collection string) error {
	if m.FailureHook == nil {
		return nil
	}
	return m.FailureHook(op, collection)
}

// ── Reads ─────────────────────────────────────────────────────────────────────

func (m *Memory) List(_ context.Context, collection, orderField string) ([]Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked(collection, orderField), nil
}

func (m *Memory) Get(_ context.Context, collection, id string) (*Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.coll(collection)[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := doc.Clone()
	return &clone, nil
}

// snapshotLocked builds the ordered full-replacement set for a collection.
// Caller holds m.mu.
func (m *Memory) snapshotLocked(collection, orderField string) []Document {
	src := m.coll(collection)
	docs := make([]Document, 0, len(src))
	for _, d := range src {
		docs = append(docs, d.Clone())
	}
	sort.SliceStable(docs, func(i, j int) bool {
		// Descending by order field, id as tiebreaker for determinism.
		a, b := orderValue(docs[i], orderField), orderValue(docs[j], orderField)
		if c := compareValues(a, b); c != 0 {
			return c > 0
		}
		return docs[i].ID > docs[j].ID
	})
	return docs
}

// ── Writes ────────────────────────────────────────────────────────────────────

func (m *Memory) Create(_ context.Context, collection string, fields map[string]any) WriteResult {
	if err := m.hookErr(OpCreate, collection); err != nil {
		return failure(err)
	}
	m.mu.Lock()
	now := m.clock()
	doc := Document{ID: uuid.NewString(), Fields: map[string]any{}, CreatedAt: now, UpdatedAt: now}
	for k, v := range fields {
		doc.Fields[k] = v
	}
	m.coll(collection)[doc.ID] = doc
	m.mu.Unlock()
	m.notify(collection)
	return success(doc.ID)
}

func (m *Memory) Update(_ context.Context, collection, id string, fields map[string]any) WriteResult {
	if err := m.hookErr(OpUpdate, collection); err != nil {
		return failure(err)
	}
	m.mu.Lock()
	doc, ok := m.coll(collection)[id]
	if !ok {
		m.mu.Unlock()
		return failure(fmt.Errorf("update %s/%s: %w", collection, id, ErrNotFound))
	}
	doc = doc.Clone()
	for k, v := range fields {
		doc.Fields[k] = v
	}
	doc.UpdatedAt = m.clock()
	m.coll(collection)[id] = doc
	m.mu.Unlock()
	m.notify(collection)
	return success(id)
}

func (m *Memory) Delete(_ context.Context, collection, id string) WriteResult {
	if err := m.hookErr(OpDelete, collection); err != nil {
		return failure(err)
	}
	m.mu.Lock()
	if _, ok := m.coll(collection)[id]; !ok {
		m.mu.Unlock()
		return failure(fmt.Errorf("delete %s/%s: %w", collection, id, ErrNotFound))
	}
	delete(m.coll(collection), id)
	m.mu.Unlock()
	m.notify(collection)
	return success(id)
}

func (m *Memory) Decrement(_ context.Context, collection, id, field string, by int64) WriteResult {
	if err := m.hookErr(OpDecrement, collection); err != nil {
		return failure(err)
	}
	m.mu.Lock()
	doc, ok := m.coll(collection)[id]
	if !ok {
		m.mu.Unlock()
		return failure(fmt.Errorf("decrement %s/%s: %w", collection, id, ErrNotFound))
	}
	current, err := asInt64(doc.Fields[field])
	if err != nil {
		m.mu.Unlock()
		return failure(fmt.Errorf("decrement %s/%s.%s: %w", collection, id, field, err))
	}
	if current < by {
		m.mu.Unlock()
		return failure(fmt.Errorf("decrement %s/%s.%s by %d (have %d): %w",
			collection, id, field, by, current, ErrConflict))
	}
	doc = doc.Clone()
	doc.Fields[field] = current - by
	doc.UpdatedAt = m.clock()
	m.coll(collection)[id] = doc
	m.mu.Unlock()
	m.notify(collection)
	return success(id)
}

// ── Watch ─────────────────────────────────────────────────────────────────────

func (m *Memory) Watch(ctx context.Context, collection, orderField string) (<-chan Event, error) {
	w := &memWatcher{
		collection: collection,
		orderField: orderField,
		dirty:      make(chan struct{}, 1),
		out:        make(chan Event),
	}
	m.mu.Lock()
	m.watchers = append(m.watchers, w)
	m.mu.Unlock()

	w.dirty <- struct{}{} // initial snapshot

	go func() {
		defer close(w.out)
		defer m.removeWatcher(w)
		for {
			select {
			case <-ctx.Done():
				return
			case <-w.dirty:
				m.mu.Lock()
				docs := m.snapshotLocked(collection, orderField)
				m.mu.Unlock()
				select {
				case w.out <- Event{Docs: docs}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return w.out, nil
}

func (m *Memory) notify(collection string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range m.watchers {
		if w.collection != collection {
			continue
		}
		select {
		case w.dirty <- struct{}{}:
		default: // already pending; snapshots coalesce
		}
	}
}

func (m *Memory) removeWatcher(w *memWatcher) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, cur := range m.watchers {
		if cur == w {
			m.watchers = append(m.watchers[:i], m.watchers[i+1:]...)
			return
		}
	}
}

// ── Field value ordering ──────────────────────────────────────────────────────

func orderValue(d Document, field string) any {
	switch field {
	case "createdAt":
		return d.CreatedAt
	case "updatedAt":
		return d.UpdatedAt
	default:
		return d.Fields[field]
	}
}

// compareValues orders heterogeneous field values: times and numbers by
// magnitude, strings lexically. A missing value sorts last.
func compareValues(a, b any) int {
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return -1
	}
	if b == nil {
		return 1
	}
	if at, aok := a.(time.Time); aok {
		if bt, bok := b.(time.Time); bok {
			return at.Compare(bt)
		}
	}
	if an, aerr := asFloat64(a); aerr == nil {
		if bn, berr := asFloat64(b); berr == nil {
			switch {
			case an < bn:
				return -1
			case an > bn:
				return 1
			default:
				return 0
			}
		}
	}
	as, bs := fmt.Sprint(a), fmt.Sprint(b)
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	default:
		return 0
	}
}

func asInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case float64:
		return int64(n), nil
	case decimal.Decimal:
		return n.IntPart(), nil
	default:
		return 0, fmt.Errorf("field value %v (%T) is not numeric", v, v)
	}
}

func asFloat64(v any) (float64, error) {
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case float64:
		return n, nil
	case decimal.Decimal:
		return n.InexactFloat64(), nil
	default:
		return 0, fmt.Errorf("not numeric")
	}
}
