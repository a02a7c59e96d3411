// Package store defines the keyed document store collaborator: per-document
// CRUD with tagged write results and an ordered full-snapshot change feed.
// The store offers no multi-document atomicity; callers that need cross-
// document consistency must build it on top (see internal/core.SaleService).
package store

import (
	"context"
	"errors"
	"time"
)

// Well-known collection names. The trailing version suffix is part of the
// on-disk naming contract inherited from earlier deployments.
const (
	Products = "products_v2"
	Clients  = "clients_v2"
	Sales    = "sales_v2"
	Expenses = "expenses_v2"
	Users    = "users"
)

var (
	// ErrNotFound is reported when the addressed document does not exist.
	ErrNotFound = errors.New("document not found")

	// ErrConflict is reported by Decrement when the stored value would drop
	// below zero. The write is rejected and the document left unchanged.
	ErrConflict = errors.New("conditional write conflict")
)

// Document is one keyed record in a collection. Fields carries the
// schema-less payload; CreatedAt and UpdatedAt are server-assigned.
type Document struct {
	ID        string
	Fields    map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clone returns a deep-enough copy: the field map is copied, values are
// shared. Values are treated as immutable by all consumers.
func (d Document) Clone() Document {
	fields := make(map[string]any, len(d.Fields))
	for k, v := range d.Fields {
		fields[k] = v
	}
	d.Fields = fields
	return d
}

// WriteResult is the tagged outcome of a single best-effort write. Writes
// never propagate a raw fault; callers inspect OK/Err and own any retry
// policy.
type WriteResult struct {
	OK  bool
	ID  string // assigned id on create, echoed id otherwise
	Err error
}

// Event is one emission on a Watch channel: either a full replacement
// snapshot of the collection (ordered descending by the watch order field)
// or a delivery error. Snapshots for one collection arrive in delivery
// order; there is no ordering guarantee across collections.
type Event struct {
	Docs []Document
	Err  error
}

// Store is the keyed document store contract.
type Store interface {
	// Watch opens a continuous subscription on a collection. The first
	// emission is the current snapshot; every later emission is again a
	// full replacement set. The channel closes when ctx is cancelled.
	Watch(ctx context.Context, collection, orderField string) (<-chan Event, error)

	// List returns a one-shot snapshot ordered descending by orderField.
	List(ctx context.Context, collection, orderField string) ([]Document, error)

	// Get returns a single document, or ErrNotFound.
	Get(ctx context.Context, collection, id string) (*Document, error)

	Create(ctx context.Context, collection string, fields map[string]any) WriteResult
	Update(ctx context.Context, collection, id string, fields map[string]any) WriteResult
	Delete(ctx context.Context, collection, id string) WriteResult

	// Decrement atomically subtracts by from an integer field, but only if
	// the result stays >= 0; otherwise the result carries ErrConflict and
	// the document is unchanged. This is the store-boundary guard that
	// turns concurrent stock overdraw into a detectable, retryable
	// rejection instead of a silent last-write-wins overwrite.
	Decrement(ctx context.Context, collection, id, field string, by int64) WriteResult
}

func failure(err error) WriteResult { return WriteResult{Err: err} }
func success(id string) WriteResult { return WriteResult{OK: true, ID: id} }
