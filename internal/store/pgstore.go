package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// notifyChannel is the Postgres NOTIFY channel fired by the documents
// trigger (see migrations/001_init.sql). The payload is the collection name.
const notifyChannel = "documents_changed"

var validField = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// Postgres implements Store on a single `documents` jsonb table. Change
// feeds ride on LISTEN/NOTIFY: every committed write fires a notification
// carrying the collection name, and each watcher re-reads the full ordered
// snapshot, which is exactly the full-replacement contract Watch promises.
type Postgres struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

// NewPostgres wraps a pgx pool as a document Store.
func NewPostgres(pool *pgxpool.Pool, log *zap.Logger) *Postgres {
	if log == nil {
		log = zap.NewNop()
	}
	return &Postgres{pool: pool, log: log}
}

// orderClause maps an order field to a SQL ORDER BY expression. The two
// server-assigned timestamps live in real columns; everything else is a
// jsonb text lookup (order fields in this system are ISO-8601 strings, so
// text ordering is chronological).
func orderClause(orderField string) (string, error) {
	switch orderField {
	case "", "createdAt":
		return "ORDER BY created_at DESC, id DESC", nil
	case "updatedAt":
		return "ORDER BY updated_at DESC, id DESC", nil
	default:
		if !validField.MatchString(orderField) {
			return "", fmt.Errorf("invalid order field %q", orderField)
		}
		return fmt.Sprintf("ORDER BY data->>'%s' DESC NULLS LAST, id DESC", orderField), nil
	}
}

func (p *Postgres) List(ctx context.Context, collection, orderField string) ([]Document, error) {
	clause, err := orderClause(orderField)
	if err != nil {
		return nil, err
	}
	rows, err := p.pool.Query(ctx, `
		SELECT id, data, created_at, updated_at
		FROM documents
		WHERE collection = $1 `+clause,
		collection,
	)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		var raw []byte
		if err := rows.Scan(&d.ID, &raw, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan %s: %w", collection, err)
		}
		if err := json.Unmarshal(raw, &d.Fields); err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", collection, d.ID, err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (p *Postgres) Get(ctx context.Context, collection, id string) (*Document, error) {
	var d Document
	var raw []byte
	err := p.pool.QueryRow(ctx, `
		SELECT id, data, created_at, updated_at
		FROM documents
		WHERE collection = $1 AND id = $2`,
		collection, id,
	).Scan(&d.ID, &raw, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	if err := json.Unmarshal(raw, &d.Fields); err != nil {
		return nil, fmt.Errorf("decode %s/%s: %w", collection, id, err)
	}
	return &d, nil
}

func (p *Postgres) Create(ctx context.Context, collection string, fields map[string]any) WriteResult {
	raw, err := json.Marshal(fields)
	if err != nil {
		return failure(fmt.Errorf("encode %s: %w", collection, err))
	}
	id := uuid.NewString()
	_, err = p.pool.Exec(ctx, `
		INSERT INTO documents (collection, id, data)
		VALUES ($1, $2, $3)`,
		collection, id, raw,
	)
	if err != nil {
		return failure(fmt.Errorf("create %s: %w", collection, err))
	}
	return success(id)
}

// Update merges fields into the stored document (jsonb concatenation), the
// same partial-update semantics the original backend offered.
func (p *Postgres) Update(ctx context.Context, collection, id string, fields map[string]any) WriteResult {
	raw, err := json.Marshal(fields)
	if err != nil {
		return failure(fmt.Errorf("encode %s/%s: %w", collection, id, err))
	}
	tag, err := p.pool.Exec(ctx, `
		UPDATE documents
		SET data = data || $3::jsonb, updated_at = now()
		WHERE collection = $1 AND id = $2`,
		collection, id, raw,
	)
	if err != nil {
		return failure(fmt.Errorf("update %s/%s: %w", collection, id, err))
	}
	if tag.RowsAffected() == 0 {
		return failure(fmt.Errorf("update %s/%s: %w", collection, id, ErrNotFound))
	}
	return success(id)
}

func (p *Postgres) Delete(ctx context.Context, collection, id string) WriteResult {
	tag, err := p.pool.Exec(ctx, `
		DELETE FROM documents
		WHERE collection = $1 AND id = $2`,
		collection, id,
	)
	if err != nil {
		return failure(fmt.Errorf("delete %s/%s: %w", collection, id, err))
	}
	if tag.RowsAffected() == 0 {
		return failure(fmt.Errorf("delete %s/%s: %w", collection, id, ErrNotFound))
	}
	return success(id)
}

// Decrement is a single conditional UPDATE: the predicate makes concurrent
// overdraw impossible at the store boundary, regardless of how stale the
// caller's snapshot was.
func (p *Postgres) Decrement(ctx context.Context, collection, id, field string, by int64) WriteResult {
	if !validField.MatchString(field) {
		return failure(fmt.Errorf("invalid field %q", field))
	}
	tag, err := p.pool.Exec(ctx, fmt.Sprintf(`
		UPDATE documents
		SET data = jsonb_set(data, '{%[1]s}', to_jsonb((data->>'%[1]s')::bigint - $3)),
		    updated_at = now()
		WHERE collection = $1 AND id = $2
		  AND (data->>'%[1]s')::bigint >= $3`, field),
		collection, id, by,
	)
	if err != nil {
		return failure(fmt.Errorf("decrement %s/%s.%s: %w", collection, id, field, err))
	}
	if tag.RowsAffected() == 0 {
		// Distinguish a missing document from a rejected decrement.
		if _, gerr := p.Get(ctx, collection, id); gerr != nil {
			return failure(fmt.Errorf("decrement %s/%s: %w", collection, id, gerr))
		}
		return failure(fmt.Errorf("decrement %s/%s.%s by %d: %w", collection, id, field, by, ErrConflict))
	}
	return success(id)
}

func (p *Postgres) Watch(ctx context.Context, collection, orderField string) (<-chan Event, error) {
	if _, err := orderClause(orderField); err != nil {
		return nil, err
	}
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("watch %s: acquire: %w", collection, err)
	}
	if _, err := conn.Exec(ctx, "LISTEN "+notifyChannel); err != nil {
		conn.Release()
		return nil, fmt.Errorf("watch %s: listen: %w", collection, err)
	}

	out := make(chan Event)
	go func() {
		defer close(out)
		defer conn.Release()

		emit := func() bool {
			docs, err := p.List(ctx, collection, orderField)
			ev := Event{Docs: docs}
			if err != nil {
				ev = Event{Err: err}
			}
			select {
			case out <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !emit() {
			return
		}
		for {
			n, err := conn.Conn().WaitForNotification(ctx)
			if err != nil {
				if ctx.Err() == nil {
					p.log.Warn("watch notification stream failed",
						zap.String("collection", collection), zap.Error(err))
					select {
					case out <- Event{Err: err}:
					case <-ctx.Done():
					}
				}
				return
			}
			if n.Payload != collection {
				continue
			}
			if !emit() {
				return
			}
		}
	}()
	return out, nil
}
