package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/lib/pq"
)

const txMaxAttempts = 5

// postgresStore keeps every collection in a single jsonb-backed table.
// Transactions run SERIALIZABLE and are retried on serialization failure,
// which gives the optimistic read-modify-write semantics the workflow layer
// relies on.
type postgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) Store {
	return &postgresStore{db: db}
}

// EnsureSchema creates the documents table and its lookup index.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS documents (
			collection TEXT        NOT NULL,
			id         TEXT        NOT NULL,
			data       JSONB       NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (collection, id)
		);
		CREATE INDEX IF NOT EXISTS documents_data_idx
			ON documents USING GIN (data jsonb_path_ops);`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to ensure documents schema: %w", err)
	}
	return nil
}

func (s *postgresStore) NewID() string { return newID() }

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func (s *postgresStore) Get(ctx context.Context, collection, id string) (Document, error) {
	return pgGet(ctx, s.db, collection, id)
}

func (s *postgresStore) Query(ctx context.Context, collection string, q Query) ([]Document, error) {
	return pgQuery(ctx, s.db, collection, q)
}

func (s *postgresStore) Set(ctx context.Context, collection, id string, data map[string]interface{}) error {
	return pgSet(ctx, s.db, collection, id, data)
}

func (s *postgresStore) Update(ctx context.Context, collection, id string, patch map[string]interface{}) error {
	return pgUpdate(ctx, s.db, collection, id, patch)
}

func (s *postgresStore) Delete(ctx context.Context, collection, id string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = $1 AND id = $2`, collection, id)
	return err
}

func (s *postgresStore) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx Operator) error) error {
	var lastErr error
	for attempt := 0; attempt < txMaxAttempts; attempt++ {
		err := s.runOnce(ctx, fn)
		if err == nil {
			return nil
		}
		if !isSerializationFailure(err) {
			return err
		}
		lastErr = err
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt+1) * 10 * time.Millisecond):
		}
	}
	return fmt.Errorf("transaction aborted after %d attempts: %w", txMaxAttempts, lastErr)
}

func (s *postgresStore) runOnce(ctx context.Context, fn func(ctx context.Context, tx Operator) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(ctx, &pgTx{tx: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	return nil
}

func isSerializationFailure(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// serialization_failure / deadlock_detected
		return pqErr.Code == "40001" || pqErr.Code == "40P01"
	}
	return false
}

type pgTx struct {
	tx *sql.Tx
}

func (t *pgTx) Get(ctx context.Context, collection, id string) (Document, error) {
	return pgGet(ctx, t.tx, collection, id)
}

func (t *pgTx) Query(ctx context.Context, collection string, q Query) ([]Document, error) {
	return pgQuery(ctx, t.tx, collection, q)
}

func (t *pgTx) Set(ctx context.Context, collection, id string, data map[string]interface{}) error {
	return pgSet(ctx, t.tx, collection, id, data)
}

func (t *pgTx) Update(ctx context.Context, collection, id string, patch map[string]interface{}) error {
	return pgUpdate(ctx, t.tx, collection, id, patch)
}

func (t *pgTx) Delete(ctx context.Context, collection, id string) error {
	_, err := t.tx.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = $1 AND id = $2`, collection, id)
	return err
}

func (s *postgresStore) Batch() Batch {
	return &pgBatch{db: s.db}
}

type pgBatch struct {
	db  *sql.DB
	ops []batchOp
}

func (b *pgBatch) Set(collection, id string, data map[string]interface{}) {
	b.ops = append(b.ops, batchOp{collection: collection, id: id, data: data})
}

func (b *pgBatch) Update(collection, id string, patch map[string]interface{}) {
	b.ops = append(b.ops, batchOp{update: true, collection: collection, id: id, data: patch})
}

func (b *pgBatch) Len() int { return len(b.ops) }

func (b *pgBatch) Commit(ctx context.Context) error {
	if len(b.ops) > MaxBatchOps {
		return ErrBatchTooLarge
	}
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin batch: %w", err)
	}
	for _, op := range b.ops {
		if op.update {
			err = pgUpdate(ctx, tx, op.collection, op.id, op.data)
		} else {
			err = pgSet(ctx, tx, op.collection, op.id, op.data)
		}
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("batch write %s/%s: %w", op.collection, op.id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	b.ops = nil
	return nil
}

// shared statement helpers

func pgGet(ctx context.Context, q querier, collection, id string) (Document, error) {
	row := q.QueryRowContext(ctx,
		`SELECT data, created_at, updated_at FROM documents WHERE collection = $1 AND id = $2`,
		collection, id)
	return scanDocument(row, id)
}

func scanDocument(row *sql.Row, id string) (Document, error) {
	var raw []byte
	var createdAt, updatedAt time.Time
	if err := row.Scan(&raw, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return decodeDocument(id, raw, createdAt, updatedAt)
}

func decodeDocument(id string, raw []byte, createdAt, updatedAt time.Time) (Document, error) {
	var data map[string]interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return Document{}, fmt.Errorf("failed to decode document %s: %w", id, err)
	}
	data["createdAt"] = createdAt
	data["updatedAt"] = updatedAt
	return Document{ID: id, Data: data}, nil
}

func pgSet(ctx context.Context, q querier, collection, id string, data map[string]interface{}) error {
	raw, err := marshalData(data)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, `
		INSERT INTO documents (collection, id, data)
		VALUES ($1, $2, $3)
		ON CONFLICT (collection, id)
		DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
		collection, id, raw)
	return err
}

func pgUpdate(ctx context.Context, q querier, collection, id string, patch map[string]interface{}) error {
	raw, err := marshalData(patch)
	if err != nil {
		return err
	}
	result, err := q.ExecContext(ctx, `
		UPDATE documents SET data = data || $3::jsonb, updated_at = now()
		WHERE collection = $1 AND id = $2`,
		collection, id, raw)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// marshalData strips the store-managed timestamps before writing: they live
// in their own columns.
func marshalData(data map[string]interface{}) ([]byte, error) {
	clean := make(map[string]interface{}, len(data))
	for k, v := range data {
		if k == "createdAt" || k == "updatedAt" {
			continue
		}
		clean[k] = v
	}
	raw, err := json.Marshal(clean)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document data: %w", err)
	}
	return raw, nil
}

var fieldNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

func pgQuery(ctx context.Context, q querier, collection string, query Query) ([]Document, error) {
	var (
		clauses = []string{"collection = $1"}
		args    = []interface{}{collection}
	)
	for _, f := range query.Filters {
		if !fieldNamePattern.MatchString(f.Field) {
			return nil, fmt.Errorf("invalid filter field %q", f.Field)
		}
		switch f.Op {
		case OpEqual:
			probe, err := json.Marshal(map[string]interface{}{f.Field: f.Value})
			if err != nil {
				return nil, err
			}
			args = append(args, string(probe))
			clauses = append(clauses, fmt.Sprintf("data @> $%d::jsonb", len(args)))
		case OpArrayContains:
			probe, err := json.Marshal(map[string]interface{}{f.Field: []interface{}{f.Value}})
			if err != nil {
				return nil, err
			}
			args = append(args, string(probe))
			clauses = append(clauses, fmt.Sprintf("data @> $%d::jsonb", len(args)))
		case OpIn:
			options, err := inOptions(f)
			if err != nil {
				return nil, err
			}
			var alts []string
			for _, opt := range options {
				args = append(args, opt)
				alts = append(alts, fmt.Sprintf("data @> $%d::jsonb", len(args)))
			}
			clauses = append(clauses, "("+strings.Join(alts, " OR ")+")")
		default:
			return nil, fmt.Errorf("unsupported filter op %q", f.Op)
		}
	}

	stmt := "SELECT id, data, created_at, updated_at FROM documents WHERE " + strings.Join(clauses, " AND ")
	if query.OrderBy != "" {
		if !fieldNamePattern.MatchString(query.OrderBy) {
			return nil, fmt.Errorf("invalid order field %q", query.OrderBy)
		}
		direction := "ASC"
		if query.Desc {
			direction = "DESC"
		}
		stmt += fmt.Sprintf(" ORDER BY data->'%s' %s", query.OrderBy, direction)
	} else {
		stmt += " ORDER BY id ASC"
	}
	if query.Limit > 0 {
		stmt += fmt.Sprintf(" LIMIT %d", query.Limit)
	}

	rows, err := q.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var id string
		var raw []byte
		var createdAt, updatedAt time.Time
		if err := rows.Scan(&id, &raw, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		doc, err := decodeDocument(id, raw, createdAt, updatedAt)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func inOptions(f Filter) ([]string, error) {
	values, ok := sliceOf(f.Value)
	if !ok || len(values) == 0 {
		return nil, fmt.Errorf("in filter on %q requires a non-empty slice value", f.Field)
	}
	var out []string
	for _, v := range values {
		probe, err := json.Marshal(map[string]interface{}{f.Field: v})
		if err != nil {
			return nil, err
		}
		out = append(out, string(probe))
	}
	return out, nil
}

func sliceOf(v interface{}) ([]interface{}, bool) {
	switch val := v.(type) {
	case []interface{}:
		return val, true
	case []string:
		out := make([]interface{}, len(val))
		for i, s := range val {
			out[i] = s
		}
		return out, true
	default:
		return nil, false
	}
}
