package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/segmentio/ksuid"
)

// MaxBatchOps is the provider-imposed cap on operations in a single batch
// commit. Callers performing fan-out writes must chunk below this limit.
const MaxBatchOps = 500

var (
	ErrNotFound      = errors.New("document not found")
	ErrBatchTooLarge = fmt.Errorf("batch exceeds %d operations", MaxBatchOps)
)

type FilterOp string

const (
	OpEqual         FilterOp = "=="
	OpIn            FilterOp = "in"
	OpArrayContains FilterOp = "array-contains"
)

type Filter struct {
	Field string
	Op    FilterOp
	Value interface{}
}

type Query struct {
	Filters []Filter
	OrderBy string
	Desc    bool
	Limit   int
}

func Where(field string, op FilterOp, value interface{}) Query {
	return Query{Filters: []Filter{{Field: field, Op: op, Value: value}}}
}

func (q Query) And(field string, op FilterOp, value interface{}) Query {
	q.Filters = append(q.Filters, Filter{Field: field, Op: op, Value: value})
	return q
}

func (q Query) Order(field string, desc bool) Query {
	q.OrderBy = field
	q.Desc = desc
	return q
}

func (q Query) WithLimit(n int) Query {
	q.Limit = n
	return q
}

// Document is a single record of a collection: an id plus loosely typed
// fields. createdAt/updatedAt are maintained by the store on every write.
type Document struct {
	ID   string
	Data map[string]interface{}
}

// DataTo decodes the document fields into dst through a JSON round trip.
func (d Document) DataTo(dst interface{}) error {
	raw, err := json.Marshal(d.Data)
	if err != nil {
		return fmt.Errorf("encode document %s: %w", d.ID, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode document %s: %w", d.ID, err)
	}
	return nil
}

// DataFrom converts a typed value into document fields.
func DataFrom(src interface{}) (map[string]interface{}, error) {
	raw, err := json.Marshal(src)
	if err != nil {
		return nil, err
	}
	var data map[string]interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	return data, nil
}

// Operator is the read/write surface shared by the store itself and a
// transaction handle.
type Operator interface {
	Get(ctx context.Context, collection, id string) (Document, error)
	Query(ctx context.Context, collection string, q Query) ([]Document, error)
	Set(ctx context.Context, collection, id string, data map[string]interface{}) error
	Update(ctx context.Context, collection, id string, patch map[string]interface{}) error
	Delete(ctx context.Context, collection, id string) error
}

// Batch buffers writes that commit atomically. Unlike a transaction it
// supports no reads, but admits up to MaxBatchOps operations.
type Batch interface {
	Set(collection, id string, data map[string]interface{})
	Update(collection, id string, patch map[string]interface{})
	Len() int
	Commit(ctx context.Context) error
}

// Store wraps the document database. Effects of the function passed to
// RunTransaction are invisible to other transactions until commit; the whole
// function is retried automatically when a concurrent transaction conflicts.
type Store interface {
	Operator
	RunTransaction(ctx context.Context, fn func(ctx context.Context, tx Operator) error) error
	Batch() Batch
	NewID() string
}

func newID() string {
	return ksuid.New().String()
}
