package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"
)

// memoryStore keeps every collection in process memory. Transactions are
// serialized through a single mutex, so the optimistic-retry path of the
// real backend never triggers here; the semantics visible to callers are the
// same. Used as the test fixture for everything above the adapter.
type memoryStore struct {
	mu   sync.Mutex
	data map[string]map[string]map[string]interface{}
}

func NewMemoryStore() Store {
	return &memoryStore{data: make(map[string]map[string]map[string]interface{})}
}

func (s *memoryStore) NewID() string { return newID() }

func (s *memoryStore) Get(ctx context.Context, collection, id string) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(collection, id)
}

func (s *memoryStore) Query(ctx context.Context, collection string, q Query) ([]Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query(collection, q)
}

func (s *memoryStore) Set(ctx context.Context, collection, id string, data map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.set(collection, id, data)
	return nil
}

func (s *memoryStore) Update(ctx context.Context, collection, id string, patch map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.update(collection, id, patch)
}

func (s *memoryStore) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if col, ok := s.data[collection]; ok {
		delete(col, id)
	}
	return nil
}

func (s *memoryStore) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx Operator) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memoryTx{store: s, staged: make(map[string]map[string]stagedWrite)}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	tx.apply()
	return nil
}

func (s *memoryStore) Batch() Batch {
	return &memoryBatch{store: s}
}

// unlocked internals, callers hold s.mu.

func (s *memoryStore) get(collection, id string) (Document, error) {
	col, ok := s.data[collection]
	if !ok {
		return Document{}, ErrNotFound
	}
	data, ok := col[id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return Document{ID: id, Data: cloneMap(data)}, nil
}

func (s *memoryStore) set(collection, id string, data map[string]interface{}) {
	col, ok := s.data[collection]
	if !ok {
		col = make(map[string]map[string]interface{})
		s.data[collection] = col
	}
	next := cloneMap(data)
	now := time.Now().UTC()
	if prev, ok := col[id]; ok {
		if created, ok := prev["createdAt"]; ok {
			next["createdAt"] = created
		}
	}
	if _, ok := next["createdAt"]; !ok {
		next["createdAt"] = now
	}
	next["updatedAt"] = now
	col[id] = next
}

func (s *memoryStore) update(collection, id string, patch map[string]interface{}) error {
	col, ok := s.data[collection]
	if !ok {
		return ErrNotFound
	}
	data, ok := col[id]
	if !ok {
		return ErrNotFound
	}
	for k, v := range cloneMap(patch) {
		data[k] = v
	}
	data["updatedAt"] = time.Now().UTC()
	return nil
}

func (s *memoryStore) query(collection string, q Query) ([]Document, error) {
	col := s.data[collection]
	var out []Document
	for id, data := range col {
		ok, err := matches(data, q.Filters)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, Document{ID: id, Data: cloneMap(data)})
		}
	}
	sortDocs(out, q)
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

// memoryTx overlays staged writes on the store; reads see staged state,
// nothing leaks out until apply.
type memoryTx struct {
	store  *memoryStore
	staged map[string]map[string]stagedWrite
}

type stagedWrite struct {
	data    map[string]interface{}
	deleted bool
}

func (t *memoryTx) Get(ctx context.Context, collection, id string) (Document, error) {
	if col, ok := t.staged[collection]; ok {
		if w, ok := col[id]; ok {
			if w.deleted {
				return Document{}, ErrNotFound
			}
			return Document{ID: id, Data: cloneMap(w.data)}, nil
		}
	}
	return t.store.get(collection, id)
}

func (t *memoryTx) Query(ctx context.Context, collection string, q Query) ([]Document, error) {
	merged := make(map[string]map[string]interface{})
	for id, data := range t.store.data[collection] {
		merged[id] = data
	}
	for id, w := range t.staged[collection] {
		if w.deleted {
			delete(merged, id)
		} else {
			merged[id] = w.data
		}
	}
	var out []Document
	for id, data := range merged {
		ok, err := matches(data, q.Filters)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, Document{ID: id, Data: cloneMap(data)})
		}
	}
	sortDocs(out, q)
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (t *memoryTx) Set(ctx context.Context, collection, id string, data map[string]interface{}) error {
	t.stage(collection, id, stagedWrite{data: t.withTimestamps(collection, id, data)})
	return nil
}

func (t *memoryTx) Update(ctx context.Context, collection, id string, patch map[string]interface{}) error {
	current, err := t.Get(ctx, collection, id)
	if err != nil {
		return err
	}
	data := current.Data
	for k, v := range cloneMap(patch) {
		data[k] = v
	}
	data["updatedAt"] = time.Now().UTC()
	t.stage(collection, id, stagedWrite{data: data})
	return nil
}

func (t *memoryTx) Delete(ctx context.Context, collection, id string) error {
	t.stage(collection, id, stagedWrite{deleted: true})
	return nil
}

func (t *memoryTx) withTimestamps(collection, id string, data map[string]interface{}) map[string]interface{} {
	next := cloneMap(data)
	now := time.Now().UTC()
	if current, err := t.Get(context.Background(), collection, id); err == nil {
		if created, ok := current.Data["createdAt"]; ok {
			next["createdAt"] = created
		}
	}
	if _, ok := next["createdAt"]; !ok {
		next["createdAt"] = now
	}
	next["updatedAt"] = now
	return next
}

func (t *memoryTx) stage(collection, id string, w stagedWrite) {
	col, ok := t.staged[collection]
	if !ok {
		col = make(map[string]stagedWrite)
		t.staged[collection] = col
	}
	col[id] = w
}

func (t *memoryTx) apply() {
	for collection, col := range t.staged {
		for id, w := range col {
			if w.deleted {
				if c, ok := t.store.data[collection]; ok {
					delete(c, id)
				}
				continue
			}
			c, ok := t.store.data[collection]
			if !ok {
				c = make(map[string]map[string]interface{})
				t.store.data[collection] = c
			}
			c[id] = w.data
		}
	}
}

type memoryBatch struct {
	store *memoryStore
	ops   []batchOp
}

type batchOp struct {
	update     bool
	collection string
	id         string
	data       map[string]interface{}
}

func (b *memoryBatch) Set(collection, id string, data map[string]interface{}) {
	b.ops = append(b.ops, batchOp{collection: collection, id: id, data: cloneMap(data)})
}

func (b *memoryBatch) Update(collection, id string, patch map[string]interface{}) {
	b.ops = append(b.ops, batchOp{update: true, collection: collection, id: id, data: cloneMap(patch)})
}

func (b *memoryBatch) Len() int { return len(b.ops) }

func (b *memoryBatch) Commit(ctx context.Context) error {
	if len(b.ops) > MaxBatchOps {
		return ErrBatchTooLarge
	}
	b.store.mu.Lock()
	defer b.store.mu.Unlock()

	// validate the updates first so the commit stays all-or-nothing
	for _, op := range b.ops {
		if !op.update {
			continue
		}
		if _, err := b.store.get(op.collection, op.id); err != nil {
			return fmt.Errorf("batch update %s/%s: %w", op.collection, op.id, err)
		}
	}
	for _, op := range b.ops {
		if op.update {
			if err := b.store.update(op.collection, op.id, op.data); err != nil {
				return err
			}
			continue
		}
		b.store.set(op.collection, op.id, op.data)
	}
	b.ops = nil
	return nil
}

// filter evaluation

func matches(data map[string]interface{}, filters []Filter) (bool, error) {
	for _, f := range filters {
		field, ok := data[f.Field]
		switch f.Op {
		case OpEqual:
			if !ok || !valueEqual(field, f.Value) {
				return false, nil
			}
		case OpIn:
			if !ok {
				return false, nil
			}
			options := reflect.ValueOf(f.Value)
			if options.Kind() != reflect.Slice {
				return false, fmt.Errorf("in filter on %q requires a slice value", f.Field)
			}
			found := false
			for i := 0; i < options.Len(); i++ {
				if valueEqual(field, options.Index(i).Interface()) {
					found = true
					break
				}
			}
			if !found {
				return false, nil
			}
		case OpArrayContains:
			list, isList := field.([]interface{})
			if !ok || !isList {
				return false, nil
			}
			found := false
			for _, item := range list {
				if valueEqual(item, f.Value) {
					found = true
					break
				}
			}
			if !found {
				return false, nil
			}
		default:
			return false, fmt.Errorf("unsupported filter op %q", f.Op)
		}
	}
	return true, nil
}

// valueEqual compares a stored value against a caller-supplied one after
// normalizing both through JSON, so int filters match float64 fields and
// typed strings match plain ones.
func valueEqual(stored, filter interface{}) bool {
	return reflect.DeepEqual(normalize(stored), normalize(filter))
}

func normalize(v interface{}) interface{} {
	raw, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return v
	}
	return out
}

func sortDocs(docs []Document, q Query) {
	if q.OrderBy == "" {
		sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
		return
	}
	sort.Slice(docs, func(i, j int) bool {
		less := compareValues(docs[i].Data[q.OrderBy], docs[j].Data[q.OrderBy])
		if q.Desc {
			return !less
		}
		return less
	})
}

func compareValues(a, b interface{}) bool {
	af, aok := normalize(a).(float64)
	bf, bok := normalize(b).(float64)
	if aok && bok {
		return af < bf
	}
	return fmt.Sprint(a) < fmt.Sprint(b)
}

func cloneMap(src map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(src))
	for k, v := range src {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		return cloneMap(val)
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}
