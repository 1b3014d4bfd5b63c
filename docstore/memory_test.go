package docstore

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func mustSet(t *testing.T, s Store, collection, id string, data map[string]interface{}) {
	t.Helper()
	if err := s.Set(context.Background(), collection, id, data); err != nil {
		t.Fatalf("set %s/%s: %v", collection, id, err)
	}
}

func TestMemorySetStampsTimestamps(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	mustSet(t, s, "things", "a", map[string]interface{}{"name": "first"})

	doc, err := s.Get(ctx, "things", "a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	created, ok := doc.Data["createdAt"].(time.Time)
	if !ok {
		t.Fatalf("createdAt missing or not a time: %#v", doc.Data["createdAt"])
	}
	if _, ok := doc.Data["updatedAt"].(time.Time); !ok {
		t.Fatalf("updatedAt missing or not a time: %#v", doc.Data["updatedAt"])
	}

	// Overwriting keeps the original creation timestamp.
	mustSet(t, s, "things", "a", map[string]interface{}{"name": "second"})
	doc, err = s.Get(ctx, "things", "a")
	if err != nil {
		t.Fatalf("get after overwrite: %v", err)
	}
	if got := doc.Data["createdAt"].(time.Time); !got.Equal(created) {
		t.Fatalf("createdAt changed on overwrite: %v != %v", got, created)
	}
	if doc.Data["name"] != "second" {
		t.Fatalf("overwrite did not replace fields: %#v", doc.Data)
	}
}

func TestMemoryGetMissing(t *testing.T) {
	s := NewMemoryStore()
	if _, err := s.Get(context.Background(), "things", "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryUpdateMissing(t *testing.T) {
	s := NewMemoryStore()
	err := s.Update(context.Background(), "things", "nope", map[string]interface{}{"x": 1})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryUpdateMergesPatch(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	mustSet(t, s, "things", "a", map[string]interface{}{"name": "first", "count": 1})
	if err := s.Update(ctx, "things", "a", map[string]interface{}{"count": 2}); err != nil {
		t.Fatalf("update: %v", err)
	}

	doc, err := s.Get(ctx, "things", "a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if doc.Data["name"] != "first" {
		t.Fatalf("untouched field lost: %#v", doc.Data)
	}
	if doc.Data["count"] != 2 {
		t.Fatalf("patched field not applied: %#v", doc.Data["count"])
	}
}

func TestMemoryQueryFilters(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	mustSet(t, s, "players", "p1", map[string]interface{}{
		"status":  "ACTIVO",
		"clubIds": []interface{}{"c1", "c2"},
	})
	mustSet(t, s, "players", "p2", map[string]interface{}{
		"status":  "PENDIENTE",
		"clubIds": []interface{}{"c2"},
	})
	mustSet(t, s, "players", "p3", map[string]interface{}{
		"status":  "ACTIVO",
		"clubIds": []interface{}{"c3"},
	})

	docs, err := s.Query(ctx, "players", Where("status", OpEqual, "ACTIVO"))
	if err != nil {
		t.Fatalf("query equal: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("equal filter: want 2 docs, got %d", len(docs))
	}

	docs, err = s.Query(ctx, "players", Where("status", OpIn, []string{"PENDIENTE", "RECHAZADO"}))
	if err != nil {
		t.Fatalf("query in: %v", err)
	}
	if len(docs) != 1 || docs[0].ID != "p2" {
		t.Fatalf("in filter: want [p2], got %v", docIDs(docs))
	}

	docs, err = s.Query(ctx, "players", Where("clubIds", OpArrayContains, "c2"))
	if err != nil {
		t.Fatalf("query array-contains: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("array-contains: want 2 docs, got %v", docIDs(docs))
	}

	docs, err = s.Query(ctx, "players",
		Where("status", OpEqual, "ACTIVO").And("clubIds", OpArrayContains, "c1"))
	if err != nil {
		t.Fatalf("query combined: %v", err)
	}
	if len(docs) != 1 || docs[0].ID != "p1" {
		t.Fatalf("combined filters: want [p1], got %v", docIDs(docs))
	}
}

func TestMemoryQueryOrderAndLimit(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	for i, year := range []int{2023, 2025, 2024} {
		mustSet(t, s, "campaigns", fmt.Sprintf("c%d", i), map[string]interface{}{"year": year})
	}

	docs, err := s.Query(ctx, "campaigns", Query{OrderBy: "year", Desc: true})
	if err != nil {
		t.Fatalf("query ordered: %v", err)
	}
	years := make([]int, 0, len(docs))
	for _, d := range docs {
		years = append(years, d.Data["year"].(int))
	}
	want := []int{2025, 2024, 2023}
	for i := range want {
		if years[i] != want[i] {
			t.Fatalf("descending order: want %v, got %v", want, years)
		}
	}

	docs, err = s.Query(ctx, "campaigns", Query{OrderBy: "year", Desc: true}.WithLimit(1))
	if err != nil {
		t.Fatalf("query limited: %v", err)
	}
	if len(docs) != 1 || docs[0].Data["year"].(int) != 2025 {
		t.Fatalf("limit 1: want the 2025 campaign, got %v", docIDs(docs))
	}
}

func TestMemoryTransactionInvisibleUntilCommit(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	var insideID string
	err := s.RunTransaction(ctx, func(ctx context.Context, tx Operator) error {
		if err := tx.Set(ctx, "things", "staged", map[string]interface{}{"v": 1}); err != nil {
			return err
		}
		// Staged writes read back inside the same transaction.
		doc, err := tx.Get(ctx, "things", "staged")
		if err != nil {
			return err
		}
		insideID = doc.ID
		return nil
	})
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}
	if insideID != "staged" {
		t.Fatalf("staged write not visible inside transaction")
	}
	if _, err := s.Get(ctx, "things", "staged"); err != nil {
		t.Fatalf("committed write not visible: %v", err)
	}
}

func TestMemoryTransactionDiscardedOnError(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.RunTransaction(ctx, func(ctx context.Context, tx Operator) error {
		if err := tx.Set(ctx, "things", "doomed", map[string]interface{}{"v": 1}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped boom, got %v", err)
	}
	if _, err := s.Get(ctx, "things", "doomed"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("failed transaction leaked a write: %v", err)
	}
}

func TestMemoryBatchCommit(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	mustSet(t, s, "things", "existing", map[string]interface{}{"v": 1})

	b := s.Batch()
	b.Set("things", "new", map[string]interface{}{"v": 2})
	b.Update("things", "existing", map[string]interface{}{"v": 3})
	if b.Len() != 2 {
		t.Fatalf("batch length: want 2, got %d", b.Len())
	}
	if err := b.Commit(ctx); err != nil {
		t.Fatalf("commit: %v", err)
	}

	doc, err := s.Get(ctx, "things", "existing")
	if err != nil {
		t.Fatalf("get existing: %v", err)
	}
	if doc.Data["v"] != 3 {
		t.Fatalf("batched update not applied: %#v", doc.Data["v"])
	}
	if _, err := s.Get(ctx, "things", "new"); err != nil {
		t.Fatalf("batched set not applied: %v", err)
	}
}

func TestMemoryBatchAllOrNothing(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	b := s.Batch()
	b.Set("things", "a", map[string]interface{}{"v": 1})
	b.Update("things", "missing", map[string]interface{}{"v": 2})
	if err := b.Commit(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound from update of missing doc, got %v", err)
	}
	// The set sharing the batch must not land.
	if _, err := s.Get(ctx, "things", "a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("failed batch leaked a write: %v", err)
	}
}

func TestMemoryBatchCap(t *testing.T) {
	s := NewMemoryStore()

	b := s.Batch()
	for i := 0; i <= MaxBatchOps; i++ {
		b.Set("things", fmt.Sprintf("d%d", i), map[string]interface{}{"i": i})
	}
	if err := b.Commit(context.Background()); !errors.Is(err, ErrBatchTooLarge) {
		t.Fatalf("expected ErrBatchTooLarge, got %v", err)
	}
}

func docIDs(docs []Document) []string {
	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	return ids
}
