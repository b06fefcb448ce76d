package records

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryStoreCRUD(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	created, err := store.Create(ctx, CollectionTasks, Record{"id": "forjado", "name": "Revisar anais"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	id := created.ID()
	if id == "" || id == "forjado" {
		t.Fatalf("store must assign id, got %q", id)
	}

	created["name"] = "mutado fora"
	got, err := store.Get(ctx, CollectionTasks, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got["name"] != "Revisar anais" {
		t.Fatalf("store must not alias returned records: %v", got)
	}

	updated, err := store.Update(ctx, CollectionTasks, id, Record{"completed": true, "id": "outro"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ID() != id || updated["completed"] != true || updated["name"] != "Revisar anais" {
		t.Fatalf("unexpected merge result %v", updated)
	}

	if err := store.Delete(ctx, CollectionTasks, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, CollectionTasks, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found got %v", err)
	}
	if err := store.Delete(ctx, CollectionTasks, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found on second delete got %v", err)
	}
}

func TestMemoryStoreListKeepsOrderAndIsolation(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	var ids []string
	for _, name := range []string{"a", "b", "c"} {
		rec, _ := store.Create(ctx, CollectionTasks, Record{"name": name})
		ids = append(ids, rec.ID())
	}
	_, _ = store.Create(ctx, CollectionUsers, Record{"username": "ana"})
	_ = store.Delete(ctx, CollectionTasks, ids[1])

	list, err := store.List(ctx, CollectionTasks)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0]["name"] != "a" || list[1]["name"] != "c" {
		t.Fatalf("unexpected list %v", list)
	}
}
