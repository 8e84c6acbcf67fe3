package docstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
)

type item struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Order int    `json:"order"`
}

func setupTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "data", "test.db"), opts...)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSetAndGet(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if err := s.Set(ctx, Doc("items", "a"), item{ID: "a", Name: "Alpha", Order: 1}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	snap, err := s.Get(ctx, Doc("items", "a"))
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !snap.Exists {
		t.Fatal("document should exist")
	}
	var got item
	if err := snap.DataTo(&got); err != nil {
		t.Fatalf("DataTo failed: %v", err)
	}
	if got.Name != "Alpha" || got.Order != 1 {
		t.Errorf("got %+v", got)
	}

	missing, err := s.Get(ctx, Doc("items", "zzz"))
	if err != nil {
		t.Fatalf("Get missing failed: %v", err)
	}
	if missing.Exists {
		t.Error("missing document should not exist")
	}
	if err := missing.DataTo(&got); !errors.Is(err, ErrNotFound) {
		t.Errorf("DataTo on missing = %v, want ErrNotFound", err)
	}
}

func TestSetIsUpsertAndKeepsPosition(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	for _, it := range []item{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}, {ID: "c", Name: "C"}} {
		if err := s.Set(ctx, Doc("items", it.ID), it); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}
	if err := s.Set(ctx, Doc("items", "a"), item{ID: "a", Name: "A2"}); err != nil {
		t.Fatalf("Set overwrite failed: %v", err)
	}

	snap, err := s.List(ctx, Collection("items"))
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(snap.Docs) != 3 {
		t.Fatalf("List count = %d, want 3", len(snap.Docs))
	}
	if snap.Docs[0].ID != "a" {
		t.Errorf("first id = %q, want a (position kept)", snap.Docs[0].ID)
	}
	var first item
	if err := snap.Docs[0].DataTo(&first); err != nil {
		t.Fatal(err)
	}
	if first.Name != "A2" {
		t.Errorf("Name = %q, want A2", first.Name)
	}
}

func TestUpdateMergesFields(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if err := s.Set(ctx, Doc("items", "a"), map[string]any{"id": "a", "name": "A", "order": 1, "extra": "kept"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Update(ctx, Doc("items", "a"), map[string]any{"name": "Renamed", "order": 7}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	snap, err := s.Get(ctx, Doc("items", "a"))
	if err != nil {
		t.Fatal(err)
	}
	var got map[string]any
	if err := snap.DataTo(&got); err != nil {
		t.Fatal(err)
	}
	if got["name"] != "Renamed" || got["order"] != float64(7) || got["extra"] != "kept" {
		t.Errorf("merged document = %v", got)
	}
}

func TestUpdateMissingReturnsNotFound(t *testing.T) {
	s := setupTestStore(t)
	err := s.Update(context.Background(), Doc("items", "ghost"), item{ID: "ghost"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Update missing = %v, want ErrNotFound", err)
	}
	snap, err := s.List(context.Background(), Collection("items"))
	if err != nil {
		t.Fatal(err)
	}
	if !snap.Empty() {
		t.Error("Update must not create the document")
	}
}

func TestUpdateRejectsNonObject(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	if err := s.Set(ctx, Doc("items", "a"), item{ID: "a"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Update(ctx, Doc("items", "a"), []int{1, 2}); err == nil {
		t.Fatal("Update with an array should fail")
	}
}

func TestDelete(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	if err := s.Set(ctx, Doc("items", "a"), item{ID: "a"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, Doc("items", "a")); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := s.Delete(ctx, Doc("items", "a")); err != nil {
		t.Fatalf("Delete of missing document should succeed, got %v", err)
	}
	snap, _ := s.Get(ctx, Doc("items", "a"))
	if snap.Exists {
		t.Error("document should be gone")
	}
}

func TestListOrderByIsStable(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	for _, it := range []item{
		{ID: "a", Order: 3},
		{ID: "b", Order: 1},
		{ID: "c", Order: 3},
		{ID: "d", Order: 10},
		{ID: "e", Order: 1},
	} {
		if err := s.Set(ctx, Doc("items", it.ID), it); err != nil {
			t.Fatal(err)
		}
	}
	snap, err := s.List(ctx, Collection("items").OrderBy("order"))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"b", "e", "a", "c", "d"}
	for i, id := range want {
		if snap.Docs[i].ID != id {
			t.Fatalf("Docs[%d] = %q, want %q", i, snap.Docs[i].ID, id)
		}
	}
}

func TestBatchWriteIsAtomic(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	err := s.BatchWrite(ctx, []Write{
		{Ref: Doc("items", "a"), Value: item{ID: "a"}},
		{Ref: Doc("items", ""), Value: item{}},
	})
	if err == nil {
		t.Fatal("batch with an invalid ref should fail")
	}
	snap, _ := s.List(ctx, Collection("items"))
	if !snap.Empty() {
		t.Fatalf("failed batch left %d documents", len(snap.Docs))
	}

	err = s.BatchWrite(ctx, []Write{
		{Ref: Doc("items", "a"), Value: item{ID: "a"}},
		{Ref: Doc("other", "b"), Value: item{ID: "b"}},
		{Ref: Doc("settings", "profile"), Value: map[string]string{"name": "x"}},
	})
	if err != nil {
		t.Fatalf("BatchWrite failed: %v", err)
	}
	for _, c := range []string{"items", "other", "settings"} {
		snap, _ := s.List(ctx, Collection(c))
		if len(snap.Docs) != 1 {
			t.Errorf("collection %s has %d docs, want 1", c, len(snap.Docs))
		}
	}
}

func TestReadOnlyDeniesWrites(t *testing.T) {
	s := setupTestStore(t, ReadOnly())
	ctx := context.Background()
	ref := Doc("items", "a")

	if err := s.Set(ctx, ref, item{}); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("Set = %v, want ErrPermissionDenied", err)
	}
	if err := s.Update(ctx, ref, item{}); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("Update = %v, want ErrPermissionDenied", err)
	}
	if err := s.Delete(ctx, ref); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("Delete = %v, want ErrPermissionDenied", err)
	}
	if err := s.BatchWrite(ctx, []Write{{Ref: ref, Value: item{}}}); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("BatchWrite = %v, want ErrPermissionDenied", err)
	}
}

func waitSnapshot(t *testing.T, ch <-chan Snapshot, cond func(Snapshot) bool) Snapshot {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case snap := <-ch:
			if cond(snap) {
				return snap
			}
		case <-deadline:
			t.Fatal("timed out waiting for snapshot")
			return Snapshot{}
		}
	}
}

func TestSubscribeDeliversInitialAndUpdates(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	ch := make(chan Snapshot, 16)
	unsub := s.Subscribe(Collection("items").OrderBy("order"), func(snap Snapshot) {
		ch <- snap
	}, func(err error) {
		t.Errorf("unexpected listener error: %v", err)
	})
	defer unsub()

	waitSnapshot(t, ch, func(snap Snapshot) bool { return snap.Empty() })

	if err := s.Set(ctx, Doc("items", "b"), item{ID: "b", Order: 2}); err != nil {
		t.Fatal(err)
	}
	if err := s.Set(ctx, Doc("items", "a"), item{ID: "a", Order: 1}); err != nil {
		t.Fatal(err)
	}
	snap := waitSnapshot(t, ch, func(snap Snapshot) bool { return len(snap.Docs) == 2 })
	if snap.Docs[0].ID != "a" {
		t.Errorf("ordered snapshot starts with %q, want a", snap.Docs[0].ID)
	}

	if err := s.Delete(ctx, Doc("items", "a")); err != nil {
		t.Fatal(err)
	}
	waitSnapshot(t, ch, func(snap Snapshot) bool { return len(snap.Docs) == 1 })
}

func TestSubscribeIgnoresOtherCollections(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	ch := make(chan Snapshot, 16)
	unsub := s.Subscribe(Collection("items"), func(snap Snapshot) { ch <- snap }, nil)
	defer unsub()
	waitSnapshot(t, ch, func(Snapshot) bool { return true })

	if err := s.Set(ctx, Doc("other", "x"), item{ID: "x"}); err != nil {
		t.Fatal(err)
	}
	select {
	case snap := <-ch:
		t.Fatalf("unexpected snapshot with %d docs", len(snap.Docs))
	case <-time.After(150 * time.Millisecond):
	}
}

func TestSubscribeDoc(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	ch := make(chan DocSnapshot, 16)
	unsub := s.SubscribeDoc(Doc("settings", "profile"), func(snap DocSnapshot) { ch <- snap }, nil)
	defer unsub()

	first := <-ch
	if first.Exists {
		t.Fatal("profile should not exist yet")
	}
	if err := s.Set(ctx, Doc("settings", "profile"), map[string]string{"name": "Galo"}); err != nil {
		t.Fatal(err)
	}
	deadline := time.After(3 * time.Second)
	for {
		select {
		case snap := <-ch:
			if !snap.Exists {
				continue
			}
			var got map[string]string
			if err := snap.DataTo(&got); err != nil {
				t.Fatal(err)
			}
			if got["name"] != "Galo" {
				t.Fatalf("name = %q", got["name"])
			}
			return
		case <-deadline:
			t.Fatal("timed out waiting for profile")
		}
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	ch := make(chan Snapshot, 16)
	unsub := s.Subscribe(Collection("items"), func(snap Snapshot) { ch <- snap }, nil)
	<-ch
	unsub()

	if err := s.Set(ctx, Doc("items", "a"), item{ID: "a"}); err != nil {
		t.Fatal(err)
	}
	select {
	case <-ch:
		t.Fatal("received snapshot after unsubscribe")
	case <-time.After(150 * time.Millisecond):
	}
}

func TestListenerErrorStopsListener(t *testing.T) {
	s := setupTestStore(t)

	snaps := make(chan Snapshot, 4)
	errs := make(chan error, 4)
	s.Subscribe(Collection("items"), func(snap Snapshot) { snaps <- snap }, func(err error) { errs <- err })
	<-snaps

	if _, err := s.db.Exec(`DROP TABLE documents`); err != nil {
		t.Fatal(err)
	}
	s.notify("items")

	select {
	case err := <-errs:
		if err == nil {
			t.Fatal("expected a read error")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for listener error")
	}

	s.mu.Lock()
	n := len(s.listeners["items"])
	s.mu.Unlock()
	if n != 0 {
		t.Fatalf("failed listener still registered (%d)", n)
	}
}
