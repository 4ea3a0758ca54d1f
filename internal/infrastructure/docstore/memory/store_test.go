package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/JuanCGomezS/polla-club/internal/infrastructure/docstore"
)

func TestStore_SetGetUpdate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore()

	if err := store.Set(ctx, "groups/g1", map[string]any{"name": "Mundial", "isActive": true}); err != nil {
		t.Fatalf("set: %v", err)
	}

	doc, found, err := store.Get(ctx, "groups/g1")
	if err != nil || !found {
		t.Fatalf("get: found=%v err=%v", found, err)
	}
	if doc.Fields["name"] != "Mundial" {
		t.Fatalf("name: got=%v", doc.Fields["name"])
	}

	if err := store.Update(ctx, "groups/g1", map[string]any{"name": "Mundial 2026"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	doc, _, _ = store.Get(ctx, "groups/g1")
	if doc.Fields["name"] != "Mundial 2026" || doc.Fields["isActive"] != true {
		t.Fatalf("after update: %+v", doc.Fields)
	}

	if err := store.Update(ctx, "groups/missing", map[string]any{"x": 1}); err == nil {
		t.Fatal("expected error updating missing document")
	}
}

func TestStore_GetReturnsCopy(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore()
	_ = store.Set(ctx, "users/u1", map[string]any{"groups": []string{"g1"}})

	doc, _, _ := store.Get(ctx, "users/u1")
	doc.Fields["groups"].([]string)[0] = "mutated"

	fresh, _, _ := store.Get(ctx, "users/u1")
	if fresh.Fields["groups"].([]string)[0] != "g1" {
		t.Fatal("stored document was mutated through a read snapshot")
	}
}

func TestStore_QueryFilters(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore()

	_ = store.Set(ctx, "groups/g1/predictions/p1", map[string]any{"userId": "u1", "matchId": "m1"})
	_ = store.Set(ctx, "groups/g1/predictions/p2", map[string]any{"userId": "u2", "matchId": "m1"})
	_ = store.Set(ctx, "groups/g1/predictions/p3", map[string]any{"userId": "u1", "matchId": "m2"})
	_ = store.Set(ctx, "groups/g2/predictions/p4", map[string]any{"userId": "u1", "matchId": "m1"})

	docs, err := store.Query(ctx, "groups/g1/predictions", []docstore.Filter{
		docstore.Where("userId", docstore.OpEqual, "u1"),
		docstore.Where("matchId", docstore.OpEqual, "m1"),
	}, "")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(docs) != 1 || docs[0].ID() != "p1" {
		t.Fatalf("query result: %+v", docs)
	}
}

func TestStore_QueryArrayContainsAndOrder(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore()

	kickoff := time.Date(2026, 6, 14, 18, 0, 0, 0, time.UTC)
	_ = store.Set(ctx, "groups/g1", map[string]any{"participants": []string{"u1", "u2"}})
	_ = store.Set(ctx, "groups/g2", map[string]any{"participants": []string{"u3"}})
	_ = store.Set(ctx, "competitions/c1/matches/m1", map[string]any{"scheduledTime": kickoff.Add(time.Hour)})
	_ = store.Set(ctx, "competitions/c1/matches/m2", map[string]any{"scheduledTime": kickoff})

	groups, err := store.Query(ctx, "groups", []docstore.Filter{
		docstore.Where("participants", docstore.OpArrayContains, "u2"),
	}, "")
	if err != nil {
		t.Fatalf("query groups: %v", err)
	}
	if len(groups) != 1 || groups[0].ID() != "g1" {
		t.Fatalf("array-contains result: %+v", groups)
	}

	matches, err := store.Query(ctx, "competitions/c1/matches", nil, "scheduledTime")
	if err != nil {
		t.Fatalf("query matches: %v", err)
	}
	if len(matches) != 2 || matches[0].ID() != "m2" {
		t.Fatalf("ordered result: %+v", matches)
	}
}

func TestStore_BatchCommitLimit(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore()

	writes := make([]docstore.Write, docstore.MaxBatchSize+1)
	for i := range writes {
		writes[i] = docstore.Write{
			Kind:   docstore.WriteSet,
			Path:   fmt.Sprintf("users/u%d", i),
			Fields: map[string]any{"displayName": "x"},
		}
	}

	if err := store.BatchCommit(ctx, writes); !errors.Is(err, docstore.ErrBatchTooLarge) {
		t.Fatalf("expected ErrBatchTooLarge, got %v", err)
	}

	if err := docstore.CommitInChunks(ctx, store, writes); err != nil {
		t.Fatalf("chunked commit: %v", err)
	}
	docs, _ := store.Query(ctx, "users", nil, "")
	if len(docs) != docstore.MaxBatchSize+1 {
		t.Fatalf("documents after chunked commit: got=%d", len(docs))
	}
}

func TestStore_SubscribeDeliversSnapshots(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore()
	_ = store.Set(ctx, "groups/g1/predictions/p1", map[string]any{"userId": "u1"})

	sub, err := store.Subscribe(ctx, "groups/g1/predictions", nil)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer sub.Close()

	initial := waitForSnapshot(t, sub)
	if len(initial) != 1 {
		t.Fatalf("initial snapshot: got=%d docs", len(initial))
	}

	_ = store.Set(ctx, "groups/g1/predictions/p2", map[string]any{"userId": "u2"})
	next := waitForSnapshot(t, sub)
	if len(next) != 2 {
		t.Fatalf("snapshot after write: got=%d docs", len(next))
	}

	// Writes to other collections do not wake this subscription.
	_ = store.Set(ctx, "users/u9", map[string]any{"displayName": "x"})
	select {
	case docs, ok := <-sub.Updates():
		if ok {
			t.Fatalf("unexpected snapshot: %+v", docs)
		}
	case <-time.After(50 * time.Millisecond):
	}
}

func waitForSnapshot(t *testing.T, sub docstore.Subscription) []docstore.Document {
	t.Helper()
	select {
	case docs, ok := <-sub.Updates():
		if !ok {
			t.Fatal("subscription closed unexpectedly")
		}
		return docs
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for snapshot")
		return nil
	}
}
