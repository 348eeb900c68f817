package memstore

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/lorekeep/lorekeep-research/internal/model"
	"github.com/lorekeep/lorekeep-research/internal/store"
	"github.com/lorekeep/lorekeep-research/internal/store/storetest"
)

func TestMemstoreCompliance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		return New(zerolog.Nop())
	})
}

// Two concurrent Store calls on one session must both land: no turn may be
// lost and readers must never see a half-merged context.
func TestConcurrentStoresLoseNothing(t *testing.T) {
	s := New(zerolog.Nop())
	ctx := context.Background()
	id, err := s.Create(ctx)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	const writers = 8
	const perWriter = 50

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				data := model.TurnData{
					Query: fmt.Sprintf("writer-%d-turn-%d", w, i),
					Extra: map[string]any{fmt.Sprintf("k%d", w): i},
				}
				if err := s.Store(ctx, id, data); err != nil {
					t.Errorf("Store: %v", err)
					return
				}
			}
		}(w)
	}
	// Concurrent readers must always observe a consistent snapshot.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			if _, err := s.Retrieve(ctx, id); err != nil {
				t.Errorf("Retrieve during writes: %v", err)
				return
			}
		}
	}()
	wg.Wait()
	<-done

	turns, err := s.History(ctx, id, 0)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(turns) != writers*perWriter {
		t.Fatalf("lost turns under concurrency: got %d, want %d", len(turns), writers*perWriter)
	}
}

// The snapshot returned by Retrieve must be detached from stored state.
func TestRetrieveReturnsDetachedSnapshot(t *testing.T) {
	s := New(zerolog.Nop())
	ctx := context.Background()
	id, _ := s.Create(ctx)

	srcs := []model.Source{{Title: "a", URL: "https://a.test", Snippet: "x", SourceDomain: "a.test"}}
	if err := s.Store(ctx, id, model.TurnData{Query: "q", Sources: srcs, Plan: model.DefaultPlan("q")}); err != nil {
		t.Fatalf("Store: %v", err)
	}

	cx, err := s.Retrieve(ctx, id)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	cx.Query = "mutated"
	cx.Sources[0].Title = "mutated"
	cx.Plan.Strategy = "mutated"

	again, err := s.Retrieve(ctx, id)
	if err != nil {
		t.Fatalf("Retrieve again: %v", err)
	}
	if again.Query != "q" || again.Sources[0].Title != "a" || again.Plan.Strategy != "comprehensive web research" {
		t.Fatalf("stored state mutated through snapshot: %+v", again)
	}
}

func TestLastAccessedAdvancesOnReadAndWrite(t *testing.T) {
	s := New(zerolog.Nop())
	ctx := context.Background()

	tick := int64(0)
	s.now = func() time.Time {
		tick++
		return time.Unix(tick, 0)
	}

	id, _ := s.Create(ctx)
	created := lastAccessed(t, s, ctx, id)

	_ = s.Store(ctx, id, model.TurnData{Query: "q"})
	afterWrite := lastAccessed(t, s, ctx, id)
	if !afterWrite.After(created) {
		t.Fatalf("Store did not advance last-accessed: %v vs %v", afterWrite, created)
	}

	if _, err := s.Retrieve(ctx, id); err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	afterRead := lastAccessed(t, s, ctx, id)
	if !afterRead.After(afterWrite) {
		t.Fatalf("Retrieve did not advance last-accessed: %v vs %v", afterRead, afterWrite)
	}
}

func lastAccessed(t *testing.T, s *Store, ctx context.Context, id string) time.Time {
	t.Helper()
	rows, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	for _, r := range rows {
		if r.ID == id {
			return r.LastAccessedAt
		}
	}
	t.Fatalf("session %s not listed", id)
	return time.Time{}
}
