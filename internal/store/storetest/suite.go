// Package storetest holds a compliance suite any store.Store driver must
// pass. Drivers call Run from their own tests with a factory producing a
// clean, isolated store.
package storetest

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/lorekeep/lorekeep-research/internal/model"
	"github.com/lorekeep/lorekeep-research/internal/store"
)

// Run exercises the store contract against a fresh driver instance.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	ctx := context.Background()

	t.Run("CreateUniqueIDs", func(t *testing.T) {
		s := makeStore(t)
		seen := make(map[string]bool)
		for i := 0; i < 100; i++ {
			id, err := s.Create(ctx)
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
			if seen[id] {
				t.Fatalf("duplicate session id %s", id)
			}
			seen[id] = true
		}
	})

	t.Run("StoreAutoCreatesUnknownID", func(t *testing.T) {
		s := makeStore(t)
		id := "ghost-" + uuid.New().String()

		if err := s.Store(ctx, id, model.TurnData{Query: "what is mycorrhiza"}); err != nil {
			t.Fatalf("Store to unknown id: %v", err)
		}
		cx, err := s.Retrieve(ctx, id)
		if err != nil {
			t.Fatalf("Retrieve after auto-create: %v", err)
		}
		if cx.Query != "what is mycorrhiza" {
			t.Fatalf("context query = %q", cx.Query)
		}
		if cx.Plan != nil || cx.Sources != nil || cx.Report != nil {
			t.Fatalf("context carries fields that were never stored: %+v", cx)
		}
	})

	t.Run("RetrieveUnknownIsNotFound", func(t *testing.T) {
		s := makeStore(t)
		if _, err := s.Retrieve(ctx, "nope"); err != model.ErrNotFound {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("ContextMergesLatestWins", func(t *testing.T) {
		s := makeStore(t)
		id, _ := s.Create(ctx)

		plan := model.DefaultPlan("q1")
		if err := s.Store(ctx, id, model.TurnData{Query: "q1", Plan: plan}); err != nil {
			t.Fatalf("Store1: %v", err)
		}
		srcs := []model.Source{{Title: "t", URL: "https://a.test/x", Snippet: "s", SourceDomain: "a.test"}}
		if err := s.Store(ctx, id, model.TurnData{Query: "q2", Sources: srcs}); err != nil {
			t.Fatalf("Store2: %v", err)
		}

		cx, err := s.Retrieve(ctx, id)
		if err != nil {
			t.Fatalf("Retrieve: %v", err)
		}
		if cx.Query != "q2" {
			t.Fatalf("later query should win, got %q", cx.Query)
		}
		if cx.Plan == nil || cx.Plan.Strategy != plan.Strategy {
			t.Fatalf("earlier plan should be preserved, got %+v", cx.Plan)
		}
		if len(cx.Sources) != 1 {
			t.Fatalf("sources missing from merged context: %+v", cx.Sources)
		}
	})

	t.Run("ExtraKeysAccumulate", func(t *testing.T) {
		s := makeStore(t)
		id, _ := s.Create(ctx)

		_ = s.Store(ctx, id, model.TurnData{Extra: map[string]any{"mode": "api", "lang": "en"}})
		_ = s.Store(ctx, id, model.TurnData{Extra: map[string]any{"mode": "cli"}})

		cx, err := s.Retrieve(ctx, id)
		if err != nil {
			t.Fatalf("Retrieve: %v", err)
		}
		if cx.Extra["mode"] != "cli" || cx.Extra["lang"] != "en" {
			t.Fatalf("extra merge wrong: %+v", cx.Extra)
		}
	})

	t.Run("HistoryLimitAndOrder", func(t *testing.T) {
		s := makeStore(t)
		id, _ := s.Create(ctx)
		for _, q := range []string{"q1", "q2", "q3", "q4"} {
			if err := s.Store(ctx, id, model.TurnData{Query: q}); err != nil {
				t.Fatalf("Store %s: %v", q, err)
			}
		}

		turns, err := s.History(ctx, id, 2)
		if err != nil {
			t.Fatalf("History: %v", err)
		}
		if len(turns) != 2 {
			t.Fatalf("limit not honored, got %d turns", len(turns))
		}
		if turns[0].Query != "q3" || turns[1].Query != "q4" {
			t.Fatalf("expected [q3 q4], got [%s %s]", turns[0].Query, turns[1].Query)
		}

		all, err := s.History(ctx, id, 10)
		if err != nil || len(all) != 4 {
			t.Fatalf("History all: n=%d err=%v", len(all), err)
		}

		none, err := s.History(ctx, "unknown", 5)
		if err != nil || len(none) != 0 {
			t.Fatalf("History for unknown id should be empty, n=%d err=%v", len(none), err)
		}
	})

	t.Run("QueriesOrderAndLeniency", func(t *testing.T) {
		s := makeStore(t)
		id, _ := s.Create(ctx)
		_ = s.Store(ctx, id, model.TurnData{Query: "first"})
		_ = s.Store(ctx, id, model.TurnData{Report: model.EmptySourceReport()}) // no query field
		_ = s.Store(ctx, id, model.TurnData{Query: "second"})

		qs, err := s.Queries(ctx, id)
		if err != nil {
			t.Fatalf("Queries: %v", err)
		}
		if len(qs) != 2 || qs[0].Query != "first" || qs[1].Query != "second" {
			t.Fatalf("unexpected query records: %+v", qs)
		}

		none, err := s.Queries(ctx, "unknown")
		if err != nil || len(none) != 0 {
			t.Fatalf("Queries for unknown id should be empty, n=%d err=%v", len(none), err)
		}
	})

	t.Run("DeleteReturnsTrueExactlyOnce", func(t *testing.T) {
		s := makeStore(t)
		id, _ := s.Create(ctx)

		ok, err := s.Delete(ctx, id)
		if err != nil || !ok {
			t.Fatalf("first Delete: ok=%v err=%v", ok, err)
		}
		ok, err = s.Delete(ctx, id)
		if err != nil || ok {
			t.Fatalf("second Delete should report false: ok=%v err=%v", ok, err)
		}
		ok, err = s.Delete(ctx, "never-existed")
		if err != nil || ok {
			t.Fatalf("Delete of unknown id should report false: ok=%v err=%v", ok, err)
		}
		if _, err := s.Retrieve(ctx, id); err != model.ErrNotFound {
			t.Fatalf("Retrieve after Delete should be ErrNotFound, got %v", err)
		}
	})

	t.Run("ListSnapshot", func(t *testing.T) {
		s := makeStore(t)
		want := make(map[string]bool)
		for i := 0; i < 5; i++ {
			id, _ := s.Create(ctx)
			want[id] = true
		}
		_ = s.Store(ctx, firstKey(want), model.TurnData{Query: "q"})

		rows, err := s.List(ctx)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(rows) != 5 {
			t.Fatalf("expected 5 sessions, got %d", len(rows))
		}
		seen := make(map[string]bool)
		for _, r := range rows {
			if seen[r.ID] {
				t.Fatalf("session %s listed twice", r.ID)
			}
			seen[r.ID] = true
			if !want[r.ID] {
				t.Fatalf("unexpected session %s in listing", r.ID)
			}
		}
	})
}

func firstKey(m map[string]bool) string {
	for k := range m {
		return k
	}
	return ""
}
