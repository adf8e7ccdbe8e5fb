package history

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestPruneDropsOnlyExpiredAndKeepsOrder(t *testing.T) {
	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	st := State{
		Recipes: []Record{
			{Date: DateKey(now.AddDate(0, 0, -20)), Meals: []string{"old"}},
			{Date: DateKey(now.AddDate(0, 0, -14)), Meals: []string{"edge"}},
			{Date: DateKey(now.AddDate(0, 0, -3)), Meals: []string{"recent"}},
			{Date: DateKey(now), Meals: []string{"today"}},
		},
		LastSent: DateKey(now),
	}

	got := Prune(st, 14, now)
	want := []string{"edge", "recent", "today"}
	if len(got.Recipes) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(got.Recipes))
	}
	for i, w := range want {
		if got.Recipes[i].Meals[0] != w {
			t.Fatalf("record %d: expected %q, got %q", i, w, got.Recipes[i].Meals[0])
		}
	}
	if got.LastSent != st.LastSent {
		t.Fatalf("prune must not touch last_sent")
	}
}

func TestPruneIdempotent(t *testing.T) {
	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	st := State{Recipes: []Record{
		{Date: DateKey(now.AddDate(0, 0, -30))},
		{Date: DateKey(now.AddDate(0, 0, -1))},
	}}

	once := Prune(st, 14, now)
	twice := Prune(once, 14, now)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("pruning twice differs from pruning once: %+v vs %+v", once, twice)
	}
}

func TestPruneDropsUnparseableDates(t *testing.T) {
	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	st := State{Recipes: []Record{
		{Date: "not-a-date"},
		{Date: DateKey(now)},
	}}

	got := Prune(st, 14, now)
	if len(got.Recipes) != 1 || got.Recipes[0].Date != DateKey(now) {
		t.Fatalf("unexpected records after prune: %+v", got.Recipes)
	}
}

func TestAppendSetsLastSent(t *testing.T) {
	st := State{}
	rec := Record{Date: "2026-08-26", Meals: []string{"bolón de verde"}}

	got, err := Append(st, rec)
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if len(got.Recipes) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got.Recipes))
	}
	if got.LastSent != rec.Date {
		t.Fatalf("expected last_sent %q, got %q", rec.Date, got.LastSent)
	}
}

func TestAppendRejectsDuplicateDate(t *testing.T) {
	st := State{Recipes: []Record{{Date: "2026-08-26"}}, LastSent: "2026-08-26"}

	got, err := Append(st, Record{Date: "2026-08-26"})
	if err == nil {
		t.Fatalf("expected duplicate-date error")
	}
	if !reflect.DeepEqual(got, st) {
		t.Fatalf("state must be unchanged on rejected append")
	}
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "absent.json"), zerolog.Nop())
	st := s.Load()
	if len(st.Recipes) != 0 || st.LastSent != "" {
		t.Fatalf("expected empty state, got %+v", st)
	}
}

func TestLoadCorruptFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	if err := os.WriteFile(path, []byte("{nope"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	st := NewStore(path, zerolog.Nop()).Load()
	if len(st.Recipes) != 0 || st.LastSent != "" {
		t.Fatalf("expected empty state, got %+v", st)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.json")
	s := NewStore(path, zerolog.Nop())

	want := State{
		Recipes:  []Record{{Date: "2026-08-26", Meals: []string{"encebollado", "seco de pollo"}}},
		LastSent: "2026-08-26",
	}
	if err := s.Save(want); err != nil {
		t.Fatalf("save: %v", err)
	}

	got := s.Load()
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("round trip mismatch: %+v vs %+v", got, want)
	}
}

func TestRecentReturnsNewestWindowInOrder(t *testing.T) {
	st := State{Recipes: []Record{{Date: "a"}, {Date: "b"}, {Date: "c"}}}

	got := Recent(st, 2)
	if len(got) != 2 || got[0].Date != "b" || got[1].Date != "c" {
		t.Fatalf("unexpected recent window: %+v", got)
	}
	if len(Recent(st, 10)) != 3 {
		t.Fatalf("oversized window must clamp to all records")
	}
	if Recent(st, 0) != nil {
		t.Fatalf("zero window must be nil")
	}
}
