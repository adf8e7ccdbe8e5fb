package resolver

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"mealbot/internal/gemini"
)

type fakeLister struct {
	models []gemini.Model
	err    error
}

func (f *fakeLister) ListModels(ctx context.Context) ([]gemini.Model, error) {
	return f.models, f.err
}

func model(name string, methods ...string) gemini.Model {
	return gemini.Model{Name: name, SupportedGenerationMethods: methods}
}

var fallback = []string{"gemini-2.0-flash", "gemini-pro"}

func TestRankingIsStableByFamily(t *testing.T) {
	lister := &fakeLister{models: []gemini.Model{
		model("models/gemini-pro", "generateContent"),
		model("models/gemini-1.5-flash", "generateContent"),
		model("models/gemini-2.0-flash", "generateContent"),
		model("models/other-x", "generateContent"),
	}}

	got := New(lister, fallback, zerolog.Nop()).Resolve(context.Background())
	want := []string{"gemini-1.5-flash", "gemini-2.0-flash", "gemini-pro", "other-x"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestExperimentalVariantsRankLast(t *testing.T) {
	lister := &fakeLister{models: []gemini.Model{
		model("models/gemini-2.0-flash-exp", "generateContent"),
		model("models/gemini-1.5-flash", "generateContent"),
		model("models/gemini-2.5-pro-preview", "generateContent"),
		model("models/gemini-1.5-pro", "generateContent"),
	}}

	got := New(lister, fallback, zerolog.Nop()).Resolve(context.Background())
	want := []string{"gemini-1.5-flash", "gemini-1.5-pro", "gemini-2.0-flash-exp", "gemini-2.5-pro-preview"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestFallbackOnListingError(t *testing.T) {
	lister := &fakeLister{err: errors.New("boom")}

	got := New(lister, fallback, zerolog.Nop()).Resolve(context.Background())
	if !reflect.DeepEqual(got, fallback) {
		t.Fatalf("expected fallback %v unchanged, got %v", fallback, got)
	}
}

func TestFallbackWhenNothingSupportsGeneration(t *testing.T) {
	lister := &fakeLister{models: []gemini.Model{
		model("models/embedding-001", "embedContent"),
		model("models/aqa", "generateAnswer"),
	}}

	got := New(lister, fallback, zerolog.Nop()).Resolve(context.Background())
	if !reflect.DeepEqual(got, fallback) {
		t.Fatalf("expected fallback %v, got %v", fallback, got)
	}
}

func TestResolveNeverEmpty(t *testing.T) {
	lister := &fakeLister{err: errors.New("transport down")}

	got := New(lister, fallback, zerolog.Nop()).Resolve(context.Background())
	if len(got) == 0 {
		t.Fatalf("resolve must never return an empty candidate list")
	}
}

func TestNormalizeStripsPrefixOnce(t *testing.T) {
	if got := Normalize("models/gemini-pro"); got != "gemini-pro" {
		t.Fatalf("expected gemini-pro, got %q", got)
	}
	if got := Normalize("gemini-pro"); got != "gemini-pro" {
		t.Fatalf("bare names must pass through, got %q", got)
	}
}
