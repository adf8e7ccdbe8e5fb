// Package resolver discovers and ranks the candidate models a run will
// try, in order. It owns identifier normalization: every name it emits
// is bare, without the "models/" prefix the listing endpoint uses.
package resolver

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"mealbot/internal/gemini"
)

// generateMethod is the operation the orchestrator calls downstream;
// models that do not declare it are useless to us.
const generateMethod = "generateContent"

// families are the ranking keywords, highest priority first. Within a
// family the listing's relative order is preserved (stable partition,
// not a sort).
var families = []string{"flash", "pro"}

// ModelLister is the capability-listing side of the provider client.
type ModelLister interface {
	ListModels(ctx context.Context) ([]gemini.Model, error)
}

type Resolver struct {
	lister   ModelLister
	fallback []string
	log      zerolog.Logger
}

func New(lister ModelLister, fallback []string, log zerolog.Logger) *Resolver {
	return &Resolver{lister: lister, fallback: fallback, log: log}
}

// Resolve returns the ranked candidate list. It never returns an empty
// slice: a failed or useless listing falls back to the static list, and
// that is logged rather than escalated.
func (r *Resolver) Resolve(ctx context.Context) []string {
	models, err := r.lister.ListModels(ctx)
	if err != nil {
		r.log.Warn().Err(err).Msg("model listing failed, using fallback candidates")
		return r.fallback
	}

	names := make([]string, 0, len(models))
	for _, m := range models {
		if !m.Supports(generateMethod) {
			continue
		}
		names = append(names, Normalize(m.Name))
	}
	if len(names) == 0 {
		r.log.Warn().Msg("model listing had no usable entries, using fallback candidates")
		return r.fallback
	}

	ranked := rank(names)
	r.log.Debug().Strs("candidates", ranked).Msg("candidates resolved")
	return ranked
}

// Normalize strips the listing's "models/" prefix so every downstream
// consumer sees one identifier form.
func Normalize(name string) string {
	return strings.TrimPrefix(name, "models/")
}

// rank orders names by keyword family: for each family in priority
// order, take the stable (non-experimental) members in their original
// relative order, then append everything not yet taken, again in
// original order. A multi-pass stable partition, deliberately not a
// comparator sort.
func rank(names []string) []string {
	out := make([]string, 0, len(names))
	taken := make([]bool, len(names))

	for _, family := range families {
		for i, n := range names {
			if taken[i] {
				continue
			}
			if !strings.Contains(n, family) || experimental(n) {
				continue
			}
			out = append(out, n)
			taken[i] = true
		}
	}
	for i, n := range names {
		if !taken[i] {
			out = append(out, n)
		}
	}
	return out
}

func experimental(name string) bool {
	return strings.Contains(name, "exp") || strings.Contains(name, "preview")
}
