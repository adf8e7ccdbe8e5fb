// Package generator runs the candidate loop: try each ranked model in
// order, abandon a candidate on its first failure, first success wins.
package generator

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"mealbot/internal/gemini"
)

// Provider is the generation side of the upstream client.
type Provider interface {
	GenerateContent(ctx context.Context, model, prompt string) (string, error)
}

type Orchestrator struct {
	provider Provider
	pace     *rate.Limiter
	log      zerolog.Logger
}

// New builds an orchestrator that waits roughly delay between upstream
// attempts to avoid bursting the provider.
func New(provider Provider, delay time.Duration, log zerolog.Logger) *Orchestrator {
	lim := rate.Inf
	if delay > 0 {
		lim = rate.Every(delay)
	}
	return &Orchestrator{
		provider: provider,
		pace:     rate.NewLimiter(lim, 1),
		log:      log,
	}
}

// Generate makes one pass over the ranked candidates and returns the
// first successful payload. Each candidate gets exactly one attempt:
// identifier normalization lives in the resolver and the client, so
// there is no same-candidate name variation left worth retrying. There
// is no outer retry of the whole pass either; exhausting the list is
// terminal for this run, and the error wraps the last failure seen for
// diagnostics.
func (o *Orchestrator) Generate(ctx context.Context, candidates []string, prompt string) (string, error) {
	if len(candidates) == 0 {
		return "", fmt.Errorf("no candidates to try")
	}

	var lastErr error
	for _, cand := range candidates {
		if err := o.pace.Wait(ctx); err != nil {
			return "", err
		}

		text, err := o.provider.GenerateContent(ctx, cand, prompt)
		if err == nil {
			o.log.Info().Str("model", cand).Msg("generation succeeded")
			return text, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if gemini.IsQuota(err) {
			o.log.Warn().Str("model", cand).Err(err).Msg("quota exhausted, skipping candidate")
		} else {
			o.log.Warn().Str("model", cand).Err(err).Msg("generation failed, advancing")
		}
		lastErr = err
	}
	return "", fmt.Errorf("all candidates exhausted: %w", lastErr)
}
