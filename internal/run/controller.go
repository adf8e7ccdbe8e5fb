// Package run composes the pipeline: history in, gate, resolve,
// generate, dispatch, history out. It is the only place where side
// effects are ordered across components.
package run

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"mealbot/internal/config"
	"mealbot/internal/gate"
	"mealbot/internal/history"
	"mealbot/internal/prompt"
)

// Status is the run outcome the process exit path maps to an exit code.
type Status int

const (
	StatusSent Status = iota
	StatusSkipped
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusSent:
		return "sent"
	case StatusSkipped:
		return "skipped"
	default:
		return "failed"
	}
}

type Resolver interface {
	Resolve(ctx context.Context) []string
}

type Generator interface {
	Generate(ctx context.Context, candidates []string, prompt string) (string, error)
}

type Dispatcher interface {
	Dispatch(ctx context.Context, text string) error
}

// Deps carries everything the controller composes. Now is overridable
// so tests can pin the calendar.
type Deps struct {
	Config     *config.Config
	Store      *history.Store
	Resolver   Resolver
	Generator  Generator
	Dispatcher Dispatcher
	Now        func() time.Time
	Log        zerolog.Logger
}

type Controller struct {
	deps Deps
}

func New(deps Deps) *Controller {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Controller{deps: deps}
}

// Run performs one full pipeline pass. History is persisted only after
// the whole message was delivered; any earlier failure leaves the file
// exactly as the previous run wrote it.
func (c *Controller) Run(ctx context.Context) (Status, error) {
	d := c.deps
	now := d.Now()
	today := history.DateKey(now)

	st := d.Store.Load()
	st = history.Prune(st, d.Config.RetentionDays, now)

	if !gate.ShouldRun(st, now, d.Config.ActiveDays) {
		d.Log.Info().Str("date", today).Str("last_sent", st.LastSent).Msg("gate closed, skipping run")
		return StatusSkipped, nil
	}

	candidates := d.Resolver.Resolve(ctx)
	d.Log.Info().Int("candidates", len(candidates)).Msg("generating meal plan")

	body, err := d.Generator.Generate(ctx, candidates, prompt.MealPlan(history.Recent(st, d.Config.HistoryWindow)))
	if err != nil {
		return StatusFailed, fmt.Errorf("generate: %w", err)
	}

	if err := d.Dispatcher.Dispatch(ctx, prompt.Header(now)+"\n\n"+body); err != nil {
		return StatusFailed, fmt.Errorf("dispatch: %w", err)
	}

	rec := history.Record{Date: today, Meals: prompt.Labels(body)}
	st, err = history.Append(st, rec)
	if err != nil {
		return StatusFailed, fmt.Errorf("record history: %w", err)
	}
	if err := d.Store.Save(st); err != nil {
		// Content was already delivered; failing here forces a look at
		// the storage fault before the next run double-sends.
		return StatusFailed, fmt.Errorf("save history: %w", err)
	}

	d.Log.Info().Str("date", rec.Date).Strs("meals", rec.Meals).Msg("meal plan sent")
	return StatusSent, nil
}
