package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// CodeSource provides the event codes discovered for a category and action.
type CodeSource interface {
	LoadCodes(category Category, action Action) ([]EventID, error)
}

// CounterSink persists the counter of one (category, billing, action).
type CounterSink interface {
	SaveCounter(category Category, billing Billing, action Action, counter Counter) error
}

// Runner performs category passes: load codes, tally, persist both counters.
type Runner struct {
	Codes    CodeSource
	Counters CounterSink
	Fetcher  Fetcher
	Options  TallyOptions
	// AfterPass is called after every successful pass when set.
	AfterPass func(ctx context.Context, category Category, action Action)
}

func (r Runner) sources(category Category, action Action) ([]Source, error) {
	codes := map[Category][]EventID{}

	extras, err := r.Codes.LoadCodes(Extras, action)
	if err != nil {
		return nil, fmt.Errorf("load %s %s codes: %w", Extras, action, err)
	}
	codes[Extras] = extras

	if category == Ballet {
		ballet, err := r.Codes.LoadCodes(Ballet, action)
		if err != nil {
			return nil, fmt.Errorf("load %s %s codes: %w", Ballet, action, err)
		}
		codes[Ballet] = ballet
	}

	return Sources(category, codes), nil
}

// Run tallies one category and action and writes its primary and secondary
// counters. Nothing is written when the tally fails.
func (r Runner) Run(ctx context.Context, category Category, action Action) error {
	ctx, span := tracer.Start(ctx, "Runner.Run")
	defer span.End()
	span.SetAttributes(
		attribute.String("category", string(category)),
		attribute.String("action", string(action)),
	)

	sources, err := r.sources(category, action)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to load codes")
		return err
	}

	start := time.Now()
	slog.InfoContext(ctx, "starting pass", "category", category, "action", action)

	tally, err := TallyCategory(ctx, sources, r.Fetcher, r.Options)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to tally")
		return fmt.Errorf("%s %s pass: %w", category, action, err)
	}
	tally.DropEmpty()

	err = r.Counters.SaveCounter(category, Primary, action, tally.Primary)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to save counter")
		return fmt.Errorf("save %s %s %s counter: %w", category, Primary, action, err)
	}
	err = r.Counters.SaveCounter(category, Secondary, action, tally.Secondary)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to save counter")
		return fmt.Errorf(
			"save %s %s %s counter (the %s counter was already written): %w",
			category, Secondary, action, Primary, err,
		)
	}

	slog.InfoContext(
		ctx, "finished pass",
		"category", category,
		"action", action,
		"primary", len(tally.Primary),
		"secondary", len(tally.Secondary),
		"seconds", time.Since(start).Seconds(),
	)
	if r.AfterPass != nil {
		r.AfterPass(ctx, category, action)
	}
	return nil
}

// RunAll runs every category and action, stopping at the first failure.
func (r Runner) RunAll(ctx context.Context) error {
	for _, category := range Categories {
		for _, action := range Actions {
			err := r.Run(ctx, category, action)
			if err != nil {
				return err
			}
		}
	}
	return nil
}
