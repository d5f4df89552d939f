package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"mariinsky-counter/internal/components/telemetry"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("mariinsky.internal.attendance")
var meter = otel.Meter("mariinsky.internal.attendance")
var eventsCounter, _ = meter.Int64Counter("events_processed")

// Fetcher returns the flat list of participant table cells of one event as
// seen from the given category's page.
type Fetcher interface {
	EventCells(ctx context.Context, category Category, id EventID) ([]string, error)
}

// Tally accumulates appearances per person for one (category, action) pass.
type Tally struct {
	Primary   Counter
	Secondary Counter
}

func NewTally() Tally {
	return Tally{
		Primary:   Counter{},
		Secondary: Counter{},
	}
}

// Overflow returns the secondary names that are not also primary in the same
// event, a person billed in both is counted as primary only.
func Overflow(primary, secondary NameSet) NameSet {
	out := NameSet{}
	for name := range secondary {
		if !primary.Has(name) {
			out.Add(name)
		}
	}
	return out
}

// Add counts one event's participants, applying Overflow first.
func (t Tally) Add(primary, secondary NameSet) {
	for name := range primary {
		t.Primary.Increment(name)
	}
	for name := range Overflow(primary, secondary) {
		t.Secondary.Increment(name)
	}
}

// DropEmpty removes the empty name that blank table cells produce.
func (t Tally) DropEmpty() {
	delete(t.Primary, "")
	delete(t.Secondary, "")
}

// Source is a set of events to be fetched from one category's page.
type Source struct {
	Category Category
	IDs      []EventID
}

// Sources builds the fetch plan for a category pass. Ballet counts its own
// events and the extras events (where ballet dancers are also listed), each
// fetched from its own page. Extras only counts extras events.
func Sources(category Category, codes map[Category][]EventID) []Source {
	if category == Ballet {
		return []Source{
			{Category: Ballet, IDs: codes[Ballet]},
			{Category: Extras, IDs: codes[Extras]},
		}
	}
	return []Source{{Category: Extras, IDs: codes[Extras]}}
}

type TallyOptions struct {
	// SkipRoles defaults to DefaultSkipRoles when nil.
	SkipRoles []string
	// Concurrency is the maximum number of events fetched at once, defaults to 1.
	Concurrency int
	// A random delay in [MinDelay, MaxDelay] is waited before every fetch to
	// go easy on the portal.
	MinDelay time.Duration
	MaxDelay time.Duration
	// Telemetry defaults to SlogAPI.
	Telemetry telemetry.API
}

func (o TallyOptions) skipRoles() []string {
	if o.SkipRoles == nil {
		return DefaultSkipRoles
	}
	return o.SkipRoles
}

func (o TallyOptions) concurrency() int {
	if o.Concurrency < 1 {
		return 1
	}
	return o.Concurrency
}

func (o TallyOptions) telemetry() telemetry.API {
	if o.Telemetry == nil {
		return telemetry.SlogAPI{}
	}
	return o.Telemetry
}

func (o TallyOptions) delay() time.Duration {
	if o.MaxDelay <= o.MinDelay {
		return o.MinDelay
	}
	return o.MinDelay + rand.N(o.MaxDelay-o.MinDelay+1)
}

func (o TallyOptions) wait(ctx context.Context) error {
	delay := o.delay()
	if delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type tallyJob struct {
	category Category
	id       EventID
}

// TallyCategory fetches and counts every event of every source. An event id
// listed in two sources is fetched and counted once per source.
//
// The result does not depend on the order events are processed in. The first
// fetch or parse error stops the pass and no partial tally is returned.
func TallyCategory(ctx context.Context, sources []Source, fetcher Fetcher, opts TallyOptions) (Tally, error) {
	ctx, span := tracer.Start(ctx, "TallyCategory")
	defer span.End()

	var jobs []tallyJob
	for _, source := range sources {
		for _, id := range source.IDs {
			jobs = append(jobs, tallyJob{category: source.Category, id: id})
		}
	}
	span.SetAttributes(attribute.Int("events", len(jobs)))

	tel := opts.telemetry()
	skipRoles := opts.skipRoles()
	result := NewTally()
	var resultLock sync.Mutex
	var processed atomic.Int64

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(opts.concurrency())
	for _, job := range jobs {
		group.Go(func() error {
			err := opts.wait(groupCtx)
			if err != nil {
				return err
			}

			cells, err := fetcher.EventCells(groupCtx, job.category, job.id)
			if err != nil {
				tel.ReportBroken("tally.fetch", string(job.category), string(job.id), err)
				return fmt.Errorf("fetch %s event %s: %w", job.category, job.id, err)
			}
			primary, secondary, err := ParseTable(cells, skipRoles)
			if err != nil {
				tel.ReportBroken("tally.parse", string(job.category), string(job.id), err)
				return fmt.Errorf("parse %s event %s: %w", job.category, job.id, err)
			}

			resultLock.Lock()
			result.Add(primary, secondary)
			resultLock.Unlock()

			eventsCounter.Add(groupCtx, 1, metric.WithAttributes(
				attribute.String("category", string(job.category)),
			))
			n := processed.Add(1)
			tel.ReportCount("tally.events", n)
			slog.DebugContext(
				groupCtx, "counted event",
				"category", job.category,
				"event", job.id,
				"primary", len(primary),
				"secondary", len(secondary),
				"progress", fmt.Sprintf("%d/%d", n, len(jobs)),
			)
			return nil
		})
	}

	err := group.Wait()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "tally failed")
		return Tally{}, err
	}

	return result, nil
}
