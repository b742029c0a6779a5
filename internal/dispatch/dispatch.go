// Package dispatch maps validated intents onto parameterized database
// aggregates. Each intent resolves to exactly one round trip.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/luckysmouk/vidlytics/internal/catalog"
	"github.com/luckysmouk/vidlytics/internal/dates"
)

// ExecutionError reports a database failure while running an aggregate.
// The failed method is kept for diagnostics; the raw cause is wrapped.
type ExecutionError struct {
	Method string
	Err    error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("executing %s: %v", e.Method, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// MetricsStore is the aggregate surface the dispatcher needs.
// Implemented by store.Store.
type MetricsStore interface {
	TotalVideos(ctx context.Context) (int64, error)
	CreatorVideosInRange(ctx context.Context, creatorID string, start, end time.Time) (int64, error)
	VideosWithViewsOver(ctx context.Context, threshold int64) (int64, error)
	ViewsGrowthOnDate(ctx context.Context, day time.Time) (int64, error)
	VideosWithNewViewsOnDate(ctx context.Context, day time.Time) (int64, error)
}

// Dispatcher executes validated intents. Textual date parameters are
// resolved to calendar values here, after classification: a model that
// echoes the question's date form verbatim cannot be trusted to also
// normalize it.
type Dispatcher struct {
	store MetricsStore
	dates *dates.Resolver
	log   *slog.Logger
}

func New(log *slog.Logger, store MetricsStore, dateResolver *dates.Resolver) *Dispatcher {
	return &Dispatcher{
		store: store,
		dates: dateResolver,
		log:   log.With("component", "dispatch"),
	}
}

// Execute runs the aggregate behind the intent and returns its scalar.
// Date parsing errors pass through untouched; database failures come
// back as ExecutionError.
func (d *Dispatcher) Execute(ctx context.Context, intent catalog.Intent) (int64, error) {
	start := time.Now()

	val, err := d.execute(ctx, intent)
	if err != nil {
		return 0, err
	}

	d.log.Debug("intent executed",
		"method", intent.Method(),
		"value", val,
		"duration", time.Since(start))
	return val, nil
}

func (d *Dispatcher) execute(ctx context.Context, intent catalog.Intent) (int64, error) {
	switch it := intent.(type) {
	case catalog.TotalVideosCount:
		val, err := d.store.TotalVideos(ctx)
		if err != nil {
			return 0, &ExecutionError{Method: it.Method(), Err: err}
		}
		return val, nil

	case catalog.CreatorVideosInPeriod:
		period, err := d.dates.ParseRange(it.PeriodText)
		if err != nil {
			return 0, err
		}
		val, err := d.store.CreatorVideosInRange(ctx, it.CreatorID, period.Start.Time(), period.End.Time())
		if err != nil {
			return 0, &ExecutionError{Method: it.Method(), Err: err}
		}
		return val, nil

	case catalog.VideosWithViewsMoreThan:
		val, err := d.store.VideosWithViewsOver(ctx, it.Threshold)
		if err != nil {
			return 0, &ExecutionError{Method: it.Method(), Err: err}
		}
		return val, nil

	case catalog.ViewsGrowthOnDate:
		day, err := d.dates.ParseDate(it.DateText)
		if err != nil {
			return 0, err
		}
		val, err := d.store.ViewsGrowthOnDate(ctx, day.Time())
		if err != nil {
			return 0, &ExecutionError{Method: it.Method(), Err: err}
		}
		return val, nil

	case catalog.VideosWithNewViewsOnDate:
		day, err := d.dates.ParseDate(it.DateText)
		if err != nil {
			return 0, err
		}
		val, err := d.store.VideosWithNewViewsOnDate(ctx, day.Time())
		if err != nil {
			return 0, &ExecutionError{Method: it.Method(), Err: err}
		}
		return val, nil

	default:
		return 0, &catalog.UnknownIntentError{Method: intent.Method()}
	}
}
