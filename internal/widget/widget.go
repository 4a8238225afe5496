// Package widget holds the per-instance weather lookup state: a loading flag and
// the latest merged weather report, written only by the fetch routines.
package widget

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/alexivanou/weather-widget/internal/model"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const geocodeLimit = 1

// ErrMissingDewPoint is returned when the one-call snapshot has no current dew point
var ErrMissingDewPoint = errors.New("one-call response has no current dew point")

// CityNotFoundError is returned when geocoding yields no usable match
type CityNotFoundError struct {
	City string
}

func (e *CityNotFoundError) Error() string {
	return fmt.Sprintf("city %s does not exist in OpenWeather API", e.City)
}

// Client is the subset of the OpenWeatherMap API the widget uses
type Client interface {
	Geocode(ctx context.Context, city string, limit int) ([]model.CityInfo, error)
	CurrentWeather(ctx context.Context, lat, lon float64) (*model.WeatherReport, error)
	OneCall(ctx context.Context, lat, lon float64) (*model.OneCallSnapshot, error)
}

// Recorder receives the outcome of each FetchReport call
type Recorder interface {
	RecordFetch(err error)
}

// Options tunes a widget
type Options struct {
	// ParallelFetch issues the current weather and one-call requests concurrently
	ParallelFetch bool
	Recorder      Recorder
}

// State is a snapshot of the widget's observable fields
type State struct {
	Loading bool
	Report  *model.WeatherReport
}

// Widget owns the loading flag and the current report.
// Reports handed out are never modified after they are published.
type Widget struct {
	client Client
	logger *zap.Logger
	opts   Options

	mu          sync.RWMutex
	loading     bool
	report      *model.WeatherReport
	subscribers map[int]chan State
	nextSubID   int
}

// New creates a widget with an idle, empty state
func New(client Client, logger *zap.Logger, opts Options) *Widget {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Widget{
		client:      client,
		logger:      logger,
		opts:        opts,
		subscribers: make(map[int]chan State),
	}
}

// Loading reports whether a FetchReport call is in flight
func (w *Widget) Loading() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.loading
}

// Report returns the current report or nil
func (w *Widget) Report() *model.WeatherReport {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.report
}

// State returns both observable fields at once
func (w *Widget) State() State {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return State{Loading: w.loading, Report: w.report}
}

// Subscribe returns a channel that always holds the most recent state after a
// write. Slow readers skip intermediate states. Call cancel to stop receiving.
func (w *Widget) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)

	w.mu.Lock()
	id := w.nextSubID
	w.nextSubID++
	w.subscribers[id] = ch
	w.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			w.mu.Lock()
			delete(w.subscribers, id)
			w.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// FetchReport looks up city and publishes its report. Errors are logged and
// swallowed; a nil Report afterwards means the lookup failed. Overlapping calls
// are not sequenced and the last one to finish wins.
func (w *Widget) FetchReport(ctx context.Context, city string) {
	fetchID := uuid.New().String()
	logger := w.logger.With(zap.String("fetch_id", fetchID), zap.String("city", city))

	ctx, span := otel.Tracer("weather-widget").Start(ctx, "widget.FetchReport")
	defer span.End()
	span.SetAttributes(attribute.String("city", city), attribute.String("fetch_id", fetchID))

	w.set(func() {
		w.loading = true
		w.report = nil
	})
	defer w.set(func() { w.loading = false })

	report, err := w.fetch(ctx, city)
	if w.opts.Recorder != nil {
		w.opts.Recorder.RecordFetch(err)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		logger.Error("Failed to fetch weather report", zap.Error(err))
		return
	}

	w.set(func() { w.report = report })
	logger.Debug("Fetched weather report",
		zap.Float64("temp", report.Main.Temp),
		zap.Float64("dew_point", *report.Main.DewPoint),
	)
}

// FetchReportByCoord fetches and publishes the report for a coordinate. Unlike
// FetchReport it returns errors to the caller and leaves the loading flag alone.
// On failure the current report is kept as is.
func (w *Widget) FetchReportByCoord(ctx context.Context, lat, lon float64) error {
	report, err := w.fetchByCoord(ctx, lat, lon)
	if err != nil {
		return err
	}
	w.set(func() { w.report = report })
	return nil
}

func (w *Widget) fetch(ctx context.Context, city string) (*model.WeatherReport, error) {
	matches, err := w.client.Geocode(ctx, city, geocodeLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to geocode %q: %w", city, err)
	}
	if len(matches) == 0 || !matches[0].HasCoordinates() {
		return nil, &CityNotFoundError{City: city}
	}

	info := matches[0]
	return w.fetchByCoord(ctx, *info.Lat, *info.Lon)
}

// fetchByCoord returns a complete report or an error; nothing is published here
func (w *Widget) fetchByCoord(ctx context.Context, lat, lon float64) (*model.WeatherReport, error) {
	var (
		report   *model.WeatherReport
		snapshot *model.OneCallSnapshot
	)

	current := func(ctx context.Context) error {
		r, err := w.client.CurrentWeather(ctx, lat, lon)
		if err != nil {
			return fmt.Errorf("failed to fetch current weather: %w", err)
		}
		report = r
		return nil
	}
	oneCall := func(ctx context.Context) error {
		s, err := w.client.OneCall(ctx, lat, lon)
		if err != nil {
			return fmt.Errorf("failed to fetch one-call snapshot: %w", err)
		}
		snapshot = s
		return nil
	}

	if w.opts.ParallelFetch {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return current(gctx) })
		g.Go(func() error { return oneCall(gctx) })
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		if err := current(ctx); err != nil {
			return nil, err
		}
		if err := oneCall(ctx); err != nil {
			return nil, err
		}
	}

	if snapshot.Current == nil || snapshot.Current.DewPoint == nil {
		return nil, ErrMissingDewPoint
	}
	dewPoint := *snapshot.Current.DewPoint
	report.Main.DewPoint = &dewPoint
	return report, nil
}

// set applies a state change under the lock and notifies subscribers
func (w *Widget) set(change func()) {
	w.mu.Lock()
	defer w.mu.Unlock()

	change()
	state := State{Loading: w.loading, Report: w.report}
	for _, ch := range w.subscribers {
		select {
		case <-ch:
		default:
		}
		ch <- state
	}
}
