// Package ephem resolves spacecraft positions from their catalogued
// sources: JPL Horizons state vectors, CDAWeb orbit datasets, or
// offline TLE propagation. Every position leaves this package tagged
// with the frame and unit it is expressed in.
package ephem

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/signalsfoundry/heliosheet/internal/logging"
	"github.com/signalsfoundry/heliosheet/internal/observability"
	"github.com/signalsfoundry/heliosheet/model"
	"github.com/signalsfoundry/heliosheet/timewindow"
)

var (
	// ErrUnavailable reports a spacecraft no configured source can
	// serve.
	ErrUnavailable = errors.New("no ephemeris source for spacecraft")
	// ErrNoData reports an upstream answer with no usable records.
	ErrNoData = errors.New("no ephemeris data")
	// ErrUpstream reports a transport or protocol failure talking to
	// an upstream service.
	ErrUpstream = errors.New("upstream ephemeris failure")
)

// Source resolves positions for spacecraft whose definitions name it.
type Source interface {
	// Name returns the source name for display and metric labels.
	Name() string
	// Available reports whether this source can serve def.
	Available(def model.SpacecraftDefinition) bool
	// Fetch returns the position of def at epoch, tagged with the
	// definition's frame and unit.
	Fetch(ctx context.Context, def model.SpacecraftDefinition, epoch time.Time) (model.Position, error)
	// FetchArc samples positions across a window, oldest first.
	FetchArc(ctx context.Context, def model.SpacecraftDefinition, w timewindow.Window) ([]model.Position, error)
}

// Resolver fans each definition out to the first source that can serve
// it, recording fetch metrics and logs along the way.
type Resolver struct {
	sources   []Source
	log       logging.Logger
	collector *observability.EphemCollector
}

// NewResolver builds a resolver over the given sources, tried in
// order. Logger and collector may be nil.
func NewResolver(log logging.Logger, collector *observability.EphemCollector, sources ...Source) *Resolver {
	if log == nil {
		log = logging.Noop()
	}
	return &Resolver{sources: sources, log: log, collector: collector}
}

// Fetch resolves the position of def at epoch.
func (r *Resolver) Fetch(ctx context.Context, def model.SpacecraftDefinition, epoch time.Time) (model.Position, error) {
	src, err := r.sourceFor(def)
	if err != nil {
		return model.Position{}, err
	}

	start := time.Now()
	pos, err := src.Fetch(ctx, def, epoch)
	r.observe(src.Name(), def.ID, err, time.Since(start))
	if err != nil {
		r.log.Warn(ctx, "ephemeris fetch failed",
			logging.String("source", src.Name()),
			logging.String("spacecraft", def.ID),
			logging.Err(err),
		)
		return model.Position{}, err
	}

	r.log.Debug(ctx, "ephemeris fetch",
		logging.String("source", src.Name()),
		logging.String("spacecraft", def.ID),
		logging.Time("epoch", pos.Epoch),
	)
	return pos, nil
}

// FetchArc resolves a sampled trajectory arc for def across w.
func (r *Resolver) FetchArc(ctx context.Context, def model.SpacecraftDefinition, w timewindow.Window) ([]model.Position, error) {
	src, err := r.sourceFor(def)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	arc, err := src.FetchArc(ctx, def, w)
	r.observe(src.Name(), def.ID, err, time.Since(start))
	if err != nil {
		r.log.Warn(ctx, "ephemeris arc fetch failed",
			logging.String("source", src.Name()),
			logging.String("spacecraft", def.ID),
			logging.Err(err),
		)
		return nil, err
	}
	return arc, nil
}

func (r *Resolver) sourceFor(def model.SpacecraftDefinition) (Source, error) {
	for _, src := range r.sources {
		if src.Available(def) {
			return src, nil
		}
	}
	return nil, fmt.Errorf("%w: %q (source %s)", ErrUnavailable, def.ID, def.Source)
}

func (r *Resolver) observe(source, spacecraft string, err error, d time.Duration) {
	outcome := observability.OutcomeOK
	if err != nil {
		outcome = observability.OutcomeError
	}
	r.collector.ObserveFetch(source, spacecraft, outcome, d)
}
