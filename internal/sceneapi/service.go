// Package sceneapi serves assembled scenes over HTTP: reconciled
// spacecraft positions, the computed current sheet, and the catalog
// behind them.
package sceneapi

import (
	"context"
	"fmt"
	"time"

	"github.com/signalsfoundry/heliosheet/core"
	"github.com/signalsfoundry/heliosheet/internal/ephem"
	"github.com/signalsfoundry/heliosheet/internal/logging"
	"github.com/signalsfoundry/heliosheet/internal/observability"
	"github.com/signalsfoundry/heliosheet/kb"
	"github.com/signalsfoundry/heliosheet/model"
	"github.com/signalsfoundry/heliosheet/timewindow"
)

// arcSteps is how many samples a trajectory arc is cut into.
const arcSteps = 48

// ServiceConfig wires a Service together.
type ServiceConfig struct {
	Store    *kb.Store
	Resolver *ephem.Resolver
	// Earth locates the GSE origin; nil falls back to the fixed 1 AU
	// offset.
	Earth     ephem.EarthProvider
	Collector *observability.EphemCollector
	Log       logging.Logger
	// Defaults seeds scene requests that carry no overrides; the zero
	// value selects the stock parameter set.
	Defaults model.SpiralParameters
	// DefaultModel names the surface model used when a request names
	// none. Empty selects the production model.
	DefaultModel string
}

// Service assembles scenes from the catalog, the ephemeris resolver,
// and the surface models.
type Service struct {
	store        *kb.Store
	resolver     *ephem.Resolver
	earth        ephem.EarthProvider
	collector    *observability.EphemCollector
	log          logging.Logger
	defaults     model.SpiralParameters
	defaultModel string
}

// NewService builds a Service from cfg.
func NewService(cfg ServiceConfig) *Service {
	defaults := cfg.Defaults
	if defaults == (model.SpiralParameters{}) {
		defaults = model.DefaultSpiralParameters()
	}
	earth := cfg.Earth
	if earth == nil {
		earth = ephem.FixedEarth{}
	}
	log := cfg.Log
	if log == nil {
		log = logging.Noop()
	}
	return &Service{
		store:        cfg.Store,
		resolver:     cfg.Resolver,
		earth:        earth,
		collector:    cfg.Collector,
		log:          log,
		defaults:     defaults,
		defaultModel: cfg.DefaultModel,
	}
}

// Defaults returns the parameter set scenes start from.
func (s *Service) Defaults() model.SpiralParameters { return s.defaults }

// SceneRequest describes one scene to assemble.
type SceneRequest struct {
	// Epoch of the scene; zero means now.
	Epoch time.Time
	// SpacecraftIDs selects catalog entries; empty selects all.
	SpacecraftIDs []string
	Parameters    model.SpiralParameters
	// ModelName selects the sheet model. Empty uses the service
	// default; ModelNone skips the sheet entirely.
	ModelName string
	// IncludeArcs adds a sampled trail over ArcSpan ending at the
	// epoch for every spacecraft.
	IncludeArcs bool
	ArcSpan     time.Duration
}

// ModelNone requests a scene without a sheet surface.
const ModelNone = "none"

// DefaultArcSpan is the trail length used when a request asks for arcs
// without naming a span.
const DefaultArcSpan = 7 * 24 * time.Hour

// Scene assembles a full scene: spacecraft reconciled into
// heliocentric AU, Earth placed for the epoch, and the sheet computed
// unless disabled.
func (s *Service) Scene(ctx context.Context, req SceneRequest) (*core.Scene, error) {
	epoch := req.Epoch
	if epoch.IsZero() {
		epoch = time.Now()
	}
	epoch = epoch.UTC()
	if req.Parameters == (model.SpiralParameters{}) {
		req.Parameters = s.defaults
	}

	points, err := s.fetchPoints(ctx, req, epoch)
	if err != nil {
		return nil, err
	}

	offset, err := s.earth.EarthOffset(epoch)
	if err != nil {
		return nil, fmt.Errorf("earth offset: %w", err)
	}

	var surfaceModel core.SurfaceModel
	modelName := req.ModelName
	if modelName == "" {
		modelName = s.defaultModel
	}
	if modelName != ModelNone {
		m, err := core.SurfaceModelByName(modelName)
		if err != nil {
			return nil, err
		}
		surfaceModel = timedModel{SurfaceModel: m, collector: s.collector}
	}

	ctx, span := StartChildSpan(ctx, "scene/build", "model", modelName)
	defer span.End()

	scene, err := core.BuildScene(core.SceneInput{
		Epoch:       epoch,
		Parameters:  req.Parameters,
		Model:       surfaceModel,
		EarthOffset: offset,
		Points:      points,
	})
	if err != nil {
		return nil, err
	}

	s.collector.IncScenes()
	s.log.Info(ctx, "scene assembled",
		logging.Time("epoch", epoch),
		logging.Int("spacecraft", len(scene.Spacecraft)),
		logging.String("model", scene.ModelName),
	)
	return scene, nil
}

// Surface computes a sheet surface without any spacecraft.
func (s *Service) Surface(ctx context.Context, modelName string, params model.SpiralParameters) (*model.SpiralSurface, string, error) {
	if modelName == "" {
		modelName = s.defaultModel
	}
	m, err := core.SurfaceModelByName(modelName)
	if err != nil {
		return nil, "", err
	}

	_, span := StartChildSpan(ctx, "surface/compute", "model", m.Name())
	defer span.End()

	start := time.Now()
	surface, err := m.Compute(params)
	if err != nil {
		return nil, "", err
	}
	s.collector.ObserveCompute(m.Name(), time.Since(start))
	return surface, m.Name(), nil
}

// fetchPoints resolves every requested spacecraft through the catalog
// and the ephemeris resolver, recording fetched positions back into
// the store.
func (s *Service) fetchPoints(ctx context.Context, req SceneRequest, epoch time.Time) ([]core.SpacecraftPoint, error) {
	var defs []model.SpacecraftDefinition
	if len(req.SpacecraftIDs) == 0 {
		defs = s.store.ListSpacecraft()
	} else {
		for _, id := range req.SpacecraftIDs {
			def, err := s.store.Spacecraft(id)
			if err != nil {
				return nil, err
			}
			defs = append(defs, def)
		}
	}

	points := make([]core.SpacecraftPoint, 0, len(defs))
	for _, def := range defs {
		point, err := s.fetchPoint(ctx, req, def, epoch)
		if err != nil {
			return nil, err
		}
		points = append(points, point)
	}
	return points, nil
}

// fetchPoint resolves one spacecraft at epoch and records the fetched
// position in the store.
func (s *Service) fetchPoint(ctx context.Context, req SceneRequest, def model.SpacecraftDefinition, epoch time.Time) (core.SpacecraftPoint, error) {
	ctx, span := StartChildSpan(ctx, "ephemeris/fetch", "spacecraft", def.ID)
	defer span.End()

	pos, err := s.resolver.Fetch(ctx, def, epoch)
	if err != nil {
		return core.SpacecraftPoint{}, fmt.Errorf("fetch %s: %w", def.ID, err)
	}
	if err := s.store.SetPosition(def.ID, pos); err != nil {
		s.log.Warn(ctx, "failed to record position",
			logging.String("spacecraft", def.ID), logging.Err(err))
	}

	point := core.SpacecraftPoint{Definition: def, Position: pos}
	if req.IncludeArcs {
		arc, err := s.fetchArc(ctx, def, epoch, req.ArcSpan)
		if err != nil {
			return core.SpacecraftPoint{}, fmt.Errorf("fetch %s arc: %w", def.ID, err)
		}
		point.Arc = arc
	}
	return point, nil
}

func (s *Service) fetchArc(ctx context.Context, def model.SpacecraftDefinition, epoch time.Time, span time.Duration) ([]model.Position, error) {
	if span <= 0 {
		span = DefaultArcSpan
	}
	w, err := timewindow.New(epoch.Add(-span), epoch, span/arcSteps)
	if err != nil {
		return nil, err
	}
	return s.resolver.FetchArc(ctx, def, w)
}

// timedModel wraps a surface model with compute-duration metrics.
type timedModel struct {
	core.SurfaceModel
	collector *observability.EphemCollector
}

func (m timedModel) Compute(params model.SpiralParameters) (*model.SpiralSurface, error) {
	start := time.Now()
	surface, err := m.SurfaceModel.Compute(params)
	if err != nil {
		return nil, err
	}
	m.collector.ObserveCompute(m.Name(), time.Since(start))
	return surface, nil
}
