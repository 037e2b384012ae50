package core

import (
	"fmt"
	"math"
	"time"

	"github.com/signalsfoundry/heliosheet/model"
)

// SceneSpacecraft is one spacecraft reconciled into the scene frame.
type SceneSpacecraft struct {
	ID       string
	Name     string
	Source   model.EphemerisSource
	Position model.Position
	// Arc is an optional sampled trail around the scene epoch,
	// reconciled the same way as Position.
	Arc []model.Position
}

// SpacecraftPoint pairs a catalog entry with its raw fetched position,
// awaiting reconciliation.
type SpacecraftPoint struct {
	Definition model.SpacecraftDefinition
	Position   model.Position
	Arc        []model.Position
}

// SceneInput carries everything scene assembly reconciles and lays
// out.
type SceneInput struct {
	Epoch      time.Time
	Parameters model.SpiralParameters
	// Model computes the sheet; nil leaves the scene without one.
	Model SurfaceModel
	// EarthOffset locates the GSE origin in heliocentric AU. The
	// zero vector selects DefaultEarthOffset.
	EarthOffset model.Vec3
	Points      []SpacecraftPoint
}

// Scene is everything an external renderer needs for one frame.
type Scene struct {
	Epoch      time.Time
	Parameters model.SpiralParameters
	ModelName  string

	// Sun is the scene origin; Earth is the GSE origin used during
	// reconciliation. Both in heliocentric AU.
	Sun   model.Vec3
	Earth model.Vec3

	Spacecraft []SceneSpacecraft

	// Surface is nil when the scene was assembled without a sheet.
	Surface *model.SpiralSurface
	// FieldMin and FieldMax bound the field grid. Renderers use them
	// as the limits of a log-scaled colormap.
	FieldMin float64
	FieldMax float64
}

// BuildScene reconciles every spacecraft point into the scene frame,
// computes the sheet when a model is given, and derives the field
// color bounds. It fails on the first position that cannot be
// reconciled rather than emitting a partial scene.
func BuildScene(input SceneInput) (*Scene, error) {
	offset := input.EarthOffset
	if offset == (model.Vec3{}) {
		offset = DefaultEarthOffset
	}

	scene := &Scene{
		Epoch:      input.Epoch,
		Parameters: input.Parameters,
		Earth:      offset,
	}

	for _, pt := range input.Points {
		rec, err := Reconcile(pt.Position, offset)
		if err != nil {
			return nil, fmt.Errorf("reconcile %s: %w", pt.Definition.ID, err)
		}
		sc := SceneSpacecraft{
			ID:       pt.Definition.ID,
			Name:     pt.Definition.Name,
			Source:   pt.Definition.Source,
			Position: rec,
		}
		for _, raw := range pt.Arc {
			p, err := Reconcile(raw, offset)
			if err != nil {
				return nil, fmt.Errorf("reconcile %s arc: %w", pt.Definition.ID, err)
			}
			sc.Arc = append(sc.Arc, p)
		}
		scene.Spacecraft = append(scene.Spacecraft, sc)
	}

	if input.Model != nil {
		surface, err := input.Model.Compute(input.Parameters)
		if err != nil {
			return nil, err
		}
		scene.ModelName = input.Model.Name()
		scene.Surface = surface
		scene.FieldMin, scene.FieldMax = gridBounds(surface.Field)
	}

	return scene, nil
}

func gridBounds(g *model.Grid) (lo, hi float64) {
	rows, cols := g.Dims()
	lo, hi = math.Inf(1), math.Inf(-1)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v := g.At(i, j)
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
	}
	return lo, hi
}
