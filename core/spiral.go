package core

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/signalsfoundry/heliosheet/model"
)

const secondsPerDay = 86400.0

// ErrInvalidParameter reports a parameter set no surface model can
// compute from.
var ErrInvalidParameter = errors.New("invalid parameter")

// SurfaceModel computes a current-sheet surface from a parameter set.
type SurfaceModel interface {
	// Name identifies the model in APIs, logs and exports.
	Name() string
	// Compute builds the surface grids. Implementations validate
	// parameters before allocating anything and never return a
	// partial surface.
	Compute(params model.SpiralParameters) (*model.SpiralSurface, error)
}

// SurfaceModelByName resolves a model by its wire name. The empty
// string selects the production Parker model.
func SurfaceModelByName(name string) (SurfaceModel, error) {
	switch name {
	case "", "parker":
		return ParkerModel{}, nil
	case "ripple":
		return RippleModel{}, nil
	default:
		return nil, fmt.Errorf("%w: surface model %q", ErrInvalidParameter, name)
	}
}

// ComputeSpiralSurface builds the sheet with the production Parker
// model.
func ComputeSpiralSurface(params model.SpiralParameters) (*model.SpiralSurface, error) {
	return ParkerModel{}.Compute(params)
}

// ParkerModel is the production sheet geometry: a tilted colatitude
// surface undulating twice per solar rotation, wound into an
// Archimedean spiral by the ratio of solar angular speed to wind
// speed, carrying an inverse-square field magnitude modulated by the
// winding.
type ParkerModel struct{}

// Name implements SurfaceModel.
func (ParkerModel) Name() string { return "parker" }

// Compute implements SurfaceModel.
func (ParkerModel) Compute(params model.SpiralParameters) (*model.SpiralSurface, error) {
	if err := validateParameters(params); err != nil {
		return nil, err
	}

	tilt := deg2rad(params.TiltDeg)
	amp := deg2rad(params.AmplitudeDeg)

	// Winding rate alpha in radians per AU: solar angular speed over
	// radial wind speed, both per day.
	omega := 2 * math.Pi / params.RotationPeriodDays
	windAUPerDay := params.WindSpeedKmS * secondsPerDay / KilometersPerAU
	alpha := omega / windAUPerDay

	rs := linspace(params.RMinAU, params.RMaxAU, params.NR)
	phis := linspace(0, 2*math.Pi, params.NPhi)

	b0 := fieldNormalization(tilt, alpha)

	surface := model.NewSpiralSurface(params.NPhi, params.NR)
	for i, phi := range phis {
		// Colatitude of the sheet at this azimuth. The twist below
		// does not move the sheet in latitude, so theta is fixed per
		// row.
		theta := math.Pi/2 - tilt + amp*math.Sin(2*phi)
		sinTheta, cosTheta := math.Sin(theta), math.Cos(theta)
		for j, r := range rs {
			// Azimuth wound back by the spiral, anchored so the
			// inner edge is untwisted.
			phiTwisted := phi + alpha*(r-params.RMinAU)
			surface.X.Set(i, j, r*sinTheta*math.Cos(phiTwisted))
			surface.Y.Set(i, j, r*sinTheta*math.Sin(phiTwisted))
			surface.Z.Set(i, j, r*cosTheta)
			surface.Field.Set(i, j, b0/(r*r)*math.Sqrt(1+alpha*alpha*r*r*sinTheta*sinTheta))
		}
	}
	return surface, nil
}

// fieldNormalization scales the field so an untilted sheet crosses
// r = 1 AU near unit magnitude. A display normalization, not a
// physical calibration.
func fieldNormalization(tilt, alpha float64) float64 {
	c := math.Cos(tilt)
	return 1 / math.Sqrt(1+alpha*alpha*c*c)
}

func validateParameters(p model.SpiralParameters) error {
	switch {
	case p.RotationPeriodDays <= 0:
		return fmt.Errorf("%w: rotation period %g days", ErrInvalidParameter, p.RotationPeriodDays)
	case p.WindSpeedKmS <= 0:
		return fmt.Errorf("%w: wind speed %g km/s", ErrInvalidParameter, p.WindSpeedKmS)
	case p.RMinAU <= 0:
		return fmt.Errorf("%w: inner radius %g AU", ErrInvalidParameter, p.RMinAU)
	case p.RMinAU >= p.RMaxAU:
		return fmt.Errorf("%w: radial extent [%g, %g] AU", ErrInvalidParameter, p.RMinAU, p.RMaxAU)
	case p.NPhi < 2 || p.NR < 2:
		return fmt.Errorf("%w: grid resolution %dx%d", ErrInvalidParameter, p.NPhi, p.NR)
	}
	return nil
}

func deg2rad(deg float64) float64 { return deg * math.Pi / 180 }

// linspace returns n evenly spaced samples over [lo, hi], endpoints
// included. Callers guarantee n >= 2 via validateParameters.
func linspace(lo, hi float64, n int) []float64 {
	return floats.Span(make([]float64, n), lo, hi)
}
