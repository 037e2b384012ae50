package core

import (
	"math"

	"github.com/signalsfoundry/heliosheet/model"
)

// Ripple constants. The angular speed is the sidereal solar rotation
// in rad/s; the wave shape values were tuned by eye and are not
// physical.
const (
	rippleAngularSpeed  = 2.7e-6 // rad/s
	rippleWaveCount     = 4
	rippleWaveAmplitude = 0.05 // AU
	rippleRadialDecay   = 2.0  // 1/AU
)

// RippleModel is an experimental flat-disc variant kept behind the
// same interface: concentric waves whose phase follows the spiral
// winding angle, damped exponentially with radius. Its field grid is a
// plain inverse-square falloff normalized to 1 at the inner edge.
type RippleModel struct{}

// Name implements SurfaceModel.
func (RippleModel) Name() string { return "ripple" }

// Compute implements SurfaceModel.
func (RippleModel) Compute(params model.SpiralParameters) (*model.SpiralSurface, error) {
	if err := validateParameters(params); err != nil {
		return nil, err
	}

	rs := linspace(params.RMinAU, params.RMaxAU, params.NR)
	phis := linspace(0, 2*math.Pi, params.NPhi)

	surface := model.NewSpiralSurface(params.NPhi, params.NR)
	for j, r := range rs {
		// Winding phase a parcel accumulates being advected at the
		// wind speed from the Sun out to r. Negative: the spiral
		// trails the rotation.
		phase := -rippleAngularSpeed * (r * KilometersPerAU) / params.WindSpeedKmS
		z := rippleWaveAmplitude * math.Sin(rippleWaveCount*phase) * math.Exp(-rippleRadialDecay*r)
		falloff := (params.RMinAU / r) * (params.RMinAU / r)
		for i, phi := range phis {
			surface.X.Set(i, j, r*math.Cos(phi))
			surface.Y.Set(i, j, r*math.Sin(phi))
			surface.Z.Set(i, j, z)
			surface.Field.Set(i, j, falloff)
		}
	}
	return surface, nil
}
