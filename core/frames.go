package core

import (
	"errors"
	"fmt"

	"github.com/signalsfoundry/heliosheet/model"
)

// KilometersPerAU converts kilometres to astronomical units. Every
// unit conversion in the repository goes through this one constant.
const KilometersPerAU = 149597870.7

// DefaultEarthOffset places the GSE origin one AU down the +X axis of
// the heliocentric scene frame. Scene assembly substitutes an
// ephemeris-derived offset when one is available.
var DefaultEarthOffset = model.Vec3{X: 1, Y: 0, Z: 0}

var (
	// ErrUnsupportedFrame reports a position whose frame tag this
	// package cannot reconcile.
	ErrUnsupportedFrame = errors.New("unsupported frame")
	// ErrUnsupportedUnit reports a position whose unit tag this
	// package cannot reconcile.
	ErrUnsupportedUnit = errors.New("unsupported unit")
)

// Reconcile converts p into the scene frame: heliocentric coordinates
// in AU. Unit conversion happens strictly before any frame shift, so a
// GSE position in kilometres becomes an AU offset from Earth first and
// is only then translated by frameOffset (the GSE origin in
// heliocentric AU). A position already in the scene frame passes
// through unchanged, epoch included.
//
// The input is never mutated. Unknown tags fail with
// ErrUnsupportedFrame or ErrUnsupportedUnit before any arithmetic.
func Reconcile(p model.Position, frameOffset model.Vec3) (model.Position, error) {
	out := p

	switch p.Unit {
	case model.UnitAU:
	case model.UnitKilometer:
		out.Vec = model.Vec3{
			X: p.Vec.X / KilometersPerAU,
			Y: p.Vec.Y / KilometersPerAU,
			Z: p.Vec.Z / KilometersPerAU,
		}
		out.Unit = model.UnitAU
	default:
		return model.Position{}, fmt.Errorf("%w: %s", ErrUnsupportedUnit, p.Unit)
	}

	switch p.Frame {
	case model.FrameHeliocentric:
	case model.FrameGSE:
		out.Vec = out.Vec.Add(frameOffset)
		out.Frame = model.FrameHeliocentric
	default:
		return model.Position{}, fmt.Errorf("%w: %s", ErrUnsupportedFrame, p.Frame)
	}

	return out, nil
}
