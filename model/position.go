package model

import (
	"fmt"
	"time"
)

// Frame identifies the reference frame a position is expressed in.
type Frame int

const (
	FrameUnknown      Frame = iota
	FrameHeliocentric       // Sun-centred ecliptic, the scene frame
	FrameGSE                // Geocentric Solar Ecliptic
)

func (f Frame) String() string {
	switch f {
	case FrameHeliocentric:
		return "heliocentric"
	case FrameGSE:
		return "gse"
	default:
		return fmt.Sprintf("frame(%d)", int(f))
	}
}

// Unit identifies the length unit of a position vector.
type Unit int

const (
	UnitUnknown   Unit = iota
	UnitAU             // astronomical units
	UnitKilometer      // kilometres
)

func (u Unit) String() string {
	switch u {
	case UnitAU:
		return "au"
	case UnitKilometer:
		return "km"
	default:
		return fmt.Sprintf("unit(%d)", int(u))
	}
}

// Position is a frame- and unit-tagged point sampled at Epoch. The zero
// values of Frame and Unit are deliberately invalid so an untagged
// position cannot slip through reconciliation.
//
// Positions are immutable by convention: operations return copies.
type Position struct {
	Vec   Vec3
	Frame Frame
	Unit  Unit
	Epoch time.Time
}

func (p Position) String() string {
	return fmt.Sprintf("(%g, %g, %g) %s %s", p.Vec.X, p.Vec.Y, p.Vec.Z, p.Unit, p.Frame)
}
