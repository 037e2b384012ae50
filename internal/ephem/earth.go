package ephem

import (
	"fmt"
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/planetposition"

	"github.com/signalsfoundry/heliosheet/core"
	"github.com/signalsfoundry/heliosheet/model"
)

// EarthProvider yields the heliocentric position of Earth in AU, used
// as the GSE frame origin when assembling scenes.
type EarthProvider interface {
	EarthOffset(epoch time.Time) (model.Vec3, error)
}

// FixedEarth places Earth on the +X axis at 1 AU regardless of epoch.
type FixedEarth struct{}

// EarthOffset implements EarthProvider.
func (FixedEarth) EarthOffset(time.Time) (model.Vec3, error) {
	return core.DefaultEarthOffset, nil
}

// VSOP87Earth computes Earth's heliocentric position from the VSOP87
// series, read from disk once at construction.
type VSOP87Earth struct {
	planet *planetposition.V87Planet
}

// NewVSOP87Earth loads the Earth series from dir, which must hold the
// VSOP87B data files.
func NewVSOP87Earth(dir string) (*VSOP87Earth, error) {
	planet, err := planetposition.LoadPlanetPath(planetposition.Earth, dir)
	if err != nil {
		return nil, fmt.Errorf("load VSOP87 earth series: %w", err)
	}
	return &VSOP87Earth{planet: planet}, nil
}

// EarthOffset implements EarthProvider. The spherical L, B, R returned
// by the series convert directly to ecliptic Cartesian AU.
func (p *VSOP87Earth) EarthOffset(epoch time.Time) (model.Vec3, error) {
	if epoch.IsZero() {
		epoch = time.Now()
	}
	l, b, r := p.planet.Position2000(julian.TimeToJD(epoch.UTC()))

	sinB, cosB := math.Sincos(b.Rad())
	sinL, cosL := math.Sincos(l.Rad())
	return model.Vec3{
		X: r * cosB * cosL,
		Y: r * cosB * sinL,
		Z: r * sinB,
	}, nil
}
