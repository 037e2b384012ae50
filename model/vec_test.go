package model

import (
	"math"
	"testing"
)

func TestVec3Norm(t *testing.T) {
	v := Vec3{X: 3, Y: 4, Z: 12}
	if got := v.Norm(); got != 13 {
		t.Errorf("Norm() = %v, want 13", got)
	}
}

func TestVec3AddSubScale(t *testing.T) {
	a := Vec3{X: 1, Y: -2, Z: 3}
	b := Vec3{X: 0.5, Y: 2, Z: -1}

	if got := a.Add(b); got != (Vec3{X: 1.5, Y: 0, Z: 2}) {
		t.Errorf("Add = %v", got)
	}
	if got := a.Sub(b); got != (Vec3{X: 0.5, Y: -4, Z: 4}) {
		t.Errorf("Sub = %v", got)
	}
	if got := a.Scale(2); got != (Vec3{X: 2, Y: -4, Z: 6}) {
		t.Errorf("Scale = %v", got)
	}
}

func TestVec3DistanceTo(t *testing.T) {
	a := Vec3{X: 1, Y: 1, Z: 1}
	b := Vec3{X: 1, Y: 1, Z: 1}
	if got := a.DistanceTo(b); got != 0 {
		t.Errorf("distance between identical points = %v, want 0", got)
	}

	c := Vec3{X: 2, Y: 3, Z: 1}
	want := math.Sqrt(5)
	if got := a.DistanceTo(c); math.Abs(got-want) > 1e-12 {
		t.Errorf("DistanceTo = %v, want %v", got, want)
	}
}

func TestGridShapeAndIndexing(t *testing.T) {
	g := NewGrid(3, 5)
	rows, cols := g.Dims()
	if rows != 3 || cols != 5 {
		t.Fatalf("Dims() = (%d,%d), want (3,5)", rows, cols)
	}

	g.Set(2, 4, 7.5)
	if got := g.At(2, 4); got != 7.5 {
		t.Errorf("At(2,4) = %v, want 7.5", got)
	}
	if got := g.At(0, 0); got != 0 {
		t.Errorf("At(0,0) = %v, want 0", got)
	}
}

func TestGridOutOfRangePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on out-of-range access")
		}
	}()
	g := NewGrid(2, 2)
	g.At(2, 0)
}

func TestNewSpiralSurfaceAlignedShapes(t *testing.T) {
	s := NewSpiralSurface(4, 9)
	nPhi, nR := s.Dims()
	if nPhi != 4 || nR != 9 {
		t.Fatalf("Dims() = (%d,%d), want (4,9)", nPhi, nR)
	}
	for _, g := range []*Grid{s.X, s.Y, s.Z, s.Field} {
		r, c := g.Dims()
		if r != 4 || c != 9 {
			t.Errorf("grid shape (%d,%d), want (4,9)", r, c)
		}
	}
}

func TestFrameAndUnitStrings(t *testing.T) {
	if FrameHeliocentric.String() != "heliocentric" || FrameGSE.String() != "gse" {
		t.Errorf("unexpected frame names: %s, %s", FrameHeliocentric, FrameGSE)
	}
	if UnitAU.String() != "au" || UnitKilometer.String() != "km" {
		t.Errorf("unexpected unit names: %s, %s", UnitAU, UnitKilometer)
	}
	if FrameUnknown == FrameGSE || UnitUnknown == UnitAU {
		t.Fatalf("zero values must not collide with valid tags")
	}
}

func TestDefaultSpiralParameters(t *testing.T) {
	p := DefaultSpiralParameters()
	if p.TiltDeg != 10.0 || p.AmplitudeDeg != 15.0 {
		t.Errorf("angles = (%v, %v), want (10, 15)", p.TiltDeg, p.AmplitudeDeg)
	}
	if p.RotationPeriodDays != 25.4 || p.WindSpeedKmS != 400.0 {
		t.Errorf("rotation/wind = (%v, %v), want (25.4, 400)", p.RotationPeriodDays, p.WindSpeedKmS)
	}
	if p.RMinAU != 0.1 || p.RMaxAU != 1.5 {
		t.Errorf("radial extent = [%v, %v], want [0.1, 1.5]", p.RMinAU, p.RMaxAU)
	}
	if p.NPhi != 100 || p.NR != 100 {
		t.Errorf("grid = %dx%d, want 100x100", p.NPhi, p.NR)
	}
}
