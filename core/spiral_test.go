package core

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"

	"github.com/signalsfoundry/heliosheet/model"
)

func TestParkerGridShapesMatch(t *testing.T) {
	params := model.DefaultSpiralParameters()
	params.NPhi = 17
	params.NR = 31

	surface, err := ComputeSpiralSurface(params)
	if err != nil {
		t.Fatalf("ComputeSpiralSurface: %v", err)
	}

	for _, g := range []*model.Grid{surface.X, surface.Y, surface.Z, surface.Field} {
		rows, cols := g.Dims()
		if rows != 17 || cols != 31 {
			t.Errorf("grid shape (%d,%d), want (17,31)", rows, cols)
		}
	}
}

func TestParkerNoTwistAtInnerEdge(t *testing.T) {
	params := model.DefaultSpiralParameters()
	surface, err := ComputeSpiralSurface(params)
	if err != nil {
		t.Fatalf("ComputeSpiralSurface: %v", err)
	}

	// Row 0 is azimuth 0; column 0 is the inner edge where the
	// winding is anchored. Untwisted azimuth 0 means y = 0 and the
	// point sits in the xz-plane at radius RMinAU.
	theta := math.Pi/2 - deg2rad(params.TiltDeg)
	if got := surface.Y.At(0, 0); got != 0 {
		t.Errorf("Y at inner anchor = %v, want exactly 0", got)
	}
	if got, want := surface.X.At(0, 0), params.RMinAU*math.Sin(theta); !scalar.EqualWithinAbs(got, want, tol) {
		t.Errorf("X at inner anchor = %v, want %v", got, want)
	}
	if got, want := surface.Z.At(0, 0), params.RMinAU*math.Cos(theta); !scalar.EqualWithinAbs(got, want, tol) {
		t.Errorf("Z at inner anchor = %v, want %v", got, want)
	}
}

func TestParkerFieldPositive(t *testing.T) {
	surface, err := ComputeSpiralSurface(model.DefaultSpiralParameters())
	if err != nil {
		t.Fatalf("ComputeSpiralSurface: %v", err)
	}

	rows, cols := surface.Field.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if v := surface.Field.At(i, j); v <= 0 || math.IsNaN(v) {
				t.Fatalf("field at (%d,%d) = %v, want > 0", i, j, v)
			}
		}
	}
}

func TestParkerRadialExtent(t *testing.T) {
	params := model.DefaultSpiralParameters()
	surface, err := ComputeSpiralSurface(params)
	if err != nil {
		t.Fatalf("ComputeSpiralSurface: %v", err)
	}

	_, cols := surface.X.Dims()
	for _, probe := range []struct {
		col  int
		want float64
	}{
		{0, params.RMinAU},
		{cols - 1, params.RMaxAU},
	} {
		v := model.Vec3{
			X: surface.X.At(0, probe.col),
			Y: surface.Y.At(0, probe.col),
			Z: surface.Z.At(0, probe.col),
		}
		if got := v.Norm(); !scalar.EqualWithinAbs(got, probe.want, 1e-9) {
			t.Errorf("radius at column %d = %v, want %v", probe.col, got, probe.want)
		}
	}
}

// Regression anchor: for an untilted, flat sheet the field at r = 1 AU
// must equal b0 * sqrt(1 + alpha^2), the equatorial winding-modulated
// inverse square law evaluated at the normalization radius.
func TestParkerFieldAnchorAtOneAU(t *testing.T) {
	params := model.DefaultSpiralParameters()
	params.TiltDeg = 0
	params.AmplitudeDeg = 0
	params.RMinAU = 0.5
	params.RMaxAU = 1.5
	params.NPhi = 2
	params.NR = 3 // columns at 0.5, 1.0, 1.5 AU

	surface, err := ComputeSpiralSurface(params)
	if err != nil {
		t.Fatalf("ComputeSpiralSurface: %v", err)
	}

	omega := 2 * math.Pi / params.RotationPeriodDays
	windAUPerDay := params.WindSpeedKmS * secondsPerDay / KilometersPerAU
	alpha := omega / windAUPerDay
	b0 := 1 / math.Sqrt(1+alpha*alpha)
	want := b0 * math.Sqrt(1+alpha*alpha)

	if got := surface.Field.At(0, 1); !scalar.EqualWithinAbs(got, want, tol) {
		t.Errorf("field at r=1 = %v, want %v", got, want)
	}
}

func TestComputeRejectsInvalidParameters(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*model.SpiralParameters)
	}{
		{"zero wind speed", func(p *model.SpiralParameters) { p.WindSpeedKmS = 0 }},
		{"negative wind speed", func(p *model.SpiralParameters) { p.WindSpeedKmS = -400 }},
		{"zero rotation period", func(p *model.SpiralParameters) { p.RotationPeriodDays = 0 }},
		{"zero inner radius", func(p *model.SpiralParameters) { p.RMinAU = 0 }},
		{"inverted radial extent", func(p *model.SpiralParameters) { p.RMinAU, p.RMaxAU = 1.5, 0.1 }},
		{"equal radial bounds", func(p *model.SpiralParameters) { p.RMinAU, p.RMaxAU = 1.0, 1.0 }},
		{"degenerate grid", func(p *model.SpiralParameters) { p.NPhi = 1 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			params := model.DefaultSpiralParameters()
			tc.mutate(&params)

			surface, err := ComputeSpiralSurface(params)
			if !errors.Is(err, ErrInvalidParameter) {
				t.Fatalf("err = %v, want ErrInvalidParameter", err)
			}
			if surface != nil {
				t.Fatalf("surface returned alongside error")
			}
		})
	}
}

func TestSurfaceModelByName(t *testing.T) {
	for name, want := range map[string]string{
		"":       "parker",
		"parker": "parker",
		"ripple": "ripple",
	} {
		m, err := SurfaceModelByName(name)
		if err != nil {
			t.Fatalf("SurfaceModelByName(%q): %v", name, err)
		}
		if m.Name() != want {
			t.Errorf("SurfaceModelByName(%q).Name() = %q, want %q", name, m.Name(), want)
		}
	}

	if _, err := SurfaceModelByName("moebius"); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("unknown model: err = %v, want ErrInvalidParameter", err)
	}
}
