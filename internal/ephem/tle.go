package ephem

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/signalsfoundry/heliosheet/internal/logging"
	"github.com/signalsfoundry/heliosheet/model"
	"github.com/signalsfoundry/heliosheet/timewindow"
)

// TLESource propagates two-line element sets with SGP4 and rotates the
// resulting Earth-centred vectors into GSE. It needs no network and
// serves as the offline fallback source.
type TLESource struct {
	log logging.Logger
}

// NewTLESource builds a TLE source. Logger may be nil.
func NewTLESource(log logging.Logger) *TLESource {
	if log == nil {
		log = logging.Noop()
	}
	return &TLESource{log: log}
}

// Name implements Source.
func (s *TLESource) Name() string { return "tle" }

// Available implements Source. TLE propagation yields Earth-centred
// kilometres, so the definition must be tagged GSE/km.
func (s *TLESource) Available(def model.SpacecraftDefinition) bool {
	return def.Source == model.EphemerisSourceTLE &&
		def.TLELine1 != "" && def.TLELine2 != "" &&
		def.Frame == model.FrameGSE &&
		def.Unit == model.UnitKilometer
}

// Fetch implements Source.
func (s *TLESource) Fetch(ctx context.Context, def model.SpacecraftDefinition, epoch time.Time) (model.Position, error) {
	if !s.Available(def) {
		return model.Position{}, fmt.Errorf("%w: %q via tle", ErrUnavailable, def.ID)
	}
	if err := validateTLELines(def.TLELine1, def.TLELine2); err != nil {
		return model.Position{}, fmt.Errorf("spacecraft %q: %w", def.ID, err)
	}
	if epoch.IsZero() {
		epoch = time.Now()
	}
	epoch = epoch.UTC()

	sat := satellite.TLEToSat(def.TLELine1, def.TLELine2, satellite.GravityWGS72)
	return propagateGSE(sat, def, epoch), nil
}

// FetchArc implements Source.
func (s *TLESource) FetchArc(ctx context.Context, def model.SpacecraftDefinition, w timewindow.Window) ([]model.Position, error) {
	if !s.Available(def) {
		return nil, fmt.Errorf("%w: %q via tle", ErrUnavailable, def.ID)
	}
	if err := validateTLELines(def.TLELine1, def.TLELine2); err != nil {
		return nil, fmt.Errorf("spacecraft %q: %w", def.ID, err)
	}
	epochs, err := w.Epochs()
	if err != nil {
		return nil, err
	}

	sat := satellite.TLEToSat(def.TLELine1, def.TLELine2, satellite.GravityWGS72)
	arc := make([]model.Position, 0, len(epochs))
	for _, epoch := range epochs {
		arc = append(arc, propagateGSE(sat, def, epoch.UTC()))
	}
	return arc, nil
}

// propagateGSE runs SGP4 at epoch and rotates the TEME position into
// GSE axes. go-satellite works in kilometres throughout.
func propagateGSE(sat satellite.Satellite, def model.SpacecraftDefinition, epoch time.Time) model.Position {
	year, month, day := epoch.Date()
	hour, min, sec := epoch.Clock()

	posECI, _ := satellite.Propagate(sat, year, int(month), day, hour, min, sec)
	gse := eciToGSE(model.Vec3{X: posECI.X, Y: posECI.Y, Z: posECI.Z}, epoch)

	return model.Position{
		Vec:   gse,
		Frame: def.Frame,
		Unit:  def.Unit,
		Epoch: epoch,
	}
}

// eciToGSE rotates an Earth-centred inertial vector into GSE axes at
// epoch: +X towards the Sun, +Z towards the ecliptic north pole, +Y
// completing the right-handed set. The TEME frame delivered by SGP4 is
// treated as mean-equator inertial.
func eciToGSE(r model.Vec3, epoch time.Time) model.Vec3 {
	ra, dec, eps := solarEquatorial(epoch)

	// Sun direction in equatorial coordinates.
	x := model.Vec3{
		X: math.Cos(dec) * math.Cos(ra),
		Y: math.Cos(dec) * math.Sin(ra),
		Z: math.Sin(dec),
	}
	// Ecliptic north pole, orthonormalized against the Sun direction.
	pole := model.Vec3{X: 0, Y: -math.Sin(eps), Z: math.Cos(eps)}
	z := pole.Sub(x.Scale(pole.Dot(x)))
	z = z.Scale(1 / z.Norm())
	y := cross(z, x)

	return model.Vec3{X: r.Dot(x), Y: r.Dot(y), Z: r.Dot(z)}
}

func cross(a, b model.Vec3) model.Vec3 {
	return model.Vec3{
		X: a.Y*b.Z - a.Z*b.Y,
		Y: a.Z*b.X - a.X*b.Z,
		Z: a.X*b.Y - a.Y*b.X,
	}
}

// validateTLELines rejects element sets the fixed-column SGP4 parser
// cannot safely read.
func validateTLELines(line1, line2 string) error {
	if len(line1) < 69 || !strings.HasPrefix(line1, "1 ") {
		return fmt.Errorf("%w: malformed TLE line 1", ErrNoData)
	}
	if len(line2) < 69 || !strings.HasPrefix(line2, "2 ") {
		return fmt.Errorf("%w: malformed TLE line 2", ErrNoData)
	}
	return nil
}
