package ephem

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// solarEquatorial returns the Sun's apparent right ascension and
// declination at t, plus the true obliquity of date, all in radians.
// Low-precision series from the Astronomical Almanac, good to a few
// hundredths of a degree over the tool's operating range.
func solarEquatorial(t time.Time) (ra, dec, obliquity float64) {
	jd := julian.TimeToJD(t.UTC())
	T := (jd - 2451545.0) / 36525.0

	// Geometric mean longitude and mean anomaly, degrees.
	L0 := normalizeDeg(280.46646 + 36000.76983*T + 0.0003032*T*T)
	M := normalizeDeg(357.52911 + 35999.05029*T - 0.0001537*T*T)
	mRad := deg2rad(M)

	// Equation of center.
	C := (1.914602-0.004817*T-0.000014*T*T)*math.Sin(mRad) +
		(0.019993-0.000101*T)*math.Sin(2*mRad) +
		0.000289*math.Sin(3*mRad)

	// Apparent longitude, corrected for nutation and aberration.
	omega := deg2rad(125.04 - 1934.136*T)
	lambda := deg2rad(L0 + C - 0.00569 - 0.00478*math.Sin(omega))

	// Obliquity of the ecliptic with the nutation correction.
	eps0 := 23.439291 - 0.0130042*T - 0.00000016*T*T + 0.000000504*T*T*T
	eps := deg2rad(eps0 + 0.00256*math.Cos(omega))

	sinLambda := math.Sin(lambda)
	ra = math.Atan2(math.Cos(eps)*sinLambda, math.Cos(lambda))
	dec = math.Asin(math.Sin(eps) * sinLambda)
	return ra, dec, eps
}

func normalizeDeg(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

func deg2rad(deg float64) float64 { return deg * math.Pi / 180 }
