package model

// SpiralParameters control the current-sheet surface geometry and the
// field magnitude laid over it.
type SpiralParameters struct {
	// TiltDeg is the dipole tilt of the sheet against the solar
	// equator, in degrees.
	TiltDeg float64
	// AmplitudeDeg is the peak colatitude undulation, in degrees.
	AmplitudeDeg float64
	// RotationPeriodDays is the solar rotation period in days.
	RotationPeriodDays float64
	// WindSpeedKmS is the radial solar wind speed in km/s.
	WindSpeedKmS float64
	// RMinAU and RMaxAU bound the radial extent of the surface in AU.
	RMinAU float64
	RMaxAU float64
	// NPhi and NR set the grid resolution in azimuth and radius.
	NPhi int
	NR   int
}

// DefaultSpiralParameters returns the baseline visualization set: a 10°
// tilt with 15° undulation, the 25.4 day solar rotation period, and a
// 400 km/s wind between 0.1 and 1.5 AU on a 100x100 grid.
func DefaultSpiralParameters() SpiralParameters {
	return SpiralParameters{
		TiltDeg:            10.0,
		AmplitudeDeg:       15.0,
		RotationPeriodDays: 25.4,
		WindSpeedKmS:       400.0,
		RMinAU:             0.1,
		RMaxAU:             1.5,
		NPhi:               100,
		NR:                 100,
	}
}
