package model

import "fmt"

// Grid is a dense row-major matrix of float64 samples. For surface
// grids, rows index azimuth and columns index radius.
type Grid struct {
	rows, cols int
	data       []float64
}

// NewGrid allocates a rows x cols grid of zeros.
func NewGrid(rows, cols int) *Grid {
	return &Grid{rows: rows, cols: cols, data: make([]float64, rows*cols)}
}

// Dims returns the (rows, cols) shape.
func (g *Grid) Dims() (int, int) { return g.rows, g.cols }

// At returns the sample at (i, j).
func (g *Grid) At(i, j int) float64 {
	return g.data[g.offset(i, j)]
}

// Set stores v at (i, j).
func (g *Grid) Set(i, j int, v float64) {
	g.data[g.offset(i, j)] = v
}

func (g *Grid) offset(i, j int) int {
	if i < 0 || i >= g.rows || j < 0 || j >= g.cols {
		panic(fmt.Sprintf("grid index (%d,%d) out of range %dx%d", i, j, g.rows, g.cols))
	}
	return i*g.cols + j
}

// SpiralSurface holds a computed sheet. X, Y, Z and Field share one
// shape: sample (i, j) of every grid describes the same surface point,
// coordinates in AU and field magnitude normalized to 1 at the sheet's
// reference crossing.
type SpiralSurface struct {
	X, Y, Z *Grid
	Field   *Grid
}

// NewSpiralSurface allocates the four aligned nPhi x nR grids.
func NewSpiralSurface(nPhi, nR int) *SpiralSurface {
	return &SpiralSurface{
		X:     NewGrid(nPhi, nR),
		Y:     NewGrid(nPhi, nR),
		Z:     NewGrid(nPhi, nR),
		Field: NewGrid(nPhi, nR),
	}
}

// Dims returns the shared (nPhi, nR) shape.
func (s *SpiralSurface) Dims() (int, int) { return s.X.Dims() }
