// Package raster holds the in-memory band grid, the pixel arithmetic the
// pipeline applies to it, and the interfaces for the external raster,
// geometry, rendering and video collaborators.
package raster

import (
	"fmt"
	"math"
)

// Grid is a single-band raster held as float64 rows. No-data pixels are NaN,
// matching how band files are loaded (zero replaced with NaN).
type Grid struct {
	Rows int
	Cols int
	Data []float64 // row-major, len == Rows*Cols
}

// NewGrid allocates a zero-filled grid.
func NewGrid(rows, cols int) *Grid {
	return &Grid{Rows: rows, Cols: cols, Data: make([]float64, rows*cols)}
}

// At returns the pixel at (row, col).
func (g *Grid) At(row, col int) float64 {
	return g.Data[row*g.Cols+col]
}

// Set writes the pixel at (row, col).
func (g *Grid) Set(row, col int, v float64) {
	g.Data[row*g.Cols+col] = v
}

// sameShape reports whether two grids have identical dimensions.
func sameShape(a, b *Grid) bool {
	return a.Rows == b.Rows && a.Cols == b.Cols
}

// Normalize rescales all finite pixels to [0, 1] by min-max. NaN pixels stay
// NaN. A constant grid normalizes to all zeros.
func (g *Grid) Normalize() *Grid {
	minV, maxV, ok := g.MinMax()
	out := NewGrid(g.Rows, g.Cols)
	span := maxV - minV
	for i, v := range g.Data {
		if math.IsNaN(v) || !ok {
			out.Data[i] = math.NaN()
			continue
		}
		if span == 0 {
			out.Data[i] = 0
			continue
		}
		out.Data[i] = (v - minV) / span
	}
	return out
}

// NDSI computes the Normalized Difference Snow Index (green-swir)/(green+swir)
// per pixel. Division by zero and NaN inputs yield NaN.
func NDSI(green, swir *Grid) (*Grid, error) {
	if !sameShape(green, swir) {
		return nil, fmt.Errorf("ndsi: shape mismatch %dx%d vs %dx%d",
			green.Rows, green.Cols, swir.Rows, swir.Cols)
	}
	out := NewGrid(green.Rows, green.Cols)
	for i := range out.Data {
		gv, sv := green.Data[i], swir.Data[i]
		sum := gv + sv
		if math.IsNaN(gv) || math.IsNaN(sv) || sum == 0 {
			out.Data[i] = math.NaN()
			continue
		}
		out.Data[i] = (gv - sv) / sum
	}
	return out, nil
}

// Threshold binarizes the grid: pixels strictly above t become 255, all
// others (including NaN) become 0.
func (g *Grid) Threshold(t float64) *Grid {
	out := NewGrid(g.Rows, g.Cols)
	for i, v := range g.Data {
		if !math.IsNaN(v) && v > t {
			out.Data[i] = 255
		}
	}
	return out
}

// ToCelsius applies the Level-2 surface temperature transform:
// pixel*scale + offset - kelvin. NaN pixels stay NaN.
func (g *Grid) ToCelsius(scale, offset, kelvin float64) *Grid {
	out := NewGrid(g.Rows, g.Cols)
	for i, v := range g.Data {
		if math.IsNaN(v) {
			out.Data[i] = math.NaN()
			continue
		}
		out.Data[i] = v*scale + offset - kelvin
	}
	return out
}

// Mean returns the average of all finite pixels. ok is false when the grid
// has no finite pixel.
func (g *Grid) Mean() (mean float64, ok bool) {
	var sum float64
	var n int
	for _, v := range g.Data {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// MinMax returns the smallest and largest finite pixel values. ok is false
// when the grid has no finite pixel.
func (g *Grid) MinMax() (minV, maxV float64, ok bool) {
	minV = math.Inf(1)
	maxV = math.Inf(-1)
	for _, v := range g.Data {
		if math.IsNaN(v) {
			continue
		}
		ok = true
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}
	if !ok {
		return 0, 0, false
	}
	return minV, maxV, true
}

// CountFinite returns the number of pixels that are not NaN. On a clipped
// raster this is the pixel count inside the clip geometry, since everything
// outside is no-data.
func (g *Grid) CountFinite() int64 {
	var n int64
	for _, v := range g.Data {
		if !math.IsNaN(v) {
			n++
		}
	}
	return n
}

// CountEqual returns the number of pixels exactly equal to v.
func (g *Grid) CountEqual(v float64) int64 {
	var n int64
	for _, p := range g.Data {
		if p == v {
			n++
		}
	}
	return n
}
