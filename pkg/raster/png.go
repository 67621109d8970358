package raster

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
)

// PNGRenderer renders grids to PNG files with the standard library image
// encoder. Colormaps are linear interpolations over the anchor colors of
// the matplotlib palettes the rendered artifacts originally used; NaN
// pixels render transparent.
type PNGRenderer struct{}

// anchor palettes, low to high.
var colormaps = map[string][]color.NRGBA{
	// diverging red -> white -> blue
	"RdBu": {
		{R: 178, G: 24, B: 43, A: 255},
		{R: 247, G: 247, B: 247, A: 255},
		{R: 33, G: 102, B: 172, A: 255},
	},
	// reversed RdYlBu: blue -> yellow -> red
	"RdYlBu_r": {
		{R: 69, G: 117, B: 180, A: 255},
		{R: 255, G: 255, B: 191, A: 255},
		{R: 215, G: 48, B: 39, A: 255},
	},
}

// RenderRGB composes three [0, 1]-normalized grids into an RGB image.
func (PNGRenderer) RenderRGB(_ context.Context, red, green, blue *Grid, dstPath string) error {
	if !sameShape(red, green) || !sameShape(green, blue) {
		return fmt.Errorf("render rgb: channel shapes differ")
	}

	img := image.NewNRGBA(image.Rect(0, 0, red.Cols, red.Rows))
	for row := 0; row < red.Rows; row++ {
		for col := 0; col < red.Cols; col++ {
			r, g, b := red.At(row, col), green.At(row, col), blue.At(row, col)
			if math.IsNaN(r) || math.IsNaN(g) || math.IsNaN(b) {
				img.SetNRGBA(col, row, color.NRGBA{})
				continue
			}
			img.SetNRGBA(col, row, color.NRGBA{
				R: channelByte(r),
				G: channelByte(g),
				B: channelByte(b),
				A: 255,
			})
		}
	}
	return writePNG(dstPath, img)
}

// RenderColormap maps grid values through a colormap. The scale comes from
// opts.Min/Max when set, otherwise from the grid's own finite range.
func (PNGRenderer) RenderColormap(_ context.Context, g *Grid, opts RenderOptions, dstPath string) error {
	palette, ok := colormaps[opts.Colormap]
	if !ok && opts.Colormap != "" {
		return fmt.Errorf("render colormap: unknown colormap %q", opts.Colormap)
	}

	lo, hi, haveRange := g.MinMax()
	if opts.Min != nil {
		lo = *opts.Min
		haveRange = true
	}
	if opts.Max != nil {
		hi = *opts.Max
		haveRange = true
	}

	img := image.NewNRGBA(image.Rect(0, 0, g.Cols, g.Rows))
	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			v := g.At(row, col)
			if math.IsNaN(v) || !haveRange {
				img.SetNRGBA(col, row, color.NRGBA{})
				continue
			}
			t := 0.5
			if hi > lo {
				t = clamp01((v - lo) / (hi - lo))
			}
			if palette == nil {
				gray := channelByte(t)
				img.SetNRGBA(col, row, color.NRGBA{R: gray, G: gray, B: gray, A: 255})
				continue
			}
			img.SetNRGBA(col, row, lookupPalette(palette, t))
		}
	}
	return writePNG(dstPath, img)
}

// WriteBinaryPNG writes a 0/255 grid as an 8-bit grayscale PNG.
func (PNGRenderer) WriteBinaryPNG(_ context.Context, g *Grid, dstPath string) error {
	img := image.NewGray(image.Rect(0, 0, g.Cols, g.Rows))
	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			if g.At(row, col) == 255 {
				img.SetGray(col, row, color.Gray{Y: 255})
			}
		}
	}
	return writePNG(dstPath, img)
}

// ReadBinaryPNG reads an 8-bit grayscale PNG back into a grid.
func (PNGRenderer) ReadBinaryPNG(_ context.Context, path string) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open binary image: %w", err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	b := img.Bounds()
	g := NewGrid(b.Dy(), b.Dx())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			v, _, _, _ := img.At(x, y).RGBA()
			g.Set(y-b.Min.Y, x-b.Min.X, float64(v>>8))
		}
	}
	return g, nil
}

// lookupPalette linearly interpolates between palette anchors at t in [0, 1].
func lookupPalette(palette []color.NRGBA, t float64) color.NRGBA {
	segments := len(palette) - 1
	pos := t * float64(segments)
	i := int(pos)
	if i >= segments {
		return palette[segments]
	}
	frac := pos - float64(i)
	a, b := palette[i], palette[i+1]
	return color.NRGBA{
		R: lerpByte(a.R, b.R, frac),
		G: lerpByte(a.G, b.G, frac),
		B: lerpByte(a.B, b.B, frac),
		A: 255,
	}
}

func lerpByte(a, b uint8, t float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
}

func channelByte(v float64) uint8 {
	return uint8(math.Round(clamp01(v) * 255))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create image file: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	return f.Close()
}
