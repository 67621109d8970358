package raster

import (
	"context"
	"fmt"
	"image"
	"math"
	"os"

	"golang.org/x/image/tiff"
)

// TIFFReader loads single-band GeoTIFF files through the pure-Go TIFF
// decoder. Pixel values come from the image's grayscale channel at 16-bit
// precision, which covers the uint16 digital numbers of Level-2 products.
// Georeferencing tags are ignored; the pipeline only needs pixel values.
type TIFFReader struct{}

// ReadBand loads a band file. Zero pixels are no-data and become NaN.
func (TIFFReader) ReadBand(_ context.Context, path string) (*Grid, error) {
	return readTIFFGrid(path, true)
}

// ReadBandNormalized loads a band file min-max normalized to [0, 1]. Zero
// pixels participate in the normalization rather than being dropped, so a
// composite keeps its dark background.
func (TIFFReader) ReadBandNormalized(_ context.Context, path string) (*Grid, error) {
	g, err := readTIFFGrid(path, false)
	if err != nil {
		return nil, err
	}
	return g.Normalize(), nil
}

func readTIFFGrid(path string, zeroToNaN bool) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open band file: %w", err)
	}
	defer f.Close()

	img, err := tiff.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return gridFromImage(img, zeroToNaN), nil
}

func gridFromImage(img image.Image, zeroToNaN bool) *Grid {
	b := img.Bounds()
	g := NewGrid(b.Dy(), b.Dx())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			// RGBA() yields 16-bit channels; for grayscale sources the red
			// channel is the pixel value.
			v, _, _, _ := img.At(x, y).RGBA()
			if zeroToNaN && v == 0 {
				g.Set(y-b.Min.Y, x-b.Min.X, math.NaN())
				continue
			}
			g.Set(y-b.Min.Y, x-b.Min.X, float64(v))
		}
	}
	return g
}
