package raster

import "context"

// RenderOptions controls how a grid is rendered to an image file.
type RenderOptions struct {
	Colormap string   // e.g. "RdBu", "RdYlBu_r"; empty means grayscale
	Min      *float64 // color scale lower bound; nil lets the renderer pick
	Max      *float64 // color scale upper bound
}

// Reader loads band files into grids. Implementations wrap a GeoTIFF
// library or an external tool; the pipeline never inspects raster internals.
type Reader interface {
	// ReadBand loads a band file. Zero pixels are treated as no-data and
	// returned as NaN.
	ReadBand(ctx context.Context, path string) (*Grid, error)
	// ReadBandNormalized loads a band file min-max normalized to [0, 1].
	ReadBandNormalized(ctx context.Context, path string) (*Grid, error)
}

// Clipper cuts rasters to the region of interest described by a shapefile.
type Clipper interface {
	// Clip writes srcPath clipped to the shapefile geometries at dstPath,
	// preserving georeferencing.
	Clip(ctx context.Context, srcPath, shapefilePath, dstPath string) error
	// ROIPixelCount returns how many pixels of the mask raster fall inside
	// the shapefile geometries.
	ROIPixelCount(ctx context.Context, maskPath, shapefilePath string) (int64, error)
}

// Renderer turns grids into image files.
type Renderer interface {
	// RenderRGB composes three normalized grids as an RGB image at dstPath.
	RenderRGB(ctx context.Context, red, green, blue *Grid, dstPath string) error
	// RenderColormap renders a single grid through a colormap at dstPath.
	RenderColormap(ctx context.Context, g *Grid, opts RenderOptions, dstPath string) error
	// WriteBinaryPNG writes a 0/255 grid as an 8-bit grayscale PNG.
	WriteBinaryPNG(ctx context.Context, g *Grid, dstPath string) error
	// ReadBinaryPNG reads an 8-bit grayscale PNG back into a grid.
	ReadBinaryPNG(ctx context.Context, path string) (*Grid, error)
}

// VideoEncoder stitches an ordered frame sequence into a video file.
type VideoEncoder interface {
	Encode(ctx context.Context, framePaths []string, frameRate int, dstPath string) error
}
