package raster

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// GDALClipper clips rasters by shelling out to gdalwarp. Geometry handling
// stays in GDAL; this process never parses the shapefile.
type GDALClipper struct {
	// Command is the gdalwarp binary, "gdalwarp" when empty.
	Command string
	// Reader loads clipped rasters for the ROI pixel count.
	Reader Reader
}

func (c *GDALClipper) command() string {
	if c.Command == "" {
		return "gdalwarp"
	}
	return c.Command
}

// clipArgs builds the gdalwarp invocation for one clip.
func clipArgs(srcPath, shapefilePath, dstPath string) []string {
	return []string{
		"-overwrite",
		"-of", "GTiff",
		"-cutline", shapefilePath,
		"-crop_to_cutline",
		srcPath,
		dstPath,
	}
}

// Clip runs gdalwarp to cut srcPath to the shapefile geometries.
func (c *GDALClipper) Clip(ctx context.Context, srcPath, shapefilePath, dstPath string) error {
	cmd := exec.CommandContext(ctx, c.command(), clipArgs(srcPath, shapefilePath, dstPath)...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", c.command(), err, strings.TrimSpace(string(out)))
	}
	return nil
}

// ROIPixelCount clips the mask raster to the shapefile and counts the valid
// pixels of the result. Everything outside the geometries is no-data after
// the crop, so the finite pixel count is the ROI size.
func (c *GDALClipper) ROIPixelCount(ctx context.Context, maskPath, shapefilePath string) (int64, error) {
	if c.Reader == nil {
		return 0, fmt.Errorf("roi pixel count: no reader configured")
	}

	tmpDir, err := os.MkdirTemp("", "snowline-roi-")
	if err != nil {
		return 0, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	tmpPath := filepath.Join(tmpDir, filepath.Base(maskPath))
	if err := c.Clip(ctx, maskPath, shapefilePath, tmpPath); err != nil {
		return 0, err
	}

	g, err := c.Reader.ReadBand(ctx, tmpPath)
	if err != nil {
		return 0, err
	}
	return g.CountFinite(), nil
}

// FFmpegEncoder encodes frame sequences by shelling out to ffmpeg, using
// the concat demuxer so frames can come from an explicit ordered list
// rather than a filename pattern.
type FFmpegEncoder struct {
	// Command is the ffmpeg binary, "ffmpeg" when empty.
	Command string
}

func (e *FFmpegEncoder) command() string {
	if e.Command == "" {
		return "ffmpeg"
	}
	return e.Command
}

// writeConcatList writes the ffmpeg concat demuxer script: every frame with
// its display duration, with the final frame repeated because the demuxer
// ignores the duration of the last entry.
func writeConcatList(w io.Writer, framePaths []string, frameRate int) error {
	duration := 1.0 / float64(frameRate)
	for _, p := range framePaths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("resolve frame path %s: %w", p, err)
		}
		if _, err := fmt.Fprintf(w, "file '%s'\nduration %g\n", abs, duration); err != nil {
			return err
		}
	}
	if len(framePaths) > 0 {
		abs, err := filepath.Abs(framePaths[len(framePaths)-1])
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "file '%s'\n", abs); err != nil {
			return err
		}
	}
	return nil
}

// Encode renders the frames into a video at dstPath.
func (e *FFmpegEncoder) Encode(ctx context.Context, framePaths []string, frameRate int, dstPath string) error {
	if frameRate <= 0 {
		return fmt.Errorf("encode video: frame rate must be positive, got %d", frameRate)
	}

	list, err := os.CreateTemp("", "snowline-frames-*.txt")
	if err != nil {
		return fmt.Errorf("create frame list: %w", err)
	}
	defer os.Remove(list.Name())

	if err := writeConcatList(list, framePaths, frameRate); err != nil {
		list.Close()
		return err
	}
	if err := list.Close(); err != nil {
		return fmt.Errorf("close frame list: %w", err)
	}

	args := []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", list.Name(),
		"-pix_fmt", "yuv420p",
		dstPath,
	}
	cmd := exec.CommandContext(ctx, e.command(), args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", e.command(), err, strings.TrimSpace(string(out)))
	}
	return nil
}
