package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/oibur/snowline/internal/config"
	"github.com/oibur/snowline/pkg/fileutil"
	"github.com/oibur/snowline/pkg/logging"
	"github.com/oibur/snowline/pkg/raster"
	"github.com/oibur/snowline/pkg/tags"
)

// baseMaskSuffix names the clipped band whose footprint defines the ROI
// pixel count. Any acquisition's B5 works since all clips share the ROI.
const baseMaskSuffix = "SR_B5_"

// SnowCover computes the snow cover percentage of every binary mask: the
// count of 255 pixels over the ROI pixel count, as a percentage rounded to
// two decimals, merged into the tags store keyed by acquisition.
func SnowCover(ctx context.Context, cfg *config.Config, clipper raster.Clipper, renderer raster.Renderer) error {
	log := logging.WithPhase("snow")

	masks, err := fileutil.ListPaths(cfg.ClippedDir(),
		baseMaskSuffix+cropSuffix+"."+cfg.Dataset.ImageExtension)
	if err != nil {
		return err
	}
	if len(masks) == 0 {
		return fmt.Errorf("no %s%s band file in %s to derive the ROI from",
			baseMaskSuffix, cropSuffix, cfg.ClippedDir())
	}

	roiPixels, err := clipper.ROIPixelCount(ctx, masks[0], cfg.ShapefilePath())
	if err != nil {
		return fmt.Errorf("count roi pixels: %w", err)
	}
	if roiPixels == 0 {
		return fmt.Errorf("roi from %s covers zero pixels", masks[0])
	}
	log.Info().Int64("roi_pixels", roiPixels).Str("mask", masks[0]).Msg("derived roi")

	binaries, err := fileutil.ListPaths(cfg.BinaryDir(), ".png")
	if err != nil {
		return err
	}

	store, err := tags.Load(cfg.TagsPath())
	if err != nil {
		return err
	}

	progress := logging.NewStageProgress(len(binaries), log)
	for _, path := range binaries {
		mask, err := renderer.ReadBinaryPNG(ctx, path)
		if err != nil {
			return fmt.Errorf("read binary image %s: %w", path, err)
		}

		snowPixels := mask.CountEqual(255)
		pct := round2(float64(snowPixels) / float64(roiPixels) * 100)

		key := acquisitionKey(filepath.Base(path))
		store.SetSnowCover(key, pct)
		log.Debug().Str("key", key).Float64("snow_cover_per", pct).Msg("measured snow cover")
		progress.Done()
	}
	progress.Finish()

	return store.Save(cfg.TagsPath())
}

// TemperatureROI computes the mean temperature in degrees Celsius of every
// clipped surface temperature band, merges it into the tags store, and
// writes the global min/max across all acquisitions to the boundaries file
// consumed by the temperature rendering stage.
func TemperatureROI(ctx context.Context, cfg *config.Config, reader raster.Reader) error {
	log := logging.WithPhase("temperature_roi")

	paths, err := fileutil.ListPaths(cfg.ClippedDir(), thermalSuffix(cfg))
	if err != nil {
		return err
	}

	store, err := tags.Load(cfg.TagsPath())
	if err != nil {
		return err
	}

	var bounds tags.Boundaries
	haveBounds := false

	progress := logging.NewStageProgress(len(paths), log)
	for _, path := range paths {
		g, err := reader.ReadBand(ctx, path)
		if err != nil {
			return fmt.Errorf("read band %s: %w", path, err)
		}
		celsius := g.ToCelsius(cfg.Factors.TemperatureScale,
			cfg.Factors.TemperatureOffset, cfg.Factors.KelvinOffset)

		mean, ok := celsius.Mean()
		if !ok {
			log.Warn().Str("path", path).Msg("band has no valid pixels, skipping")
			progress.Skip()
			continue
		}

		key := acquisitionKey(filepath.Base(path))
		store.SetTemperatureROI(key, round2(mean))

		mn, mx, _ := celsius.MinMax()
		if !haveBounds {
			bounds = tags.Boundaries{Min: mn, Max: mx}
			haveBounds = true
		} else {
			if mn < bounds.Min {
				bounds.Min = mn
			}
			if mx > bounds.Max {
				bounds.Max = mx
			}
		}
		log.Debug().Str("key", key).Float64("temperature_roi", round2(mean)).Msg("measured roi temperature")
		progress.Done()
	}
	progress.Finish()

	if err := store.Save(cfg.TagsPath()); err != nil {
		return err
	}

	if !haveBounds {
		log.Warn().Msg("no valid temperature data, boundaries file not written")
		return nil
	}
	if err := tags.WriteBoundaries(cfg.BoundariesPath(), bounds); err != nil {
		return err
	}
	log.Info().Float64("min", bounds.Min).Float64("max", bounds.Max).
		Str("path", cfg.BoundariesPath()).Msg("wrote temperature boundaries")
	return nil
}
