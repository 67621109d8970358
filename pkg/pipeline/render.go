package pipeline

import (
	"context"
	"fmt"
	"math"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/oibur/snowline/internal/config"
	"github.com/oibur/snowline/pkg/fileutil"
	"github.com/oibur/snowline/pkg/landsat"
	"github.com/oibur/snowline/pkg/logging"
	"github.com/oibur/snowline/pkg/raster"
	"github.com/oibur/snowline/pkg/tags"
)

// TrueColor composes an RGB image per acquisition from the clipped red,
// green and blue reflectance bands. Acquisitions missing any of the three
// bands are logged and skipped.
func TrueColor(ctx context.Context, cfg *config.Config, reader raster.Reader, renderer raster.Renderer) error {
	log := logging.WithPhase("color")

	grouped, err := clippedByDate(cfg)
	if err != nil {
		return err
	}
	if err := fileutil.EnsureDir(cfg.ColorDir()); err != nil {
		return err
	}

	progress := logging.NewStageProgress(len(grouped), log)
	for _, date := range sortedDates(grouped) {
		group := grouped[date]

		selected, missing, ok := selectBands(group, cfg.Factors.RGBBands)
		if !ok {
			logMissingBands(log, date, missing)
			progress.Skip()
			continue
		}

		channels := make([]*raster.Grid, len(selected))
		for i, path := range selected {
			g, err := reader.ReadBandNormalized(ctx, path)
			if err != nil {
				return fmt.Errorf("read band %s: %w", path, err)
			}
			channels[i] = g
		}

		dst := filepath.Join(cfg.ColorDir(),
			landsat.ReplaceSuffixAndExt(filepath.Base(selected[0]), "COLOR", "png"))
		if err := renderer.RenderRGB(ctx, channels[0], channels[1], channels[2], dst); err != nil {
			return fmt.Errorf("render true color for %s: %w", date, err)
		}
		log.Debug().Str("date", date).Str("dst", dst).Msg("rendered true color image")
		progress.Done()
	}
	progress.Finish()

	return nil
}

// Binary thresholds the NDSI of each acquisition into a 0/255 snow mask PNG.
func Binary(ctx context.Context, cfg *config.Config, reader raster.Reader, renderer raster.Renderer) error {
	log := logging.WithPhase("binary")

	grouped, err := clippedByDate(cfg)
	if err != nil {
		return err
	}
	if err := fileutil.EnsureDir(cfg.BinaryDir()); err != nil {
		return err
	}

	progress := logging.NewStageProgress(len(grouped), log)
	for _, date := range sortedDates(grouped) {
		group := grouped[date]

		ndsi, first, ok, err := ndsiForGroup(ctx, cfg, reader, log, date, group)
		if err != nil {
			return err
		}
		if !ok {
			progress.Skip()
			continue
		}

		mask := ndsi.Threshold(cfg.Factors.NDSIThreshold)
		dst := filepath.Join(cfg.BinaryDir(),
			landsat.ReplaceSuffixAndExt(filepath.Base(first), "BINARY", "png"))
		if err := renderer.WriteBinaryPNG(ctx, mask, dst); err != nil {
			return fmt.Errorf("write binary image for %s: %w", date, err)
		}
		log.Debug().Str("date", date).Str("dst", dst).Msg("wrote binary snow mask")
		progress.Done()
	}
	progress.Finish()

	return nil
}

// NDSI renders the continuous snow index of each acquisition through the
// RdBu colormap with the scale fixed to the index range [-1, 1].
func NDSI(ctx context.Context, cfg *config.Config, reader raster.Reader, renderer raster.Renderer) error {
	log := logging.WithPhase("ndsi")

	grouped, err := clippedByDate(cfg)
	if err != nil {
		return err
	}
	if err := fileutil.EnsureDir(cfg.NDSIDir()); err != nil {
		return err
	}

	lo, hi := -1.0, 1.0
	opts := raster.RenderOptions{Colormap: "RdBu", Min: &lo, Max: &hi}

	progress := logging.NewStageProgress(len(grouped), log)
	for _, date := range sortedDates(grouped) {
		group := grouped[date]

		ndsi, first, ok, err := ndsiForGroup(ctx, cfg, reader, log, date, group)
		if err != nil {
			return err
		}
		if !ok {
			progress.Skip()
			continue
		}

		dst := filepath.Join(cfg.NDSIDir(),
			landsat.ReplaceSuffixAndExt(filepath.Base(first), "NDSI", "png"))
		if err := renderer.RenderColormap(ctx, ndsi, opts, dst); err != nil {
			return fmt.Errorf("render ndsi image for %s: %w", date, err)
		}
		log.Debug().Str("date", date).Str("dst", dst).Msg("rendered ndsi image")
		progress.Done()
	}
	progress.Finish()

	return nil
}

// Temperature converts every clipped surface temperature band to degrees
// Celsius and renders it through the RdYlBu_r colormap. When the boundaries
// file from a previous TemperatureROI run exists, its floored min and max
// fix the color scale so all frames share one legend; otherwise each image
// auto-scales.
func Temperature(ctx context.Context, cfg *config.Config, reader raster.Reader, renderer raster.Renderer) error {
	log := logging.WithPhase("temperature")

	paths, err := fileutil.ListPaths(cfg.ClippedDir(),
		thermalSuffix(cfg))
	if err != nil {
		return err
	}
	if err := fileutil.EnsureDir(cfg.TemperatureDir()); err != nil {
		return err
	}

	opts := raster.RenderOptions{Colormap: "RdYlBu_r"}
	if fileutil.Exists(cfg.BoundariesPath()) {
		b, err := tags.ReadBoundaries(cfg.BoundariesPath())
		if err != nil {
			return err
		}
		lo, hi := math.Floor(b.Min), math.Floor(b.Max)
		opts.Min, opts.Max = &lo, &hi
		log.Info().Float64("min", lo).Float64("max", hi).Msg("using temperature boundaries")
	} else {
		log.Warn().Str("path", cfg.BoundariesPath()).
			Msg("boundaries file not found, rendering without fixed scale")
	}

	progress := logging.NewStageProgress(len(paths), log)
	for _, path := range paths {
		g, err := reader.ReadBand(ctx, path)
		if err != nil {
			return fmt.Errorf("read band %s: %w", path, err)
		}
		celsius := g.ToCelsius(cfg.Factors.TemperatureScale,
			cfg.Factors.TemperatureOffset, cfg.Factors.KelvinOffset)

		dst := filepath.Join(cfg.TemperatureDir(),
			landsat.ReplaceSuffixAndExt(filepath.Base(path), "TEMPERATURE", "png"))
		if err := renderer.RenderColormap(ctx, celsius, opts, dst); err != nil {
			return fmt.Errorf("render temperature image for %s: %w", path, err)
		}
		log.Debug().Str("src", path).Str("dst", dst).Msg("rendered temperature image")
		progress.Done()
	}
	progress.Finish()

	return nil
}

// clippedByDate lists the clipped band files and groups them by acquisition
// date.
func clippedByDate(cfg *config.Config) (map[string][]string, error) {
	paths, err := fileutil.ListPaths(cfg.ClippedDir(), "."+cfg.Dataset.ImageExtension)
	if err != nil {
		return nil, err
	}
	return landsat.GroupPathsByDate(paths), nil
}

// ndsiForGroup reads the green and SWIR bands of one acquisition and
// computes the NDSI grid. ok is false when a required band is missing.
// first is the path whose base name seeds the output filename.
func ndsiForGroup(ctx context.Context, cfg *config.Config, reader raster.Reader, log zerolog.Logger, date string, group []string) (ndsi *raster.Grid, first string, ok bool, err error) {
	selected, missing, ok := selectBands(group, cfg.Factors.NDSIBands)
	if !ok {
		logMissingBands(log, date, missing)
		return nil, "", false, nil
	}

	green, err := reader.ReadBand(ctx, selected[0])
	if err != nil {
		return nil, "", false, fmt.Errorf("read band %s: %w", selected[0], err)
	}
	swir, err := reader.ReadBand(ctx, selected[1])
	if err != nil {
		return nil, "", false, fmt.Errorf("read band %s: %w", selected[1], err)
	}

	g, err := raster.NDSI(green, swir)
	if err != nil {
		return nil, "", false, fmt.Errorf("ndsi for %s: %w", date, err)
	}
	return g, selected[0], true, nil
}

// thermalSuffix is the file suffix of clipped surface temperature bands.
func thermalSuffix(cfg *config.Config) string {
	return "ST_B10_" + cropSuffix + "." + cfg.Dataset.ImageExtension
}

func logMissingBands(log zerolog.Logger, date string, missing []string) {
	log.Warn().Str("date", date).Strs("missing_bands", missing).
		Msg("missing required bands, skipping acquisition")
}
