package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/oibur/snowline/internal/config"
	"github.com/oibur/snowline/pkg/catalog"
	"github.com/oibur/snowline/pkg/fileutil"
	"github.com/oibur/snowline/pkg/landsat"
	"github.com/oibur/snowline/pkg/logging"
	"github.com/oibur/snowline/pkg/raster"
)

// Clip reads the metadata JSON, synthesizes the on-disk path of every band
// file it describes, and clips each existing file to the ROI shapefile.
// Clipped files land in the clipped directory under their derived name
// ({acq}_{wrs}_{surface}_{band}_CROPPED.{ext}). Files missing from disk are
// logged and skipped.
func Clip(ctx context.Context, cfg *config.Config, clipper raster.Clipper) error {
	log := logging.WithPhase("clip")

	cat, err := readCatalog(cfg.MetadataPath())
	if err != nil {
		return err
	}
	paths, err := catalog.SynthesizePaths(cat, cfg.OriginalDir())
	if err != nil {
		return err
	}
	if err := fileutil.EnsureDir(cfg.ClippedDir()); err != nil {
		return err
	}

	progress := logging.NewStageProgress(len(paths), log)
	for _, src := range paths {
		if !fileutil.Exists(src) {
			log.Warn().Str("path", src).Msg("image not found")
			progress.Skip()
			continue
		}

		c, err := landsat.Decode(filepath.Base(src))
		if err != nil {
			log.Warn().Str("path", src).Err(err).Msg("skipping undecodable filename")
			progress.Skip()
			continue
		}

		dst := filepath.Join(cfg.ClippedDir(),
			c.DerivedFilename(cropSuffix, cfg.Dataset.ImageExtension))
		if err := clipper.Clip(ctx, src, cfg.ShapefilePath(), dst); err != nil {
			return fmt.Errorf("clip %s: %w", src, err)
		}
		log.Debug().Str("src", src).Str("dst", dst).Msg("clipped image")
		progress.Done()
	}
	progress.Finish()

	return nil
}
