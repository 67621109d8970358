package pipeline

import (
	"context"
	"fmt"

	"github.com/oibur/snowline/internal/config"
	"github.com/oibur/snowline/pkg/fileutil"
	"github.com/oibur/snowline/pkg/logging"
	"github.com/oibur/snowline/pkg/raster"
)

// Video stitches the PNG frames in the frame visualization directory, in
// name order, into a video at the configured frame rate. Frames are composed
// externally from the rendered imagery; no stage writes that directory. With
// no frames the stage logs a warning and succeeds, matching the other
// stages' tolerance of incomplete upstream output.
func Video(ctx context.Context, cfg *config.Config, encoder raster.VideoEncoder) error {
	log := logging.WithPhase("video")

	frames, err := fileutil.ListPaths(cfg.FramesDir(), ".png")
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		log.Warn().Str("dir", cfg.FramesDir()).Msg("no png frames found, nothing to encode")
		return nil
	}

	if err := fileutil.EnsureDir(cfg.VideoDir()); err != nil {
		return err
	}

	if err := encoder.Encode(ctx, frames, cfg.Video.FrameRate, cfg.VideoPath()); err != nil {
		return fmt.Errorf("encode video: %w", err)
	}
	log.Info().Int("frames", len(frames)).Int("frame_rate", cfg.Video.FrameRate).
		Str("path", cfg.VideoPath()).Msg("video created")
	return nil
}
