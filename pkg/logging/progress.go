package logging

import (
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// StageProgress counts processed and skipped items for one pipeline stage
// and emits a summary event when the stage finishes. Safe for concurrent
// use, though the stages themselves run serially.
type StageProgress struct {
	total     int64
	processed atomic.Int64
	skipped   atomic.Int64
	started   time.Time
	log       zerolog.Logger
}

// NewStageProgress starts tracking a stage over total items. The logger
// should already carry the stage's phase field (see WithPhase).
func NewStageProgress(total int, log zerolog.Logger) *StageProgress {
	return &StageProgress{
		total:   int64(total),
		started: time.Now(),
		log:     log,
	}
}

// Done records one successfully processed item.
func (sp *StageProgress) Done() {
	sp.processed.Add(1)
}

// Skip records one skipped item (missing file, malformed name, missing band).
func (sp *StageProgress) Skip() {
	sp.skipped.Add(1)
}

// Processed returns the number of successfully processed items.
func (sp *StageProgress) Processed() int64 {
	return sp.processed.Load()
}

// Skipped returns the number of skipped items.
func (sp *StageProgress) Skipped() int64 {
	return sp.skipped.Load()
}

// Finish logs the stage summary.
func (sp *StageProgress) Finish() {
	sp.log.Info().
		Str("event", "stage_completed").
		Int64("processed", sp.processed.Load()).
		Int64("skipped", sp.skipped.Load()).
		Int64("total", sp.total).
		Int64("duration_ms", time.Since(sp.started).Milliseconds()).
		Msg("stage completed")
}
