package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/oibur/snowline/internal/config"
	"github.com/oibur/snowline/pkg/catalog"
	"github.com/oibur/snowline/pkg/fileutil"
	"github.com/oibur/snowline/pkg/logging"
)

// Metadata scans the original dataset directory for band files and writes
// the three metadata artifacts: the year-organized JSON, the text report,
// and the per-file parquet records. An empty dataset is fatal.
func Metadata(ctx context.Context, cfg *config.Config) error {
	log := logging.WithPhase("metadata")

	names, err := fileutil.ListNames(cfg.OriginalDir(), "."+cfg.Dataset.ImageExtension)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return fmt.Errorf("no .%s files in %s: %w",
			cfg.Dataset.ImageExtension, cfg.OriginalDir(), ErrEmptyDataset)
	}
	log.Info().Int("files", len(names)).Str("dir", cfg.OriginalDir()).Msg("scanned dataset")

	cat := catalog.OrganizeByYear(names, log)
	data, err := json.MarshalIndent(cat, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	if err := os.WriteFile(cfg.MetadataPath(), data, 0644); err != nil {
		return fmt.Errorf("write metadata file: %w", err)
	}
	log.Info().Str("path", cfg.MetadataPath()).Int("years", len(cat)).Msg("wrote metadata json")

	report := catalog.RenderReport(names, log)
	if err := os.WriteFile(cfg.ReportPath(), []byte(report), 0644); err != nil {
		return fmt.Errorf("write report file: %w", err)
	}
	log.Info().Str("path", cfg.ReportPath()).Msg("wrote report")

	records := catalog.DecodeRecords(names, log)
	err = fileutil.WriteTmpThenMove(cfg.Dataset.Path, cfg.RecordsPath(), func(tmpPath string) error {
		f, err := os.Create(tmpPath)
		if err != nil {
			return fmt.Errorf("create records file: %w", err)
		}
		if err := catalog.WriteParquet(f, records); err != nil {
			f.Close()
			return fmt.Errorf("write records: %w", err)
		}
		return f.Close()
	})
	if err != nil {
		return err
	}
	log.Info().Str("path", cfg.RecordsPath()).Int("records", len(records)).Msg("wrote parquet records")

	return nil
}

// readCatalog loads the metadata JSON written by Metadata.
func readCatalog(path string) (catalog.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read metadata file: %w", err)
	}
	var cat catalog.Catalog
	if err := json.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("parse metadata file: %w", err)
	}
	return cat, nil
}
