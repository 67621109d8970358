// Package config loads the pipeline configuration. Defaults are built in,
// an optional YAML file overrides them, and SNOWLINE_* environment variables
// override both. The loaded Config is passed explicitly into every stage;
// nothing reads configuration through a global.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// envPrefix namespaces the environment variables, e.g.
// SNOWLINE_DATASET__PATH overrides dataset.path ("__" nests, "_" stays
// part of the key).
const envPrefix = "SNOWLINE_"

// Dataset holds the directory layout and artifact file names.
type Dataset struct {
	Path           string `koanf:"path"`
	ShapefileDir   string `koanf:"shapefile_dir"`
	ShapefileName  string `koanf:"shapefile_name"`
	ImageExtension string `koanf:"image_extension"`
	MetadataFile   string `koanf:"metadata_file"`
	ReportFile     string `koanf:"report_file"`
	RecordsFile    string `koanf:"records_file"`
	TagsFile       string `koanf:"tags_file"`
	BoundariesFile string `koanf:"boundaries_file"`
	VideoFile      string `koanf:"video_file"`
}

// Factors holds the Level-2 product constants and band selections.
type Factors struct {
	NDSIThreshold     float64  `koanf:"ndsi_threshold"`
	KelvinOffset      float64  `koanf:"kelvin_offset"`
	TemperatureScale  float64  `koanf:"temperature_scale"`
	TemperatureOffset float64  `koanf:"temperature_offset"`
	ReflectanceScale  float64  `koanf:"reflectance_scale"`
	ReflectanceOffset float64  `koanf:"reflectance_offset"`
	RGBBands          []string `koanf:"rgb_bands"`
	NDSIBands         []string `koanf:"ndsi_bands"`
}

// Fetch holds the S3 source for downloading original band files.
type Fetch struct {
	Bucket        string   `koanf:"bucket"`
	RequesterPays bool     `koanf:"requester_pays"`
	Bands         []string `koanf:"bands"`
}

// Video holds frame-to-video settings.
type Video struct {
	FrameRate int `koanf:"frame_rate"`
}

// Config is the full pipeline configuration.
type Config struct {
	Dataset Dataset `koanf:"dataset"`
	Factors Factors `koanf:"factors"`
	Fetch   Fetch   `koanf:"fetch"`
	Video   Video   `koanf:"video"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Dataset: Dataset{
			Path:           "dataset",
			ShapefileDir:   "shapefile",
			ShapefileName:  "demo.shp",
			ImageExtension: "TIF",
			MetadataFile:   "landsat_images_metadata.json",
			ReportFile:     "landsat_images_report.txt",
			RecordsFile:    "landsat_images_records.parquet",
			TagsFile:       "landsat_images_tags.json",
			BoundariesFile: "temperature_roi_boundaries.txt",
			VideoFile:      "oibur_video.mp4",
		},
		Factors: Factors{
			NDSIThreshold:     0.4,
			KelvinOffset:      273.15,
			TemperatureScale:  0.00341802,
			TemperatureOffset: 149,
			ReflectanceScale:  0.0000275,
			ReflectanceOffset: -0.2,
			RGBBands:          []string{"B4", "B3", "B2"},
			NDSIBands:         []string{"B3", "B6"},
		},
		Fetch: Fetch{
			Bucket:        "usgs-landsat",
			RequesterPays: true,
			Bands:         []string{"SR_B2", "SR_B3", "SR_B4", "SR_B5", "SR_B6", "ST_B10"},
		},
		Video: Video{
			FrameRate: 2,
		},
	}
}

// Load builds the configuration from defaults, the optional YAML file at
// path, and SNOWLINE_* environment variables, in that precedence order.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
		return strings.ReplaceAll(key, "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the fields every stage depends on.
func (c *Config) Validate() error {
	if c.Dataset.Path == "" {
		return fmt.Errorf("dataset.path must not be empty")
	}
	if c.Dataset.ImageExtension == "" {
		return fmt.Errorf("dataset.image_extension must not be empty")
	}
	if c.Factors.NDSIThreshold < -1 || c.Factors.NDSIThreshold > 1 {
		return fmt.Errorf("factors.ndsi_threshold %v outside [-1, 1]", c.Factors.NDSIThreshold)
	}
	if len(c.Factors.RGBBands) != 3 {
		return fmt.Errorf("factors.rgb_bands needs exactly 3 bands, got %d", len(c.Factors.RGBBands))
	}
	if len(c.Factors.NDSIBands) != 2 {
		return fmt.Errorf("factors.ndsi_bands needs exactly 2 bands, got %d", len(c.Factors.NDSIBands))
	}
	if c.Video.FrameRate <= 0 {
		return fmt.Errorf("video.frame_rate must be positive, got %d", c.Video.FrameRate)
	}
	return nil
}

// Directory layout under Dataset.Path. Each stage writes into its own
// subdirectory so reruns overwrite cleanly.

// OriginalDir is where source band files live (and fetch downloads to).
func (c *Config) OriginalDir() string { return filepath.Join(c.Dataset.Path, "original") }

// ClippedDir holds ROI-clipped band files.
func (c *Config) ClippedDir() string { return filepath.Join(c.Dataset.Path, "roi_clipped") }

// ColorDir holds true-color composites.
func (c *Config) ColorDir() string { return filepath.Join(c.Dataset.Path, "roi_clipped_color") }

// BinaryDir holds binary snow masks.
func (c *Config) BinaryDir() string { return filepath.Join(c.Dataset.Path, "roi_clipped_binary") }

// NDSIDir holds continuous NDSI renderings.
func (c *Config) NDSIDir() string { return filepath.Join(c.Dataset.Path, "roi_clipped_ndsi") }

// TemperatureDir holds temperature map renderings.
func (c *Config) TemperatureDir() string {
	return filepath.Join(c.Dataset.Path, "roi_clipped_temperature")
}

// FramesDir holds composed visualization frames.
func (c *Config) FramesDir() string { return filepath.Join(c.Dataset.Path, "frame_visualization") }

// VideoDir holds the rendered video.
func (c *Config) VideoDir() string { return filepath.Join(c.Dataset.Path, "video") }

// ShapefilePath is the full path of the ROI shapefile.
func (c *Config) ShapefilePath() string {
	return filepath.Join(c.Dataset.ShapefileDir, c.Dataset.ShapefileName)
}

// MetadataPath is the full path of the metadata JSON artifact.
func (c *Config) MetadataPath() string {
	return filepath.Join(c.Dataset.Path, c.Dataset.MetadataFile)
}

// ReportPath is the full path of the text report artifact.
func (c *Config) ReportPath() string {
	return filepath.Join(c.Dataset.Path, c.Dataset.ReportFile)
}

// RecordsPath is the full path of the parquet records artifact.
func (c *Config) RecordsPath() string {
	return filepath.Join(c.Dataset.Path, c.Dataset.RecordsFile)
}

// TagsPath is the full path of the tags JSON artifact.
func (c *Config) TagsPath() string {
	return filepath.Join(c.Dataset.Path, c.Dataset.TagsFile)
}

// BoundariesPath is the full path of the temperature boundaries artifact.
func (c *Config) BoundariesPath() string {
	return filepath.Join(c.Dataset.Path, c.Dataset.BoundariesFile)
}

// VideoPath is the full path of the rendered video.
func (c *Config) VideoPath() string {
	return filepath.Join(c.VideoDir(), c.Dataset.VideoFile)
}
