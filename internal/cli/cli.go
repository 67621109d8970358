// Package cli wires the snowline command tree: metadata and imagery
// generation under "make", scene downloads under "fetch".
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oibur/snowline/internal/config"
	"github.com/oibur/snowline/internal/logctx"
	"github.com/oibur/snowline/pkg/logging"
	"github.com/oibur/snowline/pkg/pipeline"
	"github.com/oibur/snowline/pkg/raster"
	"github.com/oibur/snowline/pkg/scenefetch"
)

// NewRootCmd builds the full command tree. Tests build their own tree so
// flag state never leaks between runs.
func NewRootCmd() *cobra.Command {
	var (
		debug      bool
		pretty     bool
		configPath string
		cfg        *config.Config
	)

	root := &cobra.Command{
		Use:   "snowline",
		Short: "Landsat snow cover batch pipeline",
		Long: `snowline turns a directory of Landsat Collection 2 Level-2 band files
into metadata artifacts, ROI-clipped rasters, snow and temperature imagery,
per-scene measurements and a timelapse video.

Stages run as separate commands so each can be re-run once its inputs exist:

  snowline make metadata   scan the dataset, write metadata/report/records
  snowline make clip       clip every band file to the ROI shapefile
  snowline make color      render true-color composites
  snowline make binary     render binary snow masks from the NDSI
  snowline make ndsi       render continuous NDSI images
  snowline make temp       render temperature maps
  snowline make snow       measure snow cover percentages into the tags file
  snowline make temp-roi   measure mean ROI temperatures into the tags file
  snowline make video      encode visualization frames into a video
  snowline fetch           download band files from the Landsat S3 archive`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logging.Init(debug, pretty)
			cmd.SetContext(logctx.WithLogger(cmd.Context(), *logging.L()))
			c, err := config.Load(configPath)
			if err != nil {
				return err
			}
			cfg = c
			return nil
		},
	}
	root.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	root.PersistentFlags().BoolVar(&pretty, "pretty", false, "human-friendly console logging")
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")

	getCfg := func() *config.Config { return cfg }
	root.AddCommand(newMakeCmd(getCfg))
	root.AddCommand(newFetchCmd(getCfg))
	return root
}

// Execute runs the CLI.
func Execute() error {
	return NewRootCmd().Execute()
}

// collaborators are the raster backends the stages delegate to: pure-Go
// TIFF reading and PNG rendering, gdalwarp for geometry clipping, ffmpeg
// for video encoding.
type collaborators struct {
	reader   raster.Reader
	renderer raster.Renderer
	clipper  raster.Clipper
	encoder  raster.VideoEncoder
}

func newCollaborators() collaborators {
	reader := raster.TIFFReader{}
	return collaborators{
		reader:   reader,
		renderer: raster.PNGRenderer{},
		clipper:  &raster.GDALClipper{Reader: reader},
		encoder:  &raster.FFmpegEncoder{},
	}
}

func newMakeCmd(getCfg func() *config.Config) *cobra.Command {
	makeCmd := &cobra.Command{
		Use:   "make",
		Short: "Generate dataset artifacts",
	}

	makeCmd.AddCommand(
		&cobra.Command{
			Use:   "metadata",
			Short: "Scan the dataset and write the metadata JSON, text report and parquet records",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return pipeline.Metadata(cmd.Context(), getCfg())
			},
		},
		&cobra.Command{
			Use:   "clip",
			Short: "Clip every band file in the metadata to the ROI shapefile",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return pipeline.Clip(cmd.Context(), getCfg(), newCollaborators().clipper)
			},
		},
		&cobra.Command{
			Use:   "color",
			Short: "Render true-color composites from the clipped RGB bands",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				c := newCollaborators()
				return pipeline.TrueColor(cmd.Context(), getCfg(), c.reader, c.renderer)
			},
		},
		&cobra.Command{
			Use:   "binary",
			Short: "Render binary snow masks by thresholding the NDSI",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				c := newCollaborators()
				return pipeline.Binary(cmd.Context(), getCfg(), c.reader, c.renderer)
			},
		},
		&cobra.Command{
			Use:   "ndsi",
			Short: "Render continuous NDSI images",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				c := newCollaborators()
				return pipeline.NDSI(cmd.Context(), getCfg(), c.reader, c.renderer)
			},
		},
		&cobra.Command{
			Use:   "temp",
			Short: "Render temperature maps from the surface temperature band",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				c := newCollaborators()
				return pipeline.Temperature(cmd.Context(), getCfg(), c.reader, c.renderer)
			},
		},
		&cobra.Command{
			Use:   "snow",
			Short: "Measure snow cover percentages into the tags file",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				c := newCollaborators()
				return pipeline.SnowCover(cmd.Context(), getCfg(), c.clipper, c.renderer)
			},
		},
		&cobra.Command{
			Use:   "temp-roi",
			Short: "Measure mean ROI temperatures into the tags file and write the boundaries",
			Long: `temp-roi computes the NaN-ignoring mean temperature of every clipped
surface temperature band, merges the per-acquisition means into the tags
file, and writes the global min/max to the boundaries file that "make temp"
uses to fix its color scale.`,
			Args: cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return pipeline.TemperatureROI(cmd.Context(), getCfg(), newCollaborators().reader)
			},
		},
		&cobra.Command{
			Use:   "video",
			Short: "Encode the visualization frames into a video",
			Long: `video concatenates the PNG frames found in the frame_visualization
directory, sorted by name, into a single video. Frames are composed
externally (for example from the rendered color, binary and temperature
images); the command succeeds without output when the directory is empty.`,
			Args: cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return pipeline.Video(cmd.Context(), getCfg(), newCollaborators().encoder)
			},
		},
	)
	return makeCmd
}

func newFetchCmd(getCfg func() *config.Config) *cobra.Command {
	var (
		bands       []string
		overwrite   bool
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "fetch <scene-prefix>...",
		Short: "Download Landsat band files from the S3 archive",
		Long: `fetch lists the given scene prefixes in the configured bucket and
downloads the selected band files into the original dataset directory, e.g.

  snowline fetch collection02/level-2/standard/oli-tirs/2020/123/045/LC08_L2SP_123045_20200115_20200824_02_T1/`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := getCfg()
			ctx := cmd.Context()

			client, err := scenefetch.NewClient(ctx, cfg.Fetch.RequesterPays)
			if err != nil {
				return err
			}
			if len(bands) == 0 {
				bands = cfg.Fetch.Bands
			}

			fetcher := scenefetch.NewFetcher(client, scenefetch.FetchConfig{
				Bucket:      cfg.Fetch.Bucket,
				Prefixes:    args,
				Bands:       bands,
				DestDir:     cfg.OriginalDir(),
				Concurrency: concurrency,
				Overwrite:   overwrite,
			})
			res, err := fetcher.Fetch(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "downloaded %d file(s), %d already present\n",
				len(res.Downloaded), res.SkippedExisting)
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&bands, "bands", nil, "band tokens to download (default: configured fetch.bands)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "re-download files that already exist locally")
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "parallel downloads")
	return cmd
}
