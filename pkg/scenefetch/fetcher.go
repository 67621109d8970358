package scenefetch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/oibur/snowline/internal/logctx"
	"github.com/oibur/snowline/pkg/humanfmt"
	"github.com/oibur/snowline/pkg/landsat"
)

// FetchConfig configures a scene fetch.
type FetchConfig struct {
	// Bucket is the source bucket (usually usgs-landsat).
	Bucket string
	// Prefixes are the scene prefixes to list, e.g.
	// collection02/level-2/standard/oli-tirs/2020/123/045/LC08_L2SP_123045_20200115_20200824_02_T1/.
	Prefixes []string
	// Bands selects which band files to download by their {surface}_{band}
	// token, e.g. SR_B3 or ST_B10. Empty means all bands.
	Bands []string
	// DestDir is the local directory downloads land in.
	DestDir string
	// Concurrency is the number of parallel downloads (default: 4).
	Concurrency int
	// Overwrite re-downloads files that already exist locally.
	Overwrite bool
}

// FetchResult summarizes a completed fetch.
type FetchResult struct {
	// Downloaded are the local paths of files fetched this run.
	Downloaded []string
	// Bytes is the total size downloaded this run.
	Bytes int64
	// SkippedExisting counts files already present locally.
	SkippedExisting int
	// SkippedKeys counts listed keys that were not decodable band files
	// or not among the selected bands.
	SkippedKeys int
}

// Fetcher downloads Landsat scene band files.
type Fetcher struct {
	client *Client
	cfg    FetchConfig
	bands  map[string]struct{}
}

// NewFetcher creates a fetcher for the given scenes.
func NewFetcher(client *Client, cfg FetchConfig) *Fetcher {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	bands := make(map[string]struct{}, len(cfg.Bands))
	for _, b := range cfg.Bands {
		bands[b] = struct{}{}
	}
	return &Fetcher{client: client, cfg: cfg, bands: bands}
}

// wanted reports whether an object key names a band file we should fetch,
// returning the local base name when it does.
func (f *Fetcher) wanted(key string) (string, bool) {
	name := filepath.Base(key)
	c, err := landsat.Decode(name)
	if err != nil {
		return "", false
	}
	if len(f.bands) > 0 {
		if _, ok := f.bands[c.SurfaceBand()]; !ok {
			return "", false
		}
	}
	return name, true
}

// Fetch lists every configured prefix and downloads the selected band files
// into DestDir. Files already on disk are kept unless Overwrite is set.
func (f *Fetcher) Fetch(ctx context.Context) (*FetchResult, error) {
	log := logctx.FromContext(ctx).With().Str("bucket", f.cfg.Bucket).Logger()
	started := time.Now()

	if err := os.MkdirAll(f.cfg.DestDir, 0755); err != nil {
		return nil, fmt.Errorf("create download dir: %w", err)
	}

	// key -> local base name; the map dedupes keys listed under
	// overlapping prefixes.
	targets := make(map[string]string)
	result := &FetchResult{}

	for _, prefix := range f.cfg.Prefixes {
		keys, err := f.client.ListKeys(ctx, f.cfg.Bucket, prefix)
		if err != nil {
			return nil, err
		}
		log.Debug().Str("prefix", prefix).Int("keys", len(keys)).Msg("listed scene prefix")

		for _, key := range keys {
			name, ok := f.wanted(key)
			if !ok {
				result.SkippedKeys++
				continue
			}
			targets[key] = name
		}
	}

	keys := make([]string, 0, len(targets))
	for key := range targets {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(f.cfg.Concurrency)

	for _, key := range keys {
		destPath := filepath.Join(f.cfg.DestDir, targets[key])

		if !f.cfg.Overwrite {
			if _, err := os.Stat(destPath); err == nil {
				result.SkippedExisting++
				continue
			}
		}

		g.Go(func() error {
			n, err := f.client.DownloadToFile(ctx, f.cfg.Bucket, key, destPath)
			if err != nil {
				return err
			}
			log.Debug().Str("key", key).Int64("bytes", n).Msg("downloaded band file")

			mu.Lock()
			result.Downloaded = append(result.Downloaded, destPath)
			result.Bytes += n
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("wait for downloads: %w", err)
	}

	sort.Strings(result.Downloaded)
	log.Info().
		Int("downloaded", len(result.Downloaded)).
		Str("size", humanfmt.Bytes(result.Bytes)).
		Str("throughput", humanfmt.Throughput(result.Bytes, time.Since(started))).
		Int("skipped_existing", result.SkippedExisting).
		Int("skipped_keys", result.SkippedKeys).
		Msg("scene fetch complete")
	return result, nil
}
