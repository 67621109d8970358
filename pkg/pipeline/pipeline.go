// Package pipeline implements the batch stages that turn a directory of
// Landsat Collection 2 Level-2 band files into metadata artifacts, clipped
// rasters, rendered snow and temperature imagery, per-scene measurements and
// a timelapse video. Stages are independent commands; each scans the
// directories it needs, so they can be re-run in any order once their inputs
// exist.
//
// Raster decoding, geometry clipping, image rendering and video muxing are
// behind the interfaces in pkg/raster; the stages own everything in between.
package pipeline

import (
	"errors"
	"math"
	"path/filepath"
	"sort"
	"strings"
)

// ErrEmptyDataset indicates that the original dataset directory holds no
// band files. The metadata stage treats this as fatal since every later
// stage depends on its artifacts.
var ErrEmptyDataset = errors.New("dataset is empty")

// cropSuffix tags ROI-clipped band files.
const cropSuffix = "CROPPED"

// acquisitionKey extracts the "{acquisition_date}_{wrs}" key from a derived
// artifact base name, the key format of the tags store.
func acquisitionKey(baseName string) string {
	name := strings.TrimSuffix(baseName, filepath.Ext(baseName))
	parts := strings.SplitN(name, "_", 3)
	if len(parts) < 2 {
		return name
	}
	return parts[0] + "_" + parts[1]
}

// round2 rounds to two decimal places, the precision of the tags artifacts.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// selectBands picks, for each wanted band token in order, the first path in
// group whose base name contains it. ok is false when any band is missing;
// missing then lists the absent tokens.
func selectBands(group []string, wanted []string) (selected []string, missing []string, ok bool) {
	selected = make([]string, 0, len(wanted))
	for _, band := range wanted {
		found := ""
		for _, p := range group {
			if strings.Contains(filepath.Base(p), band) {
				found = p
				break
			}
		}
		if found == "" {
			missing = append(missing, band)
			continue
		}
		selected = append(selected, found)
	}
	return selected, missing, len(missing) == 0
}

// sortedDates returns the keys of a date-grouped path map in ascending
// order so every stage walks acquisitions chronologically.
func sortedDates(grouped map[string][]string) []string {
	dates := make([]string, 0, len(grouped))
	for d := range grouped {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}
