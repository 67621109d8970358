// Package tags maintains the per-acquisition measurement artifacts: the
// tags JSON (snow cover percentage, mean ROI temperature per scene) and the
// temperature boundaries text file used to fix the color scale across
// temperature renderings.
package tags

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Entry holds the measurements attached to one acquisition.
type Entry struct {
	SnowCoverPercent *float64 `json:"snow_cover_per,omitempty"`
	TemperatureROI   *float64 `json:"temperature_roi,omitempty"`
}

// Store maps acquisition keys ("{acquisition_date}_{wrs}") to entries.
// JSON output is keyed and therefore date-sorted by encoding/json.
type Store map[string]*Entry

// Key builds the acquisition key used throughout the tags artifacts.
func Key(acquisitionDate, wrs string) string {
	return acquisitionDate + "_" + wrs
}

// Load reads the tags JSON at path. A missing file yields an empty store so
// the first measuring stage can start from scratch.
func Load(path string) (Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Store{}, nil
		}
		return nil, fmt.Errorf("read tags file: %w", err)
	}

	var s Store
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse tags file: %w", err)
	}
	return s, nil
}

// Save writes the store as indented JSON at path.
func (s Store) Save(path string) error {
	data, err := json.MarshalIndent(s, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write tags file: %w", err)
	}
	return nil
}

// entry returns the entry for key, creating it if needed.
func (s Store) entry(key string) *Entry {
	e, ok := s[key]
	if !ok {
		e = &Entry{}
		s[key] = e
	}
	return e
}

// SetSnowCover records the snow cover percentage for an acquisition.
func (s Store) SetSnowCover(key string, pct float64) {
	s.entry(key).SnowCoverPercent = &pct
}

// SetTemperatureROI records the mean ROI temperature for an acquisition.
func (s Store) SetTemperatureROI(key string, celsius float64) {
	s.entry(key).TemperatureROI = &celsius
}

// Boundaries is the global temperature range across all processed scenes.
type Boundaries struct {
	Min float64
	Max float64
}

// FormatBoundaries renders the boundaries in the fixed single-line format
// consumed by the temperature stage.
func FormatBoundaries(b Boundaries) string {
	return fmt.Sprintf("temperature_roi_min: %v, temperature_roi_max: %v", b.Min, b.Max)
}

// ParseBoundaries parses the single-line boundaries format.
func ParseBoundaries(s string) (Boundaries, error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != 2 {
		return Boundaries{}, fmt.Errorf("boundaries: expected 2 fields, got %d in %q", len(parts), s)
	}

	var vals [2]float64
	for i, part := range parts {
		_, raw, ok := strings.Cut(part, ":")
		if !ok {
			return Boundaries{}, fmt.Errorf("boundaries: missing ':' in %q", part)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return Boundaries{}, fmt.Errorf("boundaries: parse %q: %w", part, err)
		}
		vals[i] = v
	}

	return Boundaries{Min: vals[0], Max: vals[1]}, nil
}

// WriteBoundaries writes the boundaries file at path.
func WriteBoundaries(path string, b Boundaries) error {
	if err := os.WriteFile(path, []byte(FormatBoundaries(b)), 0644); err != nil {
		return fmt.Errorf("write boundaries file: %w", err)
	}
	return nil
}

// ReadBoundaries reads the boundaries file at path.
func ReadBoundaries(path string) (Boundaries, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Boundaries{}, fmt.Errorf("read boundaries file: %w", err)
	}
	return ParseBoundaries(string(data))
}
