// Package catalog organizes decoded Landsat filenames into per-year
// aggregates and derives the artifacts downstream stages consume: the
// metadata JSON structure, the year/month text report, and the synthesized
// band file paths.
package catalog

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/oibur/snowline/pkg/landsat"
)

// AcquisitionGroup collects all band files captured in one satellite pass:
// same satellite, scene, acquisition date and processing date.
type AcquisitionGroup struct {
	Satellite       string   `json:"satellite"`
	WRS             string   `json:"wrs"`
	AcquisitionDate string   `json:"acquisition_date"`
	ProcessingDate  string   `json:"processing_date"`
	Bands           []string `json:"bands"`
}

// YearAggregate summarizes all acquisitions of one calendar year. Every
// slice is sorted so that the same input set always serializes to the same
// bytes regardless of input order.
type YearAggregate struct {
	Satellites           []string           `json:"satellites"`
	CorrectionLevels     []string           `json:"correction_level"`
	CollectionNumbers    []string           `json:"collection_number"`
	CollectionCategories []string           `json:"collection_category"`
	Values               []AcquisitionGroup `json:"values"`
	MissingMonths        []string           `json:"missing_months"`
}

// Catalog maps four-digit year strings to their aggregates. encoding/json
// marshals map keys in sorted order, which yields the required ascending
// year ordering without an extra wrapper type.
type Catalog map[string]*YearAggregate

// allMonths is the full set of two-digit month strings.
var allMonths = []string{"01", "02", "03", "04", "05", "06", "07", "08", "09", "10", "11", "12"}

type groupKey struct {
	satellite       string
	wrs             string
	acquisitionDate string
	processingDate  string
}

type yearAccumulator struct {
	satellites           map[string]struct{}
	correctionLevels     map[string]struct{}
	collectionNumbers    map[string]struct{}
	collectionCategories map[string]struct{}
	groups               map[groupKey]map[string]struct{}
}

func newYearAccumulator() *yearAccumulator {
	return &yearAccumulator{
		satellites:           make(map[string]struct{}),
		correctionLevels:     make(map[string]struct{}),
		collectionNumbers:    make(map[string]struct{}),
		collectionCategories: make(map[string]struct{}),
		groups:               make(map[groupKey]map[string]struct{}),
	}
}

// OrganizeByYear decodes each filename and folds the results into per-year
// aggregates. Filenames that do not match the product grammar are logged and
// skipped; a malformed file never aborts the batch. An empty input produces
// an empty catalog.
func OrganizeByYear(filenames []string, log zerolog.Logger) Catalog {
	years := make(map[string]*yearAccumulator)

	for _, filename := range filenames {
		c, err := landsat.Decode(filename)
		if err != nil {
			log.Warn().Str("filename", filename).Msg("could not extract information from filename")
			continue
		}

		acc, ok := years[c.Year()]
		if !ok {
			acc = newYearAccumulator()
			years[c.Year()] = acc
		}

		acc.satellites[c.Satellite] = struct{}{}
		acc.correctionLevels[c.CorrectionLevel] = struct{}{}
		acc.collectionNumbers[c.CollectionNumber] = struct{}{}
		acc.collectionCategories[c.CollectionCategory] = struct{}{}

		key := groupKey{c.Satellite, c.WRS, c.AcquisitionDate, c.ProcessingDate}
		bands, ok := acc.groups[key]
		if !ok {
			bands = make(map[string]struct{})
			acc.groups[key] = bands
		}
		bands[c.SurfaceBand()] = struct{}{}
	}

	cat := make(Catalog, len(years))
	for year, acc := range years {
		cat[year] = acc.finalize()
	}
	return cat
}

// finalize converts the set-based accumulator into the sorted, emission-ready
// aggregate. Sets have no inherent order, so every collection is sorted here
// before it can be read back.
func (acc *yearAccumulator) finalize() *YearAggregate {
	agg := &YearAggregate{
		Satellites:           sortedKeys(acc.satellites),
		CorrectionLevels:     sortedKeys(acc.correctionLevels),
		CollectionNumbers:    sortedKeys(acc.collectionNumbers),
		CollectionCategories: sortedKeys(acc.collectionCategories),
	}

	agg.Values = make([]AcquisitionGroup, 0, len(acc.groups))
	for key, bands := range acc.groups {
		agg.Values = append(agg.Values, AcquisitionGroup{
			Satellite:       key.satellite,
			WRS:             key.wrs,
			AcquisitionDate: key.acquisitionDate,
			ProcessingDate:  key.processingDate,
			Bands:           sortedKeys(bands),
		})
	}
	sort.Slice(agg.Values, func(i, j int) bool {
		a, b := agg.Values[i], agg.Values[j]
		if a.AcquisitionDate != b.AcquisitionDate {
			return a.AcquisitionDate < b.AcquisitionDate
		}
		// Same-day captures by different satellites or scenes: fall back to
		// the remaining key fields to keep the order stable.
		if a.Satellite != b.Satellite {
			return a.Satellite < b.Satellite
		}
		if a.WRS != b.WRS {
			return a.WRS < b.WRS
		}
		return a.ProcessingDate < b.ProcessingDate
	})

	present := make(map[string]struct{})
	for _, v := range agg.Values {
		present[v.AcquisitionDate[4:6]] = struct{}{}
	}
	agg.MissingMonths = make([]string, 0, 12)
	for _, m := range allMonths {
		if _, ok := present[m]; !ok {
			agg.MissingMonths = append(agg.MissingMonths, m)
		}
	}

	return agg
}

// Years returns the catalog's years in ascending order.
func (c Catalog) Years() []string {
	years := make([]string, 0, len(c))
	for y := range c {
		years = append(years, y)
	}
	sort.Strings(years)
	return years
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
