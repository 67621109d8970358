package catalog

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrAmbiguousYear indicates a year whose aggregate carries more than one
// distinct correction level, collection number or collection category.
// Synthesized paths would be arbitrary in that case, so the caller gets an
// error instead of a silently picked value.
var ErrAmbiguousYear = errors.New("ambiguous year metadata")

// AmbiguousYearError reports which field of which year was multi-valued.
type AmbiguousYearError struct {
	Year   string
	Field  string
	Values []string
}

func (e *AmbiguousYearError) Error() string {
	return fmt.Sprintf("year %s has %d values for %s (%s): %v",
		e.Year, len(e.Values), e.Field, ErrAmbiguousYear, strings.Join(e.Values, ", "))
}

func (e *AmbiguousYearError) Unwrap() error { return ErrAmbiguousYear }

// SynthesizePaths reconstructs the full on-disk path of every band file the
// catalog describes, joined to dir. Output order is fully deterministic:
// ascending year, then acquisition-date-sorted groups, then lexicographically
// sorted bands. For a catalog built from a directory listing this reproduces
// every original filename exactly.
func SynthesizePaths(cat Catalog, dir string) ([]string, error) {
	var paths []string

	for _, year := range cat.Years() {
		agg := cat[year]

		correction, err := singleValue(year, "correction_level", agg.CorrectionLevels)
		if err != nil {
			return nil, err
		}
		number, err := singleValue(year, "collection_number", agg.CollectionNumbers)
		if err != nil {
			return nil, err
		}
		category, err := singleValue(year, "collection_category", agg.CollectionCategories)
		if err != nil {
			return nil, err
		}

		for _, group := range agg.Values {
			for _, band := range group.Bands {
				name := strings.Join([]string{
					group.Satellite,
					correction,
					group.WRS,
					group.AcquisitionDate,
					group.ProcessingDate,
					number,
					category,
					band,
				}, "_") + ".TIF"
				paths = append(paths, filepath.Join(dir, name))
			}
		}
	}

	return paths, nil
}

func singleValue(year, field string, values []string) (string, error) {
	if len(values) != 1 {
		return "", &AmbiguousYearError{Year: year, Field: field, Values: values}
	}
	return values[0], nil
}
