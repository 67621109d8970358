package catalog

import (
	"errors"
	"path/filepath"
	"reflect"
	"sort"
	"testing"

	"github.com/rs/zerolog"
)

func TestSynthesizePaths_RoundTrip(t *testing.T) {
	cat := OrganizeByYear(sampleFilenames, zerolog.Nop())

	paths, err := SynthesizePaths(cat, "/data/original")
	if err != nil {
		t.Fatalf("SynthesizePaths failed: %v", err)
	}

	want := make([]string, len(sampleFilenames))
	for i, f := range sampleFilenames {
		want[i] = filepath.Join("/data/original", f)
	}
	sort.Strings(want)

	got := make([]string, len(paths))
	copy(got, paths)
	sort.Strings(got)

	if !reflect.DeepEqual(got, want) {
		t.Errorf("synthesized paths = %v, want %v", got, want)
	}
}

func TestSynthesizePaths_Order(t *testing.T) {
	cat := OrganizeByYear(sampleFilenames, zerolog.Nop())

	paths, err := SynthesizePaths(cat, "/data/original")
	if err != nil {
		t.Fatalf("SynthesizePaths failed: %v", err)
	}

	// Ascending year, then acquisition date, then sorted bands.
	want := []string{
		"/data/original/LC08_L2SP_123045_20200115_20200120_02_T1_SR_B2.TIF",
		"/data/original/LC08_L2SP_123045_20200115_20200120_02_T1_SR_B3.TIF",
		"/data/original/LC08_L2SP_123045_20200115_20200120_02_T1_SR_B4.TIF",
		"/data/original/LC08_L2SP_123045_20200115_20200120_02_T1_ST_B10.TIF",
		"/data/original/LC08_L2SP_123045_20200615_20200620_02_T1_SR_B6.TIF",
		"/data/original/LC09_L2SP_123045_20210320_20210325_02_T1_SR_B4.TIF",
		"/data/original/LC09_L2SP_123045_20210320_20210325_02_T1_ST_B10.TIF",
	}
	if !reflect.DeepEqual(paths, want) {
		t.Errorf("paths = %v, want %v", paths, want)
	}
}

func TestSynthesizePaths_AmbiguousYear(t *testing.T) {
	// Two correction levels in one year: synthesis must refuse rather than
	// pick one arbitrarily.
	files := []string{
		"LC08_L2SP_123045_20200115_20200120_02_T1_SR_B4.TIF",
		"LC08_L2SR_123045_20200615_20200620_02_T1_SR_B4.TIF",
	}
	cat := OrganizeByYear(files, zerolog.Nop())

	_, err := SynthesizePaths(cat, "/data/original")
	if !errors.Is(err, ErrAmbiguousYear) {
		t.Fatalf("err = %v, want ErrAmbiguousYear", err)
	}

	var ambErr *AmbiguousYearError
	if !errors.As(err, &ambErr) {
		t.Fatalf("err is not *AmbiguousYearError: %v", err)
	}
	if ambErr.Year != "2020" {
		t.Errorf("Year = %q, want 2020", ambErr.Year)
	}
	if ambErr.Field != "correction_level" {
		t.Errorf("Field = %q, want correction_level", ambErr.Field)
	}
	if !reflect.DeepEqual(ambErr.Values, []string{"L2SP", "L2SR"}) {
		t.Errorf("Values = %v, want [L2SP L2SR]", ambErr.Values)
	}
}

func TestSynthesizePaths_AmbiguousCategory(t *testing.T) {
	files := []string{
		"LC08_L2SP_123045_20200115_20200120_02_T1_SR_B4.TIF",
		"LC08_L2SP_123045_20200615_20200620_02_T2_SR_B4.TIF",
	}
	cat := OrganizeByYear(files, zerolog.Nop())

	_, err := SynthesizePaths(cat, "/data")
	var ambErr *AmbiguousYearError
	if !errors.As(err, &ambErr) {
		t.Fatalf("err = %v, want *AmbiguousYearError", err)
	}
	if ambErr.Field != "collection_category" {
		t.Errorf("Field = %q, want collection_category", ambErr.Field)
	}
}

func TestSynthesizePaths_EmptyCatalog(t *testing.T) {
	paths, err := SynthesizePaths(Catalog{}, "/data")
	if err != nil {
		t.Fatalf("SynthesizePaths failed: %v", err)
	}
	if len(paths) != 0 {
		t.Errorf("got %d paths for empty catalog, want 0", len(paths))
	}
}
