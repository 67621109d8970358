package catalog

import (
	"encoding/json"
	"math/rand"
	"reflect"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

var sampleFilenames = []string{
	"LC08_L2SP_123045_20200115_20200120_02_T1_SR_B4.TIF",
	"LC08_L2SP_123045_20200115_20200120_02_T1_SR_B3.TIF",
	"LC08_L2SP_123045_20200115_20200120_02_T1_SR_B2.TIF",
	"LC08_L2SP_123045_20200115_20200120_02_T1_ST_B10.TIF",
	"LC08_L2SP_123045_20200615_20200620_02_T1_SR_B6.TIF",
	"LC09_L2SP_123045_20210320_20210325_02_T1_SR_B4.TIF",
	"LC09_L2SP_123045_20210320_20210325_02_T1_ST_B10.TIF",
}

func TestOrganizeByYear_Structure(t *testing.T) {
	cat := OrganizeByYear(sampleFilenames, zerolog.Nop())

	if len(cat) != 2 {
		t.Fatalf("got %d years, want 2", len(cat))
	}

	agg2020 := cat["2020"]
	if agg2020 == nil {
		t.Fatal("missing year 2020")
	}
	if !reflect.DeepEqual(agg2020.Satellites, []string{"LC08"}) {
		t.Errorf("2020 satellites = %v, want [LC08]", agg2020.Satellites)
	}
	if !reflect.DeepEqual(agg2020.CorrectionLevels, []string{"L2SP"}) {
		t.Errorf("2020 correction levels = %v, want [L2SP]", agg2020.CorrectionLevels)
	}
	if len(agg2020.Values) != 2 {
		t.Fatalf("2020 has %d groups, want 2", len(agg2020.Values))
	}
	// Groups sorted by acquisition date ascending.
	if agg2020.Values[0].AcquisitionDate != "20200115" || agg2020.Values[1].AcquisitionDate != "20200615" {
		t.Errorf("2020 group order = %s, %s; want 20200115, 20200615",
			agg2020.Values[0].AcquisitionDate, agg2020.Values[1].AcquisitionDate)
	}
	wantBands := []string{"SR_B2", "SR_B3", "SR_B4", "ST_B10"}
	if !reflect.DeepEqual(agg2020.Values[0].Bands, wantBands) {
		t.Errorf("20200115 bands = %v, want %v", agg2020.Values[0].Bands, wantBands)
	}

	agg2021 := cat["2021"]
	if agg2021 == nil {
		t.Fatal("missing year 2021")
	}
	if !reflect.DeepEqual(agg2021.Satellites, []string{"LC09"}) {
		t.Errorf("2021 satellites = %v, want [LC09]", agg2021.Satellites)
	}
}

func TestOrganizeByYear_MissingMonths(t *testing.T) {
	cat := OrganizeByYear(sampleFilenames, zerolog.Nop())

	want2020 := []string{"02", "03", "04", "05", "07", "08", "09", "10", "11", "12"}
	if !reflect.DeepEqual(cat["2020"].MissingMonths, want2020) {
		t.Errorf("2020 missing months = %v, want %v", cat["2020"].MissingMonths, want2020)
	}

	// Present and missing months must partition all twelve.
	for year, agg := range cat {
		present := make(map[string]bool)
		for _, v := range agg.Values {
			present[v.AcquisitionDate[4:6]] = true
		}
		for _, m := range agg.MissingMonths {
			if present[m] {
				t.Errorf("year %s: month %s is both present and missing", year, m)
			}
		}
		if len(present)+len(agg.MissingMonths) != 12 {
			t.Errorf("year %s: %d present + %d missing != 12",
				year, len(present), len(agg.MissingMonths))
		}
	}
}

func TestOrganizeByYear_BandDedup(t *testing.T) {
	// Same acquisition tuple, one band supplied twice: one group, no
	// duplicate band tokens.
	files := []string{
		"LC08_L2SP_123045_20200115_20200120_02_T1_SR_B4.TIF",
		"LC08_L2SP_123045_20200115_20200120_02_T1_ST_B10.TIF",
		"LC08_L2SP_123045_20200115_20200120_02_T1_SR_B4.TIF",
	}

	cat := OrganizeByYear(files, zerolog.Nop())
	agg := cat["2020"]
	if len(agg.Values) != 1 {
		t.Fatalf("got %d groups, want 1", len(agg.Values))
	}
	want := []string{"SR_B4", "ST_B10"}
	if !reflect.DeepEqual(agg.Values[0].Bands, want) {
		t.Errorf("bands = %v, want %v", agg.Values[0].Bands, want)
	}
}

func TestOrganizeByYear_SkipsMalformed(t *testing.T) {
	files := []string{
		"LC08_L2SP_123045_20200115_20200120_02_T1_SR_B4.TIF",
		"not_a_valid_filename.TIF",
		"LC08_L2SP_123045_20201301_20200120_02_T1_SR_B4.TIF", // month 13
	}

	cat := OrganizeByYear(files, zerolog.Nop())
	if len(cat) != 1 {
		t.Fatalf("got %d years, want 1", len(cat))
	}
	if len(cat["2020"].Values) != 1 {
		t.Errorf("got %d groups, want 1", len(cat["2020"].Values))
	}
}

func TestOrganizeByYear_EmptyInput(t *testing.T) {
	cat := OrganizeByYear(nil, zerolog.Nop())
	if len(cat) != 0 {
		t.Errorf("got %d years for empty input, want 0", len(cat))
	}
}

func TestOrganizeByYear_Deterministic(t *testing.T) {
	base, err := json.MarshalIndent(OrganizeByYear(sampleFilenames, zerolog.Nop()), "", "    ")
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	rng := rand.New(rand.NewSource(42))
	for range 20 {
		shuffled := make([]string, len(sampleFilenames))
		copy(shuffled, sampleFilenames)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		got, err := json.MarshalIndent(OrganizeByYear(shuffled, zerolog.Nop()), "", "    ")
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		if string(got) != string(base) {
			t.Fatalf("permuted input produced different output:\n%s\nvs\n%s", got, base)
		}
	}
}

func TestOrganizeByYear_JSONYearOrder(t *testing.T) {
	data, err := json.Marshal(OrganizeByYear(sampleFilenames, zerolog.Nop()))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	// Map keys marshal in sorted order, so 2020 must precede 2021.
	s := string(data)
	i2020 := strings.Index(s, `"2020"`)
	i2021 := strings.Index(s, `"2021"`)
	if i2020 < 0 || i2021 < 0 || i2020 > i2021 {
		t.Errorf("year keys out of order in JSON: %s", s)
	}
}

func TestCatalog_Years(t *testing.T) {
	cat := OrganizeByYear(sampleFilenames, zerolog.Nop())
	want := []string{"2020", "2021"}
	if got := cat.Years(); !reflect.DeepEqual(got, want) {
		t.Errorf("Years() = %v, want %v", got, want)
	}
}
