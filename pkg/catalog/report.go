package catalog

import (
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/oibur/snowline/pkg/landsat"
)

// reportRule separates year blocks in the text report.
const reportRule = "--------------------------------------------------------------------------------"

// RenderReport decodes the filenames and renders the human-readable
// year/month report. Filenames are grouped year -> month -> band and listed
// verbatim in first-seen order within each band, so the report can be
// eyeballed against the source directory. Decode failures are logged and
// skipped, matching OrganizeByYear.
func RenderReport(filenames []string, log zerolog.Logger) string {
	type monthData struct {
		bandFiles map[string][]string
	}
	type yearData struct {
		months map[string]*monthData
	}

	years := make(map[string]*yearData)
	for _, filename := range filenames {
		c, err := landsat.Decode(filename)
		if err != nil {
			log.Warn().Str("filename", filename).Msg("could not extract information from filename")
			continue
		}

		yd, ok := years[c.Year()]
		if !ok {
			yd = &yearData{months: make(map[string]*monthData)}
			years[c.Year()] = yd
		}
		md, ok := yd.months[c.Month()]
		if !ok {
			md = &monthData{bandFiles: make(map[string][]string)}
			yd.months[c.Month()] = md
		}
		band := c.SurfaceBand()
		md.bandFiles[band] = append(md.bandFiles[band], filename)
	}

	sortedYears := make([]string, 0, len(years))
	for y := range years {
		sortedYears = append(sortedYears, y)
	}
	sort.Strings(sortedYears)

	var b strings.Builder
	for yi, year := range sortedYears {
		yd := years[year]

		presentMonths := make([]string, 0, len(yd.months))
		for m := range yd.months {
			presentMonths = append(presentMonths, m)
		}
		sort.Strings(presentMonths)

		present := make(map[string]struct{}, len(presentMonths))
		for _, m := range presentMonths {
			present[m] = struct{}{}
		}
		missing := make([]string, 0, 12)
		for _, m := range allMonths {
			if _, ok := present[m]; !ok {
				missing = append(missing, m)
			}
		}

		b.WriteString("Year: " + year + "\n")
		if len(missing) > 0 {
			b.WriteString("Missing Months: " + strings.Join(missing, ", ") + "\n")
		}

		for _, month := range presentMonths {
			md := yd.months[month]
			b.WriteString("  Month: " + month + "\n")

			bands := make([]string, 0, len(md.bandFiles))
			for band := range md.bandFiles {
				bands = append(bands, band)
			}
			sort.Strings(bands)

			for _, band := range bands {
				b.WriteString("    (" + band + ") - " + strings.Join(md.bandFiles[band], ", ") + "\n")
			}
		}

		if yi < len(sortedYears)-1 {
			b.WriteString(reportRule + "\n")
		}
	}

	return b.String()
}
