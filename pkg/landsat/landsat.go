// Package landsat decodes and re-synthesizes Landsat Collection 2 Level-2
// product filenames.
//
// Filename format: LXSS_LLLL_PPPRRR_YYYYMMDD_yyyymmdd_CC_TX_SX_BX.TIF
// as described in the Landsat Collection 2 Data Dictionary:
// https://www.usgs.gov/centers/eros/science/landsat-collection-2-data-dictionary#landsat_product_id_l2
//
//	LXSS     - L (Landsat), X (sensor), SS (satellite number)
//	LLLL     - processing correction level (L2SP or L2SR)
//	PPPRRR   - WRS path and row
//	YYYYMMDD - acquisition date
//	yyyymmdd - processing date
//	CC       - collection number
//	TX       - collection category (RT, T1, T2)
//	SX       - surface type (e.g. SR, ST)
//	BX       - band identifier
package landsat

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// ErrNoMatch indicates a filename that does not conform to the Landsat
// Collection 2 product grammar. Callers processing a batch should skip the
// file and continue.
var ErrNoMatch = errors.New("filename does not match Landsat product format")

// dateExpr validates the year prefix (19xx/20xx), month (01-12) and day
// (01-31). The day is not checked against the actual month length, so
// e.g. 20200230 is accepted. That leniency is deliberate: downstream code
// only slices out year and month.
const dateExpr = `(?:19|20)\d{2}(?:0[1-9]|1[0-2])(?:0[1-9]|[12][0-9]|3[01])`

var filenamePattern = regexp.MustCompile(
	`^(?P<satellite>L[COTEM][0-9]{2})_` +
		`(?P<correction_level>L2SP|L2SR)_` +
		`(?P<wrs>\d{6})_` +
		`(?P<acquisition_date>` + dateExpr + `)_` +
		`(?P<processing_date>` + dateExpr + `)_` +
		`(?P<collection_number>[0-9]{2})_` +
		`(?P<collection_category>RT|T1|T2)_` +
		`(?P<surface>[A-Z]{2})_` +
		`(?P<band>[A-Z0-9_]+)` +
		`\.TIF$`)

// derivedPattern matches the date/WRS/band prefix of filenames produced by
// DerivedFilename, used to regroup processed artifacts by acquisition date.
var derivedPattern = regexp.MustCompile(`(\d{8})_(\d{6})_([A-Z]{2})_([A-Z0-9_]+)`)

// Components holds the identity fields of one Landsat band file.
type Components struct {
	Satellite          string
	CorrectionLevel    string
	WRS                string
	AcquisitionDate    string
	ProcessingDate     string
	CollectionNumber   string
	CollectionCategory string
	Surface            string
	Band               string
}

// Decode parses a Landsat product filename into its components. The input
// must be a base name with the directory already stripped. A filename either
// matches the full grammar or Decode returns ErrNoMatch; there is no partial
// match.
func Decode(filename string) (*Components, error) {
	m := filenamePattern.FindStringSubmatch(filename)
	if m == nil {
		return nil, fmt.Errorf("decode %q: %w", filename, ErrNoMatch)
	}

	c := &Components{}
	for i, name := range filenamePattern.SubexpNames() {
		switch name {
		case "satellite":
			c.Satellite = m[i]
		case "correction_level":
			c.CorrectionLevel = m[i]
		case "wrs":
			c.WRS = m[i]
		case "acquisition_date":
			c.AcquisitionDate = m[i]
		case "processing_date":
			c.ProcessingDate = m[i]
		case "collection_number":
			c.CollectionNumber = m[i]
		case "collection_category":
			c.CollectionCategory = m[i]
		case "surface":
			c.Surface = m[i]
		case "band":
			c.Band = m[i]
		}
	}
	return c, nil
}

// Year returns the four-digit acquisition year.
func (c *Components) Year() string {
	return c.AcquisitionDate[:4]
}

// Month returns the two-digit acquisition month.
func (c *Components) Month() string {
	return c.AcquisitionDate[4:6]
}

// SurfaceBand returns the combined surface and band token, e.g. "SR_B4".
func (c *Components) SurfaceBand() string {
	return c.Surface + "_" + c.Band
}

// Filename re-joins the components into the canonical product filename.
// It is the exact inverse of Decode for any filename Decode accepts.
func (c *Components) Filename() string {
	return strings.Join([]string{
		c.Satellite,
		c.CorrectionLevel,
		c.WRS,
		c.AcquisitionDate,
		c.ProcessingDate,
		c.CollectionNumber,
		c.CollectionCategory,
		c.Surface,
		c.Band,
	}, "_") + ".TIF"
}

// DerivedFilename builds the shorter name used for processed artifacts:
// {acquisition}_{wrs}_{surface}_{band}_{SUFFIX}.{ext}.
func (c *Components) DerivedFilename(suffix, ext string) string {
	return fmt.Sprintf("%s_%s_%s_%s_%s.%s",
		c.AcquisitionDate, c.WRS, c.Surface, c.Band, suffix, ext)
}

// GroupPathsByDate groups derived artifact paths by the eight-digit
// acquisition date embedded in their base names. Paths whose names do not
// carry the date/WRS/band prefix are ignored.
func GroupPathsByDate(paths []string) map[string][]string {
	grouped := make(map[string][]string)
	for _, p := range paths {
		m := derivedPattern.FindStringSubmatch(filepath.Base(p))
		if m == nil {
			continue
		}
		date := m[1]
		grouped[date] = append(grouped[date], p)
	}
	return grouped
}

// ReplaceSuffixAndExt rewrites a derived filename for the next pipeline
// stage. The trailing surface, band and suffix tokens are dropped, leaving
// {acquisition}_{wrs}_{SUFFIX}.{ext}.
func ReplaceSuffixAndExt(filename, suffix, ext string) string {
	name := strings.TrimSuffix(filename, filepath.Ext(filename))
	for range 3 {
		i := strings.LastIndex(name, "_")
		if i < 0 {
			break
		}
		name = name[:i]
	}
	if ext == "" {
		ext = strings.TrimPrefix(filepath.Ext(filename), ".")
	}
	return name + "_" + suffix + "." + ext
}
