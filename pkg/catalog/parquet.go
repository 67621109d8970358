package catalog

import (
	"fmt"
	"io"
	"sort"

	"github.com/parquet-go/parquet-go"
	"github.com/rs/zerolog"

	"github.com/oibur/snowline/pkg/landsat"
)

// Record is one decoded band file, flattened for columnar export. The
// parquet dataset sits next to the metadata JSON and feeds external
// analytics tools that prefer columns over the nested year structure.
type Record struct {
	Filename           string `parquet:"filename"`
	Satellite          string `parquet:"satellite"`
	CorrectionLevel    string `parquet:"correction_level"`
	WRS                string `parquet:"wrs"`
	AcquisitionDate    string `parquet:"acquisition_date"`
	ProcessingDate     string `parquet:"processing_date"`
	CollectionNumber   string `parquet:"collection_number"`
	CollectionCategory string `parquet:"collection_category"`
	Surface            string `parquet:"surface"`
	Band               string `parquet:"band"`
}

// DecodeRecords decodes the filenames into flat records, sorted by filename
// so the export is deterministic. Failures are logged and skipped.
func DecodeRecords(filenames []string, log zerolog.Logger) []Record {
	records := make([]Record, 0, len(filenames))
	for _, filename := range filenames {
		c, err := landsat.Decode(filename)
		if err != nil {
			log.Warn().Str("filename", filename).Msg("could not extract information from filename")
			continue
		}
		records = append(records, Record{
			Filename:           filename,
			Satellite:          c.Satellite,
			CorrectionLevel:    c.CorrectionLevel,
			WRS:                c.WRS,
			AcquisitionDate:    c.AcquisitionDate,
			ProcessingDate:     c.ProcessingDate,
			CollectionNumber:   c.CollectionNumber,
			CollectionCategory: c.CollectionCategory,
			Surface:            c.Surface,
			Band:               c.Band,
		})
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Filename < records[j].Filename
	})
	return records
}

// WriteParquet writes the records as a single parquet row group.
func WriteParquet(w io.Writer, records []Record) error {
	pw := parquet.NewGenericWriter[Record](w)
	if len(records) > 0 {
		if _, err := pw.Write(records); err != nil {
			return fmt.Errorf("write parquet records: %w", err)
		}
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return nil
}
