package services

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/ghuser/orderdesk/services/export/domain/models"
)

const csvContentType = "text/csv"

// EncodeCSV renders the header and rows. The output depends only on rows, so
// the same order set always yields the same bytes.
func EncodeCSV(rows []models.Row) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(models.Header); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range rows {
		if err := w.Write(r.Record()); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
