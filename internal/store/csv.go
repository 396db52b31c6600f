package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// identity columns of the wide CSV; everything else is a metric column.
const (
	colFirm   = "firm"
	colTicker = "ticker"
	colDate   = "date"
)

// unpivot reads a wide CSV (one row per firm, one column per metric)
// and emits one Record per non-empty metric cell. Cells that do not
// parse as numbers keep the row with value 0 so that a lookup still
// hits; the source data occasionally carries placeholder text.
func unpivot(r io.Reader, sourceFile string, now time.Time) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("store: read csv header: %w", err)
	}

	firmIdx, tickerIdx, dateIdx := -1, -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case colFirm:
			firmIdx = i
		case colTicker:
			tickerIdx = i
		case colDate:
			dateIdx = i
		}
	}
	if tickerIdx < 0 {
		return nil, fmt.Errorf("store: csv %q has no ticker column", sourceFile)
	}

	stamp := now.Format(time.RFC3339)
	var records []Record
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("store: read csv row: %w", err)
		}

		var firm, date string
		if firmIdx >= 0 && firmIdx < len(row) {
			firm = strings.TrimSpace(row[firmIdx])
		}
		if dateIdx >= 0 && dateIdx < len(row) {
			date = strings.TrimSpace(row[dateIdx])
		}
		ticker := strings.TrimSpace(row[tickerIdx])

		for i, cell := range row {
			if i == firmIdx || i == tickerIdx || i == dateIdx {
				continue
			}
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			value, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				value = 0
			}
			records = append(records, Record{
				SourceFile:  sourceFile,
				Firm:        firm,
				Ticker:      ticker,
				Date:        date,
				Metric:      header[i],
				Value:       value,
				LastUpdated: stamp,
			})
		}
	}
	return records, nil
}
