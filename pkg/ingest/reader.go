package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// utf8BOM is stripped from the first header cell if present.
const utf8BOM = "\uFEFF"

// ReadAndNormalize streams a CSV file and returns one Row per data line,
// keyed by canonical field names, plus the total number of data rows
// read. A parser-level error rejects the whole file: no partial result is
// returned because none of the rows can be trusted.
func ReadAndNormalize(path string) ([]Row, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("opening csv file: %w", err)
	}
	defer f.Close()

	return readAndNormalize(f)
}

func readAndNormalize(r io.Reader) ([]Row, int, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, 0, nil
		}

		return nil, 0, fmt.Errorf("reading csv header: %w", err)
	}

	headers := make([]string, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}

		headers[i] = h
	}

	var (
		rows  []Row
		total int
	)

	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, 0, fmt.Errorf("reading csv row: %w", err)
		}

		total++

		rows = append(rows, NormalizeRow(headers, record))
	}

	return rows, total, nil
}
