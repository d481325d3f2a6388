package tabular

import (
	"bytes"
	"encoding/csv"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

const byteOrderMark = "\ufeff"

// fromCSV builds a table from delimited file content. The first record is the
// header; empty cells are null and numeric cells become float64. A cell is
// numeric only when the number prints back as the same text, so codes such as
// 02134 and notations such as 1e3 stay strings.
func fromCSV(data []byte, location string) (*Table, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, malformed(err, "CSV file "+location)
	}
	if len(records) == 0 {
		return nil, emptyColumns("CSV file " + location + " is empty")
	}
	header := records[0]
	header[0] = strings.TrimPrefix(header[0], byteOrderMark)
	seen := make(map[string]bool, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, failf(ReasonMalformedEncoding, "Every CSV column needs a name in the header row.",
				"CSV file %s has an empty column name at position %d", location, i+1)
		}
		if seen[name] {
			return nil, failf(ReasonMalformedEncoding, "Column names in the CSV header row must be unique.",
				"CSV file %s repeats column %q", location, name)
		}
		seen[name] = true
		header[i] = name
	}
	if len(records) == 1 {
		return nil, emptyColumns("CSV file " + location + " has a header but no rows")
	}
	table := newTable(header, len(records)-1)
	for i, record := range records[1:] {
		for j, cell := range record {
			table.columns[j].Values[i] = csvCell(cell)
		}
	}
	return table, nil
}

func csvCell(cell string) any {
	trimmed := strings.TrimSpace(cell)
	if trimmed == "" {
		return nil
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) && cast.ToString(f) == trimmed {
		return f
	}
	return cell
}
