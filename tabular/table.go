package tabular

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/spf13/cast"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Column is one named column of a Table.
type Column struct {
	Name   string
	Values []any
}

// Table is the canonical row/column representation of chart data. Columns
// are ordered, names are unique, and every column has the same length.
type Table struct {
	columns []Column
	index   map[string]int
	rows    int
}

func newTable(names []string, rows int) *Table {
	t := &Table{
		columns: make([]Column, len(names)),
		index:   make(map[string]int, len(names)),
		rows:    rows,
	}
	for i, name := range names {
		t.columns[i] = Column{Name: name, Values: make([]any, rows)}
		t.index[name] = i
	}
	return t
}

// Columns returns the column names in order.
func (t *Table) Columns() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// Column returns the values of the named column.
func (t *Table) Column(name string) ([]any, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.columns[i].Values, true
}

// Len returns the row count.
func (t *Table) Len() int { return t.rows }

// Width returns the column count.
func (t *Table) Width() int { return len(t.columns) }

// Row returns the i-th row, one value per column.
func (t *Table) Row(i int) []any {
	row := make([]any, len(t.columns))
	for j, c := range t.columns {
		row[j] = c.Values[i]
	}
	return row
}

// Records returns the table as ordered row mappings. Missing cells are nil.
func (t *Table) Records() []*orderedmap.OrderedMap[string, any] {
	out := make([]*orderedmap.OrderedMap[string, any], t.rows)
	for i := 0; i < t.rows; i++ {
		record := orderedmap.New[string, any](len(t.columns))
		for _, c := range t.columns {
			record.Set(c.Name, c.Values[i])
		}
		out[i] = record
	}
	return out
}

// MarshalJSON encodes the table as a list of records, keeping column order.
func (t *Table) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Records())
}

// CSV renders the table as comma separated text with a header row.
func (t *Table) CSV() ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(t.Columns()); err != nil {
		return nil, err
	}
	record := make([]string, len(t.columns))
	for i := 0; i < t.rows; i++ {
		for j, c := range t.columns {
			cell, err := formatCell(c.Values[i])
			if err != nil {
				return nil, fmt.Errorf("row %d column %q: %w", i, c.Name, err)
			}
			record[j] = cell
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Equal reports whether both tables have the same columns and values.
func (t *Table) Equal(other *Table) bool {
	if t == nil || other == nil {
		return t == other
	}
	return t.rows == other.rows && reflect.DeepEqual(t.columns, other.columns)
}

func formatCell(v any) (string, error) {
	switch v.(type) {
	case nil:
		return "", nil
	case map[string]any, []any:
		b, err := json.Marshal(v)
		return string(b), err
	}
	return cast.ToStringE(v)
}
