package grid

import (
	"strconv"
	"strings"
	"time"
)

// Kind is the semantic type of a column
type Kind string

const (
	Numeric     Kind = "numerical"
	Categorical Kind = "categorical"
	Datetime    Kind = "datetime"
	Boolean     Kind = "boolean"
	Unknown     Kind = "unknown"
)

// CellTimeLayout is the wire format for datetime cells
const CellTimeLayout = "2006-01-02T15:04:05"

// Column is one typed column of the grid. Exactly one backing slice
// matching Kind is populated; valid marks per-row presence.
type Column struct {
	Name string
	Kind Kind

	nums  []float64
	cats  []string
	times []time.Time
	bools []bool
	valid []bool
}

// Len returns the number of cells (rows) in the column
func (c *Column) Len() int {
	return len(c.valid)
}

// Present reports whether the cell at row i holds a value
func (c *Column) Present(i int) bool {
	return c.valid[i]
}

// MissingCount returns the number of missing cells
func (c *Column) MissingCount() int {
	missing := 0
	for _, ok := range c.valid {
		if !ok {
			missing++
		}
	}
	return missing
}

// Float returns the numeric value at row i
func (c *Column) Float(i int) (float64, bool) {
	if c.Kind != Numeric || !c.valid[i] {
		return 0, false
	}
	return c.nums[i], true
}

// Str returns the categorical value at row i
func (c *Column) Str(i int) (string, bool) {
	if c.Kind != Categorical || !c.valid[i] {
		return "", false
	}
	return c.cats[i], true
}

// Time returns the datetime value at row i
func (c *Column) Time(i int) (time.Time, bool) {
	if c.Kind != Datetime || !c.valid[i] {
		return time.Time{}, false
	}
	return c.times[i], true
}

// Bool returns the boolean value at row i
func (c *Column) Bool(i int) (bool, bool) {
	if c.Kind != Boolean || !c.valid[i] {
		return false, false
	}
	return c.bools[i], true
}

// Floats returns all non-missing numeric values in row order
func (c *Column) Floats() []float64 {
	out := make([]float64, 0, len(c.nums))
	for i, v := range c.nums {
		if c.valid[i] {
			out = append(out, v)
		}
	}
	return out
}

// Strings returns all non-missing categorical values in row order
func (c *Column) Strings() []string {
	out := make([]string, 0, len(c.cats))
	for i, v := range c.cats {
		if c.valid[i] {
			out = append(out, v)
		}
	}
	return out
}

// Times returns all non-missing datetime values in row order
func (c *Column) Times() []time.Time {
	out := make([]time.Time, 0, len(c.times))
	for i, v := range c.times {
		if c.valid[i] {
			out = append(out, v)
		}
	}
	return out
}

// Bools returns all non-missing boolean values in row order
func (c *Column) Bools() []bool {
	out := make([]bool, 0, len(c.bools))
	for i, v := range c.bools {
		if c.valid[i] {
			out = append(out, v)
		}
	}
	return out
}

// Value returns the cell at row i as a JSON-ready value (nil when missing)
func (c *Column) Value(i int) interface{} {
	if !c.valid[i] {
		return nil
	}
	switch c.Kind {
	case Numeric:
		return c.nums[i]
	case Datetime:
		return c.times[i].Format(CellTimeLayout)
	case Boolean:
		return c.bools[i]
	default:
		return c.cats[i]
	}
}

// CellString renders the cell at row i as a canonical string.
// Missing cells render as the empty string.
func (c *Column) CellString(i int) string {
	if !c.valid[i] {
		return ""
	}
	switch c.Kind {
	case Numeric:
		return strconv.FormatFloat(c.nums[i], 'g', -1, 64)
	case Datetime:
		return c.times[i].Format(CellTimeLayout)
	case Boolean:
		return strconv.FormatBool(c.bools[i])
	default:
		return c.cats[i]
	}
}

// TypedGrid is an immutable columnar table with one semantic type per
// column. All columns have equal length and unique normalized names.
type TypedGrid struct {
	cols  []Column
	index map[string]int
	rows  int
}

// RowCount returns the number of rows
func (g *TypedGrid) RowCount() int {
	return g.rows
}

// ColumnCount returns the number of columns
func (g *TypedGrid) ColumnCount() int {
	return len(g.cols)
}

// Columns returns the columns in original order. The returned slice is
// shared with the grid and must be treated as read-only.
func (g *TypedGrid) Columns() []Column {
	return g.cols
}

// Column looks up a column by normalized name
func (g *TypedGrid) Column(name string) (*Column, bool) {
	idx, ok := g.index[name]
	if !ok {
		return nil, false
	}
	return &g.cols[idx], true
}

// Names returns the column names in original order
func (g *TypedGrid) Names() []string {
	names := make([]string, len(g.cols))
	for i := range g.cols {
		names[i] = g.cols[i].Name
	}
	return names
}

// ColumnsOfKind returns the columns of the given kind in original order
func (g *TypedGrid) ColumnsOfKind(kind Kind) []*Column {
	var out []*Column
	for i := range g.cols {
		if g.cols[i].Kind == kind {
			out = append(out, &g.cols[i])
		}
	}
	return out
}

// Records converts the grid to a list of row records for serialization
func (g *TypedGrid) Records() []map[string]interface{} {
	records := make([]map[string]interface{}, g.rows)
	for i := 0; i < g.rows; i++ {
		row := make(map[string]interface{}, len(g.cols))
		for j := range g.cols {
			row[g.cols[j].Name] = g.cols[j].Value(i)
		}
		records[i] = row
	}
	return records
}

// RowKey renders row i as a single string for full-row equality checks
func (g *TypedGrid) RowKey(i int) string {
	parts := make([]string, len(g.cols))
	for j := range g.cols {
		parts[j] = g.cols[j].CellString(i)
	}
	return strings.Join(parts, "\x1f")
}
