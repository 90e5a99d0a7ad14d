package profiling

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"datasight/domain/grid"
)

// DatasetProfile aggregates column-level summaries into dataset-wide
// statistics.
type DatasetProfile struct {
	RowCount      int               `json:"row_count"`
	ColumnCount   int               `json:"column_count"`
	ColumnTypes   ColumnTypeCounts  `json:"column_types"`
	MissingValues int               `json:"missing_values"`
	DuplicateRows int               `json:"duplicate_rows"`
	Correlations  []PairCorrelation `json:"correlations"`
	Columns       []ColumnMeta      `json:"columns"`
}

// ColumnTypeCounts tallies columns per semantic type
type ColumnTypeCounts struct {
	Numerical   int `json:"numerical"`
	Categorical int `json:"categorical"`
	Datetime    int `json:"datetime"`
	Boolean     int `json:"boolean"`
}

// PairCorrelation is the Pearson correlation of one numeric column pair
type PairCorrelation struct {
	Columns string  `json:"columns"`
	Value   float64 `json:"value"`

	ColumnX string `json:"-"`
	ColumnY string `json:"-"`
}

// ColumnMeta is the per-column entry of the dataset profile
type ColumnMeta struct {
	Name              string    `json:"name"`
	Type              grid.Kind `json:"type"`
	MissingValues     int       `json:"missing_values"`
	MissingPercentage float64   `json:"missing_percentage"`
}

// ProfileDataset computes the dataset-wide profile: type tallies,
// missingness totals, duplicate-row count, the ranked numeric
// correlation list and per-column metadata.
func ProfileDataset(g *grid.TypedGrid) *DatasetProfile {
	p := &DatasetProfile{
		RowCount:     g.RowCount(),
		ColumnCount:  g.ColumnCount(),
		Correlations: NumericCorrelations(g),
		Columns:      make([]ColumnMeta, 0, g.ColumnCount()),
	}

	cols := g.Columns()
	for i := range cols {
		col := &cols[i]
		switch col.Kind {
		case grid.Numeric:
			p.ColumnTypes.Numerical++
		case grid.Categorical:
			p.ColumnTypes.Categorical++
		case grid.Datetime:
			p.ColumnTypes.Datetime++
		case grid.Boolean:
			p.ColumnTypes.Boolean++
		}

		missing := col.MissingCount()
		p.MissingValues += missing

		meta := ColumnMeta{
			Name:          col.Name,
			Type:          col.Kind,
			MissingValues: missing,
		}
		if p.RowCount > 0 {
			meta.MissingPercentage = round2(100 * float64(missing) / float64(p.RowCount))
		}
		p.Columns = append(p.Columns, meta)
	}

	p.DuplicateRows = duplicateRows(g)
	return p
}

// duplicateRows counts rows that exactly repeat an earlier row across
// all columns, compared after type promotion.
func duplicateRows(g *grid.TypedGrid) int {
	seen := make(map[string]bool, g.RowCount())
	duplicates := 0
	for i := 0; i < g.RowCount(); i++ {
		key := g.RowKey(i)
		if seen[key] {
			duplicates++
		} else {
			seen[key] = true
		}
	}
	return duplicates
}

// NumericCorrelations computes the Pearson coefficient for every
// unordered pair of numeric columns over rows where both values are
// present, drops NaN pairs and sorts by descending absolute value.
// Ties keep upper-triangle discovery order.
func NumericCorrelations(g *grid.TypedGrid) []PairCorrelation {
	numeric := g.ColumnsOfKind(grid.Numeric)
	pairs := []PairCorrelation{}

	for i := 0; i < len(numeric); i++ {
		for j := i + 1; j < len(numeric); j++ {
			r, ok := PairedPearson(numeric[i], numeric[j])
			if !ok {
				continue
			}
			pairs = append(pairs, PairCorrelation{
				Columns: fmt.Sprintf("%s - %s", numeric[i].Name, numeric[j].Name),
				Value:   r,
				ColumnX: numeric[i].Name,
				ColumnY: numeric[j].Name,
			})
		}
	}

	sort.SliceStable(pairs, func(a, b int) bool {
		return math.Abs(pairs[a].Value) > math.Abs(pairs[b].Value)
	})
	return pairs
}

// PairedPearson computes the Pearson coefficient of two numeric
// columns over their paired non-missing rows. ok is false when the
// coefficient is undefined (fewer than two pairs or zero variance).
func PairedPearson(x, y *grid.Column) (float64, bool) {
	xs := make([]float64, 0, x.Len())
	ys := make([]float64, 0, y.Len())
	for i := 0; i < x.Len(); i++ {
		xv, xok := x.Float(i)
		yv, yok := y.Float(i)
		if xok && yok {
			xs = append(xs, xv)
			ys = append(ys, yv)
		}
	}
	if len(xs) < 2 {
		return 0, false
	}
	r := stat.Correlation(xs, ys, nil)
	if math.IsNaN(r) {
		return 0, false
	}
	return r, true
}
