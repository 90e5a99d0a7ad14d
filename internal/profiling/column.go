package profiling

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"

	"datasight/domain/grid"
	"datasight/internal/errors"
)

const histogramBins = 10

// ColumnProfile is a read-only, type-appropriate summary of one column.
// Only the fields matching the column kind are populated.
type ColumnProfile struct {
	Name              string    `json:"name"`
	Type              grid.Kind `json:"type"`
	Count             int       `json:"count"`
	MissingCount      int       `json:"missing_count"`
	MissingPercentage float64   `json:"missing_percentage"`

	// Numeric
	Min                *float64   `json:"min,omitempty"`
	Max                *float64   `json:"max,omitempty"`
	Mean               *float64   `json:"mean,omitempty"`
	Median             *float64   `json:"median,omitempty"`
	Std                *float64   `json:"std,omitempty"`
	Q1                 *float64   `json:"q1,omitempty"`
	Q3                 *float64   `json:"q3,omitempty"`
	IQR                *float64   `json:"iqr,omitempty"`
	LowerBound         *float64   `json:"lower_bound,omitempty"`
	UpperBound         *float64   `json:"upper_bound,omitempty"`
	OutliersCount      *int       `json:"outliers_count,omitempty"`
	OutliersPercentage *float64   `json:"outliers_percentage,omitempty"`
	Histogram          *Histogram `json:"histogram,omitempty"`

	// Categorical
	UniqueCount *int         `json:"unique_count,omitempty"`
	ValueCounts []ValueCount `json:"value_counts,omitempty"`

	// Datetime
	MinDate   *string `json:"min_date,omitempty"`
	MaxDate   *string `json:"max_date,omitempty"`
	RangeDays *int    `json:"range_days,omitempty"`

	// Boolean
	TrueCount       *int     `json:"true_count,omitempty"`
	FalseCount      *int     `json:"false_count,omitempty"`
	TruePercentage  *float64 `json:"true_percentage,omitempty"`
	FalsePercentage *float64 `json:"false_percentage,omitempty"`
}

// Histogram holds equal-width bin edges and per-bin counts
type Histogram struct {
	Edges  []float64 `json:"edges"`
	Counts []int     `json:"counts"`
}

// ValueCount is one entry of a categorical value-count table
type ValueCount struct {
	Value      string  `json:"value"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// ProfileColumn computes the profile of the named column. The column
// must exist in the grid.
func ProfileColumn(g *grid.TypedGrid, name string) (*ColumnProfile, error) {
	col, ok := g.Column(name)
	if !ok {
		return nil, errors.NotFound("column " + name)
	}

	p := &ColumnProfile{
		Name:         col.Name,
		Type:         col.Kind,
		Count:        col.Len(),
		MissingCount: col.MissingCount(),
	}
	if p.Count > 0 {
		p.MissingPercentage = round2(100 * float64(p.MissingCount) / float64(p.Count))
	}

	switch col.Kind {
	case grid.Numeric:
		profileNumeric(col, p)
	case grid.Categorical:
		profileCategorical(col, p)
	case grid.Datetime:
		profileDatetime(col, p)
	case grid.Boolean:
		profileBoolean(col, p)
	case grid.Unknown:
		// type tag only
	}

	return p, nil
}

// profileNumeric fills summary stats, the 1.5×IQR outlier counts and a
// 10-bin histogram. Degenerate inputs (all missing, zero spread)
// resolve to nil fields or a single-bin histogram, never an error.
func profileNumeric(col *grid.Column, p *ColumnProfile) {
	values := col.Floats()
	p.Min = statOrNil(stats.Min, values)
	p.Max = statOrNil(stats.Max, values)
	p.Mean = statOrNil(stats.Mean, values)
	p.Median = statOrNil(stats.Median, values)
	p.Std = statOrNil(stats.StandardDeviationSample, values)

	if q1, err := stats.Percentile(values, 25); err == nil && !math.IsNaN(q1) {
		if q3, err := stats.Percentile(values, 75); err == nil && !math.IsNaN(q3) {
			iqr := q3 - q1
			lower := q1 - 1.5*iqr
			upper := q3 + 1.5*iqr
			p.Q1, p.Q3, p.IQR = &q1, &q3, &iqr
			p.LowerBound, p.UpperBound = &lower, &upper

			outliers := 0
			for _, v := range values {
				if v < lower || v > upper {
					outliers++
				}
			}
			pct := round2(100 * float64(outliers) / float64(len(values)))
			p.OutliersCount = &outliers
			p.OutliersPercentage = &pct
		}
	}

	p.Histogram = histogram(values)
}

// histogram computes numpy-style equal-width bins: the last bin is
// closed on both sides so the maximum lands in it.
func histogram(values []float64) *Histogram {
	if len(values) == 0 {
		return nil
	}
	min, _ := stats.Min(values)
	max, _ := stats.Max(values)

	if min == max {
		// Degenerate range: one occupied bin
		return &Histogram{Edges: []float64{min, max}, Counts: []int{len(values)}}
	}

	edges := make([]float64, histogramBins+1)
	floats.Span(edges, min, max)

	counts := make([]int, histogramBins)
	width := (max - min) / histogramBins
	for _, v := range values {
		idx := int((v - min) / width)
		if idx >= histogramBins {
			idx = histogramBins - 1
		}
		counts[idx]++
	}
	return &Histogram{Edges: edges, Counts: counts}
}

func profileCategorical(col *grid.Column, p *ColumnProfile) {
	values := col.Strings()

	counts := make(map[string]int, len(values))
	order := make(map[string]int, len(values))
	for i, v := range values {
		if _, seen := counts[v]; !seen {
			order[v] = i
		}
		counts[v]++
	}

	unique := len(counts)
	p.UniqueCount = &unique

	table := make([]ValueCount, 0, unique)
	for v, n := range counts {
		entry := ValueCount{Value: v, Count: n}
		if len(values) > 0 {
			entry.Percentage = round2(100 * float64(n) / float64(len(values)))
		}
		table = append(table, entry)
	}
	// Descending by count, ties in first-seen order
	sort.SliceStable(table, func(i, j int) bool {
		if table[i].Count != table[j].Count {
			return table[i].Count > table[j].Count
		}
		return order[table[i].Value] < order[table[j].Value]
	})
	p.ValueCounts = table
}

func profileDatetime(col *grid.Column, p *ColumnProfile) {
	times := col.Times()
	if len(times) == 0 {
		return
	}
	min, max := times[0], times[0]
	for _, t := range times[1:] {
		if t.Before(min) {
			min = t
		}
		if t.After(max) {
			max = t
		}
	}
	minStr := min.Format("2006-01-02")
	maxStr := max.Format("2006-01-02")
	rangeDays := int(max.Sub(min).Hours() / 24)
	p.MinDate, p.MaxDate, p.RangeDays = &minStr, &maxStr, &rangeDays
}

func profileBoolean(col *grid.Column, p *ColumnProfile) {
	bools := col.Bools()
	trueCount := 0
	for _, b := range bools {
		if b {
			trueCount++
		}
	}
	falseCount := len(bools) - trueCount
	truePct, falsePct := 0.0, 0.0
	if len(bools) > 0 {
		truePct = round2(100 * float64(trueCount) / float64(len(bools)))
		falsePct = round2(100 * float64(falseCount) / float64(len(bools)))
	}
	p.TrueCount, p.FalseCount = &trueCount, &falseCount
	p.TruePercentage, p.FalsePercentage = &truePct, &falsePct
}

// statOrNil lifts a montanaflynn aggregate into a nullable field
func statOrNil(fn func(stats.Float64Data) (float64, error), values []float64) *float64 {
	v, err := fn(values)
	if err != nil || math.IsNaN(v) {
		return nil
	}
	return &v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
