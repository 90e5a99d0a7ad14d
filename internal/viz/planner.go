package viz

import (
	"fmt"
	"math"
	"sort"
	"time"

	"datasight/domain/grid"
	"datasight/internal/profiling"
)

// Hard caps keep chart payloads bounded regardless of dataset size
const (
	maxHistogramCharts  = 5
	maxCategoryCharts   = 5
	maxTimeSeriesCharts = 3
	maxScatterCharts    = 3
	maxCategories       = 15
	topCategories       = 9
	pieThreshold        = 5
	scatterSampleSize   = 500
	areaSampleSize      = 100
	scatterMinAbsCorr   = 0.5
)

// areaPalette is the fixed palette for the normalized comparison chart
var areaPalette = []string{"#8b5cf6", "#a78bfa", "#c4b5fd"}

// Spec is a chart-type tag plus ready-to-render records and axis
// bindings.
type Spec struct {
	ChartType string                   `json:"chart_type"`
	Title     string                   `json:"title"`
	Data      []map[string]interface{} `json:"data"`
	XAxis     string                   `json:"x_axis"`
	YAxis     string                   `json:"y_axis"`
	Series    []string                 `json:"series,omitempty"`
	Colors    []string                 `json:"colors,omitempty"`
}

// Plan derives a bounded list of chart specs from the typed grid.
// Scatter selection reuses the dataset profiler's correlation ranking.
// Steps that find no qualifying columns contribute no chart.
func Plan(g *grid.TypedGrid, correlations []profiling.PairCorrelation) []Spec {
	specs := []Spec{}
	specs = append(specs, histogramCharts(g)...)
	specs = append(specs, categoryCharts(g)...)
	specs = append(specs, timeSeriesCharts(g)...)
	specs = append(specs, scatterCharts(g, correlations)...)
	if spec, ok := normalizedComparisonChart(g); ok {
		specs = append(specs, spec)
	}
	return specs
}

// histogramCharts renders a 10-bin distribution per numeric column,
// first five columns in original order.
func histogramCharts(g *grid.TypedGrid) []Spec {
	var specs []Spec
	for _, col := range capped(g.ColumnsOfKind(grid.Numeric), maxHistogramCharts) {
		values := col.Floats()
		if len(values) == 0 {
			continue
		}
		min, max := values[0], values[0]
		for _, v := range values[1:] {
			min = math.Min(min, v)
			max = math.Max(max, v)
		}

		bins := 10
		width := (max - min) / float64(bins)
		counts := make([]int, bins)
		if width == 0 {
			counts[0] = len(values)
		} else {
			for _, v := range values {
				idx := int((v - min) / width)
				if idx >= bins {
					idx = bins - 1
				}
				counts[idx]++
			}
		}

		data := make([]map[string]interface{}, bins)
		for i := 0; i < bins; i++ {
			lower := min + float64(i)*width
			upper := min + float64(i+1)*width
			data[i] = map[string]interface{}{
				"bin":   fmt.Sprintf("%.2f - %.2f", lower, upper),
				"count": counts[i],
			}
		}

		specs = append(specs, Spec{
			ChartType: "bar",
			Title:     fmt.Sprintf("Distribution of %s", col.Name),
			Data:      data,
			XAxis:     "bin",
			YAxis:     "count",
		})
	}
	return specs
}

// categoryCharts renders value counts per categorical column, first
// five in original order. Columns with more than 15 distinct values
// are skipped; more than 10 collapse into top 9 plus an "Other"
// bucket. Five or fewer resulting categories render as a pie.
func categoryCharts(g *grid.TypedGrid) []Spec {
	var specs []Spec
	for _, col := range capped(g.ColumnsOfKind(grid.Categorical), maxCategoryCharts) {
		profile, err := profiling.ProfileColumn(g, col.Name)
		if err != nil || profile.UniqueCount == nil {
			continue
		}
		if *profile.UniqueCount > maxCategories {
			continue
		}

		table := profile.ValueCounts
		if len(table) > 10 {
			other := 0
			for _, entry := range table[topCategories:] {
				other += entry.Count
			}
			table = append(append([]profiling.ValueCount{}, table[:topCategories]...),
				profiling.ValueCount{Value: "Other", Count: other})
		}

		data := make([]map[string]interface{}, len(table))
		for i, entry := range table {
			data[i] = map[string]interface{}{
				"category": entry.Value,
				"count":    entry.Count,
			}
		}

		chartType := "bar"
		if len(data) <= pieThreshold {
			chartType = "pie"
		}
		specs = append(specs, Spec{
			ChartType: chartType,
			Title:     fmt.Sprintf("Distribution of %s", col.Name),
			Data:      data,
			XAxis:     "category",
			YAxis:     "count",
		})
	}
	return specs
}

// timeSeriesCharts buckets row counts per datetime column, first three
// in original order. Bucket granularity follows the observed span:
// calendar day up to 30 days, ISO week start up to a year, calendar
// month beyond.
func timeSeriesCharts(g *grid.TypedGrid) []Spec {
	var specs []Spec
	for _, col := range capped(g.ColumnsOfKind(grid.Datetime), maxTimeSeriesCharts) {
		times := col.Times()
		if len(times) == 0 {
			continue
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
		if min.Equal(max) {
			continue
		}

		spanDays := int(max.Sub(min).Hours() / 24)
		buckets := make(map[time.Time]int, len(times))
		for _, t := range times {
			buckets[bucketStart(t, spanDays)]++
		}

		keys := make([]time.Time, 0, len(buckets))
		for k := range buckets {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })

		data := make([]map[string]interface{}, len(keys))
		for i, k := range keys {
			data[i] = map[string]interface{}{
				"period": k.Format("2006-01-02"),
				"count":  buckets[k],
			}
		}

		specs = append(specs, Spec{
			ChartType: "line",
			Title:     fmt.Sprintf("Time Series of %s", col.Name),
			Data:      data,
			XAxis:     "period",
			YAxis:     "count",
		})
	}
	return specs
}

func bucketStart(t time.Time, spanDays int) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	switch {
	case spanDays <= 30:
		return day
	case spanDays <= 365:
		// ISO week start (Monday)
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	default:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	}
}

// scatterCharts renders the top correlated numeric pairs whose
// absolute Pearson coefficient exceeds 0.5, downsampled to 500 rows.
func scatterCharts(g *grid.TypedGrid, correlations []profiling.PairCorrelation) []Spec {
	var specs []Spec
	for _, pair := range correlations {
		if len(specs) >= maxScatterCharts {
			break
		}
		if math.Abs(pair.Value) <= scatterMinAbsCorr {
			continue
		}
		colX, okX := g.Column(pair.ColumnX)
		colY, okY := g.Column(pair.ColumnY)
		if !okX || !okY {
			continue
		}

		var data []map[string]interface{}
		for _, i := range sampleIndices(g.RowCount(), scatterSampleSize) {
			xv, xok := colX.Float(i)
			yv, yok := colY.Float(i)
			if !xok || !yok {
				continue
			}
			data = append(data, map[string]interface{}{
				colX.Name: xv,
				colY.Name: yv,
			})
		}

		specs = append(specs, Spec{
			ChartType: "scatter",
			Title:     fmt.Sprintf("Correlation: %s vs %s", colX.Name, colY.Name),
			Data:      data,
			XAxis:     colX.Name,
			YAxis:     colY.Name,
		})
	}
	return specs
}

// normalizedComparisonChart min-max normalizes the first three numeric
// columns to [0,1] and emits them as one area chart over the row
// index, downsampled to 100 points. Columns with no spread map to
// constant zero; missing cells stay null gaps.
func normalizedComparisonChart(g *grid.TypedGrid) (Spec, bool) {
	numeric := capped(g.ColumnsOfKind(grid.Numeric), 3)
	if len(numeric) < 2 || g.RowCount() == 0 {
		return Spec{}, false
	}

	type span struct{ min, width float64 }
	spans := make([]span, len(numeric))
	for i, col := range numeric {
		values := col.Floats()
		if len(values) == 0 {
			spans[i] = span{0, 0}
			continue
		}
		min, max := values[0], values[0]
		for _, v := range values[1:] {
			min = math.Min(min, v)
			max = math.Max(max, v)
		}
		spans[i] = span{min, max - min}
	}

	series := make([]string, len(numeric))
	for i, col := range numeric {
		series[i] = col.Name
	}

	var data []map[string]interface{}
	for _, row := range sampleIndices(g.RowCount(), areaSampleSize) {
		record := map[string]interface{}{"index": row}
		for i, col := range numeric {
			v, ok := col.Float(row)
			switch {
			case !ok:
				record[col.Name] = nil
			case spans[i].width == 0:
				record[col.Name] = 0.0
			default:
				record[col.Name] = (v - spans[i].min) / spans[i].width
			}
		}
		data = append(data, record)
	}

	return Spec{
		ChartType: "area",
		Title:     "Comparison of Normalized Values",
		Data:      data,
		XAxis:     "index",
		YAxis:     series[0],
		Series:    series,
		Colors:    areaPalette,
	}, true
}

// sampleIndices picks up to limit row indices with a fixed stride so
// downsampling stays deterministic.
func sampleIndices(rows, limit int) []int {
	if rows <= limit {
		indices := make([]int, rows)
		for i := range indices {
			indices[i] = i
		}
		return indices
	}
	stride := rows / limit
	indices := make([]int, 0, limit)
	for i := 0; i < rows && len(indices) < limit; i += stride {
		indices = append(indices, i)
	}
	return indices
}

func capped(cols []*grid.Column, n int) []*grid.Column {
	if len(cols) > n {
		return cols[:n]
	}
	return cols
}
