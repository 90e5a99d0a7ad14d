package profiling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datasight/domain/grid"
	"datasight/internal/errors"
)

func numericGrid(values ...string) *grid.TypedGrid {
	rows := make([][]string, len(values))
	for i, v := range values {
		rows[i] = []string{v}
	}
	return grid.Build([]string{"x"}, rows)
}

func TestProfileColumnNotFound(t *testing.T) {
	g := grid.Build([]string{"a"}, nil)

	_, err := ProfileColumn(g, "nope")
	require.Error(t, err)
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
	assert.Contains(t, err.Error(), "nope")
}

func TestProfileNumeric(t *testing.T) {
	g := numericGrid("10", "20", "30", "40", "50")

	p, err := ProfileColumn(g, "x")
	require.NoError(t, err)

	assert.Equal(t, grid.Numeric, p.Type)
	assert.Equal(t, 5, p.Count)
	assert.Equal(t, 0, p.MissingCount)
	require.NotNil(t, p.Min)
	assert.Equal(t, 10.0, *p.Min)
	assert.Equal(t, 50.0, *p.Max)
	assert.Equal(t, 30.0, *p.Mean)
	assert.Equal(t, 30.0, *p.Median)
	require.NotNil(t, p.Std)

	// q1 <= median <= q3 and IQR consistency
	require.NotNil(t, p.Q1)
	require.NotNil(t, p.Q3)
	assert.LessOrEqual(t, *p.Q1, *p.Median)
	assert.LessOrEqual(t, *p.Median, *p.Q3)
	assert.InDelta(t, *p.Q3-*p.Q1, *p.IQR, 1e-9)

	require.NotNil(t, p.OutliersCount)
	assert.LessOrEqual(t, *p.OutliersCount, p.Count)
}

func TestProfileNumericOutliers(t *testing.T) {
	g := numericGrid("1", "2", "2", "3", "2", "3", "1", "2", "3", "1000")

	p, err := ProfileColumn(g, "x")
	require.NoError(t, err)
	require.NotNil(t, p.OutliersCount)
	assert.Equal(t, 1, *p.OutliersCount)
}

func TestProfileNumericAllMissing(t *testing.T) {
	g := numericGrid("", "", "")

	p, err := ProfileColumn(g, "x")
	require.NoError(t, err)

	assert.Equal(t, grid.Numeric, p.Type)
	assert.Equal(t, 3, p.MissingCount)
	assert.Equal(t, 100.0, p.MissingPercentage)
	assert.Nil(t, p.Min)
	assert.Nil(t, p.Mean)
	assert.Nil(t, p.Histogram)
}

func TestProfileHistogramCountsSum(t *testing.T) {
	g := numericGrid("1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "")

	p, err := ProfileColumn(g, "x")
	require.NoError(t, err)
	require.NotNil(t, p.Histogram)
	assert.Len(t, p.Histogram.Counts, 10)
	assert.Len(t, p.Histogram.Edges, 11)

	total := 0
	for _, c := range p.Histogram.Counts {
		total += c
	}
	assert.Equal(t, 10, total, "bin counts sum to non-missing count")
}

func TestProfileHistogramDegenerateRange(t *testing.T) {
	g := numericGrid("7", "7", "7")

	p, err := ProfileColumn(g, "x")
	require.NoError(t, err)
	require.NotNil(t, p.Histogram)
	assert.Equal(t, []int{3}, p.Histogram.Counts)
}

func TestProfileCategorical(t *testing.T) {
	g := grid.Build([]string{"color"}, [][]string{
		{"red"}, {"blue"}, {"red"}, {"green"}, {"red"}, {""},
	})

	p, err := ProfileColumn(g, "color")
	require.NoError(t, err)

	assert.Equal(t, grid.Categorical, p.Type)
	require.NotNil(t, p.UniqueCount)
	assert.Equal(t, 3, *p.UniqueCount)

	require.Len(t, p.ValueCounts, 3)
	assert.Equal(t, "red", p.ValueCounts[0].Value)
	assert.Equal(t, 3, p.ValueCounts[0].Count)
	assert.InDelta(t, 60.0, p.ValueCounts[0].Percentage, 0.01)
	// Descending by count
	assert.GreaterOrEqual(t, p.ValueCounts[0].Count, p.ValueCounts[1].Count)
	assert.GreaterOrEqual(t, p.ValueCounts[1].Count, p.ValueCounts[2].Count)
}

func TestProfileDatetime(t *testing.T) {
	g := grid.Build([]string{"day"}, [][]string{
		{"2023-01-01"}, {"2023-01-11"}, {"2023-01-06"},
	})

	p, err := ProfileColumn(g, "day")
	require.NoError(t, err)

	assert.Equal(t, grid.Datetime, p.Type)
	require.NotNil(t, p.MinDate)
	assert.Equal(t, "2023-01-01", *p.MinDate)
	assert.Equal(t, "2023-01-11", *p.MaxDate)
	require.NotNil(t, p.RangeDays)
	assert.Equal(t, 10, *p.RangeDays)
}

func TestProfileBoolean(t *testing.T) {
	g := grid.Build([]string{"flag"}, [][]string{
		{"1"}, {"0"}, {"1"}, {"1"}, {""},
	})

	p, err := ProfileColumn(g, "flag")
	require.NoError(t, err)

	assert.Equal(t, grid.Boolean, p.Type)
	require.NotNil(t, p.TrueCount)
	assert.Equal(t, 3, *p.TrueCount)
	assert.Equal(t, 1, *p.FalseCount)
	assert.InDelta(t, 75.0, *p.TruePercentage, 0.01)
	assert.InDelta(t, 25.0, *p.FalsePercentage, 0.01)
}

func TestProfileEmptyColumn(t *testing.T) {
	g := grid.Build([]string{"x"}, nil)

	p, err := ProfileColumn(g, "x")
	require.NoError(t, err)
	assert.Equal(t, 0, p.Count)
	assert.Equal(t, 0.0, p.MissingPercentage)
}
