package correlate

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datasight/domain/grid"
	apperrors "datasight/internal/errors"
)

func TestCorrelateUnknownColumn(t *testing.T) {
	g := grid.Build([]string{"a"}, [][]string{{"1"}, {"2"}})

	_, err := Correlate(g, "a", "ghost")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.GetCode(err))
	assert.Contains(t, err.Error(), "ghost")
}

func TestPearsonPerfectPositive(t *testing.T) {
	rows := make([][]string, 30)
	for i := range rows {
		rows[i] = []string{fmt.Sprint(i + 2), fmt.Sprint(3*i + 7)}
	}
	g := grid.Build([]string{"x", "y"}, rows)

	result, err := Correlate(g, "x", "y")
	require.NoError(t, err)
	assert.Equal(t, "x - y", result.Columns)
	assert.Equal(t, MethodPearson, result.Method)
	require.NotNil(t, result.Value)
	assert.InDelta(t, 1.0, *result.Value, 1e-9)
	assert.Equal(t, "Very strong positive correlation", result.Interpretation)
}

func TestPearsonNegativeDirection(t *testing.T) {
	rows := make([][]string, 30)
	for i := range rows {
		rows[i] = []string{fmt.Sprint(i + 2), fmt.Sprint(100 - 4*i)}
	}
	g := grid.Build([]string{"x", "y"}, rows)

	result, err := Correlate(g, "x", "y")
	require.NoError(t, err)
	require.NotNil(t, result.Value)
	assert.InDelta(t, -1.0, *result.Value, 1e-9)
	assert.Equal(t, "Very strong negative correlation", result.Interpretation)
}

func TestPearsonSymmetry(t *testing.T) {
	g := grid.Build([]string{"x", "y"}, [][]string{
		{"3", "9"}, {"5", "4"}, {"7", "12"}, {"11", "6"}, {"13", "15"},
	})

	ab, err := Correlate(g, "x", "y")
	require.NoError(t, err)
	ba, err := Correlate(g, "y", "x")
	require.NoError(t, err)

	require.NotNil(t, ab.Value)
	require.NotNil(t, ba.Value)
	assert.InDelta(t, *ab.Value, *ba.Value, 1e-12)
}

func TestPearsonUndefinedForConstantColumn(t *testing.T) {
	g := grid.Build([]string{"x", "konst"}, [][]string{
		{"2", "5"}, {"3", "5"}, {"4", "5"},
	})

	result, err := Correlate(g, "x", "konst")
	require.NoError(t, err)
	assert.Equal(t, MethodPearson, result.Method)
	assert.Nil(t, result.Value)
	assert.Equal(t, "Not enough data", result.Interpretation)
}

func TestCramersVDependentColumns(t *testing.T) {
	// Color fully determines shape, so the association is maximal.
	g := grid.Build([]string{"color", "shape"}, [][]string{
		{"red", "circle"}, {"red", "circle"}, {"red", "circle"},
		{"blue", "square"}, {"blue", "square"}, {"blue", "square"},
	})

	result, err := Correlate(g, "color", "shape")
	require.NoError(t, err)
	assert.Equal(t, MethodCramersV, result.Method)
	require.NotNil(t, result.Value)
	assert.InDelta(t, 1.0, *result.Value, 1e-9)
	assert.Equal(t, "Very strong association", result.Interpretation)
}

func TestCramersVWithinUnitInterval(t *testing.T) {
	g := grid.Build([]string{"a", "b"}, [][]string{
		{"x", "p"}, {"x", "q"}, {"y", "p"}, {"y", "q"},
		{"x", "p"}, {"y", "q"}, {"x", "q"}, {"y", "p"},
		{"x", "p"}, {"y", "q"},
	})

	result, err := Correlate(g, "a", "b")
	require.NoError(t, err)
	require.NotNil(t, result.Value)
	assert.GreaterOrEqual(t, *result.Value, 0.0)
	assert.LessOrEqual(t, *result.Value, 1.0)
}

func TestCramersVUndefinedForSingleLevel(t *testing.T) {
	g := grid.Build([]string{"a", "b"}, [][]string{
		{"only", "p"}, {"only", "q"}, {"only", "p"},
	})

	result, err := Correlate(g, "a", "b")
	require.NoError(t, err)
	assert.Equal(t, MethodCramersV, result.Method)
	assert.Nil(t, result.Value)
	assert.Equal(t, "Not enough data", result.Interpretation)
}

func TestCramersVSkipsMissingPairs(t *testing.T) {
	g := grid.Build([]string{"a", "b"}, [][]string{
		{"x", "p"}, {"", "q"}, {"y", ""}, {"y", "q"}, {"x", "p"},
	})

	result, err := Correlate(g, "a", "b")
	require.NoError(t, err)
	require.NotNil(t, result.Value)
	// Only three complete rows survive, and they pair perfectly.
	assert.InDelta(t, 1.0, *result.Value, 1e-9)
}

func TestMixedKindsNotApplicable(t *testing.T) {
	g := grid.Build([]string{"n", "c"}, [][]string{
		{"3", "red"}, {"5", "blue"}, {"7", "red"},
	})

	result, err := Correlate(g, "n", "c")
	require.NoError(t, err)
	assert.Equal(t, MethodNotApplicable, result.Method)
	assert.Nil(t, result.Value)
	assert.Equal(t, "Not enough data", result.Interpretation)
}

func TestInterpretationBands(t *testing.T) {
	cases := []struct {
		value    float64
		expected string
	}{
		{0.05, "Negligible positive correlation"},
		{0.2, "Weak positive correlation"},
		{-0.4, "Moderate negative correlation"},
		{0.6, "Strong positive correlation"},
		{-0.95, "Very strong negative correlation"},
	}
	for _, tc := range cases {
		v := tc.value
		assert.Equal(t, tc.expected, interpret(MethodPearson, &v))
	}
}
