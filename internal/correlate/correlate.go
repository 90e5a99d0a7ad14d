package correlate

import (
	"fmt"
	"math"

	"datasight/domain/grid"
	"datasight/internal/errors"
	"datasight/internal/profiling"
)

// Correlation methods
const (
	MethodPearson       = "pearson"
	MethodCramersV      = "cramers_v"
	MethodNotApplicable = "not_applicable"
)

// Result describes the association between one column pair
type Result struct {
	Columns        string   `json:"columns"`
	Method         string   `json:"method"`
	Value          *float64 `json:"correlation_value"`
	Interpretation string   `json:"interpretation"`
}

// Correlate computes the pairwise association between two named
// columns: Pearson for numeric pairs, Cramér's V for categorical
// pairs, not_applicable otherwise. Both columns must exist.
func Correlate(g *grid.TypedGrid, nameA, nameB string) (*Result, error) {
	colA, ok := g.Column(nameA)
	if !ok {
		return nil, errors.NotFound("column " + nameA)
	}
	colB, ok := g.Column(nameB)
	if !ok {
		return nil, errors.NotFound("column " + nameB)
	}

	result := &Result{
		Columns: fmt.Sprintf("%s - %s", colA.Name, colB.Name),
		Method:  MethodNotApplicable,
	}

	switch {
	case colA.Kind == grid.Numeric && colB.Kind == grid.Numeric:
		result.Method = MethodPearson
		if r, ok := profiling.PairedPearson(colA, colB); ok {
			result.Value = &r
		}
	case colA.Kind == grid.Categorical && colB.Kind == grid.Categorical:
		result.Method = MethodCramersV
		result.Value = cramersV(colA, colB)
	}

	result.Interpretation = interpret(result.Method, result.Value)
	return result, nil
}

// cramersV computes the chi-square based association of two
// categorical columns over their paired non-missing rows. Returns nil
// when the statistic is undefined (empty table or a single level on
// either side).
func cramersV(a, b *grid.Column) *float64 {
	levelsA := make(map[string]int)
	levelsB := make(map[string]int)
	type cell struct{ i, j int }
	observed := make(map[cell]int)
	n := 0

	for i := 0; i < a.Len(); i++ {
		av, aok := a.Str(i)
		bv, bok := b.Str(i)
		if !aok || !bok {
			continue
		}
		ai, ok := levelsA[av]
		if !ok {
			ai = len(levelsA)
			levelsA[av] = ai
		}
		bi, ok := levelsB[bv]
		if !ok {
			bi = len(levelsB)
			levelsB[bv] = bi
		}
		observed[cell{ai, bi}]++
		n++
	}

	rows, cols := len(levelsA), len(levelsB)
	minDim := rows
	if cols < minDim {
		minDim = cols
	}
	if n == 0 || minDim-1 <= 0 {
		return nil
	}

	rowTotals := make([]int, rows)
	colTotals := make([]int, cols)
	for c, count := range observed {
		rowTotals[c.i] += count
		colTotals[c.j] += count
	}

	chiSq := 0.0
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			expected := float64(rowTotals[i]*colTotals[j]) / float64(n)
			if expected == 0 {
				continue
			}
			diff := float64(observed[cell{i, j}]) - expected
			chiSq += diff * diff / expected
		}
	}

	v := math.Sqrt(chiSq / (float64(n) * float64(minDim-1)))
	return &v
}

// interpret maps a coefficient onto a qualitative label. Pearson
// labels carry the sign; Cramér's V is non-negative so direction is
// omitted.
func interpret(method string, value *float64) string {
	if value == nil {
		return "Not enough data"
	}

	abs := math.Abs(*value)
	var strength string
	switch {
	case abs < 0.1:
		strength = "Negligible"
	case abs < 0.3:
		strength = "Weak"
	case abs < 0.5:
		strength = "Moderate"
	case abs < 0.7:
		strength = "Strong"
	default:
		strength = "Very strong"
	}

	if method == MethodPearson {
		direction := "positive"
		if *value < 0 {
			direction = "negative"
		}
		return fmt.Sprintf("%s %s correlation", strength, direction)
	}
	return fmt.Sprintf("%s association", strength)
}
