package ai

import (
	"fmt"
	"strings"

	"datasight/domain/grid"
	"datasight/internal/profiling"
)

const (
	uniqueListLimit = 10
	exampleLimit    = 5
	sampleRows      = 3
	topCorrelations = 5
)

// BuildDigest renders a textual description of the grid for the
// remote model: shape, per-column stats, optional context insight and
// a small data sample.
func BuildDigest(g *grid.TypedGrid, extra *Context) string {
	var b strings.Builder

	fmt.Fprintf(&b, "The dataset has %d rows and %d columns.\n", g.RowCount(), g.ColumnCount())
	b.WriteString("\nColumns in the dataset:\n")

	cols := g.Columns()
	for i := range cols {
		describeColumn(&b, g, &cols[i])
	}

	if extra != nil {
		if len(extra.ColumnTypes) > 0 {
			b.WriteString("\nColumn types distribution:\n")
			for _, kind := range []string{"numerical", "categorical", "datetime", "boolean"} {
				if count, ok := extra.ColumnTypes[kind]; ok {
					fmt.Fprintf(&b, "- %s: %d columns\n", kind, count)
				}
			}
		}
		if len(extra.Correlations) > 0 {
			b.WriteString("\nTop correlations between columns:\n")
			top := extra.Correlations
			if len(top) > topCorrelations {
				top = top[:topCorrelations]
			}
			for _, corr := range top {
				fmt.Fprintf(&b, "- %s: %.2f\n", corr.Columns, corr.Value)
			}
		}
	}

	if g.RowCount() > 0 {
		fmt.Fprintf(&b, "\nSample data (first %d rows):\n", sampleRows)
		b.WriteString(renderSample(g))
	}

	return b.String()
}

func describeColumn(b *strings.Builder, g *grid.TypedGrid, col *grid.Column) {
	missing := col.MissingCount()
	missingPct := 0.0
	if col.Len() > 0 {
		missingPct = 100 * float64(missing) / float64(col.Len())
	}
	fmt.Fprintf(b, "- %s (type: %s, missing: %d (%.2f%%))\n", col.Name, col.Kind, missing, missingPct)

	if col.Kind == grid.Numeric {
		profile, err := profiling.ProfileColumn(g, col.Name)
		if err != nil || profile.Min == nil {
			return
		}
		fmt.Fprintf(b, "  Range: %g to %g\n", *profile.Min, *profile.Max)
		if profile.Mean != nil && profile.Median != nil {
			fmt.Fprintf(b, "  Mean: %.2f, Median: %g\n", *profile.Mean, *profile.Median)
		}
		return
	}

	values := uniqueCellStrings(col)
	if len(values) == 0 {
		return
	}
	if len(values) <= uniqueListLimit {
		fmt.Fprintf(b, "  Unique values: %s\n", strings.Join(values, ", "))
	} else {
		fmt.Fprintf(b, "  Has %d unique values\n", len(values))
		fmt.Fprintf(b, "  Examples: %s\n", strings.Join(values[:exampleLimit], ", "))
	}
}

// uniqueCellStrings lists distinct non-missing values in first-seen
// order
func uniqueCellStrings(col *grid.Column) []string {
	seen := make(map[string]bool)
	var values []string
	for i := 0; i < col.Len(); i++ {
		if !col.Present(i) {
			continue
		}
		s := col.CellString(i)
		if !seen[s] {
			seen[s] = true
			values = append(values, s)
		}
	}
	return values
}

func renderSample(g *grid.TypedGrid) string {
	var b strings.Builder
	b.WriteString(strings.Join(g.Names(), " | "))
	b.WriteString("\n")

	rows := g.RowCount()
	if rows > sampleRows {
		rows = sampleRows
	}
	cols := g.Columns()
	for i := 0; i < rows; i++ {
		parts := make([]string, len(cols))
		for j := range cols {
			parts[j] = cols[j].CellString(i)
		}
		b.WriteString(strings.Join(parts, " | "))
		b.WriteString("\n")
	}
	return b.String()
}
