package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datasight/adapters/llm"
	"datasight/domain/grid"
	"datasight/internal/profiling"
)

func sampleGrid() *grid.TypedGrid {
	return grid.Build(
		[]string{"age", "city", "active"},
		[][]string{
			{"30", "paris", "true"},
			{"25", "lyon", "false"},
			{"41", "paris", "true"},
			{"", "nice", "false"},
		},
	)
}

func TestAnswerForwardsDigestAndQuestion(t *testing.T) {
	mock := &llm.MockClient{Response: "The average age is 32."}
	svc := NewService(mock)

	resp := svc.Answer(context.Background(), "What is the average age?", DefaultModel, sampleGrid(), nil)

	assert.Equal(t, "The average age is 32.", resp.Answer)
	assert.Equal(t, DefaultModel, resp.ModelUsed)
	assert.GreaterOrEqual(t, resp.ProcessingTime, 0.0)

	assert.Contains(t, mock.LastPrompt, "My question is: What is the average age?")
	assert.Contains(t, mock.LastPrompt, "4 rows and 3 columns")
}

func TestAnswerFallsBackToDefaultModel(t *testing.T) {
	mock := &llm.MockClient{Response: "ok"}
	svc := NewService(mock)

	resp := svc.Answer(context.Background(), "q", "openai/gpt-4o", sampleGrid(), nil)

	assert.Equal(t, DefaultModel, resp.ModelUsed)
	assert.Equal(t, DefaultModel, mock.LastModel)
}

func TestAnswerKeepsAllowedModel(t *testing.T) {
	mock := &llm.MockClient{Response: "ok"}
	svc := NewService(mock)

	resp := svc.Answer(context.Background(), "q", "qwen/qwen3-0.6b-04-28:free", sampleGrid(), nil)

	assert.Equal(t, "qwen/qwen3-0.6b-04-28:free", resp.ModelUsed)
}

func TestAnswerConvertsFailureToText(t *testing.T) {
	mock := &llm.MockClient{Error: errors.New("upstream timeout")}
	svc := NewService(mock)

	resp := svc.Answer(context.Background(), "q", DefaultModel, sampleGrid(), nil)

	assert.Contains(t, resp.Answer, "I encountered an error while processing your request")
	assert.Contains(t, resp.Answer, "upstream timeout")
}

func TestAnswerGuardsEmptyCompletion(t *testing.T) {
	mock := &llm.MockClient{Response: ""}
	svc := NewService(mock)

	resp := svc.Answer(context.Background(), "q", DefaultModel, sampleGrid(), nil)

	assert.Equal(t, "I couldn't generate a response. Please try again or try a different question.", resp.Answer)
}

func TestBuildDigestDescribesColumns(t *testing.T) {
	digest := BuildDigest(sampleGrid(), nil)

	assert.Contains(t, digest, "The dataset has 4 rows and 3 columns.")
	assert.Contains(t, digest, "- age (type: numerical, missing: 1 (25.00%))")
	assert.Contains(t, digest, "Range: 25 to 41")
	assert.Contains(t, digest, "Median: 30")
	assert.Contains(t, digest, "- city (type: categorical, missing: 0 (0.00%))")
	assert.Contains(t, digest, "Unique values: paris, lyon, nice")
	assert.Contains(t, digest, "- active (type: boolean, missing: 0 (0.00%))")
}

func TestBuildDigestSampleRows(t *testing.T) {
	digest := BuildDigest(sampleGrid(), nil)

	assert.Contains(t, digest, "Sample data (first 3 rows):")
	assert.Contains(t, digest, "age | city | active")
	assert.Contains(t, digest, "30 | paris | true")
	// Fourth row is beyond the sample window
	assert.NotContains(t, digest, "nice | false")
}

func TestBuildDigestHighCardinalityColumn(t *testing.T) {
	rows := make([][]string, 12)
	for i := range rows {
		rows[i] = []string{string(rune('a' + i))}
	}
	g := grid.Build([]string{"code"}, rows)

	digest := BuildDigest(g, nil)
	assert.Contains(t, digest, "Has 12 unique values")
	assert.Contains(t, digest, "Examples: a, b, c, d, e")
}

func TestBuildDigestWithContext(t *testing.T) {
	extra := &Context{
		ColumnTypes: map[string]int{"numerical": 2, "categorical": 1},
		Correlations: []profiling.PairCorrelation{
			{Columns: "height - weight", Value: 0.8123},
		},
	}

	digest := BuildDigest(sampleGrid(), extra)
	assert.Contains(t, digest, "Column types distribution:")
	assert.Contains(t, digest, "- numerical: 2 columns")
	assert.Contains(t, digest, "- categorical: 1 columns")
	assert.Contains(t, digest, "Top correlations between columns:")
	assert.Contains(t, digest, "- height - weight: 0.81")
}

func TestBuildDigestEmptyGrid(t *testing.T) {
	g := grid.Build([]string{"a"}, nil)

	digest := BuildDigest(g, nil)
	assert.Contains(t, digest, "0 rows and 1 columns")
	assert.NotContains(t, digest, "Sample data")
}

func TestDigestReachesPrompt(t *testing.T) {
	mock := &llm.MockClient{Response: "ok"}
	svc := NewService(mock)

	extra := &Context{ColumnTypes: map[string]int{"numerical": 1}}
	svc.Answer(context.Background(), "q", DefaultModel, sampleGrid(), extra)

	require.NotEmpty(t, mock.LastPrompt)
	assert.Contains(t, mock.LastPrompt, "Column types distribution:")
}
