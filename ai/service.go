package ai

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"datasight/adapters/llm"
	"datasight/domain/grid"
	"datasight/internal/profiling"
)

// DefaultModel is used when the requested model is not on the
// allow-list
const DefaultModel = "meta-llama/llama-3.3-8b-instruct:free"

// allowedModels is the fixed set of OpenRouter model IDs the service
// will forward
var allowedModels = map[string]bool{
	"microsoft/phi-4-reasoning-plus:free":   true,
	"meta-llama/llama-3.3-8b-instruct:free": true,
	"qwen/qwen3-0.6b-04-28:free":            true,
}

const systemPrompt = "You are an AI data analyst assistant. You'll be given data information and a question about this data. " +
	"Provide a helpful, informative, and accurate response based on the data provided. " +
	"If you can't answer based on the available data, explain what would be needed to answer it correctly. " +
	"When appropriate, offer insights that might not be directly asked for but would be valuable to the user. " +
	"For numerical answers, include the number in the response. " +
	"Answer in a short and concise way so it is easy for the user to understand."

// Context carries optional pre-computed insight forwarded with a
// question
type Context struct {
	ColumnTypes  map[string]int              `json:"columnTypes,omitempty"`
	Correlations []profiling.PairCorrelation `json:"correlations,omitempty"`
}

// Response is the answer payload. Failures never escape as errors;
// they come back as answer text with the same shape.
type Response struct {
	Answer         string  `json:"answer"`
	ModelUsed      string  `json:"model_used"`
	ProcessingTime float64 `json:"processing_time"`
}

// Service answers natural-language questions about a dataset through
// a chat-completion client.
type Service struct {
	client llm.Client
}

// NewService creates an answer service backed by the given client
func NewService(client llm.Client) *Service {
	return &Service{client: client}
}

// Answer forwards a question plus a digest of the grid to the model.
// Unrecognized model IDs silently fall back to the default. Remote
// failures are converted into a textual answer, never an error.
func (s *Service) Answer(ctx context.Context, question, model string, g *grid.TypedGrid, extra *Context) Response {
	start := time.Now()

	if !allowedModels[model] {
		model = DefaultModel
	}

	digest := BuildDigest(g, extra)
	prompt := fmt.Sprintf(
		"Here's information about my data:\n\n%s\n\nAnswer in a short and concise way so it is easy for the user to understand.\n\nMy question is: %s",
		digest, question)

	answer, err := s.client.ChatCompletion(ctx, model, systemPrompt, prompt)
	if err != nil {
		log.Printf("[ai] completion failed: %v", err)
		answer = fmt.Sprintf(
			"I encountered an error while processing your request: %v. Please try again or try a different question.", err)
	} else if answer == "" {
		answer = "I couldn't generate a response. Please try again or try a different question."
	}

	return Response{
		Answer:         answer,
		ModelUsed:      model,
		ProcessingTime: math.Round(time.Since(start).Seconds()*100) / 100,
	}
}
