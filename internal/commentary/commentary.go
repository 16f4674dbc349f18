package commentary

import (
	"context"
	"fmt"
	"strings"

	"crypto-volume-toolkit/internal/analysis"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// LLMClient abstracts the OpenAI chat completions API for testability.
type LLMClient interface {
	CreateChatCompletion(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error)
}

// Service writes the Market Notes section of the cross-market report.
type Service struct {
	tracer  trace.Tracer
	llm     LLMClient
	model   string
	maxRows int
}

func NewService(tracer trace.Tracer, llm LLMClient, model string) *Service {
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &Service{tracer: tracer, llm: llm, model: model, maxRows: 15}
}

// MarketNotes asks the model for a short reading of the merged tables.
func (s *Service) MarketNotes(ctx context.Context, cross analysis.CrossMarket) (string, error) {
	ctx, span := s.tracer.Start(ctx, "commentary.market-notes")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.model", s.model),
		attribute.Int("rows.both", len(cross.Both)),
		attribute.Int("rows.futures_only", len(cross.FuturesOnly)),
		attribute.Int("rows.spot_only", len(cross.SpotOnly)),
	)

	completion, err := s.llm.CreateChatCompletion(ctx, openai.ChatCompletionNewParams{
		Model: s.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(BuildSystemPrompt()),
			openai.UserMessage(FormatCrossMarket(cross, s.maxRows)),
		},
	})
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("market notes unavailable: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("no choices in LLM response")
	}

	notes := strings.TrimSpace(completion.Choices[0].Message.Content)
	span.SetAttributes(attribute.Int("llm.reply_length", len(notes)))
	return notes, nil
}

// openaiClient wraps the official SDK's chat completions service.
type openaiClient struct {
	client openai.Client
}

func NewOpenAIClient(apiKey string) LLMClient {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &openaiClient{client: client}
}

func (c *openaiClient) CreateChatCompletion(
	ctx context.Context,
	params openai.ChatCompletionNewParams,
) (*openai.ChatCompletion, error) {
	return c.client.Chat.Completions.New(ctx, params)
}
