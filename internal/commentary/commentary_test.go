package commentary

import (
	"context"
	"errors"
	"strings"
	"testing"

	"crypto-volume-toolkit/internal/analysis"
	"crypto-volume-toolkit/internal/domain"

	"github.com/openai/openai-go"
	"go.opentelemetry.io/otel/trace"
)

type stubLLMClient struct {
	response *openai.ChatCompletion
	err      error
	params   openai.ChatCompletionNewParams
}

func (s *stubLLMClient) CreateChatCompletion(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
	s.params = params
	return s.response, s.err
}

func sampleCross() analysis.CrossMarket {
	spot := []domain.SpotRow{
		{Ticker: "AAA", VTMR: 2.1, VTMRDisplay: "2.1x"},
		{Ticker: "CCC", VTMR: 0.9, VTMRDisplay: "0.9x"},
	}
	fut := []domain.FuturesToken{
		{Ticker: "AAA", VTMR: 1.4, OIChange: "+25%", FundingRate: "0.06%"},
		{Ticker: "BBB", VTMR: 0.7, OIChange: "", FundingRate: "-0.01"},
	}
	return analysis.Merge(spot, fut)
}

func TestMarketNotesHappyPath(t *testing.T) {
	llm := &stubLLMClient{response: &openai.ChatCompletion{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: "  AAA leads with rising open interest.  "}},
		},
	}}
	svc := NewService(trace.NewNoopTracerProvider().Tracer("test"), llm, "")

	notes, err := svc.MarketNotes(context.Background(), sampleCross())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if notes != "AAA leads with rising open interest." {
		t.Fatalf("unexpected notes %q", notes)
	}
	if llm.params.Model != "gpt-4o-mini" {
		t.Fatalf("expected default model, got %q", llm.params.Model)
	}
	if len(llm.params.Messages) != 2 {
		t.Fatalf("expected system and user messages, got %d", len(llm.params.Messages))
	}
}

func TestMarketNotesErrors(t *testing.T) {
	tracer := trace.NewNoopTracerProvider().Tracer("test")

	svc := NewService(tracer, &stubLLMClient{err: errors.New("api down")}, "gpt-4o")
	if _, err := svc.MarketNotes(context.Background(), sampleCross()); err == nil {
		t.Fatal("expected error from LLM failure")
	}

	svc = NewService(tracer, &stubLLMClient{response: &openai.ChatCompletion{}}, "gpt-4o")
	if _, err := svc.MarketNotes(context.Background(), sampleCross()); err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestFormatCrossMarket(t *testing.T) {
	text := FormatCrossMarket(sampleCross(), 10)
	for _, want := range []string{
		"Tokens on both spot and futures:",
		"AAA spot=2.1x futures=1.40x OI=+25% OISS=5/5 Strong funding=0.06",
		"Futures-only tokens:",
		"BBB futures=0.70x OI=- funding=-0.01",
		"Spot-only tokens:",
		"CCC spot=0.90x",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in:\n%s", want, text)
		}
	}

	if got := FormatCrossMarket(analysis.CrossMarket{}, 10); got != "No cross-market data available." {
		t.Fatalf("unexpected empty text %q", got)
	}
}

func TestFormatCrossMarketLimitsRows(t *testing.T) {
	text := FormatCrossMarket(sampleCross(), 0)
	if strings.Contains(text, "AAA") {
		t.Fatalf("expected rows to be capped, got:\n%s", text)
	}
}

func TestBuildSystemPrompt(t *testing.T) {
	p := BuildSystemPrompt()
	for _, want := range []string{"VTMR", "OISS", "Funding rate"} {
		if !strings.Contains(p, want) {
			t.Fatalf("system prompt missing %q", want)
		}
	}
}
