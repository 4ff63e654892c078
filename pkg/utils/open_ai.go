package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pgvector/pgvector-go"
	openai "github.com/sashabaranov/go-openai"

	"tabiplan/internal/models/request_models"
)

// OpenAIPlannerClient implements PlannerAIInterface using OpenAI chat models.
type OpenAIPlannerClient struct {
	client *openai.Client
	model  string
}

func NewOpenAIPlannerClient(apiKey, model string) PlannerAIInterface {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIPlannerClient{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

func (c *OpenAIPlannerClient) DiscoverAreas(ctx context.Context, destination string, dayCount int, interests []string) (string, error) {
	if strings.TrimSpace(destination) == "" {
		return "", fmt.Errorf("destination cannot be empty")
	}
	if dayCount < 1 || dayCount > 30 {
		return "", fmt.Errorf("bad dayCount")
	}
	return c.generateJSON(ctx, buildAreaPrompt(destination, dayCount, interests))
}

func (c *OpenAIPlannerClient) GenerateDayPlan(ctx context.Context, prompt request_models.DayPlanPrompt) (string, error) {
	if strings.TrimSpace(prompt.Destination) == "" {
		return "", fmt.Errorf("destination cannot be empty")
	}
	if prompt.Day < 1 {
		return "", fmt.Errorf("day must be at least 1")
	}
	return c.generateJSON(ctx, buildDayPlanPrompt(prompt))
}

func (c *OpenAIPlannerClient) ReviseDayPlan(ctx context.Context, systemInstruction, currentStateJSON string) (string, error) {
	return c.generateJSON(ctx, buildRevisionPrompt(systemInstruction, currentStateJSON))
}

func (c *OpenAIPlannerClient) ReviseTripPlan(ctx context.Context, systemInstruction, currentStateJSON string) (string, error) {
	return c.generateJSON(ctx, buildRevisionPrompt(systemInstruction, currentStateJSON))
}

func (c *OpenAIPlannerClient) generateJSON(ctx context.Context, prompt string) (string, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctxWithTimeout, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0.1,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a travel planning engine. Respond with JSON only.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no content generated")
	}

	content := CleanJSONResponse(resp.Choices[0].Message.Content)
	if !json.Valid([]byte(content)) {
		return "", fmt.Errorf("openai returned invalid JSON")
	}
	return content, nil
}

func (c *OpenAIPlannerClient) GetEmbedding(ctx context.Context, text string) (pgvector.Vector, error) {
	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.SmallEmbedding3,
	})
	if err != nil {
		return pgvector.Vector{}, fmt.Errorf("openai embeddings: %w", err)
	}
	if len(resp.Data) == 0 {
		return pgvector.Vector{}, fmt.Errorf("no embedding returned")
	}
	return pgvector.NewVector(resp.Data[0].Embedding), nil
}

func (c *OpenAIPlannerClient) Close() error { return nil }
