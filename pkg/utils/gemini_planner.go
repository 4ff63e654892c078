package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/pgvector/pgvector-go"
	"google.golang.org/api/option"

	"tabiplan/internal/models/request_models"
)

// GeminiPlannerClient implements PlannerAIInterface using Google's Gemini models.
type GeminiPlannerClient struct {
	client *genai.Client
	model  string
}

func NewGeminiPlannerClient(apiKey, model string) (PlannerAIInterface, error) {
	if model == "" {
		model = "gemini-1.5-flash" // Free tier model
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiPlannerClient{
		client: client,
		model:  model,
	}, nil
}

func (c *GeminiPlannerClient) DiscoverAreas(ctx context.Context, destination string, dayCount int, interests []string) (string, error) {
	if strings.TrimSpace(destination) == "" {
		return "", fmt.Errorf("destination cannot be empty")
	}
	if dayCount < 1 || dayCount > 30 {
		return "", fmt.Errorf("bad dayCount")
	}
	return c.generateJSON(ctx, buildAreaPrompt(destination, dayCount, interests))
}

func (c *GeminiPlannerClient) GenerateDayPlan(ctx context.Context, prompt request_models.DayPlanPrompt) (string, error) {
	if strings.TrimSpace(prompt.Destination) == "" {
		return "", fmt.Errorf("destination cannot be empty")
	}
	if prompt.Day < 1 {
		return "", fmt.Errorf("day must be at least 1")
	}
	return c.generateJSON(ctx, buildDayPlanPrompt(prompt))
}

func (c *GeminiPlannerClient) ReviseDayPlan(ctx context.Context, systemInstruction, currentStateJSON string) (string, error) {
	return c.generateJSON(ctx, buildRevisionPrompt(systemInstruction, currentStateJSON))
}

func (c *GeminiPlannerClient) ReviseTripPlan(ctx context.Context, systemInstruction, currentStateJSON string) (string, error) {
	return c.generateJSON(ctx, buildRevisionPrompt(systemInstruction, currentStateJSON))
}

func (c *GeminiPlannerClient) generateJSON(ctx context.Context, prompt string) (string, error) {
	model := c.client.GenerativeModel(c.model)

	// Force JSON-only output and keep generation deterministic and fast.
	model.ResponseMIMEType = "application/json"
	model.SetTemperature(0.1)
	model.SetTopP(0.5)
	model.SetTopK(20)
	model.SetMaxOutputTokens(5000)

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	resp, err := model.GenerateContent(ctxWithTimeout, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content generated")
	}

	content := fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0])
	content = CleanJSONResponse(content)
	if !json.Valid([]byte(content)) {
		return "", fmt.Errorf("gemini returned invalid JSON")
	}
	return content, nil
}

// GetEmbedding generates a vector embedding for text.
// Note: this is a hash-based fallback since the Gemini free tier has no
// dedicated embedding endpoint.
func (c *GeminiPlannerClient) GetEmbedding(ctx context.Context, text string) (pgvector.Vector, error) {
	return c.textToVector(text), nil
}

func (c *GeminiPlannerClient) Close() error {
	return c.client.Close()
}

// textToVector creates a simple vector representation of text using word
// hashing. Good enough for coarse area similarity; swap in a real embedding
// model for production-quality retrieval.
func (c *GeminiPlannerClient) textToVector(text string) pgvector.Vector {
	text = strings.ToLower(strings.TrimSpace(text))
	words := strings.Fields(text)

	const dimensions = 1536
	vector := make([]float32, dimensions)

	for _, word := range words {
		hash := c.hashWord(word)
		for i := 0; i < dimensions; i++ {
			influence := math.Sin(float64(hash+uint32(i))) * 0.1
			vector[i] += float32(influence)
		}
	}

	magnitude := float32(0)
	for _, val := range vector {
		magnitude += val * val
	}
	magnitude = float32(math.Sqrt(float64(magnitude)))

	if magnitude > 0 {
		for i := range vector {
			vector[i] /= magnitude
		}
	}

	return pgvector.NewVector(vector)
}

func (c *GeminiPlannerClient) hashWord(word string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(word))
	return h.Sum32()
}

// CleanJSONResponse removes markdown formatting and extra prose around the
// JSON payload a model returns.
func CleanJSONResponse(response string) string {
	response = strings.ReplaceAll(response, "```json", "")
	response = strings.ReplaceAll(response, "```JSON", "")
	response = strings.ReplaceAll(response, "```", "")
	response = strings.TrimSpace(response)

	objStart := strings.Index(response, "{")
	arrStart := strings.Index(response, "[")

	if objStart != -1 && (arrStart == -1 || objStart < arrStart) {
		if objEnd := findMatchingDelimiter(response, objStart, '{', '}'); objEnd != -1 {
			response = response[objStart : objEnd+1]
		}
	} else if arrStart != -1 {
		if arrEnd := findMatchingDelimiter(response, arrStart, '[', ']'); arrEnd != -1 {
			response = response[arrStart : arrEnd+1]
		}
	}

	return strings.TrimSpace(response)
}

// findMatchingDelimiter finds the matching closing delimiter, skipping over
// string literals and escapes.
func findMatchingDelimiter(s string, start int, open, closing byte) int {
	if start >= len(s) || s[start] != open {
		return -1
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		char := s[i]

		if escaped {
			escaped = false
			continue
		}
		if char == '\\' && inString {
			escaped = true
			continue
		}
		if char == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		switch char {
		case open:
			depth++
		case closing:
			depth--
			if depth == 0 {
				return i
			}
		}
	}

	return -1
}
