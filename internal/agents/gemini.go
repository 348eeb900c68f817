package agents

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// NewGeminiClient creates the shared Gemini API client.
func NewGeminiClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return client, nil
}

// GeminiGenerator is a TextGenerator bound to one Gemini model. Each
// collaborator role gets its own instance so model choice stays per-role.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

var _ TextGenerator = (*GeminiGenerator)(nil)

// NewGeminiGenerator binds a model name to the shared client.
func NewGeminiGenerator(client *genai.Client, model string) *GeminiGenerator {
	return &GeminiGenerator{client: client, model: model}
}

// Generate runs a single prompt and returns the reply text.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini generate (%s): %w", g.model, err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini generate (%s): empty response", g.model)
	}
	return text, nil
}
