package insights

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

type constError string

func (e constError) Error() string { return string(e) }

// Sentinel errors.
const (
	ErrNoAPIKey        constError = "no LLM API key configured"
	ErrUnknownCategory constError = "unknown insight category"
	ErrEmptyResponse   constError = "model returned no text"
)

// Usage is the token accounting reported by the model.
type Usage struct {
	InputTokens  int `json:"inputTokens"`
	OutputTokens int `json:"outputTokens"`
	TotalTokens  int `json:"totalTokens"`
}

// Completion is one model answer.
type Completion struct {
	Text  string
	Model string
	Usage Usage
}

// Client sends one system + user exchange to a language model.
type Client interface {
	Complete(ctx context.Context, system, user string) (Completion, error)
}

type disabledClient struct{}

func (disabledClient) Complete(context.Context, string, string) (Completion, error) {
	return Completion{}, ErrNoAPIKey
}

// Disabled is the client used when no API key is configured. Every call
// fails with ErrNoAPIKey, which callers treat as "no insights".
var Disabled Client = disabledClient{} //nolint:gochecknoglobals // stateless sentinel client

// GeminiClient talks to the Gemini API.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient builds a Gemini client for model.
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	if model == "" {
		return nil, errors.New("model name is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiClient{client: client, model: model}, nil
}

// Model returns the configured model name.
func (g *GeminiClient) Model() string {
	return g.model
}

// Complete implements Client.
func (g *GeminiClient) Complete(ctx context.Context, system, user string) (Completion, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(user), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
	})
	if err != nil {
		return Completion{}, fmt.Errorf("GenAI generate failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return Completion{}, ErrEmptyResponse
	}

	out := Completion{Text: text, Model: g.model}
	if u := resp.UsageMetadata; u != nil {
		out.Usage = Usage{
			InputTokens:  int(u.PromptTokenCount),
			OutputTokens: int(u.CandidatesTokenCount),
			TotalTokens:  int(u.TotalTokenCount),
		}
	}
	if resp.ModelVersion != "" {
		out.Model = resp.ModelVersion
	}
	return out, nil
}
