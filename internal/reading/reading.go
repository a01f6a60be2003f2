// Package reading turns rendered prompts into reading text.
package reading

import (
	"context"
	"fmt"
	"strings"

	"github.com/starford/daivaya/internal/apperr"
	"google.golang.org/genai"
)

// Generator produces a reading for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Echo returns the prompt itself. It lets the service run without an LLM.
type Echo struct{}

func (Echo) Generate(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return prompt, nil
}

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// Gemini generates readings with the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

// GeminiOption configures a Gemini generator.
type GeminiOption func(*genai.ClientConfig)

// WithBaseURL points the client at another API endpoint.
func WithBaseURL(u string) GeminiOption {
	return func(c *genai.ClientConfig) { c.HTTPOptions.BaseURL = u }
}

// NewGemini creates a Gemini generator.
func NewGemini(ctx context.Context, apiKey, model string, opts ...GeminiOption) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("reading: gemini api key is required")
	}
	if model == "" {
		model = DefaultModel
	}
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	for _, o := range opts {
		o(cfg)
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("reading: create gemini client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0.7),
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", apperr.Wrap(apperr.ErrUpstream, fmt.Errorf("reading: generate: %w", err), "reading service unavailable")
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", apperr.New(apperr.ErrUpstream, "reading service returned no text")
	}
	return text + "\n", nil
}
