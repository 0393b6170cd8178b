// Package ai talks to Gemini: statement analysis, offer search and card
// search. All model output goes through the lenient decoders in domain.
package ai

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// Generator is the slice of the genai client this package needs.
// *genai.Models satisfies it.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client runs prompts against one model.
type Client struct {
	gen   Generator
	model string
}

// NewClient creates a Gemini API client for apiKey.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("NewClient: api key is required")
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("NewClient: create genai client: %w", err)
	}
	return NewWithGenerator(gc.Models, model), nil
}

// NewWithGenerator wraps an existing generator. An empty model uses
// DefaultModel.
func NewWithGenerator(gen Generator, model string) *Client {
	if model == "" {
		model = DefaultModel
	}
	return &Client{gen: gen, model: model}
}

// Model returns the model id requests are sent to.
func (c *Client) Model() string {
	return c.model
}

func (c *Client) generateText(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (string, error) {
	resp, err := c.gen.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	if resp == nil {
		return "", errors.New("generate content: nil response")
	}
	text := resp.Text()
	if text == "" {
		return "", errors.New("generate content: empty response from model")
	}
	return text, nil
}
