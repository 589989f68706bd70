// Package gemini adapts the Gemini API to the assistant's text generator.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

var ErrEmptyResponse = errors.New("gemini: empty response")

// Message is one turn of a conversation. Role is "user" or "model".
type Message struct {
	Role string
	Text string
}

type Client struct {
	models  *genai.Models
	model   string
	limiter *rate.Limiter
}

// NewClient builds a Gemini API client allowed rps requests per second.
func NewClient(ctx context.Context, apiKey, model string, rps float64) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: api key is required")
	}
	if rps <= 0 {
		rps = 1
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: new client: %w", err)
	}
	return &Client{
		models:  c.Models,
		model:   model,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}, nil
}

// Generate sends one request and returns the model's text.
func (c *Client) Generate(ctx context.Context, system string, messages []Message) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	contents := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		contents = append(contents, genai.NewContentFromText(m.Text, toRole(m.Role)))
	}

	var cfg *genai.GenerateContentConfig
	if system != "" {
		cfg = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		}
	}

	resp, err := c.models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini: generate: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func toRole(r string) genai.Role {
	if r == "model" || r == "assistant" {
		return genai.RoleModel
	}
	return genai.RoleUser
}
