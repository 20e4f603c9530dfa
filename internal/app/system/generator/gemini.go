// internal/app/system/generator/gemini.go
package generator

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// Gemini is a Model backed by the Gemini API with a JSON response schema.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini model client for apiKey.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

// GenerateJSON sends prompt and returns the model's JSON text.
func (g *Gemini) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   ResponseSchema(),
	})
	if err != nil {
		return "", err
	}
	text := resp.Text()
	if text == "" {
		return "", errors.New("empty response from model")
	}
	return text, nil
}

// ResponseSchema describes the array of sections the model must return.
func ResponseSchema() *genai.Schema {
	str := func() *genai.Schema { return &genai.Schema{Type: genai.TypeString} }

	item := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title":       str(),
			"description": str(),
			"icon":        str(),
			"name":        str(),
			"role":        str(),
		},
	}

	content := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title":      str(),
			"subtitle":   str(),
			"text":       str(),
			"buttonText": str(),
			"items":      {Type: genai.TypeArray, Items: item},
		},
	}

	return &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"type": {
					Type: genai.TypeString,
					Enum: []string{"hero", "features", "testimonials", "cta", "footer"},
				},
				"content": content,
			},
			Required: []string{"type", "content"},
		},
	}
}
