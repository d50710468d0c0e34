// Package ai wraps the generative model used for chat answers and the
// periodic spending analyses.
package ai

import (
	"context"
	"errors"
	"time"

	"google.golang.org/genai"
)

const (
	// DefaultModelName is the model used unless configured otherwise.
	DefaultModelName = "gemini-2.0-flash"

	// DefaultTemperature keeps answers about money deterministic.
	DefaultTemperature float32 = 0.2

	// DefaultMaxTokens bounds a single completion.
	DefaultMaxTokens int32 = 1200

	requestTimeout = 60 * time.Second
)

// ErrEmptyResponse is returned when the model answered without any text.
var ErrEmptyResponse = errors.New("the model returned an empty response")

// Request is a single completion request.
type Request struct {
	System      string  // System instruction, empty to omit
	Prompt      string  // User content
	Temperature float32 // Sampling temperature
	MaxTokens   int32   // Output token limit
}

// Client generates one completion per call. Implementations must treat
// an answer without text as an error.
type Client interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Gemini is the Client backed by the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini returns a Client for the given API key. An empty model
// selects DefaultModelName.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, err
	}

	if model == "" {
		model = DefaultModelName
	}

	return &Gemini{client: client, model: model}, nil
}

// Generate sends one completion request. Requests are cut off after 60
// seconds.
func (g *Gemini) Generate(ctx context.Context, req Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(req.Temperature),
		MaxOutputTokens: req.MaxTokens,
	}
	if req.System != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.System}},
		}
	}

	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: req.Prompt}},
		},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return "", err
	}

	text := resp.Text()
	if text == "" {
		return "", ErrEmptyResponse
	}

	return text, nil
}
