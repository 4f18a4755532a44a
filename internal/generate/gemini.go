package generate

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// pairSchema forces the model to return an array of question/answer objects.
var pairSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"question": {Type: genai.TypeString},
			"answer":   {Type: genai.TypeString},
		},
		Required: []string{"question", "answer"},
	},
}

// GeminiModel is the production contentModel backed by the Gemini API.
type GeminiModel struct {
	client *genai.Client
	model  string
}

func NewGeminiModel(ctx context.Context, apiKey, model string) (*GeminiModel, error) {
	if apiKey == "" {
		return nil, errors.New("missing Gemini API key")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiModel{client: client, model: model}, nil
}

func (g *GeminiModel) GenerateContent(ctx context.Context, prompt string, attachments []Attachment) (string, error) {
	parts := []*genai.Part{{Text: prompt}}
	for _, a := range attachments {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{MIMEType: a.MIMEType, Data: a.Data},
		})
	}
	contents := []*genai.Content{{Role: genai.RoleUser, Parts: parts}}

	cfg := &genai.GenerateContentConfig{
		// Pinned to the most deterministic sampling available.
		Temperature:      genai.Ptr[float32](0),
		ResponseMIMEType: "application/json",
		ResponseSchema:   pairSchema,
	}

	res, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return "", err
	}
	return res.Text(), nil
}
