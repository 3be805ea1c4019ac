// internal/common/llm/client.go
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"voice-command-workers/internal/common/config"
)

var (
	ErrEmptyResponse = errors.New("model returned no content")
	ErrNoImage       = errors.New("model returned no image")
)

// Client is a thin wrapper around the GenAI SDK bound to the configured
// text and image models.
type Client struct {
	models     *genai.Models
	model      string
	imageModel string
}

// New creates a Gemini API client. BaseURL, when set, overrides the API
// endpoint.
func New(ctx context.Context, cfg config.GenAIConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: strings.TrimRight(cfg.BaseURL, "/") + "/"}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &Client{
		models:     client.Models,
		model:      cfg.Model,
		imageModel: cfg.ImageModel,
	}, nil
}

func (c *Client) Model() string {
	return c.model
}

// GenerateJSON sends contents to the text model and returns the raw JSON text.
// A nil schema leaves the response shape to the prompt.
func (c *Client) GenerateJSON(ctx context.Context, contents []*genai.Content, schema *genai.Schema, temperature float32) (string, error) {
	resp, err := c.models.GenerateContent(ctx, c.model, contents, &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(temperature),
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	})
	if err != nil {
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}
	return text(resp)
}

// GenerateText runs a single text prompt.
func (c *Client) GenerateText(ctx context.Context, prompt string, temperature float32) (string, error) {
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
	resp, err := c.models.GenerateContent(ctx, c.model, contents, &genai.GenerateContentConfig{
		Temperature: genai.Ptr(temperature),
	})
	if err != nil {
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}
	return text(resp)
}

// GenerateImage returns the first image the image model produces.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (mimeType string, data []byte, err error) {
	resp, err := c.models.GenerateImages(ctx, c.imageModel, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
	})
	if err != nil {
		return "", nil, fmt.Errorf("GenAI image generation failed: %w", err)
	}
	for _, img := range resp.GeneratedImages {
		if img == nil || img.Image == nil || len(img.Image.ImageBytes) == 0 {
			continue
		}
		mimeType = img.Image.MIMEType
		if mimeType == "" {
			mimeType = "image/png"
		}
		return mimeType, img.Image.ImageBytes, nil
	}
	return "", nil, ErrNoImage
}

func text(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", ErrEmptyResponse
	}
	out := strings.TrimSpace(resp.Text())
	if out == "" {
		return "", ErrEmptyResponse
	}
	return out, nil
}

// AudioContent builds a user turn holding an instruction and an audio clip.
func AudioContent(instruction, mimeType string, audio []byte) []*genai.Content {
	parts := []*genai.Part{
		genai.NewPartFromText(instruction),
		genai.NewPartFromBytes(audio, mimeType),
	}
	return []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
}
