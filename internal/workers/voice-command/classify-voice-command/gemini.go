// internal/workers/voice-command/classify-voice-command/gemini.go
package classifyvoicecommand

import (
	"context"

	"voice-command-workers/internal/common/config"
	"voice-command-workers/internal/common/llm"
	"voice-command-workers/internal/models"
)

// GeminiClassifier sends the clip inline to a Gemini model with the intent
// response schema at temperature 0.
type GeminiClassifier struct {
	client *llm.Client
	prompt string
}

func NewGeminiClassifier(client *llm.Client, routes []models.Route) *GeminiClassifier {
	return &GeminiClassifier{client: client, prompt: BuildPrompt(routes)}
}

func (g *GeminiClassifier) Classify(ctx context.Context, clip *models.AudioClip) ([]byte, error) {
	contents := llm.AudioContent(g.prompt, clip.MIMEType, clip.Data)
	out, err := g.client.GenerateJSON(ctx, contents, responseSchema, 0)
	if err != nil {
		return nil, err
	}
	return []byte(out), nil
}

func (g *GeminiClassifier) Backend() string { return config.GenAIBackendGemini }
