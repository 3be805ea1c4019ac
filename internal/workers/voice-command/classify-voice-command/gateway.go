// internal/workers/voice-command/classify-voice-command/gateway.go
package classifyvoicecommand

import (
	"context"
	"encoding/json"
	"strings"

	"voice-command-workers/internal/common/config"
	httpclient "voice-command-workers/internal/common/http"
	"voice-command-workers/internal/models"
)

const gatewayPath = "/api/ai/voice-command"

// GatewayClassifier posts the clip to an HTTP GenAI gateway that answers
// with intent JSON.
type GatewayClassifier struct {
	client *httpclient.Client
	url    string
}

func NewGatewayClassifier(client *httpclient.Client, baseURL string) *GatewayClassifier {
	return &GatewayClassifier{client: client, url: strings.TrimRight(baseURL, "/") + gatewayPath}
}

func (g *GatewayClassifier) Classify(ctx context.Context, clip *models.AudioClip) ([]byte, error) {
	var raw json.RawMessage
	if err := g.client.PostJSON(ctx, g.url, gatewayRequest{AudioDataURI: clip.DataURI()}, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func (g *GatewayClassifier) Backend() string { return config.GenAIBackendGateway }
