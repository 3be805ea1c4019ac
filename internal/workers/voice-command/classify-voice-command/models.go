// internal/workers/voice-command/classify-voice-command/models.go
package classifyvoicecommand

import "voice-command-workers/internal/dispatch"

type Input struct {
	CommandID    string `json:"commandId"`
	AudioDataURI string `json:"audioDataUri"`
}

type Output struct {
	CommandID string          `json:"commandId"`
	Intent    dispatch.Intent `json:"intent"`
	Cached    bool            `json:"cached"`
}

// gatewayRequest is the body posted to the HTTP classification endpoint.
type gatewayRequest struct {
	AudioDataURI string `json:"audioDataUri"`
}
