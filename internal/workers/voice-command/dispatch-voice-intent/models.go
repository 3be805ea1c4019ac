// internal/workers/voice-command/dispatch-voice-intent/models.go
package dispatchvoiceintent

import "voice-command-workers/internal/dispatch"

type Input struct {
	CommandID string          `json:"commandId"`
	Intent    dispatch.Intent `json:"intent"`
}

type Output struct {
	CommandID string          `json:"commandId"`
	Result    dispatch.Result `json:"result"`
	HostURL   string          `json:"hostUrl"`
	Feedback  string          `json:"feedback"`
	// Prefilled is true when the process should ask for product suggestions.
	Prefilled bool `json:"prefilled"`
}
