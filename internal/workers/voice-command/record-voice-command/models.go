// internal/workers/voice-command/record-voice-command/models.go
package recordvoicecommand

import "voice-command-workers/internal/dispatch"

type Input struct {
	CommandID string          `json:"commandId"`
	Intent    dispatch.Intent `json:"intent"`
	Result    dispatch.Result `json:"result"`
	HostURL   string          `json:"hostUrl"`
}

type Output struct {
	Recorded   bool   `json:"recorded"`
	RecordedAt string `json:"recordedAt"`
}
