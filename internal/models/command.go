// internal/models/command.go
package models

import "time"

// CommandRecord is one row of the voice command audit log.
type CommandRecord struct {
	CommandID  string                 `json:"commandId"`
	Action     string                 `json:"action"`
	Target     string                 `json:"target"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
	ResultKind string                 `json:"resultKind"`
	Reason     string                 `json:"reason,omitempty"`
	HostURL    string                 `json:"hostUrl,omitempty"`
	Feedback   string                 `json:"feedback"`
	CreatedAt  time.Time              `json:"createdAt"`
}
