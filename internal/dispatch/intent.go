package dispatch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Action is the closed grammar a classified voice command can resolve to.
type Action string

const (
	ActionNavigate   Action = "navigate"
	ActionAddProduct Action = "addProduct"
	ActionFilter     Action = "filter"
	ActionUnknown    Action = "unknown"
)

// Actions lists every valid action in grammar order.
var Actions = []Action{ActionNavigate, ActionAddProduct, ActionFilter, ActionUnknown}

// ParseAction maps a raw action string onto the grammar. Anything outside
// the four known values is ActionUnknown.
func ParseAction(s string) Action {
	switch a := Action(strings.TrimSpace(s)); a {
	case ActionNavigate, ActionAddProduct, ActionFilter, ActionUnknown:
		return a
	default:
		return ActionUnknown
	}
}

// Valid reports whether a is one of the four grammar values.
func (a Action) Valid() bool {
	return ParseAction(string(a)) == a
}

// UnmarshalJSON keeps the type closed when decoding untyped classifier output.
func (a *Action) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*a = ActionUnknown
		return nil
	}
	*a = ParseAction(s)
	return nil
}

// Payload carries optional action parameters. Only the filter action reads it.
type Payload map[string]interface{}

// UnmarshalJSON accepts a JSON object and treats any other JSON value
// (string, array, number, null) as an empty payload.
func (p *Payload) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		*p = nil
		return nil
	}
	var m map[string]interface{}
	if err := json.Unmarshal(trimmed, &m); err != nil {
		*p = nil
		return nil
	}
	*p = m
	return nil
}

// Intent is the structured result of classifying one spoken command.
type Intent struct {
	Action   Action  `json:"action"`
	Target   string  `json:"target"`
	Payload  Payload `json:"payload,omitempty"`
	Feedback string  `json:"feedback"`
}

// DecodeIntent decodes classifier JSON into an Intent. Only malformed JSON is
// an error; unknown actions and odd payload shapes are narrowed during decode.
func DecodeIntent(data []byte) (Intent, error) {
	var in Intent
	if err := json.Unmarshal(data, &in); err != nil {
		return Intent{}, fmt.Errorf("decode intent: %w", err)
	}
	if in.Action == "" {
		in.Action = ActionUnknown
	}
	return in, nil
}
