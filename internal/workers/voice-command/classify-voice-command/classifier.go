// internal/workers/voice-command/classify-voice-command/classifier.go
package classifyvoicecommand

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	apperrors "voice-command-workers/internal/common/errors"
	"voice-command-workers/internal/common/validation"
	"voice-command-workers/internal/dispatch"
	"voice-command-workers/internal/models"
)

var ErrEmptyClassification = errors.New("classifier returned no output")

// Classifier turns one audio clip into raw intent JSON.
type Classifier interface {
	Classify(ctx context.Context, clip *models.AudioClip) ([]byte, error)
	Backend() string
}

// intentSchema accepts any action string; DecodeIntent narrows it to the grammar.
var intentSchema = validation.MustCompile(map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"action", "feedback"},
	"properties": map[string]interface{}{
		"action":   map[string]interface{}{"type": "string"},
		"target":   map[string]interface{}{"type": "string"},
		"feedback": map[string]interface{}{"type": "string"},
	},
})

// ParseIntent validates raw classifier output and decodes it.
func ParseIntent(raw []byte) (dispatch.Intent, error) {
	raw = []byte(stripFence(string(raw)))
	if len(raw) == 0 {
		return dispatch.Intent{}, apperrors.NewClassificationFailedError(ErrEmptyClassification)
	}

	res, err := intentSchema.ValidateBytes(raw)
	if err != nil {
		return dispatch.Intent{}, apperrors.NewIntentSchemaInvalidError(err.Error())
	}
	if !res.Valid {
		return dispatch.Intent{}, apperrors.NewIntentSchemaInvalidError(res.Error())
	}

	intent, err := dispatch.DecodeIntent(raw)
	if err != nil {
		return dispatch.Intent{}, apperrors.NewIntentSchemaInvalidError(err.Error())
	}
	return intent, nil
}

// stripFence removes a ```json fence some models wrap around their output.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// classifierError maps a backend failure onto the job error codes.
func classifierError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return apperrors.NewClassifierTimeoutError(err)
	}
	var stdErr *apperrors.StandardError
	if errors.As(err, &stdErr) {
		return stdErr
	}
	return apperrors.NewClassificationFailedError(fmt.Errorf("classify: %w", err))
}

// staticClassifier returns the same intent for every clip. voicectl uses it
// to exercise the pipeline without a model.
type staticClassifier struct {
	raw []byte
}

func NewStaticClassifier(intent dispatch.Intent) (Classifier, error) {
	raw, err := json.Marshal(intent)
	if err != nil {
		return nil, err
	}
	return &staticClassifier{raw: raw}, nil
}

func (s *staticClassifier) Classify(ctx context.Context, clip *models.AudioClip) ([]byte, error) {
	return s.raw, ctx.Err()
}

func (s *staticClassifier) Backend() string { return "static" }
