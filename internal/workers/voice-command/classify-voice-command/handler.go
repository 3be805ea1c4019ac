// internal/workers/voice-command/classify-voice-command/handler.go
package classifyvoicecommand

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

	"voice-command-workers/internal/common/camunda"
	"voice-command-workers/internal/common/database"
	apperrors "voice-command-workers/internal/common/errors"
	"voice-command-workers/internal/common/logger"
	"voice-command-workers/internal/common/metrics"
	"voice-command-workers/internal/models"
)

const (
	TaskType       = "classify-voice-command"
	CacheKeyPrefix = "voice:intent:"
)

// Cache stores classified intents keyed by clip hash.
type Cache interface {
	GetJSON(ctx context.Context, key string, dst interface{}) error
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

type Handler struct {
	config     *Config
	classifier Classifier
	cache      Cache
	runner     *camunda.JobRunner
	logger     logger.Logger
}

// NewHandler wires a classifier and an optional cache. A nil cache or a zero
// TTL disables caching.
func NewHandler(cfg *Config, classifier Classifier, cache Cache, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     cfg,
		classifier: classifier,
		cache:      cache,
		runner:     camunda.NewJobRunner(TaskType, cfg.Timeout, scoped),
		logger:     scoped,
	}
}

func (h *Handler) Runner() *camunda.JobRunner {
	return h.runner
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.runner.Run(client, job, h.process)
}

func (h *Handler) process(ctx context.Context, job entities.Job) (interface{}, error) {
	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		return nil, apperrors.NewInvalidVariablesError(err)
	}
	return h.Execute(ctx, &input)
}

// Execute classifies one clip.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	clip, err := models.ParseDataURI(input.AudioDataURI, h.config.MaxAudioBytes)
	if err != nil {
		return nil, apperrors.NewAudioInvalidError(err.Error())
	}

	commandID := input.CommandID
	if commandID == "" {
		commandID = uuid.NewString()
	}
	log := h.logger.WithFields(map[string]interface{}{"commandId": commandID})

	key := CacheKeyPrefix + clip.Hash()
	if out, ok := h.lookup(ctx, key, log); ok {
		out.CommandID = commandID
		return out, nil
	}

	start := time.Now()
	raw, err := h.classifier.Classify(ctx, clip)
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.VoiceClassifierDuration.WithLabelValues(h.classifier.Backend(), status).Observe(time.Since(start).Seconds())
	if err != nil {
		log.Warn("classification failed", map[string]interface{}{
			"backend": h.classifier.Backend(),
			"error":   err.Error(),
		})
		return nil, classifierError(ctx, err)
	}

	intent, err := ParseIntent(raw)
	if err != nil {
		log.Warn("classifier output rejected", map[string]interface{}{"error": err.Error()})
		return nil, err
	}

	out := &Output{CommandID: commandID, Intent: intent}
	h.store(ctx, key, out, log)

	log.Info("voice command classified", map[string]interface{}{
		"action":   string(intent.Action),
		"target":   intent.Target,
		"audioLen": len(clip.Data),
	})
	return out, nil
}

func (h *Handler) cacheEnabled() bool {
	return h.cache != nil && h.config.CacheTTL > 0
}

func (h *Handler) lookup(ctx context.Context, key string, log logger.Logger) (*Output, bool) {
	if !h.cacheEnabled() {
		return nil, false
	}
	var out Output
	err := h.cache.GetJSON(ctx, key, &out)
	switch {
	case err == nil:
		metrics.VoiceIntentCache.WithLabelValues(metrics.CacheHit).Inc()
		out.Cached = true
		log.Debug("intent cache hit", map[string]interface{}{"key": key})
		return &out, true
	case errors.Is(err, database.ErrCacheMiss):
		metrics.VoiceIntentCache.WithLabelValues(metrics.CacheMiss).Inc()
	default:
		metrics.VoiceIntentCache.WithLabelValues(metrics.CacheError).Inc()
		log.Warn("intent cache read failed", map[string]interface{}{"error": err.Error()})
	}
	return nil, false
}

func (h *Handler) store(ctx context.Context, key string, out *Output, log logger.Logger) {
	if !h.cacheEnabled() {
		return
	}
	if err := h.cache.SetJSON(ctx, key, Output{Intent: out.Intent}, h.config.CacheTTL); err != nil {
		log.Warn("intent cache write failed", map[string]interface{}{"error": err.Error()})
	}
}
