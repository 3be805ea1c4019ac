// cmd/worker-manager/workers.go
package main

import (
	"context"
	"fmt"

	"voice-command-workers/internal/common/camunda"
	"voice-command-workers/internal/common/config"
	"voice-command-workers/internal/common/database"
	httpclient "voice-command-workers/internal/common/http"
	"voice-command-workers/internal/common/llm"
	"voice-command-workers/internal/common/logger"
	"voice-command-workers/internal/models"
	spd "voice-command-workers/internal/workers/product/suggest-product-details"
	cvc "voice-command-workers/internal/workers/voice-command/classify-voice-command"
	dvi "voice-command-workers/internal/workers/voice-command/dispatch-voice-intent"
	rvc "voice-command-workers/internal/workers/voice-command/record-voice-command"
)

type deps struct {
	pg    *database.PostgresClient
	redis *database.RedisClient
}

type runnable interface {
	camunda.JobHandler
	Runner() *camunda.JobRunner
}

type registeredHandler struct {
	taskType string
	handler  runnable
}

// buildHandlers creates one handler per task type, wiring the GenAI backend
// selected in config.
func buildHandlers(ctx context.Context, cfg *config.Config, d deps, log logger.Logger) ([]registeredHandler, error) {
	genaiCfg := cfg.APIs.GenAI

	var (
		classifier cvc.Classifier
		suggester  spd.Suggester
	)
	switch genaiCfg.Backend {
	case config.GenAIBackendGemini:
		client, err := llm.New(ctx, genaiCfg)
		if err != nil {
			return nil, err
		}
		classifier = cvc.NewGeminiClassifier(client, models.NavigationRoutes)
		suggester = spd.NewGeminiSuggester(client, genaiCfg.Creativity)
	case config.GenAIBackendGateway:
		hc := httpclient.NewClient(config.GetDuration(genaiCfg.Timeout), genaiCfg.MaxRetries)
		classifier = cvc.NewGatewayClassifier(hc, genaiCfg.BaseURL)
		suggester = spd.NewGatewaySuggester(hc, genaiCfg.BaseURL)
	default:
		return nil, fmt.Errorf("unsupported genai backend %q", genaiCfg.Backend)
	}

	classifyCfg := cvc.ConfigFrom(cfg)
	dispatchCfg := dvi.ConfigFrom(cfg)
	recordCfg := rvc.LoadConfig()
	suggestCfg := spd.ConfigFrom(cfg)

	return []registeredHandler{
		{cvc.TaskType, cvc.NewHandler(classifyCfg, classifier, d.redis, log)},
		{dvi.TaskType, dvi.NewHandler(dispatchCfg, log)},
		{rvc.TaskType, rvc.NewHandler(recordCfg, d.pg.DB, log)},
		{spd.TaskType, spd.NewHandler(suggestCfg, suggester, log)},
	}, nil
}
