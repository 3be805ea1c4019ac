// internal/workers/product/suggest-product-details/handler.go
package suggestproductdetails

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"voice-command-workers/internal/common/camunda"
	apperrors "voice-command-workers/internal/common/errors"
	"voice-command-workers/internal/common/logger"
)

const TaskType = "suggest-product-details"

var ErrIncompleteSuggestion = errors.New("suggestion is missing a description or image")

type Handler struct {
	config    *Config
	suggester Suggester
	runner    *camunda.JobRunner
	logger    logger.Logger
}

func NewHandler(cfg *Config, suggester Suggester, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    cfg,
		suggester: suggester,
		runner:    camunda.NewJobRunner(TaskType, cfg.Timeout, scoped),
		logger:    scoped,
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

// Execute drafts a description and, when enabled, an image for the product.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	name := strings.TrimSpace(input.ProductName)
	if name == "" {
		return nil, apperrors.NewProductNameRequiredError()
	}

	out, err := h.suggester.Suggest(ctx, name, h.config.ImageEnabled)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, apperrors.NewSuggestionTimeoutError(err)
		}
		return nil, apperrors.NewSuggestionFailedError(err)
	}

	out.Description = strings.TrimSpace(out.Description)
	if out.Description == "" || (h.config.ImageEnabled && out.ImageURL == "") {
		return nil, apperrors.NewSuggestionFailedError(fmt.Errorf("%w: %q", ErrIncompleteSuggestion, name))
	}

	h.logger.Info("product details suggested", map[string]interface{}{
		"commandId":   input.CommandID,
		"productName": name,
		"hasImage":    out.ImageURL != "",
	})
	return out, nil
}
