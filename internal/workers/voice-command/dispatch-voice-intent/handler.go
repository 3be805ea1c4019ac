// internal/workers/voice-command/dispatch-voice-intent/handler.go
package dispatchvoiceintent

import (
	"context"
	"encoding/json"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"voice-command-workers/internal/common/camunda"
	apperrors "voice-command-workers/internal/common/errors"
	"voice-command-workers/internal/common/logger"
	"voice-command-workers/internal/common/metrics"
	"voice-command-workers/internal/dispatch"
)

const TaskType = "dispatch-voice-intent"

type Handler struct {
	dispatcher *dispatch.Dispatcher
	runner     *camunda.JobRunner
	logger     logger.Logger
}

func NewHandler(cfg *Config, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		dispatcher: cfg.Dispatcher(),
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
	return h.Execute(ctx, &input), nil
}

// Execute dispatches the intent. It never fails.
func (h *Handler) Execute(_ context.Context, input *Input) *Output {
	res := h.dispatcher.Dispatch(input.Intent)
	metrics.VoiceDispatchResults.WithLabelValues(string(res.Kind), string(res.Reason)).Inc()

	feedback := input.Intent.Feedback
	if res.IsNoOp() {
		feedback = res.Feedback
	}

	h.logger.Info("voice intent dispatched", map[string]interface{}{
		"commandId": input.CommandID,
		"action":    string(input.Intent.Action),
		"result":    res.String(),
	})

	return &Output{
		CommandID: input.CommandID,
		Result:    res,
		HostURL:   res.HostURL(),
		Feedback:  feedback,
		Prefilled: res.Kind == dispatch.KindCreateEntityPrefilled,
	}
}
