// internal/workers/voice-command/record-voice-command/handler.go
package recordvoicecommand

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"voice-command-workers/internal/common/camunda"
	apperrors "voice-command-workers/internal/common/errors"
	"voice-command-workers/internal/common/logger"
	"voice-command-workers/internal/dispatch"
	"voice-command-workers/internal/models"
)

const TaskType = "record-voice-command"

var ErrCommandIDRequired = errors.New("commandId is required")

const insertCommand = `
	INSERT INTO voice_command_log (
		command_id, action, target, payload,
		result_kind, reason, host_url, feedback, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (command_id) DO NOTHING`

type Handler struct {
	db     *sql.DB
	runner *camunda.JobRunner
	logger logger.Logger
	now    func() time.Time
}

func NewHandler(cfg *Config, db *sql.DB, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		db:     db,
		runner: camunda.NewJobRunner(TaskType, cfg.Timeout, scoped),
		logger: scoped,
		now:    time.Now,
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

// Execute writes one audit row. Replays of the same command id are ignored.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input.CommandID == "" {
		return nil, apperrors.NewInvalidVariablesError(ErrCommandIDRequired)
	}

	rec := NewRecord(input, h.now().UTC())

	var payload interface{}
	if len(rec.Payload) > 0 {
		b, err := json.Marshal(rec.Payload)
		if err != nil {
			return nil, apperrors.NewInvalidVariablesError(fmt.Errorf("encode payload: %w", err))
		}
		payload = b
	}

	res, err := h.db.ExecContext(ctx, insertCommand,
		rec.CommandID,
		rec.Action,
		rec.Target,
		payload,
		rec.ResultKind,
		rec.Reason,
		rec.HostURL,
		rec.Feedback,
		rec.CreatedAt,
	)
	if err != nil {
		return nil, apperrors.NewDatabaseInsertFailedError(fmt.Errorf("insert voice command: %w", err))
	}

	inserted := true
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		inserted = false
		h.logger.Info("voice command already recorded", map[string]interface{}{"commandId": rec.CommandID})
	} else {
		h.logger.Info("voice command recorded", map[string]interface{}{
			"commandId":  rec.CommandID,
			"resultKind": rec.ResultKind,
		})
	}

	return &Output{Recorded: inserted, RecordedAt: rec.CreatedAt.Format(time.RFC3339)}, nil
}

// NewRecord flattens a dispatched command into an audit row.
func NewRecord(input *Input, at time.Time) models.CommandRecord {
	hostURL := input.HostURL
	if hostURL == "" {
		hostURL = input.Result.HostURL()
	}
	feedback := input.Intent.Feedback
	if input.Result.Kind == dispatch.KindNoOp && input.Result.Feedback != "" {
		feedback = input.Result.Feedback
	}
	kind := string(input.Result.Kind)
	if kind == "" {
		kind = string(dispatch.KindNoOp)
	}
	return models.CommandRecord{
		CommandID:  input.CommandID,
		Action:     string(dispatch.ParseAction(string(input.Intent.Action))),
		Target:     input.Intent.Target,
		Payload:    input.Intent.Payload,
		ResultKind: kind,
		Reason:     string(input.Result.Reason),
		HostURL:    hostURL,
		Feedback:   feedback,
		CreatedAt:  at,
	}
}
