// Package queue provides task handlers for Asynq background processing.
package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"clipcap/internal/service"
	"clipcap/log"
)

// TaskHandlers provides handlers for queued task types.
type TaskHandlers struct {
	service *service.Service
}

func NewTaskHandlers(svc *service.Service) *TaskHandlers {
	return &TaskHandlers{service: svc}
}

// HandleCaptionTask runs a queued caption job under the id it was enqueued
// with, so callers polling that id see its progress and result.
func (h *TaskHandlers) HandleCaptionTask(ctx context.Context, t *asynq.Task) error {
	var payload CaptionTaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	log.GetLogger().Info("[Queue] Processing caption task",
		zap.String("task_id", payload.TaskID),
		zap.String("input", payload.Params.InputVideo))

	if err := h.service.ExecuteCaptionTask(payload.TaskID, payload.Params); err != nil {
		return fmt.Errorf("caption task %s: %w", payload.TaskID, err)
	}

	log.GetLogger().Info("[Queue] Caption task complete",
		zap.String("task_id", payload.TaskID))
	return nil
}

// RegisterHandlers registers all task handlers with the Asynq server mux.
func (h *TaskHandlers) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeCaptionTask, h.HandleCaptionTask)
}

// StartWorker starts the Asynq worker with registered handlers.
func StartWorker(q *Queue, svc *service.Service) error {
	handlers := NewTaskHandlers(svc)

	mux := asynq.NewServeMux()
	handlers.RegisterHandlers(mux)

	log.GetLogger().Info("[Queue] Starting worker",
		zap.String("redis_addr", q.config.RedisAddr),
		zap.Int("concurrency", q.config.Concurrency))

	return q.server.Run(mux)
}
