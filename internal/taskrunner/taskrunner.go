package taskrunner

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"clipcap/internal/types"
	"clipcap/log"
)

const (
	defaultQueueSize   = 128
	defaultConcurrency = 2
)

var (
	ErrRunnerStopped = errors.New("task runner stopped")
	ErrQueueFull     = errors.New("task queue is full")
)

// Config controls in-process task runner behavior.
type Config struct {
	QueueSize   int
	Concurrency int
}

func DefaultConfig() Config {
	return Config{
		QueueSize:   defaultQueueSize,
		Concurrency: defaultConcurrency,
	}
}

// CaptionTaskPayload contains caption task enqueue data.
type CaptionTaskPayload struct {
	TaskID string                       `json:"task_id"`
	Params types.GenerateCaptionsParams `json:"params"`
}

// ProcessFunc runs one caption job to completion. It must record its own
// success or failure; the runner only bounds how many run at once and logs
// the returned error.
type ProcessFunc func(taskId string, params types.GenerateCaptionsParams) error

// Runner executes queued caption jobs with in-memory workers. It exists for
// deployments without Redis; the asynq-backed queue covers the rest.
type Runner struct {
	process ProcessFunc
	config  Config

	queue  chan CaptionTaskPayload
	ctx    context.Context
	cancel context.CancelFunc

	workerWg sync.WaitGroup
	closed   atomic.Bool
}

// New creates and starts a task runner.
func New(process ProcessFunc, cfg Config) *Runner {
	cfg = normalizeConfig(cfg)
	ctx, cancel := context.WithCancel(context.Background())

	runner := &Runner{
		process: process,
		config:  cfg,
		queue:   make(chan CaptionTaskPayload, cfg.QueueSize),
		ctx:     ctx,
		cancel:  cancel,
	}

	for i := 0; i < cfg.Concurrency; i++ {
		runner.workerWg.Add(1)
		go runner.worker(i + 1)
	}

	return runner
}

func normalizeConfig(cfg Config) Config {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	return cfg
}

// SubmitCaptionTask queues a caption generation job.
func (r *Runner) SubmitCaptionTask(payload CaptionTaskPayload) error {
	if payload.Params.InputVideo == "" {
		return errors.New("caption task input video is required")
	}
	if r.closed.Load() {
		return ErrRunnerStopped
	}

	select {
	case <-r.ctx.Done():
		return ErrRunnerStopped
	case r.queue <- payload:
		log.GetLogger().Info("[TaskRunner] task submitted",
			zap.String("task_id", payload.TaskID),
			zap.String("input", payload.Params.InputVideo))
		return nil
	default:
		return ErrQueueFull
	}
}

func (r *Runner) worker(workerID int) {
	defer r.workerWg.Done()

	for {
		select {
		case <-r.ctx.Done():
			return
		default:
		}

		select {
		case <-r.ctx.Done():
			return
		case payload := <-r.queue:
			log.GetLogger().Info("[TaskRunner] task started",
				zap.Int("worker_id", workerID),
				zap.String("task_id", payload.TaskID))
			if err := r.process(payload.TaskID, payload.Params); err != nil {
				log.GetLogger().Error("[TaskRunner] task failed",
					zap.Int("worker_id", workerID),
					zap.String("task_id", payload.TaskID),
					zap.Error(err))
			} else {
				log.GetLogger().Info("[TaskRunner] task finished",
					zap.Int("worker_id", workerID),
					zap.String("task_id", payload.TaskID))
			}
		}
	}
}

// Close stops workers and rejects new tasks.
func (r *Runner) Close() {
	if !r.closed.CompareAndSwap(false, true) {
		return
	}

	r.cancel()
	r.workerWg.Wait()
}

// Pending returns the number of queued tasks waiting for workers.
func (r *Runner) Pending() int {
	return len(r.queue)
}
