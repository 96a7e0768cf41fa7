package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"clipcap/config"
	"clipcap/internal/storage"
	"clipcap/internal/taskrunner"
	"clipcap/internal/types"
	"clipcap/log"
	"clipcap/pkg/errors"
)

// Pipeline progress milestones, fractions of the whole job.
const (
	progressProbeStart      = 0.0
	progressProbeEnd        = 0.05
	progressAudioStart      = 0.05
	progressAudioEnd        = 0.15
	progressTranscribeStart = 0.15
	progressTranscribeEnd   = 0.65
	progressEncodeStart     = 0.65
	progressEncodeEnd       = 1.0
)

// GenerateCaptions runs the full pipeline synchronously: probe the source,
// extract its audio, transcribe, then encode every requested format with the
// burned-in captions. Events flow to the sink at each milestone.
func (s Service) GenerateCaptions(ctx context.Context, taskId string, params types.GenerateCaptionsParams, sink types.EventSink) (*types.GenerateCaptionsResult, error) {
	if sink == nil {
		sink = types.NopSink
	}
	if len(params.ExportFormats) == 0 {
		return nil, errors.New(errors.CodeInvalidParams, "no export formats specified")
	}

	sink.Progress(types.ProgressEvent{TaskId: taskId, Status: "Starting...", Progress: progressProbeStart})

	tempDir := filepath.Join(os.TempDir(), fmt.Sprintf("clipcap_captions_%s", taskId))
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		log.GetLogger().Error("GenerateCaptions create temp dir error", zap.Error(err))
		return nil, errors.Wrap(errors.CodeTempDirError, "create temp directory", err)
	}

	sink.Progress(types.ProgressEvent{TaskId: taskId, Status: "Analyzing video...", Progress: progressProbeStart})
	probeResult, err := s.Prober.Probe(ctx, params.InputVideo)
	if err != nil {
		log.GetLogger().Error("GenerateCaptions probe step error", zap.Error(err))
		return nil, fmt.Errorf("GenerateCaptions probe step error: %w", err)
	}
	sink.Progress(types.ProgressEvent{TaskId: taskId, Status: "Video analyzed", Progress: progressProbeEnd})

	sink.Progress(types.ProgressEvent{TaskId: taskId, Status: "Extracting audio...", Progress: progressAudioStart})
	audioPath := filepath.Join(tempDir, fmt.Sprintf("audio_%s.mp3", taskId))
	if err = s.extractAudio(ctx, params.InputVideo, "mp3", audioPath); err != nil {
		log.GetLogger().Error("GenerateCaptions extract audio step error", zap.Error(err))
		return nil, fmt.Errorf("GenerateCaptions extract audio step error: %w", err)
	}
	sink.Progress(types.ProgressEvent{TaskId: taskId, Status: "Audio extracted", Progress: progressAudioEnd})

	sink.Progress(types.ProgressEvent{TaskId: taskId, Status: "Transcribing audio...", Progress: progressTranscribeStart})
	transcription, err := s.Transcriber.Transcribe(ctx, audioPath, types.TranscribeParams{
		Model:        params.Model,
		Language:     params.Language,
		Prompt:       params.Prompt,
		SplitByWords: params.SplitByWords,
		VideoFile:    params.InputVideo,
	})
	if err != nil {
		log.GetLogger().Error("GenerateCaptions transcribe step error", zap.Error(err))
		return nil, fmt.Errorf("GenerateCaptions transcribe step error: %w", err)
	}
	sink.Progress(types.ProgressEvent{TaskId: taskId, Status: "Transcription complete", Progress: progressTranscribeEnd})

	sink.Progress(types.ProgressEvent{TaskId: taskId, Status: "Encoding videos...", Progress: progressEncodeStart})
	captionedVideos, err := s.encodeFormats(ctx, taskId, params.InputVideo,
		transcription.Segments, params.ExportFormats, probeResult, tempDir,
		captionRender{
			FontName:       params.FontName,
			TextColor:      params.TextColor,
			HighlightColor: params.HighlightWordColor,
			OutlineColor:   params.OutlineColor,
			Position:       params.Position,
			Karaoke:        params.Karaoke,
			GlowEffect:     params.GlowEffect,
		}, sink)
	if err != nil {
		log.GetLogger().Error("GenerateCaptions encode step error", zap.Error(err))
		return nil, fmt.Errorf("GenerateCaptions encode step error: %w", err)
	}
	sink.Progress(types.ProgressEvent{TaskId: taskId, Status: "Complete", Progress: progressEncodeEnd})

	return &types.GenerateCaptionsResult{
		ProbeResult:     *probeResult,
		AudioFile:       audioPath,
		Transcription:   *transcription,
		CaptionedVideos: captionedVideos,
	}, nil
}

// applyConfigDefaults fills fields the request left empty from the configured
// caption and transcription defaults.
func applyConfigDefaults(params *types.GenerateCaptionsParams) {
	defaults := config.Conf.Caption
	if params.FontName == "" {
		params.FontName = defaults.FontName
	}
	if params.TextColor == "" {
		params.TextColor = defaults.TextColor
	}
	if params.HighlightWordColor == "" {
		params.HighlightWordColor = defaults.HighlightColor
	}
	if params.OutlineColor == "" {
		params.OutlineColor = defaults.OutlineColor
	}
	if params.Position == "" {
		params.Position = defaults.Position
	}
	if params.Model == "" {
		params.Model = config.Conf.Transcribe.Model
	}
	if params.Language == "" {
		params.Language = config.Conf.Transcribe.Language
	}
}

// StartCaptionTask persists a new task record and kicks the pipeline off in
// the background. The returned task id can be polled or watched over the
// event stream.
func (s *Service) StartCaptionTask(params types.GenerateCaptionsParams) (string, error) {
	if _, err := os.Stat(params.InputVideo); err != nil {
		return "", errors.New(errors.CodeInvalidParams, fmt.Sprintf("input video not found: %s", params.InputVideo))
	}
	if len(params.ExportFormats) == 0 {
		return "", errors.New(errors.CodeInvalidParams, "no export formats specified")
	}
	for _, f := range params.ExportFormats {
		if _, err := parseTargetAR(f); err != nil {
			return "", err
		}
	}
	applyConfigDefaults(&params)

	taskId := uuid.NewString()[:8]
	paramsJson, err := json.Marshal(params)
	if err != nil {
		return "", errors.Wrap(errors.CodeInvalidParams, "marshal task params", err)
	}
	task := &types.CaptionTask{
		TaskId:     taskId,
		VideoSrc:   params.InputVideo,
		Status:     types.CaptionTaskStatusProcessing,
		StatusMsg:  "Starting...",
		ParamsJson: string(paramsJson),
	}
	if err = storage.SaveTask(task); err != nil {
		return "", err
	}

	switch {
	case s.Dispatcher != nil:
		err = s.Dispatcher.DispatchCaptionTask(taskId, params)
	case s.tasks != nil:
		err = s.tasks.SubmitCaptionTask(taskrunner.CaptionTaskPayload{TaskID: taskId, Params: params})
	default:
		go s.runCaptionTask(taskId, params)
	}
	if err != nil {
		s.failTask(taskId, err.Error())
		return "", errors.Wrap(errors.CodeServerBusy, "cannot accept task right now", err)
	}
	return taskId, nil
}

// ExecuteCaptionTask runs the pipeline for a task that was already persisted,
// keeping the id minted at submission time. Queue workers call this.
func (s *Service) ExecuteCaptionTask(taskId string, params types.GenerateCaptionsParams) error {
	return s.runCaptionTask(taskId, params)
}

// runCaptionTask is the background worker body for one task. Panics are
// recovered and recorded as task failure instead of crashing the process.
func (s *Service) runCaptionTask(taskId string, params types.GenerateCaptionsParams) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.GetLogger().Error("runCaptionTask panic", zap.String("taskId", taskId), zap.Any("panic", r))
			s.failTask(taskId, fmt.Sprintf("task panicked: %v", r))
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()

	sink := types.EventSinkFuncs{
		OnProgress: func(ev types.ProgressEvent) {
			pct := uint8(ev.Progress * 100)
			if err := storage.UpdateTaskProgress(taskId, pct, ev.Status); err != nil {
				log.GetLogger().Warn("runCaptionTask update progress error", zap.String("taskId", taskId), zap.Error(err))
			}
			s.Hub.Publish(ev)
		},
		OnLog: func(ev types.LogEvent) {
			log.GetLogger().Info("task log", zap.String("taskId", taskId), zap.String("message", ev.Message))
		},
	}

	result, err := s.GenerateCaptions(context.Background(), taskId, params, sink)
	if err != nil {
		s.failTask(taskId, err.Error())
		return err
	}

	resultJson, jerr := json.Marshal(result)
	if jerr != nil {
		log.GetLogger().Error("runCaptionTask marshal result error", zap.String("taskId", taskId), zap.Error(jerr))
	}
	task, gerr := storage.GetTask(taskId)
	if gerr != nil {
		log.GetLogger().Error("runCaptionTask load task error", zap.String("taskId", taskId), zap.Error(gerr))
		return nil
	}
	task.Status = types.CaptionTaskStatusSuccess
	task.StatusMsg = "Complete"
	task.ProcessPct = 100
	task.ResultJson = string(resultJson)
	task.Outputs = task.Outputs[:0]
	for _, v := range result.CaptionedVideos {
		task.Outputs = append(task.Outputs, types.CaptionOutput{
			TaskId: taskId,
			Format: v.Format,
			Path:   v.CaptionedVideoPath,
			Width:  v.Width,
			Height: v.Height,
		})
	}
	if serr := storage.SaveTask(task); serr != nil {
		log.GetLogger().Error("runCaptionTask save result error", zap.String("taskId", taskId), zap.Error(serr))
	}
	return nil
}

func (s *Service) failTask(taskId, reason string) {
	task, err := storage.GetTask(taskId)
	if err != nil {
		log.GetLogger().Error("failTask load task error", zap.String("taskId", taskId), zap.Error(err))
		return
	}
	task.Status = types.CaptionTaskStatusFailed
	task.StatusMsg = "Failed"
	task.FailReason = reason
	if err = storage.SaveTask(task); err != nil {
		log.GetLogger().Error("failTask save error", zap.String("taskId", taskId), zap.Error(err))
	}
	s.Hub.Publish(types.ProgressEvent{TaskId: taskId, Status: "Failed: " + reason, Progress: 0})
}

// GetTaskStatus returns the persisted state of one task.
func (s *Service) GetTaskStatus(taskId string) (*types.CaptionTask, error) {
	task, err := storage.GetTask(taskId)
	if err != nil {
		return nil, errors.Wrap(errors.CodeTaskLost, fmt.Sprintf("task %s not found", taskId), err)
	}
	return task, nil
}
