package handler

import (
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"clipcap/config"
	"clipcap/internal/dto"
	"clipcap/internal/response"
	"clipcap/internal/storage"
	"clipcap/internal/types"
	"clipcap/log"
	apperrors "clipcap/pkg/errors"
	"clipcap/pkg/whisper"
)

func (h *Handler) StartCaptionTask(c *gin.Context) {
	var req dto.StartCaptionTaskReq
	if err := c.ShouldBindJSON(&req); err != nil {
		log.GetLogger().Error("StartCaptionTask ShouldBindJSON err", zap.Error(err))
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "Invalid parameters", err))
		return
	}
	log.GetLogger().Info("StartCaptionTask received request", zap.Any("req", req))

	taskId, err := h.Service.StartCaptionTask(types.GenerateCaptionsParams{
		InputVideo:         req.VideoPath,
		ExportFormats:      req.ExportFormats,
		Karaoke:            req.Karaoke,
		SplitByWords:       req.SplitByWords,
		FontName:           req.FontName,
		TextColor:          req.TextColor,
		HighlightWordColor: req.HighlightWordColor,
		OutlineColor:       req.OutlineColor,
		GlowEffect:         req.GlowEffect,
		Position:           req.Position,
		Model:              req.Model,
		Language:           req.Language,
		Prompt:             req.Prompt,
	})
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, dto.StartCaptionTaskRes{TaskId: taskId})
}

func (h *Handler) GetCaptionTask(c *gin.Context) {
	var req dto.GetCaptionTaskReq
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, apperrors.CodeInvalidParams, "Invalid parameters")
		return
	}

	task, err := h.Service.GetTaskStatus(req.TaskId)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}

	response.Success(c, dto.GetCaptionTaskRes{
		TaskId:         task.TaskId,
		Status:         task.Status,
		StatusMsg:      task.StatusMsg,
		ProcessPercent: task.ProcessPct,
		FailReason:     task.FailReason,
		Outputs: lo.Map(task.Outputs, func(out types.CaptionOutput, _ int) dto.CaptionOutputInfo {
			return dto.CaptionOutputInfo{
				Format: out.Format,
				Path:   out.Path,
				Width:  out.Width,
				Height: out.Height,
			}
		}),
	})
}

func (h *Handler) GetTaskHistory(c *gin.Context) {
	tasks, err := storage.GetTaskHistory(200)
	if err != nil {
		response.Error(c, apperrors.CodeDBError, "failed to load task history: "+err.Error())
		return
	}
	response.Success(c, tasks)
}

func (h *Handler) DeleteTask(c *gin.Context) {
	taskId := c.Param("taskId")
	if taskId == "" {
		response.Error(c, apperrors.CodeInvalidParams, "taskId is required")
		return
	}

	// temp artifacts first, DB record second; a failed rm must not orphan the record
	tempDir := filepath.Join(os.TempDir(), "clipcap_captions_"+taskId)
	if err := os.RemoveAll(tempDir); err != nil {
		log.GetLogger().Error("DeleteTask RemoveAll err", zap.String("path", tempDir), zap.Error(err))
	}

	if err := storage.DeleteTask(taskId); err != nil {
		response.Error(c, apperrors.CodeDBError, "failed to delete task: "+err.Error())
		return
	}
	response.Success(c, gin.H{"taskId": taskId})
}

func (h *Handler) DownloadModel(c *gin.Context) {
	var req dto.DownloadModelReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "Invalid parameters", err))
		return
	}

	path, err := whisper.DownloadModel(req.Model, config.Conf.App.Proxy)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, dto.DownloadModelRes{Model: req.Model, Path: path})
}
