package handler

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"clipcap/internal/appdirs"
	"clipcap/internal/response"
	"clipcap/log"
	apperrors "clipcap/pkg/errors"
	"clipcap/pkg/util"
)

// UploadFile stores a source video for later caption tasks and returns its
// server-side path.
func (h *Handler) UploadFile(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "missing file field", err))
		return
	}

	uploadRoot, err := appdirs.ResolveUploadRoot()
	if err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeFileWriteError, "resolve upload directory", err))
		return
	}
	if err = os.MkdirAll(uploadRoot, 0755); err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeFileWriteError, "create upload directory", err))
		return
	}

	safeName := util.SanitizePathName(file.Filename)
	dst := filepath.Join(uploadRoot, util.GenerateRandStringWithUpperLowerNum(8)+"_"+safeName)
	if err = c.SaveUploadedFile(file, dst); err != nil {
		log.GetLogger().Error("UploadFile save err", zap.Error(err))
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeFileWriteError, "save uploaded file", err))
		return
	}
	response.Success(c, gin.H{"path": dst})
}

// DownloadFile serves an encoded output or uploaded source by absolute path.
// Only paths under the upload root, the task output root or the system temp
// dir are allowed.
func (h *Handler) DownloadFile(c *gin.Context) {
	raw := c.Param("filepath")
	cleaned := filepath.Clean(strings.TrimPrefix(raw, "/"))
	if cleaned == "" || strings.Contains(cleaned, "..") {
		response.Error(c, apperrors.CodeInvalidParams, "invalid file path")
		return
	}
	full := string(os.PathSeparator) + cleaned

	if !pathAllowed(full) {
		response.Error(c, apperrors.CodeInvalidParams, "path outside served directories")
		return
	}
	if _, err := os.Stat(full); err != nil {
		c.Status(http.StatusNotFound)
		return
	}
	if c.Request.Method == http.MethodHead {
		c.Status(http.StatusOK)
		return
	}
	c.FileAttachment(full, filepath.Base(full))
}

func pathAllowed(path string) bool {
	roots := []string{os.TempDir()}
	if uploadRoot, err := appdirs.ResolveUploadRoot(); err == nil {
		roots = append(roots, uploadRoot)
	}
	if taskRoot, err := appdirs.ResolveTaskRoot(); err == nil {
		roots = append(roots, taskRoot)
	}
	for _, root := range roots {
		if root == "" {
			continue
		}
		if rel, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(rel, "..") {
			return true
		}
	}
	return false
}
