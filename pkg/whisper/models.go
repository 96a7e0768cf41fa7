package whisper

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"clipcap/internal/appdirs"
	"clipcap/log"
	"clipcap/pkg/errors"
)

const modelBaseUrl = "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/"

var modelFilenames = map[string]string{
	"tiny":   "ggml-tiny.bin",
	"base":   "ggml-base.bin",
	"small":  "ggml-small.bin",
	"medium": "ggml-medium.bin",
	"large":  "ggml-large-v3.bin",
}

func modelFilename(model string) (string, error) {
	name, ok := modelFilenames[model]
	if !ok {
		return "", errors.New(errors.CodeModelNotFound,
			fmt.Sprintf("unknown model %q, supported: tiny, base, small, medium, large", model))
	}
	return name, nil
}

// CheckModelExists reports whether a local whisper model file is present.
func CheckModelExists(model string) (bool, error) {
	name, err := modelFilename(model)
	if err != nil {
		return false, err
	}
	root, err := appdirs.ResolveModelRoot()
	if err != nil {
		return false, err
	}
	_, err = os.Stat(filepath.Join(root, name))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// DownloadModel fetches a whisper model from HuggingFace into the local
// model directory and returns its path. Already-downloaded models are
// returned as-is.
func DownloadModel(model string, proxyAddr string) (string, error) {
	name, err := modelFilename(model)
	if err != nil {
		return "", err
	}
	root, err := appdirs.ResolveModelRoot()
	if err != nil {
		return "", errors.Wrap(errors.CodeModelDownload, "resolve model directory", err)
	}
	if err = os.MkdirAll(root, 0755); err != nil {
		return "", errors.Wrap(errors.CodeModelDownload, "create model directory", err)
	}
	outputPath := filepath.Join(root, name)
	if _, err = os.Stat(outputPath); err == nil {
		return outputPath, nil
	}

	client := resty.New()
	if proxyAddr != "" {
		client.SetProxy(proxyAddr)
	}

	log.GetLogger().Info("DownloadModel start", zap.String("model", model), zap.String("path", outputPath))
	resp, err := client.R().SetOutput(outputPath).Get(modelBaseUrl + name)
	if err != nil {
		return "", errors.Wrap(errors.CodeModelDownload, fmt.Sprintf("download model %s", model), err)
	}
	if resp.StatusCode() != 200 {
		_ = os.Remove(outputPath)
		return "", errors.New(errors.CodeModelDownload,
			fmt.Sprintf("download model %s: HTTP %d", model, resp.StatusCode()))
	}
	log.GetLogger().Info("DownloadModel done", zap.String("model", model))
	return outputPath, nil
}

// DeleteModel removes a downloaded model file.
func DeleteModel(model string) error {
	name, err := modelFilename(model)
	if err != nil {
		return err
	}
	root, err := appdirs.ResolveModelRoot()
	if err != nil {
		return err
	}
	path := filepath.Join(root, name)
	if err = os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return errors.New(errors.CodeModelNotFound, fmt.Sprintf("model %s is not downloaded", model))
		}
		return err
	}
	return nil
}
