package service

import (
	"bytes"
	"os/exec"
	"runtime"
	"strings"
	"sync"

	"go.uber.org/zap"

	"clipcap/internal/storage"
	"clipcap/log"
)

// HardwareEncoder identifies the H.264 encoder tier used for an encode
// attempt.
type HardwareEncoder int

const (
	EncoderSoftware HardwareEncoder = iota
	EncoderVideoToolbox
	EncoderNvenc
)

func (e HardwareEncoder) Name() string {
	switch e {
	case EncoderVideoToolbox:
		return "h264_videotoolbox"
	case EncoderNvenc:
		return "h264_nvenc"
	default:
		return "libx264"
	}
}

// PixelFormat is the encoder's preferred pixel layout, applied inside the
// filter graph so no extra conversion pass runs.
func (e HardwareEncoder) PixelFormat() string {
	if e == EncoderSoftware {
		return "yuv420p"
	}
	return "nv12"
}

var (
	hwEncoderOnce   sync.Once
	hwEncoderResult HardwareEncoder
)

// bestHardwareEncoder probes the platform once per process: VideoToolbox on
// macOS, NVENC when ffmpeg lists it on other platforms, software otherwise.
func bestHardwareEncoder() HardwareEncoder {
	hwEncoderOnce.Do(func() {
		hwEncoderResult = detectHardwareEncoder()
		log.GetLogger().Info("hardware encoder detected", zap.String("encoder", hwEncoderResult.Name()))
	})
	return hwEncoderResult
}

func detectHardwareEncoder() HardwareEncoder {
	if runtime.GOOS == "darwin" {
		return EncoderVideoToolbox
	}
	cmd := exec.Command(storage.FfmpegPath, "-hide_banner", "-encoders")
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return EncoderSoftware
	}
	if strings.Contains(stdout.String(), "h264_nvenc") {
		return EncoderNvenc
	}
	return EncoderSoftware
}
