package service

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"clipcap/internal/types"
	"clipcap/pkg/errors"
)

// parseTargetAR parses an aspect-ratio token like "9:16" into width/height.
func parseTargetAR(format string) (float64, error) {
	parts := strings.SplitN(format, ":", 2)
	if len(parts) != 2 {
		return 0, errors.New(errors.CodeBadExportFormat, fmt.Sprintf("invalid export format %q, expected W:H", format))
	}
	w, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	h, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil || w <= 0 || h <= 0 {
		return 0, errors.New(errors.CodeBadExportFormat, fmt.Sprintf("invalid export format %q", format))
	}
	return w / h, nil
}

// canvasNoUpscale returns the largest even-dimension canvas with the target
// aspect ratio that fits inside the source resolution. Neither dimension ever
// exceeds the source, so no upscaling happens.
func canvasNoUpscale(srcW, srcH int, targetAR float64) (int, int) {
	w := float64(srcW)
	h := w / targetAR
	if h > float64(srcH) {
		h = float64(srcH)
		w = h * targetAR
	}
	tw := evenDim(int(math.Round(w)))
	th := evenDim(int(math.Round(h)))
	if tw > srcW {
		tw = evenDim(srcW)
	}
	if th > srcH {
		th = evenDim(srcH)
	}
	return tw, th
}

func evenDim(d int) int {
	if d < 2 {
		return 2
	}
	return d &^ 1
}

// buildFitpadFilter builds the single-pass scale + pad + subtitle-burn filter
// graph, ending in the encoder's preferred pixel format.
func buildFitpadFilter(targetW, targetH int, assPath string, enc HardwareEncoder) string {
	var b strings.Builder
	fmt.Fprintf(&b, "scale=%d:%d:force_original_aspect_ratio=decrease", targetW, targetH)
	fmt.Fprintf(&b, ",pad=%d:%d:(ow-iw)/2:(oh-ih)/2", targetW, targetH)
	if assPath != "" {
		fmt.Fprintf(&b, ",ass='%s'", escapeFilterPath(assPath))
	}
	fmt.Fprintf(&b, ",format=%s", enc.PixelFormat())
	return b.String()
}

// escapeFilterPath escapes a path for use inside a quoted ffmpeg filter
// argument. Windows drive-letter colons and backslashes need escaping.
func escapeFilterPath(p string) string {
	p = strings.ReplaceAll(p, `\`, `\\`)
	p = strings.ReplaceAll(p, ":", `\:`)
	p = strings.ReplaceAll(p, "'", `\'`)
	return p
}

// determineAudioCodec picks the audio policy for an encode: pass AAC sources
// through untouched, re-encode anything else, drop nothing.
func determineAudioCodec(probe *types.ProbeResult) (string, []string) {
	if probe == nil || !probe.HasAudio {
		return "aac", nil
	}
	if probe.AudioCodec == "aac" {
		return "copy", nil
	}
	return "aac", nil
}

// gopSizeFor derives the keyframe interval from twice the source frame rate,
// defaulting to 48 when the rate is unknown.
func gopSizeFor(probe *types.ProbeResult) int {
	if probe != nil && probe.Fps > 0 {
		return int(math.Round(probe.Fps * 2))
	}
	return 48
}
