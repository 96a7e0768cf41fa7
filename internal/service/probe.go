package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"clipcap/internal/storage"
	"clipcap/internal/types"
	"clipcap/log"
	"clipcap/pkg/errors"
)

type ffprobeStream struct {
	CodecType    string `json:"codec_type"`
	CodecName    string `json:"codec_name"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	RFrameRate   string `json:"r_frame_rate"`
	AvgFrameRate string `json:"avg_frame_rate"`
	BitRate      string `json:"bit_rate"`
}

type ffprobeOutput struct {
	Streams []ffprobeStream `json:"streams"`
	Format  struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// FfprobeProber reads source metadata with ffprobe's JSON output.
type FfprobeProber struct{}

func NewFfprobeProber() *FfprobeProber { return &FfprobeProber{} }

func (p *FfprobeProber) Probe(ctx context.Context, inputFile string) (*types.ProbeResult, error) {
	cmd := exec.Command(storage.FfprobePath,
		"-v", "error",
		"-print_format", "json",
		"-show_streams",
		"-show_format",
		inputFile,
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		log.GetLogger().Error("Probe ffprobe error", zap.String("file", inputFile), zap.String("stderr", stderr.String()), zap.Error(err))
		return nil, errors.Wrap(errors.CodeProbeFailed, fmt.Sprintf("ffprobe failed for %s", inputFile), err)
	}

	var out ffprobeOutput
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		return nil, errors.Wrap(errors.CodeProbeFailed, "ffprobe output parse error", err)
	}

	result := &types.ProbeResult{}
	for _, s := range out.Streams {
		switch s.CodecType {
		case "video":
			if result.Width == 0 {
				result.Width = s.Width
				result.Height = s.Height
				result.Fps = parseFrameRate(s.RFrameRate)
				if result.Fps == 0 {
					result.Fps = parseFrameRate(s.AvgFrameRate)
				}
			}
		case "audio":
			if !result.HasAudio {
				result.HasAudio = true
				result.AudioCodec = s.CodecName
				if br, err := strconv.Atoi(s.BitRate); err == nil {
					result.AudioBitrate = br
				}
			}
		}
	}
	if d, err := strconv.ParseFloat(out.Format.Duration, 64); err == nil {
		result.DurationS = d
	}

	if result.Width == 0 || result.Height == 0 {
		return nil, errors.New(errors.CodeProbeFailed, fmt.Sprintf("no video stream found in %s", inputFile))
	}

	log.GetLogger().Info("Probe done",
		zap.String("file", inputFile),
		zap.Int("width", result.Width),
		zap.Int("height", result.Height),
		zap.Float64("fps", result.Fps),
		zap.Bool("hasAudio", result.HasAudio))
	return result, nil
}

// parseFrameRate parses ffprobe's "num/den" rational frame rate.
func parseFrameRate(r string) float64 {
	if r == "" || r == "0/0" {
		return 0
	}
	parts := strings.SplitN(r, "/", 2)
	if len(parts) == 1 {
		f, _ := strconv.ParseFloat(parts[0], 64)
		return f
	}
	num, err1 := strconv.ParseFloat(parts[0], 64)
	den, err2 := strconv.ParseFloat(parts[1], 64)
	if err1 != nil || err2 != nil || den == 0 {
		return 0
	}
	return num / den
}
