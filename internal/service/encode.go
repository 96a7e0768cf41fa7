package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"clipcap/internal/storage"
	"clipcap/internal/types"
	"clipcap/log"
	"clipcap/pkg/errors"
	"clipcap/pkg/util"
)

// At most two encodes run at once no matter how many formats were requested.
const maxConcurrentEncodes = 2

// Injectable for tests.
var encoderResolver = bestHardwareEncoder

// captionRender collects the caller's styling knobs for document generation.
type captionRender struct {
	FontName       string
	TextColor      string
	HighlightColor string
	OutlineColor   string
	Position       string
	Karaoke        bool
	GlowEffect     bool
}

type formatPlan struct {
	format  string
	assPath string
	targetW int
	targetH int
}

// encodeFormats fans the requested export formats out over a bounded worker
// set. A subtitle document is pre-rendered per format canvas, then each task
// burns it in with a hardware encoder, retrying once in software on failure.
// Progress events cover the 65-100% range in completion order.
func (s Service) encodeFormats(
	ctx context.Context,
	taskId string,
	inputVideo string,
	segments []types.CaptionSegment,
	exportFormats []string,
	probe *types.ProbeResult,
	tempDir string,
	render captionRender,
	sink types.EventSink,
) ([]types.CaptionedVideoResult, error) {
	if len(exportFormats) == 0 {
		return nil, errors.New(errors.CodeInvalidParams, "no export formats specified")
	}

	inputStem := strings.TrimSuffix(inputVideo, filepath.Ext(inputVideo))

	plans := make([]formatPlan, 0, len(exportFormats))
	for _, format := range exportFormats {
		targetAR, err := parseTargetAR(format)
		if err != nil {
			return nil, err
		}
		srcW, srcH := probe.Width, probe.Height
		if srcW == 0 {
			srcW = 1920
		}
		if srcH == 0 {
			srcH = 1080
		}
		targetW, targetH := canvasNoUpscale(srcW, srcH, targetAR)

		style := defaultAssStyle(targetW, targetH,
			render.FontName, render.TextColor, render.HighlightColor, render.OutlineColor, render.Position)
		assDoc, err := buildAssDocument(targetW, targetH, style, segments, render.Karaoke, render.GlowEffect)
		if err != nil {
			return nil, err
		}

		safeFormat := util.SanitizeFormatToken(format)
		assPath := filepath.Join(tempDir, fmt.Sprintf("captions_%s_%s.ass", taskId, safeFormat))
		if err := os.WriteFile(assPath, []byte(assDoc), 0644); err != nil {
			return nil, errors.Wrap(errors.CodeFileWriteError, fmt.Sprintf("write subtitle file %s", assPath), err)
		}

		plans = append(plans, formatPlan{format: format, assPath: assPath, targetW: targetW, targetH: targetH})
	}

	sem := semaphore.NewWeighted(maxConcurrentEncodes)
	g, gctx := errgroup.WithContext(ctx)
	results := make([]types.CaptionedVideoResult, len(plans))

	var mu sync.Mutex
	completed := 0
	total := len(plans)

	for idx, plan := range plans {
		idx, plan := idx, plan
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				return errors.Wrap(errors.CodeTaskLost, fmt.Sprintf("encode task for %s never ran", plan.format), err)
			}
			defer sem.Release(1)

			safeFormat := util.SanitizeFormatToken(plan.format)
			outputPath := fmt.Sprintf("%s_%s.mp4", inputStem, safeFormat)
			encodeId := fmt.Sprintf("%s_%d", taskId, idx)

			if err := s.encodeOneFormat(gctx, encodeId, inputVideo, plan.assPath, outputPath,
				plan.targetW, plan.targetH, probe); err != nil {
				return err
			}

			results[idx] = types.CaptionedVideoResult{
				Format:             plan.format,
				CaptionedVideoPath: outputPath,
				Width:              plan.targetW,
				Height:             plan.targetH,
			}

			mu.Lock()
			completed++
			sink.Progress(types.ProgressEvent{
				TaskId:   taskId,
				Status:   fmt.Sprintf("Encoding format %d/%d...", completed, total),
				Progress: 0.65 + float64(completed)/float64(total)*0.35,
			})
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// encodeOneFormat runs one format's encode, falling back to the software
// encoder when the hardware attempt exits non-zero.
func (s Service) encodeOneFormat(ctx context.Context, encodeId, inputVideo, assPath, outputPath string,
	targetW, targetH int, probe *types.ProbeResult) error {
	enc := encoderResolver()
	err := s.tryEncodeWithEncoder(ctx, inputVideo, assPath, outputPath, targetW, targetH, probe, enc)
	if err != nil && enc != EncoderSoftware {
		log.GetLogger().Warn("hardware encode failed, retrying with software encoder",
			zap.String("encodeId", encodeId),
			zap.String("encoder", enc.Name()),
			zap.Error(err))
		err = s.tryEncodeWithEncoder(ctx, inputVideo, assPath, outputPath, targetW, targetH, probe, EncoderSoftware)
		enc = EncoderSoftware
	}
	if err != nil {
		return errors.Wrap(errors.CodeEncodeFailed,
			fmt.Sprintf("encode %s failed with encoder %s", encodeId, enc.Name()), err)
	}
	return nil
}

func (s Service) tryEncodeWithEncoder(ctx context.Context, inputVideo, assPath, outputPath string,
	targetW, targetH int, probe *types.ProbeResult, enc HardwareEncoder) error {
	vf := buildFitpadFilter(targetW, targetH, assPath, enc)
	audioCodec, audioArgs := determineAudioCodec(probe)
	gop := strconv.Itoa(gopSizeFor(probe))

	args := []string{
		"-y", "-i", inputVideo,
		"-vf", vf,
		"-fps_mode", "passthrough",
		"-threads", "0",
		"-map", "0:v:0",
		"-map", "0:a?",
	}

	switch enc {
	case EncoderVideoToolbox:
		args = append(args,
			"-c:v", "h264_videotoolbox",
			"-q:v", "72",
			"-allow_sw", "1",
			"-g", gop,
		)
	case EncoderNvenc:
		args = append(args,
			"-c:v", "h264_nvenc",
			"-cq", "16",
			"-preset", "p5",
			"-tune", "hq",
			"-rc", "vbr",
			"-g", gop,
		)
	default:
		args = append(args,
			"-c:v", "libx264",
			"-preset", "medium",
			"-crf", "16",
			"-g", gop,
		)
	}

	args = append(args, "-c:a", audioCodec)
	args = append(args, audioArgs...)
	if audioCodec == "aac" && len(audioArgs) == 0 {
		args = append(args, "-b:a", "160k")
	}
	args = append(args, "-movflags", "+faststart", outputPath)

	return s.Runner.Run(ctx, storage.FfmpegPath, args...)
}
