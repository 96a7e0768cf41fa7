package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"clipcap/internal/storage"
	"clipcap/log"
	"clipcap/pkg/errors"
)

// extractAudio pulls the audio track out of the source video into a
// standalone file for transcription. The codec token follows the output
// container ("mp3" or "aac").
func (s Service) extractAudio(ctx context.Context, inputFile, codec, outFile string) error {
	var codecArgs []string
	switch codec {
	case "aac":
		codecArgs = []string{"-c:a", "aac", "-b:a", "192k"}
	default:
		codecArgs = []string{"-c:a", "libmp3lame", "-q:a", "2"}
	}

	args := []string{"-y", "-i", inputFile, "-vn"}
	args = append(args, codecArgs...)
	args = append(args, outFile)

	log.GetLogger().Info("extractAudio start", zap.String("input", inputFile), zap.String("output", outFile))
	if err := s.Runner.Run(ctx, storage.FfmpegPath, args...); err != nil {
		log.GetLogger().Error("extractAudio ffmpeg error", zap.Error(err))
		return errors.Wrap(errors.CodeAudioExtract, fmt.Sprintf("audio extraction failed for %s", inputFile), err)
	}
	return nil
}
