package whisper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"clipcap/internal/types"
	"clipcap/log"
	"clipcap/pkg/errors"
)

const defaultWhisperModel = "whisper-1"

// Client transcribes audio through an OpenAI-compatible endpoint, with a
// local response cache keyed by audio content and request parameters.
type Client struct {
	client *openai.Client
	cache  *responseCache
}

func NewClient(baseUrl, apiKey, proxyAddr string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseUrl != "" {
		cfg.BaseURL = baseUrl
	}
	transport := &http.Transport{}
	if proxyAddr != "" {
		if proxyUrl, err := url.Parse(proxyAddr); err == nil {
			transport.Proxy = http.ProxyURL(proxyUrl)
		} else {
			log.GetLogger().Warn("NewClient invalid proxy address", zap.String("proxy", proxyAddr))
		}
	}
	cfg.HTTPClient = &http.Client{
		Timeout:   10 * time.Minute,
		Transport: transport,
	}
	return &Client{
		client: openai.NewClientWithConfig(cfg),
		cache:  newResponseCache(),
	}
}

// Transcribe runs verbose-json transcription with both segment and word
// granularities, converts the response into caption segments, and writes a
// transcript JSON file next to the audio file.
func (c *Client) Transcribe(ctx context.Context, audioFile string, params types.TranscribeParams) (*types.TranscribeResult, error) {
	model := params.Model
	if model == "" {
		model = defaultWhisperModel
	}

	resp, cached := c.cache.lookup(audioFile, params)
	if cached {
		log.GetLogger().Info("Transcribe cache hit", zap.String("audio", audioFile))
	} else {
		req := openai.AudioRequest{
			Model:    model,
			FilePath: audioFile,
			Format:   openai.AudioResponseFormatVerboseJSON,
			Language: params.Language,
			Prompt:   params.Prompt,
			TimestampGranularities: []openai.TranscriptionTimestampGranularity{
				openai.TranscriptionTimestampGranularitySegment,
				openai.TranscriptionTimestampGranularityWord,
			},
		}
		apiResp, err := c.client.CreateTranscription(ctx, req)
		if err != nil {
			log.GetLogger().Error("Transcribe request error", zap.String("audio", audioFile), zap.Error(err))
			return nil, errors.Wrap(errors.CodeTranscribeFailed, "transcription request failed", err)
		}
		resp = &apiResp
		if err = c.cache.store(audioFile, params, resp); err != nil {
			log.GetLogger().Warn("Transcribe cache store error", zap.Error(err))
		}
	}

	segments := toCaptionSegments(resp, params.SplitByWords)
	if len(segments) == 0 {
		return nil, errors.New(errors.CodeEmptyTranscript, "transcription produced no segments")
	}

	result := &types.TranscribeResult{
		Segments: segments,
		FullText: resp.Text,
		Duration: resp.Duration,
	}

	jsonPath := strings.TrimSuffix(audioFile, filepath.Ext(audioFile)) + ".json"
	if err := writeTranscriptJson(jsonPath, result, model, params); err != nil {
		log.GetLogger().Warn("Transcribe write transcript json error", zap.Error(err))
	} else {
		result.JsonFile = jsonPath
	}

	log.GetLogger().Info("Transcribe done",
		zap.String("audio", audioFile),
		zap.Int("segments", len(segments)),
		zap.Bool("cached", cached))
	return result, nil
}

func writeTranscriptJson(path string, result *types.TranscribeResult, model string, params types.TranscribeParams) error {
	payload := map[string]interface{}{
		"segments":     result.Segments,
		"fullText":     result.FullText,
		"duration":     result.Duration,
		"splitByWords": params.SplitByWords,
		"model":        model,
		"language":     params.Language,
		"generatedAt":  time.Now().Unix(),
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal transcript: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
