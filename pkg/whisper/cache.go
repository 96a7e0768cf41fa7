package whisper

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"clipcap/internal/appdirs"
	"clipcap/internal/types"
	"clipcap/log"
)

const cacheMaxEntries = 4

type cacheEntry struct {
	AudioHash    string `json:"audioHash"`
	ParamsHash   string `json:"paramsHash"`
	ResponsePath string `json:"responsePath"`
	Timestamp    int64  `json:"timestamp"`
}

type cacheIndex struct {
	Entries []cacheEntry `json:"entries"`
}

// responseCache stores raw transcription responses on disk so repeated runs
// over the same audio skip the API call. Keyed by audio content hash plus a
// hash of the parameters that affect the transcript.
type responseCache struct {
	dir string
}

func newResponseCache() *responseCache {
	paths, err := appdirs.Resolve()
	if err != nil {
		log.GetLogger().Warn("transcription cache disabled, cannot resolve app dirs", zap.Error(err))
		return &responseCache{}
	}
	dir := appdirs.WhisperCacheRootFor(paths)
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.GetLogger().Warn("transcription cache disabled, cannot create cache dir", zap.Error(err))
		return &responseCache{}
	}
	return &responseCache{dir: dir}
}

func (c *responseCache) cacheKey(audioFile string, params types.TranscribeParams) (string, string, error) {
	audioBytes, err := os.ReadFile(audioFile)
	if err != nil {
		return "", "", err
	}
	audioSum := sha256.Sum256(audioBytes)

	// VideoFile does not affect the transcript, leave it out of the key
	paramsJson, err := json.Marshal(map[string]interface{}{
		"model":        params.Model,
		"language":     params.Language,
		"splitByWords": params.SplitByWords,
		"prompt":       params.Prompt,
	})
	if err != nil {
		return "", "", err
	}
	paramsSum := sha256.Sum256(paramsJson)
	return hex.EncodeToString(audioSum[:]), hex.EncodeToString(paramsSum[:]), nil
}

func (c *responseCache) lookup(audioFile string, params types.TranscribeParams) (*openai.AudioResponse, bool) {
	if c.dir == "" {
		return nil, false
	}
	audioHash, paramsHash, err := c.cacheKey(audioFile, params)
	if err != nil {
		return nil, false
	}
	index := c.loadIndex()
	for _, e := range index.Entries {
		if e.AudioHash != audioHash || e.ParamsHash != paramsHash {
			continue
		}
		data, err := os.ReadFile(e.ResponsePath)
		if err != nil {
			continue
		}
		var resp openai.AudioResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			continue
		}
		return &resp, true
	}
	return nil, false
}

func (c *responseCache) store(audioFile string, params types.TranscribeParams, resp *openai.AudioResponse) error {
	if c.dir == "" {
		return nil
	}
	audioHash, paramsHash, err := c.cacheKey(audioFile, params)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return err
	}
	responsePath := filepath.Join(c.dir, fmt.Sprintf("%s_%s.json", audioHash[:8], paramsHash[:8]))
	if err := os.WriteFile(responsePath, data, 0644); err != nil {
		return err
	}

	index := c.loadIndex()
	kept := index.Entries[:0]
	for _, e := range index.Entries {
		if e.AudioHash == audioHash && e.ParamsHash == paramsHash {
			continue
		}
		kept = append(kept, e)
	}
	index.Entries = append(kept, cacheEntry{
		AudioHash:    audioHash,
		ParamsHash:   paramsHash,
		ResponsePath: responsePath,
		Timestamp:    time.Now().Unix(),
	})

	// oldest entries are evicted beyond the cap
	if len(index.Entries) > cacheMaxEntries {
		sort.Slice(index.Entries, func(i, j int) bool {
			return index.Entries[i].Timestamp < index.Entries[j].Timestamp
		})
		evicted := index.Entries[:len(index.Entries)-cacheMaxEntries]
		for _, e := range evicted {
			_ = os.Remove(e.ResponsePath)
		}
		index.Entries = index.Entries[len(index.Entries)-cacheMaxEntries:]
	}

	return c.saveIndex(index)
}

func (c *responseCache) indexPath() string {
	return filepath.Join(c.dir, "index.json")
}

func (c *responseCache) loadIndex() cacheIndex {
	var index cacheIndex
	data, err := os.ReadFile(c.indexPath())
	if err != nil {
		return index
	}
	if err := json.Unmarshal(data, &index); err != nil {
		return cacheIndex{}
	}
	return index
}

func (c *responseCache) saveIndex(index cacheIndex) error {
	data, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.indexPath(), data, 0644)
}
