package whisper

import (
	"encoding/json"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clipcap/log"
)

func init() {
	log.InitLogger()
}

// respFromJSON builds an AudioResponse the same way the API client does, which
// sidesteps the anonymous struct types on the response.
func respFromJSON(t *testing.T, data string) *openai.AudioResponse {
	t.Helper()
	var resp openai.AudioResponse
	require.NoError(t, json.Unmarshal([]byte(data), &resp))
	return &resp
}

func TestToCaptionSegments_WordLevel(t *testing.T) {
	resp := respFromJSON(t, `{
		"duration": 2.0,
		"text": "worth $225,000 today",
		"words": [
			{"word": "worth", "start": 0.0, "end": 0.4},
			{"word": "$", "start": 0.4, "end": 0.5},
			{"word": "225", "start": 0.5, "end": 0.8},
			{"word": "000", "start": 0.8, "end": 1.1},
			{"word": "today", "start": 1.1, "end": 1.6}
		]
	}`)

	segs := toCaptionSegments(resp, true)
	require.Len(t, segs, 3)
	assert.Equal(t, "worth", segs[0].Text)
	assert.Equal(t, "$225,000", segs[1].Text)
	assert.Equal(t, uint64(400), segs[1].StartMs)
	assert.Equal(t, uint64(1100), segs[1].EndMs)
	assert.Equal(t, "today", segs[2].Text)
}

func TestToCaptionSegments_CharWeightedSplit(t *testing.T) {
	resp := respFromJSON(t, `{
		"duration": 1.0,
		"text": "hi there",
		"segments": [
			{"start": 0.0, "end": 1.0, "text": "hi there"}
		]
	}`)

	segs := toCaptionSegments(resp, true)
	require.Len(t, segs, 2)

	// 2 of 7 chars for "hi", the rest absorbed by the last word
	assert.Equal(t, "hi", segs[0].Text)
	assert.Equal(t, uint64(0), segs[0].StartMs)
	assert.Equal(t, uint64(285), segs[0].EndMs)
	assert.Equal(t, "there", segs[1].Text)
	assert.Equal(t, uint64(1000), segs[1].EndMs)
}

func TestToCaptionSegments_CharWeightedSplit_MinimumWordDuration(t *testing.T) {
	resp := respFromJSON(t, `{
		"duration": 0.5,
		"text": "a gargantuan",
		"segments": [
			{"start": 0.0, "end": 0.5, "text": "a gargantuan"}
		]
	}`)

	segs := toCaptionSegments(resp, true)
	require.Len(t, segs, 2)
	// the one-letter word is floored at 100ms, not its 38ms char share
	assert.Equal(t, uint64(100), segs[0].EndMs-segs[0].StartMs)
}

func TestToCaptionSegments_SegmentLevelWithAlignedWords(t *testing.T) {
	resp := respFromJSON(t, `{
		"duration": 2.0,
		"text": "hello world goodbye now",
		"segments": [
			{"start": 0.0, "end": 1.0, "text": "hello world"},
			{"start": 1.0, "end": 2.0, "text": "goodbye now"}
		],
		"words": [
			{"word": "hello", "start": 0.0, "end": 0.4},
			{"word": "world", "start": 0.4, "end": 0.9},
			{"word": "goodbye", "start": 1.0, "end": 1.5},
			{"word": "now", "start": 1.5, "end": 1.9}
		]
	}`)

	segs := toCaptionSegments(resp, false)
	require.Len(t, segs, 2)
	require.Len(t, segs[0].Words, 2)
	require.Len(t, segs[1].Words, 2)
	assert.Equal(t, "hello", segs[0].Words[0].Text)
	assert.Equal(t, "goodbye", segs[1].Words[0].Text)
}

func TestToCaptionSegments_TinySegmentSkipped(t *testing.T) {
	resp := respFromJSON(t, `{
		"duration": 2.0,
		"text": "blip rest of it",
		"segments": [
			{"start": 0.0, "end": 0.01, "text": "blip"},
			{"start": 0.5, "end": 2.0, "text": "rest of it"}
		]
	}`)

	segs := toCaptionSegments(resp, false)
	require.Len(t, segs, 1)
	assert.Equal(t, "rest of it", segs[0].Text)
}

func TestToCaptionSegments_DurationCapsSegmentEnd(t *testing.T) {
	resp := respFromJSON(t, `{
		"duration": 1.5,
		"text": "overrun",
		"segments": [
			{"start": 0.0, "end": 3.0, "text": "overrun"}
		]
	}`)

	segs := toCaptionSegments(resp, false)
	require.Len(t, segs, 1)
	assert.Equal(t, uint64(1500), segs[0].EndMs)
}

func TestToCaptionSegments_TextOnlyFallback(t *testing.T) {
	resp := respFromJSON(t, `{"duration": 3.0, "text": "just a blob of text"}`)
	segs := toCaptionSegments(resp, false)
	require.Len(t, segs, 1)
	assert.Equal(t, uint64(0), segs[0].StartMs)
	assert.Equal(t, uint64(3000), segs[0].EndMs)
}

func TestToCaptionSegments_Empty(t *testing.T) {
	resp := respFromJSON(t, `{"duration": 0, "text": "  "}`)
	assert.Empty(t, toCaptionSegments(resp, false))
	assert.Empty(t, toCaptionSegments(resp, true))
}
